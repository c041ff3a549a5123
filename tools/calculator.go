package tools

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ZhouKai90/runlog/types"
)

// Evaluator evaluates an arithmetic expression and returns the numeric
// result formatted as a decimal string.
type Evaluator interface {
	Evaluate(expression string) (string, error)
}

// Calculator evaluates infix arithmetic expressions. Supported syntax:
// decimal literals, + - * / %, ^ for exponentiation (right-associative),
// unary minus, and parentheses.
type Calculator struct{}

// NewCalculator creates a calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Evaluate parses and evaluates the expression. Any syntax error,
// division by zero, or non-finite result yields an INVALID_EXPRESSION
// error.
func (c *Calculator) Evaluate(expression string) (string, error) {
	p := &exprParser{input: expression}
	value, err := p.parseExpr(0)
	if err != nil {
		return "", types.NewError(types.ErrInvalidExpression, "invalid math expression").WithCause(err)
	}

	p.skipSpaces()
	if p.pos < len(p.input) {
		return "", types.NewError(types.ErrInvalidExpression, "invalid math expression").
			WithCause(fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos))
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", types.NewError(types.ErrInvalidExpression, "invalid math expression").
			WithCause(fmt.Errorf("result is not a finite number"))
	}

	return strconv.FormatFloat(value, 'f', -1, 64), nil
}

// exprParser is a precedence-climbing parser over a byte string.
type exprParser struct {
	input string
	pos   int
}

// binding powers per operator; ^ binds tightest and is right-associative.
func bindingPower(op byte) int {
	switch op {
	case '+', '-':
		return 1
	case '*', '/', '%':
		return 2
	case '^':
		return 3
	}
	return 0
}

func (p *exprParser) parseExpr(minPower int) (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			return left, nil
		}

		op := p.input[p.pos]
		power := bindingPower(op)
		if power == 0 || power < minPower {
			return left, nil
		}
		p.pos++

		// right-associative ^ recurses at the same power,
		// left-associative operators at power+1
		nextPower := power + 1
		if op == '^' {
			nextPower = power
		}

		right, err := p.parseExpr(nextPower)
		if err != nil {
			return 0, err
		}

		left, err = apply(op, left, right)
		if err != nil {
			return 0, err
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	switch p.input[p.pos] {
	case '-':
		// ^ binds tighter than unary minus: -2^2 is -(2^2)
		p.pos++
		v, err := p.parseExpr(bindingPower('^'))
		if err != nil {
			return 0, err
		}
		return -v, nil
	case '+':
		p.pos++
		return p.parseExpr(bindingPower('^'))
	case '(':
		p.pos++
		v, err := p.parseExpr(0)
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}

	return p.parseNumber()
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	seenDot := false
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch >= '0' && ch <= '9' {
			p.pos++
			continue
		}
		if ch == '.' && !seenDot {
			seenDot = true
			p.pos++
			continue
		}
		break
	}

	if p.pos == start {
		return 0, fmt.Errorf("expected number at position %d", start)
	}

	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed number %q", p.input[start:p.pos])
	}
	return v, nil
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func apply(op byte, left, right float64) (float64, error) {
	switch op {
	case '+':
		return left + right, nil
	case '-':
		return left - right, nil
	case '*':
		return left * right, nil
	case '/':
		if right == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return left / right, nil
	case '%':
		if right == 0 {
			return 0, fmt.Errorf("modulo by zero")
		}
		return math.Mod(left, right), nil
	case '^':
		return math.Pow(left, right), nil
	}
	return 0, fmt.Errorf("unknown operator %q", op)
}
