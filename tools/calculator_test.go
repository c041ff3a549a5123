package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhouKai90/runlog/types"
)

func TestCalculator_Evaluate(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name string
		expr string
		want string
	}{
		{"addition", "1+2", "3"},
		{"subtraction chain", "10-3-4", "3"},
		{"multiplication", "6*7", "42"},
		{"division", "7/2", "3.5"},
		{"modulo", "10%3", "1"},
		{"exponent", "2^10", "1024"},
		{"exponent right assoc", "2^3^2", "512"},
		{"precedence", "2+3*4", "14"},
		{"parentheses", "(2+3)*4", "20"},
		{"nested parens", "((1+1))*(2+2)", "8"},
		{"unary minus", "-5+8", "3"},
		{"double unary", "--4", "4"},
		{"unary plus", "+7", "7"},
		{"exponent over unary minus", "-2^2", "-4"},
		{"negative exponent", "2^-2", "0.25"},
		{"unary minus exponent chain", "-2^3^2", "-512"},
		{"parenthesized base", "(-2)^2", "4"},
		{"unary times", "-2*3", "-6"},
		{"decimals", "0.1+0.2*10", "2.1"},
		{"spaces", "  2 +  2 ", "4"},
		{"negative result", "3-10", "-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Evaluate(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculator_Evaluate_Invalid(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"letters", "two plus two"},
		{"trailing operator", "2+"},
		{"leading operator", "*3"},
		{"unbalanced paren", "(1+2"},
		{"stray paren", "1+2)"},
		{"double dot", "1.2.3"},
		{"division by zero", "1/0"},
		{"modulo by zero", "5%0"},
		{"division by zero in parens", "10/(3-3)"},
		{"adjacent numbers", "1 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Evaluate(tt.expr)
			require.Error(t, err)
			assert.True(t, types.IsErrorCode(err, types.ErrInvalidExpression),
				"expected INVALID_EXPRESSION, got %v", err)
		})
	}
}
