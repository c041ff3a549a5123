// MockEvaluator 的计算器测试模拟实现。
//
// 支持固定结果与错误注入场景。
package mocks

import (
	"sync"
)

// --- MockEvaluator 结构 ---

// MockEvaluator 是算术求值器的模拟实现
type MockEvaluator struct {
	mu sync.RWMutex

	// 响应配置
	value string
	err   error

	// 调用记录
	expressions []string
	callCount   int

	evaluateFunc func(expression string) (string, error)
}

// --- 构造函数和 Builder 方法 ---

// NewMockEvaluator 创建新的 MockEvaluator
func NewMockEvaluator() *MockEvaluator {
	return &MockEvaluator{value: "0"}
}

// WithValue 设置固定求值结果
func (m *MockEvaluator) WithValue(value string) *MockEvaluator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	return m
}

// WithError 设置返回错误
func (m *MockEvaluator) WithError(err error) *MockEvaluator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithEvaluateFunc 设置自定义 Evaluate 函数
func (m *MockEvaluator) WithEvaluateFunc(fn func(expression string) (string, error)) *MockEvaluator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluateFunc = fn
	return m
}

// --- Evaluator 实现 ---

// Evaluate 返回配置的结果或错误
func (m *MockEvaluator) Evaluate(expression string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.expressions = append(m.expressions, expression)
	fn := m.evaluateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(expression)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return "", m.err
	}
	return m.value, nil
}

// --- 观测方法 ---

// CallCount 返回 Evaluate 被调用的次数
func (m *MockEvaluator) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.callCount
}

// LastExpression 返回最近一次求值的表达式，无调用时返回空串
func (m *MockEvaluator) LastExpression() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.expressions) == 0 {
		return ""
	}
	return m.expressions[len(m.expressions)-1]
}
