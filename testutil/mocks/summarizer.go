// MockSummarizer 的 LLM 摘要测试模拟实现。
//
// 支持固定摘要、延迟与错误注入场景，并记录每次调用时
// 的提示词与上下文取消状态。
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/ZhouKai90/runlog/llm"
	"github.com/ZhouKai90/runlog/types"
)

// --- MockSummarizer 结构 ---

// MockSummarizerCall 记录单次摘要调用
type MockSummarizerCall struct {
	Prompt string
	CtxErr error
}

// MockSummarizer 是摘要器的模拟实现
type MockSummarizer struct {
	mu sync.RWMutex

	// 响应配置
	summary llm.Summary
	err     error

	// 调用记录
	calls []MockSummarizerCall

	// 行为控制
	delay         time.Duration
	failAfter     int
	summarizeFunc func(ctx context.Context, prompt string) (*llm.Summary, error)
}

// --- 构造函数和 Builder 方法 ---

// NewMockSummarizer 创建新的 MockSummarizer
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{
		summary: llm.Summary{Text: "Mock summary"},
	}
}

// WithSummary 设置固定摘要
func (m *MockSummarizer) WithSummary(text string, totalTokens int) *MockSummarizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary = llm.Summary{Text: text, TotalTokens: totalTokens}
	return m
}

// WithError 设置返回错误
func (m *MockSummarizer) WithError(err error) *MockSummarizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithDelay 设置响应延迟
func (m *MockSummarizer) WithDelay(delay time.Duration) *MockSummarizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = delay
	return m
}

// WithFailAfter 设置在第 N 次调用后失败
func (m *MockSummarizer) WithFailAfter(n int) *MockSummarizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	return m
}

// WithSummarizeFunc 设置自定义 Summarize 函数
func (m *MockSummarizer) WithSummarizeFunc(fn func(ctx context.Context, prompt string) (*llm.Summary, error)) *MockSummarizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summarizeFunc = fn
	return m
}

// --- Summarizer 实现 ---

// Summarize 返回配置的摘要或错误
func (m *MockSummarizer) Summarize(ctx context.Context, prompt string) (*llm.Summary, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockSummarizerCall{Prompt: prompt, CtxErr: ctx.Err()})
	count := len(m.calls)
	fn := m.summarizeFunc
	delay := m.delay
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.failAfter > 0 && count > m.failAfter {
		return nil, types.NewUpstreamError("mock summarizer: injected failure", nil)
	}
	s := m.summary
	return &s, nil
}

// --- 观测方法 ---

// CallCount 返回 Summarize 被调用的次数
func (m *MockSummarizer) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.calls)
}

// LastPrompt 返回最近一次的提示词，无调用时返回空串
func (m *MockSummarizer) LastPrompt() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.calls) == 0 {
		return ""
	}
	return m.calls[len(m.calls)-1].Prompt
}

// LastCtxErr 返回最近一次调用时的上下文错误状态
func (m *MockSummarizer) LastCtxErr() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1].CtxErr
}

// Calls 返回全部调用记录的副本
func (m *MockSummarizer) Calls() []MockSummarizerCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MockSummarizerCall, len(m.calls))
	copy(out, m.calls)
	return out
}
