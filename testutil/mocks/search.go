// MockSearchProvider 的网页搜索测试模拟实现。
//
// 支持固定结果、延迟与错误注入场景。
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/ZhouKai90/runlog/types"
)

// --- MockSearchProvider 结构 ---

// MockSearchProvider 是网页搜索提供商的模拟实现
type MockSearchProvider struct {
	mu sync.RWMutex

	// 响应配置
	results []types.SearchResult
	err     error

	// 调用记录
	queries []string

	// 行为控制
	delay      time.Duration
	failAfter  int
	callCount  int
	searchFunc func(ctx context.Context, query string) ([]types.SearchResult, error)
}

// --- 构造函数和 Builder 方法 ---

// NewMockSearchProvider 创建新的 MockSearchProvider
func NewMockSearchProvider() *MockSearchProvider {
	return &MockSearchProvider{}
}

// WithResults 设置固定搜索结果
func (m *MockSearchProvider) WithResults(results []types.SearchResult) *MockSearchProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = results
	return m
}

// WithError 设置返回错误
func (m *MockSearchProvider) WithError(err error) *MockSearchProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithDelay 设置响应延迟
func (m *MockSearchProvider) WithDelay(delay time.Duration) *MockSearchProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = delay
	return m
}

// WithFailAfter 设置在第 N 次调用后失败
func (m *MockSearchProvider) WithFailAfter(n int) *MockSearchProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	return m
}

// WithSearchFunc 设置自定义 Search 函数
func (m *MockSearchProvider) WithSearchFunc(fn func(ctx context.Context, query string) ([]types.SearchResult, error)) *MockSearchProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchFunc = fn
	return m
}

// --- SearchProvider 实现 ---

// Search 返回配置的结果或错误
func (m *MockSearchProvider) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	m.mu.Lock()
	m.callCount++
	m.queries = append(m.queries, query)
	count := m.callCount
	fn := m.searchFunc
	delay := m.delay
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.failAfter > 0 && count > m.failAfter {
		return nil, types.NewUpstreamError("mock search: injected failure", nil)
	}
	results := make([]types.SearchResult, len(m.results))
	copy(results, m.results)
	return results, nil
}

// --- 观测方法 ---

// CallCount 返回 Search 被调用的次数
func (m *MockSearchProvider) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.callCount
}

// LastQuery 返回最近一次的查询串，无调用时返回空串
func (m *MockSearchProvider) LastQuery() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.queries) == 0 {
		return ""
	}
	return m.queries[len(m.queries)-1]
}

// Queries 返回全部查询记录的副本
func (m *MockSearchProvider) Queries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}

// Reset 清空调用记录
func (m *MockSearchProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.queries = nil
}
