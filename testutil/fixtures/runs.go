// =============================================================================
// 📦 测试数据工厂 - 运行请求与结果测试数据
// =============================================================================
// 提供预定义的 RunRequest / RunResult 数据，用于测试
// =============================================================================
package fixtures

import (
	"fmt"
	"time"

	"github.com/ZhouKai90/runlog/types"
)

// FixedTimestamp 是固定的结果时间戳，方便断言缓存命中
// 不会重打时间戳。
var FixedTimestamp = time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)

// =============================================================================
// 🎯 RunRequest 工厂
// =============================================================================

// CalculatorRequest 返回计算器请求
func CalculatorRequest(userID, expression string) types.RunRequest {
	return types.RunRequest{
		UserID: userID,
		Tool:   types.ToolCalculator,
		Prompt: expression,
	}
}

// WebSearchRequest 返回网页搜索请求
func WebSearchRequest(userID, query string) types.RunRequest {
	return types.RunRequest{
		UserID: userID,
		Tool:   types.ToolWebSearch,
		Prompt: query,
	}
}

// =============================================================================
// 🎯 RunResult 工厂
// =============================================================================

// CalculatorResult 返回计算器运行结果
func CalculatorResult(userID, expression, value string) *types.RunResult {
	return &types.RunResult{
		UserID: userID,
		Prompt: expression,
		Output: types.ToolOutput{
			Tool:  types.ToolCalculator,
			Value: value,
		},
		Summary:    fmt.Sprintf("The answer is %s.", value),
		TokenCount: 21,
		Timestamp:  FixedTimestamp,
	}
}

// WebSearchResult 返回网页搜索运行结果
func WebSearchResult(userID, query string, hits []types.SearchResult) *types.RunResult {
	return &types.RunResult{
		UserID: userID,
		Prompt: query,
		Output: types.ToolOutput{
			Tool:    types.ToolWebSearch,
			Results: hits,
		},
		Summary:    "Here is what I found.",
		TokenCount: 42,
		Timestamp:  FixedTimestamp,
	}
}

// SearchResults 返回 n 条编号的搜索结果
func SearchResults(n int) []types.SearchResult {
	hits := make([]types.SearchResult, 0, n)
	for i := 1; i <= n; i++ {
		hits = append(hits, types.SearchResult{
			Title: fmt.Sprintf("Result %d", i),
			Link:  fmt.Sprintf("https://example.com/%d", i),
		})
	}
	return hits
}
