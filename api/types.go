package api

import (
	"time"

	"github.com/ZhouKai90/runlog/types"
)

// =============================================================================
// 📦 查询端点线上类型
// =============================================================================

// QueryRequest 是 POST /api/v1/query 的请求体。
// @Description 查询请求结构
type QueryRequest struct {
	// 用户标识
	UserID string `json:"userId" example:"user-1" binding:"required"`
	// 工具名称（web-search 或 calculator）
	Tool string `json:"tool" example:"calculator" binding:"required"`
	// 用户提示词
	Prompt string `json:"prompt" example:"12*7" binding:"required"`
}

// QueryResponse 是查询成功的响应体。
// Results 与 Result 互斥：web-search 只带 Results，calculator 只带 Result。
// @Description 查询成功响应结构
type QueryResponse struct {
	Prompt          string         `json:"prompt"`
	Tool            string         `json:"tool"`
	Results         []SearchResult `json:"results,omitempty"`
	Result          string         `json:"result,omitempty"`
	Summary         string         `json:"summary"`
	TotalTokenCount int            `json:"totalTokenCount"`
	Timestamp       string         `json:"timestamp"`
}

// SearchResult 单条搜索结果
type SearchResult struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// ErrorResponse 是所有端点统一的错误响应体。
// @Description 错误响应结构
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Timestamp string `json:"timestamp"`
}

// RecentResponse 是 GET /api/v1/recent 的响应体
type RecentResponse struct {
	UserID string          `json:"userId"`
	Runs   []QueryResponse `json:"runs"`
}

// =============================================================================
// 🔄 领域类型 ↔ 线上类型转换
// =============================================================================

// ToRunRequest 将线上请求转换为领域请求。工具名在校验层检查，这里原样透传。
func (r QueryRequest) ToRunRequest() types.RunRequest {
	return types.RunRequest{
		UserID: r.UserID,
		Tool:   types.ToolType(r.Tool),
		Prompt: r.Prompt,
	}
}

// NewQueryResponse 从领域结果构造响应体，按工具类型填充互斥字段。
func NewQueryResponse(result *types.RunResult) QueryResponse {
	resp := QueryResponse{
		Prompt:          result.Prompt,
		Tool:            string(result.Tool()),
		Summary:         result.Summary,
		TotalTokenCount: result.TokenCount,
		Timestamp:       result.Timestamp.UTC().Format(time.RFC3339),
	}
	switch result.Tool() {
	case types.ToolWebSearch:
		resp.Results = make([]SearchResult, len(result.Output.Results))
		for i, sr := range result.Output.Results {
			resp.Results[i] = SearchResult{Title: sr.Title, Link: sr.Link}
		}
	case types.ToolCalculator:
		resp.Result = result.Output.Value
	}
	return resp
}

// NewErrorResponse 从结构化错误构造错误响应体
func NewErrorResponse(err *types.Error) ErrorResponse {
	return ErrorResponse{
		Error:     err.Message,
		Code:      string(err.Code),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
