package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ZhouKai90/runlog/api"
	"github.com/ZhouKai90/runlog/run"
	"github.com/ZhouKai90/runlog/testutil/fixtures"
	"github.com/ZhouKai90/runlog/types"
)

// fakeQueryService 可编程的编排假实现
type fakeQueryService struct {
	result  *types.RunResult
	cached  bool
	err     error
	lastReq types.RunRequest
	recent  []types.RunResult
}

func (f *fakeQueryService) Query(ctx context.Context, req types.RunRequest) (*types.RunResult, bool, error) {
	f.lastReq = req
	// 与真实编排器一致：先校验，再干活
	if err := run.ValidateRequest(req); err != nil {
		return nil, false, err
	}
	if f.err != nil {
		return nil, false, f.err
	}
	return f.result, f.cached, nil
}

func (f *fakeQueryService) Recent(ctx context.Context, userID string, limit int64) ([]types.RunResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.recent, nil
}

func calcRunResult() *types.RunResult {
	r := fixtures.CalculatorResult("alice", "12*7", "84")
	r.Summary = "The answer to your calculation is 84."
	return r
}

func searchRunResult() *types.RunResult {
	r := fixtures.WebSearchResult("alice", "golang generics", []types.SearchResult{
		{Title: "Go generics", Link: "https://example.com/a"},
	})
	r.Summary = "One relevant article found."
	r.TokenCount = 0
	return r
}

func postQuery(t *testing.T, h *QueryHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleQuery(rec, req)
	return rec
}

func TestQueryHandler_Calculator(t *testing.T) {
	svc := &fakeQueryService{result: calcRunResult()}
	h := NewQueryHandler(svc, zap.NewNop(), 0)

	rec := postQuery(t, h, `{"userId":"alice","tool":"calculator","prompt":"12*7"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "12*7", resp.Prompt)
	assert.Equal(t, "calculator", resp.Tool)
	assert.Equal(t, "84", resp.Result)
	assert.Nil(t, resp.Results, "calculator 响应不带 results 字段")
	assert.Equal(t, 21, resp.TotalTokenCount)
	assert.Equal(t, "2026-02-14T09:30:00Z", resp.Timestamp)

	assert.Equal(t, types.ToolCalculator, svc.lastReq.Tool)
}

func TestQueryHandler_WebSearch(t *testing.T) {
	svc := &fakeQueryService{result: searchRunResult()}
	h := NewQueryHandler(svc, zap.NewNop(), 0)

	rec := postQuery(t, h, `{"userId":"alice","tool":"web-search","prompt":"golang generics"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// 原始 JSON 层面验证互斥字段
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, raw, "results")
	assert.NotContains(t, raw, "result", "web-search 响应不带 result 字段")
	assert.Contains(t, raw, "totalTokenCount", "token 计数为 0 也要出现")

	var resp api.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Go generics", resp.Results[0].Title)
	assert.Equal(t, 0, resp.TotalTokenCount)
}

func TestQueryHandler_ValidationFailure(t *testing.T) {
	svc := &fakeQueryService{result: calcRunResult()}
	h := NewQueryHandler(svc, zap.NewNop(), 0)

	rec := postQuery(t, h, `{"userId":"alice","tool":"weather","prompt":"hi"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_REQUEST", resp.Code)
	assert.NotEmpty(t, resp.Error)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestQueryHandler_CollaboratorFailureIs500(t *testing.T) {
	svc := &fakeQueryService{err: types.NewError(types.ErrNoResults, "no search results found")}
	h := NewQueryHandler(svc, zap.NewNop(), 0)

	rec := postQuery(t, h, `{"userId":"alice","tool":"web-search","prompt":"qqqqzzzz"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NO_RESULTS", resp.Code)
}

func TestQueryHandler_MalformedJSON(t *testing.T) {
	h := NewQueryHandler(&fakeQueryService{}, zap.NewNop(), 0)

	rec := postQuery(t, h, `{"userId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_BodyTooLarge(t *testing.T) {
	h := NewQueryHandler(&fakeQueryService{result: calcRunResult()}, zap.NewNop(), 64)

	big := `{"userId":"alice","tool":"calculator","prompt":"` + strings.Repeat("1", 200) + `"}`
	rec := postQuery(t, h, big)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_MethodNotAllowed(t *testing.T) {
	h := NewQueryHandler(&fakeQueryService{}, zap.NewNop(), 0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/query", nil)
	rec := httptest.NewRecorder()
	h.HandleQuery(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestQueryHandler_Recent(t *testing.T) {
	svc := &fakeQueryService{recent: []types.RunResult{*calcRunResult()}}
	h := NewQueryHandler(svc, zap.NewNop(), 0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recent?userId=alice", nil)
	rec := httptest.NewRecorder()
	h.HandleRecent(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.RecentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.UserID)
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, "84", resp.Runs[0].Result)
}

func TestQueryHandler_RecentMissingUserID(t *testing.T) {
	h := NewQueryHandler(&fakeQueryService{}, zap.NewNop(), 0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recent", nil)
	rec := httptest.NewRecorder()
	h.HandleRecent(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
