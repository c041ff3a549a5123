package run

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ZhouKai90/runlog/testutil/fixtures"
	"github.com/ZhouKai90/runlog/testutil/mocks"
	"github.com/ZhouKai90/runlog/types"
)

// ===== 🧪 调度器测试 =====

func TestDispatcher_Calculator(t *testing.T) {
	search := mocks.NewMockSearchProvider()
	eval := mocks.NewMockEvaluator().WithValue("84")
	summarizer := mocks.NewMockSummarizer().WithSummary("The answer is 84.", 21)
	d := NewDispatcher(search, eval, summarizer, zap.NewNop())

	before := time.Now()
	result, err := d.Dispatch(context.Background(), fixtures.CalculatorRequest("alice", "12*7"))
	require.NoError(t, err)

	assert.Equal(t, "alice", result.UserID)
	assert.Equal(t, "12*7", result.Prompt)
	assert.Equal(t, types.ToolCalculator, result.Tool())
	assert.Equal(t, "84", result.Output.Value)
	assert.Empty(t, result.Output.Results)
	assert.Equal(t, "The answer is 84.", result.Summary)
	assert.Equal(t, 21, result.TokenCount)
	assert.NoError(t, result.Output.Validate())
	assert.False(t, result.Timestamp.Before(before.UTC()))

	assert.Equal(t, "12*7", eval.LastExpression())
	assert.Contains(t, summarizer.LastPrompt(), "the answer to your calculation is 84")
	assert.Equal(t, 0, search.CallCount(), "calculator run never touches search")
}

func TestDispatcher_WebSearch(t *testing.T) {
	search := mocks.NewMockSearchProvider().WithResults([]types.SearchResult{
		{Title: "Go generics", Link: "https://example.com/a"},
		{Title: "Type parameters", Link: "https://example.com/b"},
	})
	eval := mocks.NewMockEvaluator()
	summarizer := mocks.NewMockSummarizer().WithSummary("Here are two articles.", 0)
	d := NewDispatcher(search, eval, summarizer, zap.NewNop())

	result, err := d.Dispatch(context.Background(), fixtures.WebSearchRequest("alice", "golang generics"))
	require.NoError(t, err)

	assert.Equal(t, types.ToolWebSearch, result.Tool())
	assert.Len(t, result.Output.Results, 2)
	assert.Empty(t, result.Output.Value)
	assert.Equal(t, 0, result.TokenCount, "provider reported no usage")

	assert.Equal(t, "golang generics", search.LastQuery())
	assert.Contains(t, summarizer.LastPrompt(), "1. Go generics (https://example.com/a)")
	assert.Contains(t, summarizer.LastPrompt(), "2. Type parameters (https://example.com/b)")
	assert.Equal(t, 0, eval.CallCount(), "search run never touches the calculator")
}

func TestDispatcher_SearchFailureSkipsSummary(t *testing.T) {
	search := mocks.NewMockSearchProvider().
		WithError(types.NewError(types.ErrNoResults, "no search results found"))
	summarizer := mocks.NewMockSummarizer()
	d := NewDispatcher(search, mocks.NewMockEvaluator(), summarizer, zap.NewNop())

	_, err := d.Dispatch(context.Background(), fixtures.WebSearchRequest("alice", "qqqqzzzz"))
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrNoResults))
	assert.Equal(t, 0, summarizer.CallCount())
}

func TestDispatcher_InvalidExpressionPropagates(t *testing.T) {
	eval := mocks.NewMockEvaluator().
		WithError(types.NewError(types.ErrInvalidExpression, "invalid math expression"))
	d := NewDispatcher(mocks.NewMockSearchProvider(), eval, mocks.NewMockSummarizer(), zap.NewNop())

	_, err := d.Dispatch(context.Background(), fixtures.CalculatorRequest("alice", "1 ++ 2"))
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidExpression))
}

func TestDispatcher_SummarizerFailureYieldsNoResult(t *testing.T) {
	eval := mocks.NewMockEvaluator().WithValue("84")
	summarizer := mocks.NewMockSummarizer().
		WithError(types.NewUpstreamError("summarization failed", nil))
	d := NewDispatcher(mocks.NewMockSearchProvider(), eval, summarizer, zap.NewNop())

	result, err := d.Dispatch(context.Background(), fixtures.CalculatorRequest("alice", "12*7"))
	require.Error(t, err)
	assert.Nil(t, result, "没有部分结果这种东西")
	assert.True(t, types.IsErrorCode(err, types.ErrUpstreamError))
}

func TestDispatcher_TimestampAtCompletion(t *testing.T) {
	summarizer := mocks.NewMockSummarizer().
		WithSummary("ok", 0).
		WithDelay(30 * time.Millisecond)
	d := NewDispatcher(mocks.NewMockSearchProvider(), mocks.NewMockEvaluator().WithValue("2"),
		summarizer, zap.NewNop())

	start := time.Now().UTC()
	result, err := d.Dispatch(context.Background(), fixtures.CalculatorRequest("alice", "1+1"))
	require.NoError(t, err)
	assert.True(t, result.Timestamp.Sub(start) >= 30*time.Millisecond,
		"时间戳打在结果组装完成时，而非请求到达时")
}
