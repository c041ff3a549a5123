package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhouKai90/runlog/types"
)

func TestBuildPrompt_Search(t *testing.T) {
	output := types.ToolOutput{
		Tool: types.ToolWebSearch,
		Results: []types.SearchResult{
			{Title: "Go", Link: "https://go.dev/"},
			{Title: "Go Docs", Link: "https://go.dev/doc/"},
		},
	}

	prompt, err := BuildPrompt("golang", output)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, promptInstruction))
	assert.Contains(t, prompt, `Based on the prompt "golang", here's what I found:`)
	assert.Contains(t, prompt, "1. Go (https://go.dev/)")
	assert.Contains(t, prompt, "2. Go Docs (https://go.dev/doc/)")
}

func TestBuildPrompt_Calc(t *testing.T) {
	output := types.ToolOutput{
		Tool:  types.ToolCalculator,
		Value: "4",
	}

	prompt, err := BuildPrompt("2+2", output)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, promptInstruction))
	assert.Contains(t, prompt, `Based on the prompt "2+2", the answer to your calculation is 4.`)
}

func TestBuildPrompt_UnknownTool(t *testing.T) {
	_, err := BuildPrompt("x", types.ToolOutput{Tool: "telescope"})
	assert.Error(t, err)
}

// --- token budget ---

type captureSummarizer struct {
	got  string
	resp *Summary
	err  error
}

func (c *captureSummarizer) Summarize(_ context.Context, prompt string) (*Summary, error) {
	c.got = prompt
	return c.resp, c.err
}

type fixedCounter struct {
	fail bool
}

func (f *fixedCounter) Count(text string) (int, error) {
	if f.fail {
		return 0, errors.New("counter unavailable")
	}
	return len(strings.Fields(text)), nil
}

func (f *fixedCounter) Truncate(text string, maxTokens int) (string, error) {
	if f.fail {
		return "", errors.New("counter unavailable")
	}
	words := strings.Fields(text)
	if len(words) <= maxTokens {
		return text, nil
	}
	return strings.Join(words[:maxTokens], " "), nil
}

func TestWithTokenBudget_Truncates(t *testing.T) {
	inner := &captureSummarizer{resp: &Summary{Text: "ok"}}
	s := WithTokenBudget(inner, &fixedCounter{}, 3)

	resp, err := s.Summarize(context.Background(), "one two three four five")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, "one two three", inner.got)
}

func TestWithTokenBudget_UnderBudget(t *testing.T) {
	inner := &captureSummarizer{resp: &Summary{}}
	s := WithTokenBudget(inner, &fixedCounter{}, 10)

	_, err := s.Summarize(context.Background(), "short prompt")
	require.NoError(t, err)
	assert.Equal(t, "short prompt", inner.got)
}

func TestWithTokenBudget_CounterFailure(t *testing.T) {
	// 计数失败时原样发送
	inner := &captureSummarizer{resp: &Summary{}}
	s := WithTokenBudget(inner, &fixedCounter{fail: true}, 1)

	_, err := s.Summarize(context.Background(), "full prompt survives")
	require.NoError(t, err)
	assert.Equal(t, "full prompt survives", inner.got)
}

func TestWithTokenBudget_Disabled(t *testing.T) {
	inner := &captureSummarizer{}
	assert.Equal(t, Summarizer(inner), WithTokenBudget(inner, &fixedCounter{}, 0))
	assert.Equal(t, Summarizer(inner), WithTokenBudget(inner, nil, 100))
}
