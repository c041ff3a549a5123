package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZhouKai90/runlog/types"
)

// Summary is the result of a summarization call.
type Summary struct {
	// Text is the model's reply. May be empty when the model returns
	// no candidates.
	Text string `json:"text"`

	// TotalTokens is the token usage reported by the provider,
	// 0 when the provider reports none.
	TotalTokens int `json:"total_tokens"`
}

// Summarizer turns an assembled prompt into a friendly reply.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (*Summary, error)
}

// promptInstruction pins the model to the reply format.
const promptInstruction = "You are a concise assistant. Respond only in the following format, and do not add anything else.\n"

// BuildPrompt assembles the summarization prompt for a tool output.
func BuildPrompt(userPrompt string, output types.ToolOutput) (string, error) {
	switch output.Tool {
	case types.ToolWebSearch:
		return searchPrompt(userPrompt, output.Results), nil
	case types.ToolCalculator:
		return calcPrompt(userPrompt, output.Value), nil
	default:
		return "", fmt.Errorf("no prompt template for tool %q", output.Tool)
	}
}

func searchPrompt(userPrompt string, results []types.SearchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Based on the prompt %q, here's what I found: ", promptInstruction, userPrompt)
	for i, r := range results {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d. %s (%s)", i+1, r.Title, r.Link)
	}
	return sb.String()
}

func calcPrompt(userPrompt, value string) string {
	return fmt.Sprintf("%s Based on the prompt %q, the answer to your calculation is %s.",
		promptInstruction, userPrompt, value)
}

// =============================================================================
// Token budget
// =============================================================================

// budgetedSummarizer truncates the prompt to a token budget before
// delegating to the wrapped Summarizer.
type budgetedSummarizer struct {
	next      Summarizer
	counter   TokenCounter
	maxTokens int
}

// WithTokenBudget wraps a Summarizer with an input token budget.
// A non-positive maxTokens disables truncation.
func WithTokenBudget(next Summarizer, counter TokenCounter, maxTokens int) Summarizer {
	if maxTokens <= 0 || counter == nil {
		return next
	}
	return &budgetedSummarizer{next: next, counter: counter, maxTokens: maxTokens}
}

func (b *budgetedSummarizer) Summarize(ctx context.Context, prompt string) (*Summary, error) {
	truncated, err := b.counter.Truncate(prompt, b.maxTokens)
	if err != nil {
		// Counting failed; send the prompt as-is and let the provider
		// enforce its own limits.
		return b.next.Summarize(ctx, prompt)
	}
	return b.next.Summarize(ctx, truncated)
}
