package types

import (
	"fmt"
	"time"
)

// ToolType identifies which external tool a run is routed to.
type ToolType string

const (
	// ToolWebSearch routes the prompt to the web search collaborator.
	ToolWebSearch ToolType = "web-search"
	// ToolCalculator routes the prompt to the expression evaluator.
	ToolCalculator ToolType = "calculator"
)

// ParseToolType validates a raw tool string.
func ParseToolType(s string) (ToolType, error) {
	switch ToolType(s) {
	case ToolWebSearch:
		return ToolWebSearch, nil
	case ToolCalculator:
		return ToolCalculator, nil
	default:
		return "", fmt.Errorf("unknown tool type %q", s)
	}
}

// Valid reports whether t is a known tool type.
func (t ToolType) Valid() bool {
	return t == ToolWebSearch || t == ToolCalculator
}

// RunRequest is a validated query request. Immutable once validated.
type RunRequest struct {
	UserID string   `json:"user_id"`
	Tool   ToolType `json:"tool"`
	Prompt string   `json:"prompt"`
}

// SearchResult is a single web search hit.
type SearchResult struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// ToolOutput is the tool-specific payload of a run, tagged by Tool.
// Exactly one of Results (web-search) or Value (calculator) is populated.
type ToolOutput struct {
	Tool    ToolType       `json:"tool"`
	Results []SearchResult `json:"results,omitempty"`
	Value   string         `json:"result,omitempty"`
}

// Validate checks that the payload matches its tag.
func (o ToolOutput) Validate() error {
	switch o.Tool {
	case ToolWebSearch:
		if len(o.Results) == 0 {
			return fmt.Errorf("web-search output has no results")
		}
		if o.Value != "" {
			return fmt.Errorf("web-search output carries a calculator value")
		}
	case ToolCalculator:
		if o.Value == "" {
			return fmt.Errorf("calculator output has no value")
		}
		if len(o.Results) != 0 {
			return fmt.Errorf("calculator output carries search results")
		}
	default:
		return fmt.Errorf("unknown tool type %q", o.Tool)
	}
	return nil
}

// RunResult is the envelope produced exactly once per non-cached request.
// Its serialized form is what both the cache and the durable log persist.
type RunResult struct {
	UserID     string     `json:"user_id"`
	Prompt     string     `json:"prompt"`
	Output     ToolOutput `json:"output"`
	Summary    string     `json:"summary"`
	TokenCount int        `json:"token_count"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Tool returns the tool tag of the result.
func (r *RunResult) Tool() ToolType {
	return r.Output.Tool
}
