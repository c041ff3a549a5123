package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrUpstreamError, "upstream failed").
		WithCause(root).
		WithHTTPStatus(502).
		WithRetryable(true)

	if !IsErrorCode(err, ErrUpstreamError) {
		t.Fatalf("expected code %s", ErrUpstreamError)
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty error string")
	}
}

func TestAsError_WrapsPlainErrors(t *testing.T) {
	t.Parallel()

	plain := errors.New("boom")
	e := AsError(plain)
	if e.Code != ErrInternalError {
		t.Fatalf("expected INTERNAL_ERROR, got %s", e.Code)
	}
	if !errors.Is(e, plain) {
		t.Fatalf("expected cause preserved")
	}

	if AsError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestAsError_FindsWrappedStructuredError(t *testing.T) {
	t.Parallel()

	inner := NewError(ErrNoResults, "no search results found")
	wrapped := fmt.Errorf("dispatch: %w", inner)

	e := AsError(wrapped)
	if e.Code != ErrNoResults {
		t.Fatalf("expected NO_RESULTS through the wrap chain, got %s", e.Code)
	}
	if !IsErrorCode(wrapped, ErrNoResults) {
		t.Fatalf("IsErrorCode should see through fmt.Errorf wrapping")
	}
}
