package errors

import (
	stderrors "errors"
	"net/http"
	"testing"
)

func TestErrorStringIncludesInternal(t *testing.T) {
	base := New("X", "outer", http.StatusBadRequest)
	wrapped := base.WithInternal(stderrors.New("inner"))

	if wrapped.Error() != "outer: inner" {
		t.Fatalf("unexpected error string: %q", wrapped.Error())
	}
	if base.Internal != nil {
		t.Fatal("WithInternal must not mutate the original error")
	}
}

func TestFromErrorPassesThroughAppErrors(t *testing.T) {
	err := NewBadRequest("nope")
	if got := FromError(err); got != err {
		t.Fatalf("expected identical AppError, got %+v", got)
	}
}

func TestFromErrorExposesRawMessage(t *testing.T) {
	got := FromError(stderrors.New("db exploded"))
	if got.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", got.StatusCode)
	}
	if got.Message != "db exploded" {
		t.Fatalf("message = %q, want raw error message", got.Message)
	}
}

func TestUnwrapSupportsErrorsIs(t *testing.T) {
	inner := stderrors.New("inner")
	wrapped := Wrap(inner, "boom")
	if !stderrors.Is(wrapped, inner) {
		t.Fatal("expected errors.Is to find the wrapped error")
	}
}
