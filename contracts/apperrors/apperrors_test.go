package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindSentinelsMatchDeclaredErrors(t *testing.T) {
	duplicate := New(KindConflict, "duplicate")
	wrapped := fmt.Errorf("cast vote: %w", duplicate)

	if !errors.Is(wrapped, ErrConflict) {
		t.Fatalf("expected wrapped error to match conflict kind")
	}
	if !errors.Is(wrapped, duplicate) {
		t.Fatalf("expected wrapped error to match its own sentinel")
	}
	if errors.Is(wrapped, ErrState) {
		t.Fatalf("conflict error must not match state kind")
	}
	if errors.Is(wrapped, New(KindConflict, "duplicate")) {
		t.Fatalf("distinct sentinels with the same text must not match")
	}
}

func TestInvalidCarriesField(t *testing.T) {
	err := fmt.Errorf("validate: %w", Invalid("commit_hash", "must be 40 hex characters"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation kind")
	}
	if got := FieldOf(err); got != "commit_hash" {
		t.Fatalf("expected commit_hash field, got %q", got)
	}
	kind, ok := KindOf(err)
	if !ok || kind != KindValidation {
		t.Fatalf("expected validation kind, got %q", kind)
	}
	if err.Error() != "validate: commit_hash: must be 40 hex characters" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if _, ok := KindOf(errors.New("boom")); ok {
		t.Fatalf("plain errors carry no kind")
	}
}
