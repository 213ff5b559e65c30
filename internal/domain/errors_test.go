package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsCode_MatchesWrappedError(t *testing.T) {
	base := InvalidTransition("project.transition", "planned", "finalOrdered")
	wrapped := fmt.Errorf("apply decision: %w", base)

	if !IsCode(wrapped, CodeInvalidTransition) {
		t.Fatalf("expected wrapped error to match code %s", CodeInvalidTransition)
	}
	if IsCode(wrapped, CodeNotFound) {
		t.Fatalf("unexpected match on %s", CodeNotFound)
	}
	if IsCode(errors.New("plain"), CodeInvalidTransition) {
		t.Fatalf("plain error must not match a domain code")
	}
}

func TestCodeOf_AndTargetOf(t *testing.T) {
	err := MissingPrecondition("intervention.transition", "decisions", "a decision of type refused is required")
	if got := CodeOf(err); got != CodeMissingPrecondition {
		t.Fatalf("code: want=%s got=%s", CodeMissingPrecondition, got)
	}
	if got := TargetOf(err); got != "decisions" {
		t.Fatalf("target: want=decisions got=%s", got)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Fatalf("expected empty code for non-domain error, got %s", got)
	}
}

func TestCascadeFailure_PreservesCause(t *testing.T) {
	cause := errors.New("save failed")
	err := CascadeFailure("consistency.recompute", "programBook", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to survive wrapping")
	}
	if !IsCode(err, CodeCascadeFailure) {
		t.Fatalf("expected cascade_failure code")
	}
}

func TestWrap_NilErrorIsNil(t *testing.T) {
	if Wrap(CodeInternal, "history.create", nil) != nil {
		t.Fatalf("wrapping nil must return nil")
	}
}

func TestError_MessageFormat(t *testing.T) {
	err := ValidationError("project.validate", "interventionIds", "duplicate intervention id")
	msg := err.Error()
	if msg != "project.validate: duplicate intervention id (validation)" {
		t.Fatalf("unexpected message: %q", msg)
	}
}
