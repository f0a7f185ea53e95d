package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExecutionError_ErrorWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrSessionCreation.WithCause(cause)

	got := err.Error()
	if !strings.Contains(got, "could not create automation session") {
		t.Errorf("Error() = %q, missing message", got)
	}
	if !strings.Contains(got, "connection refused") {
		t.Errorf("Error() = %q, missing cause", got)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestExecutionError_IsMatchesCopies(t *testing.T) {
	err := ErrElementNotFound.
		WithMessage("element not found: //x").
		WithDetails(map[string]interface{}{"locator": "//x"}).
		WithCause(errors.New("no such element"))

	if !errors.Is(err, ErrElementNotFound) {
		t.Error("copy should match ErrElementNotFound")
	}
	if errors.Is(err, ErrAssertionFailed) {
		t.Error("copy should not match ErrAssertionFailed")
	}

	wrapped := fmt.Errorf("step failed: %w", err)
	if !errors.Is(wrapped, ErrElementNotFound) {
		t.Error("wrapped copy should match ErrElementNotFound")
	}
}

func TestExecutionError_WithDetailsMerges(t *testing.T) {
	base := ErrElementNotFound.WithDetails(map[string]interface{}{"a": 1})
	merged := base.WithDetails(map[string]interface{}{"b": 2})

	if merged.Details["a"] != 1 || merged.Details["b"] != 2 {
		t.Errorf("Details = %v", merged.Details)
	}
	if _, ok := base.Details["b"]; ok {
		t.Error("WithDetails mutated the original")
	}
	if ErrElementNotFound.Details != nil {
		t.Error("sentinel was mutated")
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("x"), false},
		{"configuration", ErrConfiguration.WithMessage("missing key"), true},
		{"session", ErrSessionCreation, true},
		{"session wrapping config", ErrSessionCreation.WithCause(ErrConfiguration), true},
		{"element", ErrElementNotFound, false},
		{"assertion", ErrAssertionFailed, false},
		{"connection", ErrServerUnreachable, false},
		{"assertion wrapping config", ErrAssertionFailed.WithCause(ErrConfiguration), true},
		{"wrapped", fmt.Errorf("setup: %w", ErrConfiguration), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want StepStatus
	}{
		{nil, StatusPassed},
		{ErrElementNotFound, StatusFailed},
		{ErrAssertionFailed, StatusFailed},
		{ErrUndefinedStep, StatusUndefined},
		{ErrAmbiguousStep, StatusUndefined},
		{ErrServerUnreachable, StatusErrored},
		{context.Canceled, StatusErrored},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestCategoryOf(t *testing.T) {
	if got := CategoryOf(nil); got != ErrCategoryNone {
		t.Errorf("CategoryOf(nil) = %s", got)
	}
	if got := CategoryOf(fmt.Errorf("x: %w", ErrAssertionFailed)); got != ErrCategoryAssertion {
		t.Errorf("CategoryOf = %s, want assertion", got)
	}
}
