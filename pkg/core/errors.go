package core

import (
	"errors"
	"fmt"
)

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: element_not_found, configuration_error, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is matches another ExecutionError by code, so copies made with WithCause
// or WithMessage still match the predefined sentinel.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithMessagef is WithMessage with formatting.
func (e *ExecutionError) WithMessagef(format string, args ...interface{}) *ExecutionError {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Fatal for the run
	ErrConfiguration = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "configuration_error",
		Message:  "invalid configuration",
	}
	ErrSessionCreation = &ExecutionError{
		Category: ErrCategorySession,
		Code:     "session_creation_failed",
		Message:  "could not create automation session",
	}

	// Fatal for the current scenario only
	ErrElementNotFound = &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "element_not_found",
		Message:  "element not found",
	}
	ErrAssertionFailed = &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "assertion_failed",
		Message:  "assertion failed",
	}
	ErrServerUnreachable = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "server_unreachable",
		Message:  "could not reach automation server",
	}
	ErrNoSession = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "no_session",
		Message:  "automation session is closed",
	}
	ErrUndefinedStep = &ExecutionError{
		Category: ErrCategoryStep,
		Code:     "undefined_step",
		Message:  "no step definition matches",
	}
	ErrAmbiguousStep = &ExecutionError{
		Category: ErrCategoryStep,
		Code:     "ambiguous_step",
		Message:  "more than one step definition matches",
	}
)

// CategoryOf returns the category of the first ExecutionError in err's chain.
func CategoryOf(err error) ErrorCategory {
	if err == nil {
		return ErrCategoryNone
	}
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Category
	}
	return ErrCategoryNone
}

// IsFatal reports whether err must abort the run rather than just the scenario.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var execErr *ExecutionError
	for e := err; errors.As(e, &execErr); e = execErr.Cause {
		if execErr.Category.IsFatal() {
			return true
		}
	}
	return false
}

// StatusFor maps a step error onto the status recorded for that step.
func StatusFor(err error) StepStatus {
	switch CategoryOf(err) {
	case ErrCategoryNone:
		if err == nil {
			return StatusPassed
		}
		return StatusErrored
	case ErrCategoryElement, ErrCategoryAssertion:
		return StatusFailed
	case ErrCategoryStep:
		return StatusUndefined
	default:
		return StatusErrored
	}
}
