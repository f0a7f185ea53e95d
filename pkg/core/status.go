package core

// StepStatus represents the execution status of a step or scenario
type StepStatus int

const (
	StatusPending   StepStatus = iota // Not yet started
	StatusRunning                     // Currently executing
	StatusPassed                      // Completed successfully
	StatusFailed                      // Assertion failed or element could not be resolved
	StatusErrored                     // Infrastructure failure (session, connection)
	StatusSkipped                     // A previous step in the scenario failed
	StatusUndefined                   // No step definition matched the step text
)

// String returns the string representation of StepStatus
func (s StepStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusErrored:
		return "errored"
	case StatusSkipped:
		return "skipped"
	case StatusUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the status is a final state
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusErrored, StatusSkipped, StatusUndefined:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the status indicates success
func (s StepStatus) IsSuccess() bool {
	return s == StatusPassed
}

// IsFailure returns true for statuses that fail a scenario
func (s StepStatus) IsFailure() bool {
	return s == StatusFailed || s == StatusErrored || s == StatusUndefined
}

// ErrorCategory classifies the type of error for reporting and for deciding
// whether a failure ends the scenario or the whole run.
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategoryConfig                          // Missing or unreadable settings
	ErrCategorySession                         // Session could not be created
	ErrCategoryElement                         // Locator did not resolve within the wait bound
	ErrCategoryAssertion                       // Step precondition/postcondition did not hold
	ErrCategoryConnection                      // Backend connection lost mid-scenario
	ErrCategoryStep                            // Undefined or ambiguous step text
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryConfig:
		return "config"
	case ErrCategorySession:
		return "session"
	case ErrCategoryElement:
		return "element"
	case ErrCategoryAssertion:
		return "assertion"
	case ErrCategoryConnection:
		return "connection"
	case ErrCategoryStep:
		return "step"
	default:
		return "unknown"
	}
}

// IsFatal reports whether errors of this category abort the whole run.
func (c ErrorCategory) IsFatal() bool {
	return c == ErrCategoryConfig || c == ErrCategorySession
}
