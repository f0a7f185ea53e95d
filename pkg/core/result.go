package core

import (
	"time"
)

// StepResult captures the outcome of executing a single scenario step
type StepResult struct {
	// Identity
	Index   int    `json:"index"`   // 0-based position in scenario (background steps first)
	Keyword string `json:"keyword"` // Given, When, Then, And, But
	Text    string `json:"text"`    // Step text after variable expansion
	Line    int    `json:"line,omitempty"`

	// Status
	Status   StepStatus    `json:"status"`
	Category ErrorCategory `json:"errorCategory,omitempty"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Error details
	Error string `json:"error,omitempty"`

	// Debug artifacts captured when the step failed
	Attachments []Attachment `json:"attachments,omitempty"`
}

// ScenarioResult captures the outcome of executing one scenario
type ScenarioResult struct {
	// Identity
	Name     string   `json:"name"`
	Feature  string   `json:"feature"`
	FilePath string   `json:"filePath"`
	Tags     []string `json:"tags,omitempty"`

	// SessionID is the backend session the scenario ran against
	SessionID string `json:"sessionId,omitempty"`

	// Status (aggregated from steps)
	Status StepStatus `json:"status"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Results
	Steps []StepResult `json:"steps"`

	// Summary (computed)
	TotalSteps     int `json:"totalSteps"`
	PassedSteps    int `json:"passedSteps"`
	FailedSteps    int `json:"failedSteps"`
	SkippedSteps   int `json:"skippedSteps"`
	UndefinedSteps int `json:"undefinedSteps"`

	// Error info (if scenario failed)
	Error      string `json:"error,omitempty"`
	FailedStep string `json:"failedStep,omitempty"`
}

// ComputeSummary calculates step counts from the Steps slice
func (r *ScenarioResult) ComputeSummary() {
	r.TotalSteps = len(r.Steps)
	r.PassedSteps = 0
	r.FailedSteps = 0
	r.SkippedSteps = 0
	r.UndefinedSteps = 0

	for _, step := range r.Steps {
		switch step.Status {
		case StatusPassed:
			r.PassedSteps++
		case StatusFailed, StatusErrored:
			r.FailedSteps++
		case StatusSkipped:
			r.SkippedSteps++
		case StatusUndefined:
			r.UndefinedSteps++
		}
	}
}

// AggregateStatus determines the scenario status from step results.
// The first failing step decides; a scenario with no steps passes.
func (r *ScenarioResult) AggregateStatus() StepStatus {
	for _, step := range r.Steps {
		if step.Status.IsFailure() {
			return step.Status
		}
	}
	return StatusPassed
}
