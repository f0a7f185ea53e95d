// Package validator checks scenario files before execution: every file must
// parse and every step must match exactly one step definition. No device or
// server is needed.
package validator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/devicelab-dev/appium-steps/pkg/feature"
	"github.com/devicelab-dev/appium-steps/pkg/steps"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	File    string
	Line    int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Result contains the validation result.
type Result struct {
	// Files is the list of scenario file paths in execution order.
	Files []string
	// Scenarios counts the scenarios selected by the tag filters.
	Scenarios int
	// Errors contains all validation errors found.
	Errors []error
}

// IsValid returns true if there are no validation errors.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Validator validates scenario files against a step registry.
type Validator struct {
	registry    *steps.Registry
	includeTags []string
	excludeTags []string
}

// New creates a new Validator.
func New(registry *steps.Registry, includeTags, excludeTags []string) *Validator {
	return &Validator{
		registry:    registry,
		includeTags: includeTags,
		excludeTags: excludeTags,
	}
}

// Validate validates a file or directory.
func (v *Validator) Validate(path string) *Result {
	result := &Result{}

	info, err := os.Stat(path)
	if err != nil {
		result.Errors = append(result.Errors, &ValidationError{
			File:    path,
			Message: fmt.Sprintf("cannot access: %v", err),
		})
		return result
	}

	var files []string
	if info.IsDir() {
		files, err = collectScenarioFiles(path)
		if err != nil {
			result.Errors = append(result.Errors, &ValidationError{
				File:    path,
				Message: fmt.Sprintf("failed to scan directory: %v", err),
			})
			return result
		}
	} else {
		files = []string{path}
	}

	for _, file := range files {
		f, err := feature.ParseFile(file)
		if err != nil {
			result.Errors = append(result.Errors, toValidationError(file, err))
			continue
		}
		if !f.Filter(v.includeTags, v.excludeTags) {
			continue
		}
		result.Files = append(result.Files, file)
		result.Scenarios += len(f.Scenarios)
		result.Errors = append(result.Errors, v.checkSteps(f)...)
	}
	return result
}

// checkSteps reports undefined and ambiguous steps. Background steps are
// checked once; outline rows share step lines and are reported once per line.
func (v *Validator) checkSteps(f *feature.Feature) []error {
	var errs []error
	seen := make(map[int]bool)

	check := func(st feature.Step) {
		if seen[st.Line] && st.Line > 0 {
			return
		}
		seen[st.Line] = true
		if _, _, err := v.registry.Match(st.Text); err != nil {
			errs = append(errs, &ValidationError{File: f.SourcePath, Line: st.Line, Message: describe(st, err)})
		}
	}

	for _, st := range f.Background {
		check(st)
	}
	for _, sc := range f.Scenarios {
		for _, st := range sc.Steps {
			check(st)
		}
	}
	return errs
}

func describe(st feature.Step, err error) string {
	switch {
	case errors.Is(err, core.ErrUndefinedStep):
		return fmt.Sprintf("undefined step: %s", st)
	case errors.Is(err, core.ErrAmbiguousStep):
		var execErr *core.ExecutionError
		if errors.As(err, &execErr) {
			return fmt.Sprintf("ambiguous step: %s (matches %v)", st, execErr.Details["patterns"])
		}
		return fmt.Sprintf("ambiguous step: %s", st)
	default:
		return err.Error()
	}
}

func toValidationError(file string, err error) error {
	var perr *feature.ParseError
	if errors.As(err, &perr) {
		return &ValidationError{File: file, Line: perr.Line, Message: perr.Message}
	}
	return &ValidationError{File: file, Message: err.Error()}
}

// collectScenarioFiles returns scenario files under dir in lexical order.
func collectScenarioFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && feature.IsScenarioFile(path) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
