// Package executor runs scenarios in order against the shared session.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/devicelab-dev/appium-steps/pkg/feature"
	"github.com/devicelab-dev/appium-steps/pkg/logger"
	"github.com/devicelab-dev/appium-steps/pkg/page"
	"github.com/devicelab-dev/appium-steps/pkg/steps"
)

// Scope decides when the shared session is released.
type Scope string

const (
	// ScopeRun keeps one session for the whole run.
	ScopeRun Scope = "run"
	// ScopeScenario releases the session after every scenario.
	ScopeScenario Scope = "scenario"
)

// SessionManager acquires and releases the shared session.
// *session.Manager implements it.
type SessionManager interface {
	Acquire(ctx context.Context) (core.Session, error)
	Release() error
}

// RunnerConfig configures the scenario runner.
type RunnerConfig struct {
	Manager      SessionManager
	Registry     *steps.Registry
	Catalog      *page.Catalog
	ImplicitWait time.Duration     // 0 uses core.DefaultImplicitWait
	Scope        Scope             // default ScopeRun
	Env          map[string]string // overrides feature env
	ArtifactsDir string            // failure screenshots and UI trees; empty disables writing
	StopOnFail   bool              // skip remaining scenarios after the first failure

	// Live progress callbacks
	OnScenarioStart func(idx, total int, name, file string)
	OnStepComplete  func(idx int, desc string, status core.StepStatus, d time.Duration, err string)
	OnScenarioEnd   func(name string, status core.StepStatus, d time.Duration)
}

// RunResult contains the outcome of a test run.
type RunResult struct {
	RunID            string
	Status           core.StepStatus
	TotalScenarios   int
	PassedScenarios  int
	FailedScenarios  int
	SkippedScenarios int
	StartTime        time.Time
	Duration         time.Duration
	Scenarios        []core.ScenarioResult
}

// Runner executes scenarios one at a time, in file order.
type Runner struct {
	config RunnerConfig
	runID  string
}

// New creates a new Runner.
func New(cfg RunnerConfig) *Runner {
	if cfg.Scope == "" {
		cfg.Scope = ScopeRun
	}
	if cfg.Registry == nil {
		cfg.Registry = steps.NewRegistry()
	}
	return &Runner{config: cfg}
}

type job struct {
	feature  *feature.Feature
	scenario *feature.Scenario
}

// Run executes every scenario of features. The session is released when Run
// returns, whatever the outcome. A fatal error (configuration or session
// creation) stops the run; it is returned along with the partial result.
func (r *Runner) Run(ctx context.Context, features []*feature.Feature) (*RunResult, error) {
	r.runID = uuid.NewString()
	start := time.Now()

	var jobs []job
	for _, f := range features {
		for _, sc := range f.Scenarios {
			jobs = append(jobs, job{feature: f, scenario: sc})
		}
	}

	defer func() {
		if r.config.Manager == nil {
			return
		}
		if relErr := r.config.Manager.Release(); relErr != nil {
			logger.Warn("Releasing session at run end: %v", relErr)
		}
	}()

	logger.Info("Run %s: %d scenarios", r.runID, len(jobs))

	results := make([]core.ScenarioResult, len(jobs))
	var fatal error
	stopped := false
	for i, j := range jobs {
		if fatal != nil || stopped || ctx.Err() != nil {
			results[i] = skippedScenario(j, "run stopped")
			continue
		}

		if r.config.OnScenarioStart != nil {
			r.config.OnScenarioStart(i, len(jobs), j.scenario.Name, j.feature.SourcePath)
		}

		res, scErr := r.runScenario(ctx, j)
		results[i] = res

		if r.config.OnScenarioEnd != nil {
			r.config.OnScenarioEnd(res.Name, res.Status, res.Duration)
		}

		if core.IsFatal(scErr) {
			logger.Error("Run aborted: %v", scErr)
			fatal = scErr
		}
		if r.config.StopOnFail && res.Status.IsFailure() {
			stopped = true
		}
	}

	result := buildRunResult(results)
	result.RunID = r.runID
	result.StartTime = start
	result.Duration = time.Since(start)
	return result, fatal
}

// BeforeScenario acquires the shared session and prepares a fresh world.
func (r *Runner) BeforeScenario(ctx context.Context) (*steps.World, error) {
	return steps.NewWorld(ctx, steps.WorldConfig{
		Manager:      r.config.Manager,
		Catalog:      r.config.Catalog,
		ImplicitWait: r.config.ImplicitWait,
	})
}

// AfterScenario releases the session when sessions are scenario scoped.
// A scenario that lost its connection also releases it, so the next
// scenario starts on a new session.
func (r *Runner) AfterScenario(scenarioErr error) error {
	if r.config.Manager == nil {
		return nil
	}
	if r.config.Scope == ScopeScenario || core.CategoryOf(scenarioErr) == core.ErrCategoryConnection {
		return r.config.Manager.Release()
	}
	return nil
}

func skippedScenario(j job, reason string) core.ScenarioResult {
	res := core.ScenarioResult{
		Name:     j.scenario.Name,
		Feature:  j.feature.Name,
		FilePath: j.feature.SourcePath,
		Tags:     j.scenario.Tags,
		Status:   core.StatusSkipped,
		Error:    reason,
	}
	for i, st := range j.feature.Steps(j.scenario) {
		res.Steps = append(res.Steps, core.StepResult{
			Index:   i,
			Keyword: st.Keyword,
			Text:    st.Text,
			Line:    st.Line,
			Status:  core.StatusSkipped,
		})
	}
	res.ComputeSummary()
	return res
}

// buildRunResult aggregates scenario results into a run result.
func buildRunResult(scenarios []core.ScenarioResult) *RunResult {
	result := &RunResult{
		TotalScenarios: len(scenarios),
		Scenarios:      scenarios,
		Status:         core.StatusPassed,
	}

	for _, sc := range scenarios {
		switch {
		case sc.Status == core.StatusPassed:
			result.PassedScenarios++
		case sc.Status == core.StatusSkipped:
			result.SkippedScenarios++
		case sc.Status.IsFailure():
			result.FailedScenarios++
		}
	}

	if result.FailedScenarios > 0 {
		result.Status = core.StatusFailed
	}
	return result
}
