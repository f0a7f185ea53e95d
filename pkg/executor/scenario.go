package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/devicelab-dev/appium-steps/pkg/logger"
	"github.com/devicelab-dev/appium-steps/pkg/steps"
)

// runScenario executes one scenario. The returned error is the one that
// ended the scenario, nil when it passed.
func (r *Runner) runScenario(ctx context.Context, j job) (core.ScenarioResult, error) {
	start := time.Now()
	res := skippedScenario(j, "")
	res.Status = core.StatusRunning
	res.StartTime = start

	finish := func(status core.StepStatus, err error) (core.ScenarioResult, error) {
		res.Status = status
		if err != nil {
			res.Error = err.Error()
		}
		res.Duration = time.Since(start)
		res.ComputeSummary()
		logger.Info("Scenario %q %s in %s", res.Name, res.Status, res.Duration.Round(time.Millisecond))
		return res, err
	}

	world, err := r.BeforeScenario(ctx)
	if err != nil {
		if relErr := r.AfterScenario(err); relErr != nil {
			logger.Warn("Releasing session: %v", relErr)
		}
		return finish(core.StatusErrored, err)
	}
	res.SessionID = world.Session().ID()

	script := NewScriptEngine()
	script.ImportSystemEnv()
	script.SetPlatform(world.Session().Platform())
	script.SetVariables(j.feature.Env)
	script.SetVariables(r.config.Env)

	source := j.feature.Steps(j.scenario)

	var scenarioErr error
	for i := range res.Steps {
		step := &res.Steps[i]
		desc := strings.TrimSpace(step.Keyword + " " + step.Text)

		stepStart := time.Now()
		step.StartTime = stepStart

		err := r.executeStep(ctx, world, script, step, source[i].DocString)
		step.Duration = time.Since(stepStart)
		step.Status = core.StatusFor(err)
		step.Category = core.CategoryOf(err)

		if err != nil {
			step.Error = err.Error()
			logger.Error("Step %d %q failed: %v", i+1, desc, err)
			step.Attachments = r.captureArtifacts(ctx, world.Session(), res.Name, i)
		} else {
			logger.Debug("Step %d %q passed in %s", i+1, desc, step.Duration)
		}

		if r.config.OnStepComplete != nil {
			r.config.OnStepComplete(i, desc, step.Status, step.Duration, step.Error)
		}

		if err != nil {
			// Remaining steps stay skipped
			res.FailedStep = desc
			scenarioErr = err
			break
		}
	}

	if relErr := r.AfterScenario(scenarioErr); relErr != nil {
		logger.Warn("Releasing session: %v", relErr)
	}
	return finish(res.AggregateStatus(), scenarioErr)
}

// executeStep expands and dispatches one step. A doc string is expanded the
// same way and passed as the last argument.
func (r *Runner) executeStep(ctx context.Context, world *steps.World, script *ScriptEngine, step *core.StepResult, docString string) error {
	text, err := script.ExpandStep(step.Text)
	if err != nil {
		return err
	}
	step.Text = text

	def, args, err := r.config.Registry.Match(text)
	if err != nil {
		return err
	}
	if docString != "" {
		doc, err := script.ExpandStep(docString)
		if err != nil {
			return err
		}
		args = append(args, doc)
	}
	return def.Handler(ctx, world, args)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// captureArtifacts grabs failure artifacts and writes them under
// ArtifactsDir/<run id>/ when an artifacts dir is configured.
func (r *Runner) captureArtifacts(ctx context.Context, s core.Session, scenario string, stepIdx int) []core.Attachment {
	if r.config.ArtifactsDir == "" {
		return nil
	}
	attachments := core.CaptureFailureArtifacts(ctx, s)
	if len(attachments) == 0 {
		return nil
	}

	dir := filepath.Join(r.config.ArtifactsDir, r.runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("Creating artifacts dir: %v", err)
		return attachments
	}

	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(scenario), "-"), "-")
	for i := range attachments {
		ext := ".png"
		if attachments[i].Name == core.AttachmentSource {
			ext = ".xml"
		}
		path := filepath.Join(dir, fmt.Sprintf("%s-step%d-%s%s", slug, stepIdx+1, attachments[i].Name, ext))
		if err := os.WriteFile(path, attachments[i].Body, 0o644); err != nil {
			logger.Warn("Writing %s: %v", path, err)
			continue
		}
		attachments[i].Path = path
	}
	return attachments
}
