package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/appium-steps/pkg/config"
	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/devicelab-dev/appium-steps/pkg/driver/appium"
	"github.com/devicelab-dev/appium-steps/pkg/executor"
	"github.com/devicelab-dev/appium-steps/pkg/feature"
	"github.com/devicelab-dev/appium-steps/pkg/logger"
	"github.com/devicelab-dev/appium-steps/pkg/page"
	"github.com/devicelab-dev/appium-steps/pkg/screens"
	"github.com/devicelab-dev/appium-steps/pkg/session"
	"github.com/devicelab-dev/appium-steps/pkg/steps"
)

var pagesFlag = &cli.StringFlag{
	Name:    "pages",
	Usage:   "YAML file with additional page models",
	EnvVars: []string{"APPIUM_STEPS_PAGES"},
}

var tagFlags = []cli.Flag{
	&cli.StringSliceFlag{
		Name:  "include-tags",
		Usage: "Only include scenarios with these tags",
	},
	&cli.StringSliceFlag{
		Name:  "exclude-tags",
		Usage: "Exclude scenarios with these tags",
	},
}

var testCommand = &cli.Command{
	Name:      "test",
	Usage:     "Run scenarios against the app through Appium",
	ArgsUsage: "<feature-file-or-folder>...",
	Description: `Run one or more scenario files (.feature, .yaml) in order against a single
Appium session.

Configuration is read from application.properties (see --config). The run stops
before any scenario if the configuration is missing or incomplete.

Examples:
  appium-steps test features/
  appium-steps test login.feature -e EMAIL=a@b.com -e SENHA=secret
  appium-steps test features/ --include-tags smoke --session-scope scenario`,
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to application.properties",
			EnvVars: []string{config.EnvConfigPath},
		},
		pagesFlag,
		&cli.StringFlag{
			Name:    "appium-url",
			Usage:   "Appium server URL",
			Value:   appium.DefaultServerURL,
			EnvVars: []string{"APPIUM_URL"},
		},
		&cli.DurationFlag{
			Name:  "implicit-wait",
			Usage: "How long element lookups wait before failing",
			Value: core.DefaultImplicitWait,
		},
		&cli.StringFlag{
			Name:  "session-scope",
			Usage: "When to close the session: run or scenario",
			Value: string(executor.ScopeRun),
		},
		&cli.StringSliceFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage:   "Variables for step text (KEY=VALUE)",
		},
		&cli.StringFlag{
			Name:  "artifacts-dir",
			Usage: "Write screenshots and UI trees of failed steps here",
		},
		&cli.BoolFlag{
			Name:  "stop-on-fail",
			Usage: "Skip remaining scenarios after the first failure",
		},
	}, tagFlags...),
	Action: runTest,
}

// RunConfig holds the resolved options of one test run.
type RunConfig struct {
	Paths        []string
	ConfigPath   string
	PagesPath    string
	AppiumURL    string
	ImplicitWait time.Duration
	Scope        executor.Scope
	Env          map[string]string
	IncludeTags  []string
	ExcludeTags  []string
	ArtifactsDir string
	StopOnFail   bool
	NoANSI       bool
}

func runTest(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("at least one feature file or folder is required")
	}

	closeLog, err := setupLogging(c)
	if err != nil {
		return err
	}
	defer closeLog()

	scope := executor.Scope(c.String("session-scope"))
	if scope != executor.ScopeRun && scope != executor.ScopeScenario {
		return fmt.Errorf("invalid --session-scope %q (want run or scenario)", scope)
	}

	cfg := &RunConfig{
		Paths:        c.Args().Slice(),
		ConfigPath:   c.String("config"),
		PagesPath:    c.String("pages"),
		AppiumURL:    c.String("appium-url"),
		ImplicitWait: c.Duration("implicit-wait"),
		Scope:        scope,
		Env:          parseEnvVars(c.StringSlice("env")),
		IncludeTags:  c.StringSlice("include-tags"),
		ExcludeTags:  c.StringSlice("exclude-tags"),
		ArtifactsDir: c.String("artifacts-dir"),
		StopOnFail:   c.Bool("stop-on-fail"),
		NoANSI:       c.Bool("no-ansi"),
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return executeTest(ctx, cfg, c.App.Writer)
}

func executeTest(ctx context.Context, cfg *RunConfig, out io.Writer) error {
	p := &printer{w: out, colors: colorsEnabled(out, cfg.NoANSI)}

	// Configuration problems abort before any scenario starts
	path, err := config.ResolvePath(cfg.ConfigPath)
	if err != nil {
		return err
	}
	provider := config.NewProvider(path)
	if _, err := provider.Load(); err != nil {
		return err
	}
	platform, _ := provider.Get(config.KeyPlatformName)
	logger.Info("Configuration loaded from %s (platform %s)", path, platform)

	catalog, err := loadCatalog(cfg.PagesPath)
	if err != nil {
		return err
	}

	features, err := feature.Load(cfg.Paths, cfg.IncludeTags, cfg.ExcludeTags)
	if err != nil {
		return err
	}
	if len(features) == 0 {
		return fmt.Errorf("no scenarios to run")
	}

	manager := session.NewManager(appium.NewOpener(cfg.AppiumURL), provider)
	runner := executor.New(executor.RunnerConfig{
		Manager:         manager,
		Registry:        steps.Default(),
		Catalog:         catalog,
		ImplicitWait:    cfg.ImplicitWait,
		Scope:           cfg.Scope,
		Env:             cfg.Env,
		ArtifactsDir:    cfg.ArtifactsDir,
		StopOnFail:      cfg.StopOnFail,
		OnScenarioStart: p.onScenarioStart,
		OnStepComplete:  p.onStepComplete,
		OnScenarioEnd:   p.onScenarioEnd,
	})

	result, runErr := runner.Run(ctx, features)
	if result != nil {
		p.summary(result)
	}
	if runErr != nil {
		return runErr
	}
	if result.Status.IsFailure() {
		return errTestsFailed
	}
	return nil
}

// loadCatalog returns the built-in screens plus any models from path.
func loadCatalog(path string) (*page.Catalog, error) {
	catalog := screens.Catalog()
	if path == "" {
		return catalog, nil
	}
	extra, err := page.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	catalog.Merge(extra)
	return catalog, nil
}

// setupLogging points the run log at --log-file, or at stderr with --verbose.
func setupLogging(c *cli.Context) (func(), error) {
	logger.SetVerbose(c.Bool("verbose"))
	switch {
	case c.String("log-file") != "":
		if err := logger.Init(c.String("log-file")); err != nil {
			return nil, err
		}
	case c.Bool("verbose"):
		logger.InitWriter(c.App.ErrWriter)
	default:
		logger.InitWriter(io.Discard)
	}
	return logger.Close, nil
}

// parseEnvVars turns KEY=VALUE pairs into a map. Entries without "=" are ignored.
func parseEnvVars(pairs []string) map[string]string {
	env := make(map[string]string)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		env[strings.TrimSpace(key)] = value
	}
	return env
}
