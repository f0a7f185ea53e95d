// Package cli provides the command-line interface for appium-steps.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// errTestsFailed signals a completed run with failures; it has already been
// reported, so Execute only sets the exit status.
var errTestsFailed = errors.New("tests failed")

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"APPIUM_STEPS_VERBOSE"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write the run log to this file",
		EnvVars: []string{"APPIUM_STEPS_LOG_FILE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// NewApp builds the CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "appium-steps",
		Usage:   "Run Gherkin-style mobile UI scenarios through Appium",
		Version: Version,
		Description: `appium-steps runs human-readable scenarios against a mobile app
driven by an Appium server, resolving page-model locators on the live UI tree.

Examples:
  appium-steps test features/
  appium-steps test login.feature -e EMAIL=a@b.com --implicit-wait 10s
  appium-steps validate features/
  appium-steps pages --pages pages.yaml`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			testCommand,
			validateCommand,
			pagesCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
