package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/appium-steps/pkg/steps"
	"github.com/devicelab-dev/appium-steps/pkg/validator"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Check that scenario files parse and every step is defined",
	ArgsUsage: "<feature-file-or-folder>...",
	Flags:     tagFlags,
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("at least one feature file or folder is required")
		}
		p := &printer{w: c.App.Writer, colors: colorsEnabled(c.App.Writer, c.Bool("no-ansi"))}
		v := validator.New(steps.Default(), c.StringSlice("include-tags"), c.StringSlice("exclude-tags"))

		var files, scenarios, problems int
		for _, path := range c.Args().Slice() {
			result := v.Validate(path)
			files += len(result.Files)
			scenarios += result.Scenarios
			for _, err := range result.Errors {
				problems++
				fmt.Fprintf(p.w, "  %s✗%s %v\n", p.color(colorRed), p.color(colorReset), err)
			}
		}

		if problems > 0 {
			return fmt.Errorf("%d problem(s) found", problems)
		}
		fmt.Fprintf(p.w, "  %s✓%s %d file(s), %d scenario(s) valid\n", p.color(colorGreen), p.color(colorReset), files, scenarios)
		return nil
	},
}
