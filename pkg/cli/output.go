package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/devicelab-dev/appium-steps/pkg/core"
	"github.com/devicelab-dev/appium-steps/pkg/executor"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// Steps slower than this are flagged in the live output.
const slowThreshold = 5 * time.Second

// colorsEnabled reports whether ANSI colors should be used on w. Only a
// terminal gets colors.
func colorsEnabled(w io.Writer, noANSI bool) bool {
	if noANSI || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printer writes live progress and the run summary.
type printer struct {
	w      io.Writer
	colors bool
}

func (p *printer) color(c string) string {
	if p.colors {
		return c
	}
	return ""
}

func (p *printer) onScenarioStart(idx, total int, name, file string) {
	fmt.Fprintf(p.w, "\n  %s[%d/%d]%s %s%s%s (%s)\n",
		p.color(colorCyan), idx+1, total, p.color(colorReset),
		p.color(colorBold), name, p.color(colorReset), file)
	fmt.Fprintln(p.w, strings.Repeat("─", 60))
}

func (p *printer) onStepComplete(_ int, desc string, status core.StepStatus, d time.Duration, errMsg string) {
	dur := formatDuration(d)
	switch {
	case status == core.StatusPassed && d >= slowThreshold:
		fmt.Fprintf(p.w, "    %s⚠%s %s %s(%s)%s\n", p.color(colorYellow), p.color(colorReset), desc, p.color(colorYellow), dur, p.color(colorReset))
	case status == core.StatusPassed:
		fmt.Fprintf(p.w, "    %s✓%s %s (%s)\n", p.color(colorGreen), p.color(colorReset), desc, dur)
	case status == core.StatusUndefined:
		fmt.Fprintf(p.w, "    %s?%s %s\n", p.color(colorYellow), p.color(colorReset), desc)
	default:
		fmt.Fprintf(p.w, "    %s✗%s %s (%s)\n", p.color(colorRed), p.color(colorReset), desc, dur)
	}
	if errMsg != "" {
		fmt.Fprintf(p.w, "      %s╰─%s %s\n", p.color(colorGray), p.color(colorReset), errMsg)
	}
}

func (p *printer) onScenarioEnd(name string, status core.StepStatus, d time.Duration) {
	symbol, c := "✓", colorGreen
	if status.IsFailure() {
		symbol, c = "✗", colorRed
	}
	fmt.Fprintf(p.w, "  %s%s %s%s %s(%s)%s\n", p.color(c), symbol, name, p.color(colorReset),
		p.color(colorGray), formatDuration(d), p.color(colorReset))
}

func (p *printer) summary(result *executor.RunResult) {
	fmt.Fprintf(p.w, "\n%sSummary%s\n", p.color(colorBold), p.color(colorReset))
	fmt.Fprintf(p.w, "  Scenarios: %d total, %s%d passed%s, %s%d failed%s, %d skipped\n",
		result.TotalScenarios,
		p.color(colorGreen), result.PassedScenarios, p.color(colorReset),
		p.color(colorRed), result.FailedScenarios, p.color(colorReset),
		result.SkippedScenarios)
	fmt.Fprintf(p.w, "  Duration:  %s\n", formatDuration(result.Duration))
	fmt.Fprintf(p.w, "  Run ID:    %s\n", result.RunID)

	for _, sc := range result.Scenarios {
		if !sc.Status.IsFailure() {
			continue
		}
		fmt.Fprintf(p.w, "\n  %s✗ %s%s (%s)\n", p.color(colorRed), sc.Name, p.color(colorReset), sc.FilePath)
		if sc.FailedStep != "" {
			fmt.Fprintf(p.w, "    step:  %s\n", sc.FailedStep)
		}
		if sc.Error != "" {
			fmt.Fprintf(p.w, "    error: %s\n", sc.Error)
		}
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
