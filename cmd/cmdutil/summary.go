package cmdutil

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/LegacyCodeHQ/quire/executor"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"}
	colorError   = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"}

	okStyle     = lipgloss.NewStyle().Foreground(colorSuccess)
	failedStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	nameStyle   = lipgloss.NewStyle().Width(28)
)

// WriteSummary prints one line per step of report followed by a total. Aggregate
// steps are left out.
func WriteSummary(w io.Writer, verb string, report *executor.Report, elapsed time.Duration) {
	if report == nil {
		return
	}

	results := make([]executor.Result, 0, len(report.Results))
	for _, result := range report.Results {
		if result.Kind.IsAggregate() {
			continue
		}
		results = append(results, result)
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Step < results[j].Step })

	for _, result := range results {
		duration := mutedStyle.Render(result.Duration.Round(time.Millisecond).String())
		if result.Err != nil {
			fmt.Fprintf(w, "%s %s %s\n", failedStyle.Render("✗"), nameStyle.Render(result.Step), duration)
			continue
		}
		fmt.Fprintf(w, "%s %s %s\n", okStyle.Render("✓"), nameStyle.Render(result.Step), duration)
	}

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}

	total := fmt.Sprintf("%s %d steps in %s", verb, len(results)-failed, elapsed.Round(time.Millisecond))
	if failed > 0 {
		fmt.Fprintln(w, failedStyle.Render(fmt.Sprintf("%s, %d failed", total, failed)))
		return
	}
	fmt.Fprintln(w, okStyle.Render(total))
}
