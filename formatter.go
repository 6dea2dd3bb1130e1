package conform

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/broadcastkit/conform/exitcodes"
	"github.com/broadcastkit/conform/reporting"
	"github.com/broadcastkit/conform/types"
)

// printResultsTable renders one run's results to w.
func printResultsTable(w io.Writer, report reporting.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Conformance Results: %s (%s)", report.Suite, formatDuration(report.Summary.Duration)))

	t.AppendHeader(table.Row{"Test", "Duration", "Outcome", "Detail"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Detail", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, res := range report.Results {
		t.AppendRow(table.Row{
			res.Name,
			formatDuration(res.Duration()),
			getResultString(res.Outcome),
			res.Detail,
		})
	}

	switch {
	case report.Summary.Worst.CountsAsFailure():
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case report.Summary.Worst == types.OutcomeWarning:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("TOTAL: %d", report.Summary.Total),
		formatDuration(report.Summary.Duration),
		getResultString(report.Summary.Worst),
		summaryCounts(report.Summary),
	})

	t.Render()
}

// getResultString returns a symbol-prefixed string for an outcome
func getResultString(outcome types.Outcome) string {
	switch outcome {
	case types.OutcomePass:
		return "✓ pass"
	case types.OutcomeWarning:
		return "! warning"
	case types.OutcomeFail:
		return "✗ fail"
	case types.OutcomeError:
		return "✗ error"
	case types.OutcomeUnclear:
		return "? unclear"
	default:
		return "- " + string(outcome)
	}
}

// summaryCounts renders the per-outcome counts of a summary, worst first.
func summaryCounts(s reporting.Summary) string {
	order := []types.Outcome{
		types.OutcomeFail, types.OutcomeError, types.OutcomeUnclear,
		types.OutcomeWarning, types.OutcomeOptional, types.OutcomeManual,
		types.OutcomeNA, types.OutcomeDisabled, types.OutcomePass,
	}
	out := ""
	for _, o := range order {
		if n := s.Counts[o]; n > 0 {
			if out != "" {
				out += ", "
			}
			out += fmt.Sprintf("%d %s", n, o)
		}
	}
	return out
}

// ExitCodeForSummary maps a run summary onto the process exit code scheme.
func ExitCodeForSummary(s reporting.Summary) int {
	switch {
	case s.Worst.CountsAsFailure():
		return exitcodes.TestFailure
	case s.Worst == types.OutcomeWarning:
		return exitcodes.Warning
	default:
		return exitcodes.Success
	}
}

// formatDuration formats a duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
