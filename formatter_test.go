package conform

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/broadcastkit/conform/exitcodes"
	"github.com/broadcastkit/conform/reporting"
	"github.com/broadcastkit/conform/types"
)

func summaryOf(outcomes ...types.Outcome) reporting.Summary {
	results := make([]types.Result, 0, len(outcomes))
	for i, o := range outcomes {
		results = append(results, types.Result{Name: string(rune('a' + i)), Outcome: o})
	}
	return reporting.Summarize(results)
}

func TestExitCodeForSummary(t *testing.T) {
	assert.Equal(t, exitcodes.Success, ExitCodeForSummary(summaryOf(types.OutcomePass, types.OutcomeManual)))
	assert.Equal(t, exitcodes.Success, ExitCodeForSummary(summaryOf(types.OutcomeNA, types.OutcomeDisabled, types.OutcomeOptional)))
	assert.Equal(t, exitcodes.Warning, ExitCodeForSummary(summaryOf(types.OutcomePass, types.OutcomeWarning)))
	assert.Equal(t, exitcodes.TestFailure, ExitCodeForSummary(summaryOf(types.OutcomePass, types.OutcomeFail)))
	assert.Equal(t, exitcodes.TestFailure, ExitCodeForSummary(summaryOf(types.OutcomeWarning, types.OutcomeError)))
	assert.Equal(t, exitcodes.TestFailure, ExitCodeForSummary(summaryOf(types.OutcomeUnclear)))
	assert.Equal(t, exitcodes.Success, ExitCodeForSummary(summaryOf()))
}

func TestPrintResultsTable(t *testing.T) {
	base := time.Now()
	report := reporting.NewReport("connection", "run-1", nil, []types.Result{
		{Name: "case_01", Outcome: types.OutcomePass, StartTime: base, EndTime: base.Add(time.Second)},
		{Name: "case_02", Outcome: types.OutcomeFail, Detail: "wrong status code", StartTime: base, EndTime: base.Add(time.Second)},
	}, nil)

	var buf bytes.Buffer
	printResultsTable(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "case_01")
	assert.Contains(t, out, "case_02")
	assert.Contains(t, out, "wrong status code")
	assert.Contains(t, out, "TOTAL: 2")
}

func TestSummaryCounts(t *testing.T) {
	s := summaryOf(types.OutcomePass, types.OutcomePass, types.OutcomeFail, types.OutcomeWarning)
	out := summaryCounts(s)
	assert.Contains(t, out, "1 fail")
	assert.Contains(t, out, "1 warning")
	assert.Contains(t, out, "2 pass")
}
