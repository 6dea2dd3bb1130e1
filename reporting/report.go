package reporting

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/broadcastkit/conform/types"
)

// Report is the finished, export-ready form of one run.
type Report struct {
	Suite     string
	RunID     string
	Timestamp time.Time
	Endpoints []types.Endpoint
	Results   []types.Result
	Summary   Summary
}

// NewReport snapshots a collector into an exportable report. Case names in
// the ignore list are reported as disabled, and excluded from exit-status
// evaluation by Summarize running over the rewritten outcomes.
func NewReport(suiteID, runID string, endpoints []types.Endpoint, results []types.Result, ignore []string) Report {
	ignored := make(map[string]struct{}, len(ignore))
	for _, name := range ignore {
		ignored[name] = struct{}{}
	}

	out := make([]types.Result, len(results))
	copy(out, results)
	for i, r := range out {
		if _, skip := ignored[r.Name]; skip {
			out[i].Outcome = types.OutcomeDisabled
			out[i].Detail = "Test result ignored by run configuration"
		}
	}

	return Report{
		Suite:     suiteID,
		RunID:     runID,
		Timestamp: time.Now(),
		Endpoints: endpoints,
		Results:   out,
		Summary:   Summarize(out),
	}
}

// WriteFile writes the report in the format implied by the file extension:
// .xml for JUnit, .json for the JSON document.
func (r Report) WriteFile(path string) error {
	switch filepath.Ext(path) {
	case ".json":
		return writeReportFile(path, r, WriteJSON)
	case ".xml":
		return writeReportFile(path, r, WriteJUnit)
	default:
		return fmt.Errorf("output file %s must end with .json or .xml", path)
	}
}
