package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/broadcastkit/conform/types"
)

type jsonReport struct {
	Suite     string           `json:"suite"`
	RunID     string           `json:"run_id"`
	Timestamp int64            `json:"timestamp"`
	Duration  float64          `json:"duration"`
	Endpoints []types.Endpoint `json:"endpoints"`
	Results   []jsonResult     `json:"results"`
}

// jsonResult mirrors types.Result one to one.
type jsonResult struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	State       string  `json:"state"`
	Detail      string  `json:"detail"`
	Link        string  `json:"link,omitempty"`
	StartTime   int64   `json:"start_time"`
	EndTime     int64   `json:"end_time"`
	Duration    float64 `json:"duration"`
}

// WriteJSON renders the machine-readable JSON document for a run.
func WriteJSON(w io.Writer, r Report) error {
	doc := jsonReport{
		Suite:     r.Suite,
		RunID:     r.RunID,
		Timestamp: r.Timestamp.Unix(),
		Duration:  r.Summary.Duration.Seconds(),
		Endpoints: r.Endpoints,
		Results:   make([]jsonResult, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		doc.Results = append(doc.Results, jsonResult{
			Name:        res.Name,
			Description: res.Description,
			State:       res.Outcome.String(),
			Detail:      res.Detail,
			Link:        res.Link,
			StartTime:   res.StartTime.Unix(),
			EndTime:     res.EndTime.Unix(),
			Duration:    res.Duration().Seconds(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	return nil
}

func writeReportFile(path string, r Report, write func(io.Writer, Report) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close() //nolint:errcheck
	if err := write(f, r); err != nil {
		return err
	}
	return f.Close()
}
