package reporting

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadcastkit/conform/types"
)

func sampleReport() Report {
	base := time.Now()
	results := []types.Result{
		{Name: "case_01", Description: "first", Outcome: types.OutcomePass, StartTime: base, EndTime: base.Add(time.Second)},
		{Name: "case_02", Description: "second", Outcome: types.OutcomeFail, Detail: "wrong status", StartTime: base, EndTime: base.Add(time.Second)},
		{Name: "case_03", Description: "third", Outcome: types.OutcomeError, Detail: "panic: boom", StartTime: base, EndTime: base.Add(time.Second)},
		{Name: "case_04", Description: "fourth", Outcome: types.OutcomeManual, Detail: "needs a human", StartTime: base, EndTime: base.Add(time.Second)},
		{Name: "case_05", Description: "fifth", Outcome: types.OutcomeWarning, Detail: "charset", StartTime: base, EndTime: base.Add(time.Second)},
	}
	endpoints := []types.Endpoint{{Host: "10.0.0.5", Port: 8080, Version: "v1.1"}}
	return NewReport("connection", "run-123", endpoints, results, nil)
}

func TestWriteJSONMirrorsEveryResultField(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var doc struct {
		Suite   string `json:"suite"`
		RunID   string `json:"run_id"`
		Results []struct {
			Name   string `json:"name"`
			State  string `json:"state"`
			Detail string `json:"detail"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "connection", doc.Suite)
	assert.Equal(t, "run-123", doc.RunID)
	require.Len(t, doc.Results, 5)
	assert.Equal(t, "case_01", doc.Results[0].Name)
	assert.Equal(t, "pass", doc.Results[0].State)
	assert.Equal(t, "fail", doc.Results[1].State)
	assert.Equal(t, "wrong status", doc.Results[1].Detail)
}

func TestWriteJSONEmptyRunProducesArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewReport("connection", "run-0", nil, nil, nil)))
	assert.Contains(t, buf.String(), `"results": []`)
}

func TestWriteJUnitOutcomeMapping(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJUnit(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, `tests="5"`)
	assert.Contains(t, out, `failures="1"`)
	assert.Contains(t, out, `errors="1"`)
	assert.Contains(t, out, `skipped="1"`, "manual maps to skipped")
	assert.Contains(t, out, `<failure message="wrong status"`)
	assert.Contains(t, out, `<error message="panic: boom"`)
	// Warnings count as passed in JUnit terms.
	assert.NotContains(t, out, `message="charset"`)
}

func TestWriteTextListsEveryResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "connection")
	assert.Contains(t, out, "http://10.0.0.5:8080")
	for _, name := range []string{"case_01", "case_02", "case_03", "case_04", "case_05"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Ran 5 tests")
}

func TestNewReportRewritesIgnoredResults(t *testing.T) {
	base := time.Now()
	results := []types.Result{
		{Name: "kept", Outcome: types.OutcomeFail, Detail: "broken", StartTime: base, EndTime: base},
		{Name: "ignored", Outcome: types.OutcomeFail, Detail: "broken too", StartTime: base, EndTime: base},
	}

	r := NewReport("connection", "run-1", nil, results, []string{"ignored"})
	require.Len(t, r.Results, 2)
	assert.Equal(t, types.OutcomeFail, r.Results[0].Outcome)
	assert.Equal(t, types.OutcomeDisabled, r.Results[1].Outcome)
	assert.Equal(t, types.OutcomeFail, r.Summary.Worst, "remaining failures still dominate")

	allIgnored := NewReport("connection", "run-2", nil, results, []string{"kept", "ignored"})
	assert.Equal(t, types.OutcomePass, allIgnored.Summary.Worst, "ignored failures no longer fail the run")
}

func TestWriteFileByExtension(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport()

	require.NoError(t, r.WriteFile(filepath.Join(dir, "out.json")))
	require.NoError(t, r.WriteFile(filepath.Join(dir, "out.xml")))
	err := r.WriteFile(filepath.Join(dir, "out.csv"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), ".json") || strings.Contains(err.Error(), ".xml"))
}
