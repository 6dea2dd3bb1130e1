// Package metrics exposes prometheus metrics for conformance runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/broadcastkit/conform/types"
)

const MetricsNamespace = "conform"

var (
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of runtime errors",
	}, []string{
		"error",
	})

	caseResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "case_results_total",
		Help:      "Count of executed test cases by outcome",
	}, []string{
		"suite",
		"run_id",
		"name",
		"outcome",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Worst outcome of completed runs",
	}, []string{
		"suite",
		"run_id",
		"outcome",
	})

	runDurationSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of completed runs",
	}, []string{
		"suite",
		"run_id",
	})

	questionsOutstanding = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "questions_outstanding",
		Help:      "Number of questions currently awaiting an external answer (0 or 1)",
	})
)

// RecordError counts a runtime error by label.
func RecordError(label string) {
	errorsTotal.WithLabelValues(label).Inc()
}

// RecordErrorDetails counts a runtime error carrying an underlying cause.
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	RecordError(label + ": " + err.Error())
}

// RecordCase counts one executed case.
func RecordCase(suiteID, runID, name string, outcome types.Outcome) {
	caseResultsTotal.WithLabelValues(suiteID, runID, name, string(outcome)).Inc()
}

// RecordRun records the completion of a run.
func RecordRun(suiteID, runID string, worst types.Outcome, duration time.Duration) {
	runResults.WithLabelValues(suiteID, runID, string(worst)).Set(1)
	runDurationSeconds.WithLabelValues(suiteID, runID).Set(duration.Seconds())
}

// QuestionAsked flags the single-slot mailbox as occupied.
func QuestionAsked() {
	questionsOutstanding.Set(1)
}

// QuestionResolved flags the mailbox as free.
func QuestionResolved() {
	questionsOutstanding.Set(0)
}
