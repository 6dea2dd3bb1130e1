// Package runner executes a resolved sequence of test cases against one
// run's shared context and yields results in execution order. Cases run
// strictly sequentially; a single misbehaving case is isolated, never fatal
// to the run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/broadcastkit/conform/client"
	"github.com/broadcastkit/conform/facade"
	"github.com/broadcastkit/conform/logging"
	"github.com/broadcastkit/conform/metrics"
	"github.com/broadcastkit/conform/reporting"
	"github.com/broadcastkit/conform/schema"
	"github.com/broadcastkit/conform/suite"
	"github.com/broadcastkit/conform/types"
)

// State tracks the run lifecycle.
type State string

const (
	StateIdle        State = "idle"
	StateConfiguring State = "configuring"
	StateRunning     State = "running"
	StateCompleted   State = "completed"
	StateAborted     State = "aborted"
)

// Config assembles everything one run needs. A Runner is single-use: one
// Config, one Run, one result set.
type Config struct {
	Suite     *suite.Suite
	Cases     []suite.Case
	Endpoints []types.Endpoint

	Client  *client.Client
	Schemas *schema.Store
	Bridge  *facade.Bridge // nil when no question/answer bridge is wanted

	FileLogger *logging.FileLogger // nil disables per-case log files

	// FatalTimeout aborts the run when a case's external-input wait times
	// out, for CI contexts that cannot tolerate real-world delays. The
	// default is to continue; the case itself reports unclear.
	FatalTimeout bool

	RunID string
	Log   *zap.SugaredLogger
}

// Runner executes one run.
type Runner struct {
	cfg       Config
	collector *reporting.Collector
	log       *zap.SugaredLogger

	mu    sync.Mutex
	state State

	cancelRequested atomic.Bool
}

// RunResult is the completed run: ordered results plus their summary.
type RunResult struct {
	RunID   string
	Suite   string
	State   State
	Results []types.Result
	Summary reporting.Summary
}

func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Suite == nil {
		return nil, errors.New("suite is required")
	}
	if cfg.Client == nil {
		cfg.Client = client.New(client.Config{Log: cfg.Log})
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop().Sugar()
	}
	return &Runner{
		cfg:       cfg,
		collector: reporting.NewCollector(),
		log:       cfg.Log.With("run_id", cfg.RunID, "suite", cfg.Suite.ID),
		state:     StateIdle,
	}, nil
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Collector exposes the live result stream for interactive views. Results
// appear in exactly the execution order.
func (r *Runner) Collector() *reporting.Collector {
	return r.collector
}

// RequestCancel asks the runner to stop. Cancellation is honored only at
// case boundaries: the current case finishes (or times out), remaining
// cases are recorded as not applicable, and the post-run hook still runs.
func (r *Runner) RequestCancel() {
	r.cancelRequested.Store(true)
}

// Run executes the configured cases. It either produces a complete, ordered
// result set (possibly containing error entries) or an up-front
// configuration/hook error with zero results.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	if err := r.transition(StateIdle, StateConfiguring); err != nil {
		return nil, err
	}

	if err := r.validateEndpoints(); err != nil {
		r.setState(StateAborted)
		return nil, err
	}

	var asker suite.Asker
	if r.cfg.Bridge != nil {
		asker = r.cfg.Bridge
		// Discard any stale question left by a previous run.
		r.cfg.Bridge.Clear(ctx)
	}
	rc := suite.NewRunContext(r.cfg.Suite, r.cfg.Endpoints, r.cfg.Client, r.cfg.Schemas, asker, r.log)

	if r.cfg.Bridge.Interactive() {
		if _, ok, err := r.cfg.Bridge.PreTestsMessage(ctx, r.cfg.Suite.Name); err != nil || !ok {
			r.log.Warnw("Operator did not acknowledge run start", "answered", ok, "error", err)
		}
		// An unacknowledged run-start message is not a case timeout.
		r.cfg.Bridge.ConsumeTimeout()
	}

	if r.cfg.Suite.PreRun != nil {
		if err := r.cfg.Suite.PreRun(ctx, rc); err != nil {
			r.setState(StateAborted)
			if r.cfg.Bridge != nil {
				r.cfg.Bridge.Clear(ctx)
			}
			return nil, &HookError{Hook: "pre_run", Err: err}
		}
	}

	r.setState(StateRunning)
	r.log.Infow("Run started", "cases", len(r.cfg.Cases))

	aborted := false
	for i, c := range r.cfg.Cases {
		if ctx.Err() != nil || r.cancelRequested.Load() {
			r.skipRemaining(r.cfg.Cases[i:], "Test not run: run was cancelled")
			aborted = true
			break
		}

		result := r.executeCase(ctx, c, rc)
		if err := r.record(result); err != nil {
			r.finishHooks(ctx, rc)
			r.setState(StateAborted)
			return nil, err
		}

		if r.cfg.Bridge != nil && r.cfg.Bridge.ConsumeTimeout() && r.cfg.FatalTimeout {
			r.log.Warnw("External-input timeout is fatal for this run, aborting", "case", c.Name)
			r.skipRemaining(r.cfg.Cases[i+1:], "Test not run: a previous case timed out awaiting external input")
			aborted = true
			break
		}
	}

	r.finishHooks(ctx, rc)

	if aborted {
		r.setState(StateAborted)
	} else {
		r.setState(StateCompleted)
	}

	results := r.collector.Snapshot()
	summary := reporting.Summarize(results)
	metrics.RecordRun(r.cfg.Suite.ID, r.cfg.RunID, summary.Worst, summary.Duration)
	r.log.Infow("Run finished", "state", r.State(), "results", len(results), "worst", summary.Worst)

	return &RunResult{
		RunID:   r.cfg.RunID,
		Suite:   r.cfg.Suite.ID,
		State:   r.State(),
		Results: results,
		Summary: summary,
	}, nil
}

// executeCase runs one case under isolation: a panic or returned error
// becomes an error-outcome result for this case only.
func (r *Runner) executeCase(ctx context.Context, c suite.Case, rc *suite.RunContext) types.Result {
	r.log.Debugw("Running case", "case", c.Name)
	t := types.Test{Name: c.Name, Description: c.Description, Link: c.Link}
	start := time.Now()

	result, err := func() (res types.Result, err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		return c.Run(ctx, rc, t)
	}()

	if err != nil {
		result = types.Result{
			Name:        c.Name,
			Description: c.Description,
			Link:        c.Link,
			Outcome:     types.OutcomeError,
			Detail:      fmt.Sprintf("Uncaught fault while executing test case: %v", err),
		}
	}
	if result.Name == "" {
		result.Name = c.Name
		result.Description = c.Description
	}
	if !result.Outcome.Valid() {
		result.Detail = fmt.Sprintf("Test case produced unknown outcome %q", result.Outcome)
		result.Outcome = types.OutcomeError
	}
	if result.Detail == "" && result.Outcome != types.OutcomePass {
		result.Detail = "No detail provided"
	}
	result.StartTime = start
	result.EndTime = time.Now()
	return result
}

func (r *Runner) record(result types.Result) error {
	if err := r.collector.Append(result); err != nil {
		return fmt.Errorf("recording result: %w", err)
	}
	metrics.RecordCase(r.cfg.Suite.ID, r.cfg.RunID, result.Name, result.Outcome)
	if r.cfg.FileLogger != nil {
		if err := r.cfg.FileLogger.WriteCaseLog(result); err != nil {
			r.log.Warnw("Failed to write case log", "case", result.Name, "error", err)
		}
	}
	return nil
}

// skipRemaining records every unexecuted case as not applicable so the
// result set stays complete for the resolved selection.
func (r *Runner) skipRemaining(remaining []suite.Case, detail string) {
	now := time.Now()
	for _, c := range remaining {
		result := types.Result{
			Name:        c.Name,
			Description: c.Description,
			Link:        c.Link,
			Outcome:     types.OutcomeNA,
			Detail:      detail,
			StartTime:   now,
			EndTime:     now,
		}
		if err := r.record(result); err != nil {
			r.log.Errorw("Failed to record skipped case", "case", c.Name, "error", err)
		}
	}
}

// finishHooks sends the run-end message and runs the post-run hook against
// the run's own context, so teardown sees every resource the run
// discovered. The post-run hook runs unconditionally once any case has been
// attempted; its failure never alters recorded results.
func (r *Runner) finishHooks(ctx context.Context, rc *suite.RunContext) {
	if r.cfg.Bridge.Interactive() {
		if _, ok, err := r.cfg.Bridge.PostTestsMessage(ctx); err != nil || !ok {
			r.log.Warnw("Operator did not acknowledge run end", "answered", ok, "error", err)
		}
	}
	if r.cfg.Suite.PostRun != nil {
		if err := r.cfg.Suite.PostRun(ctx, rc); err != nil {
			r.log.Errorw("post_run hook failed", "error", err)
			metrics.RecordErrorDetails("post_run hook failed", err)
		}
	}
}

func (r *Runner) validateEndpoints() error {
	specs := r.cfg.Suite.EndpointSpecs
	if len(r.cfg.Endpoints) != len(specs) {
		return &ConfigurationError{
			Suite: r.cfg.Suite.ID,
			Err:   fmt.Errorf("suite expects %d endpoint binding(s), got %d", len(specs), len(r.cfg.Endpoints)),
		}
	}
	for i, spec := range specs {
		if err := r.cfg.Endpoints[i].Validate(spec.RequireSelector); err != nil {
			return &ConfigurationError{
				Suite: r.cfg.Suite.ID,
				Err:   fmt.Errorf("endpoint %d (%s): %w", i, spec.APIKey, err),
			}
		}
	}
	return nil
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
}

func (r *Runner) transition(from, to State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != from {
		return fmt.Errorf("runner is %s; a runner executes exactly one run", r.state)
	}
	r.state = to
	return nil
}
