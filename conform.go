// Package conform drives conformance runs: it binds the registered suites,
// the shared HTTP client, the question/answer bridge, and the reporting
// sinks into a service that runs once or on an interval.
package conform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/broadcastkit/conform/client"
	"github.com/broadcastkit/conform/exitcodes"
	"github.com/broadcastkit/conform/facade"
	"github.com/broadcastkit/conform/logging"
	"github.com/broadcastkit/conform/registry"
	"github.com/broadcastkit/conform/reporting"
	"github.com/broadcastkit/conform/runner"
	"github.com/broadcastkit/conform/schema"
	"github.com/broadcastkit/conform/types"
)

// App is the conformance harness service.
type App struct {
	ctx      context.Context
	config   *Config
	version  string
	registry *registry.Registry

	client  *client.Client
	schemas *schema.Store
	bridge  *facade.Bridge

	mu     sync.Mutex
	result *reporting.Report

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, reg *registry.Registry, shutdownCallback func(error)) (*App, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if reg == nil {
		return nil, errors.New("registry is required")
	}

	config.Log.Debugw("Creating harness with config",
		"suite", config.SuiteID,
		"specDir", config.SpecDir,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce,
		"interactive", config.FacadeURL != "")

	httpClient := client.New(client.Config{
		Timeout: config.RequestTimeout,
		Retries: client.DefaultRetries,
		Log:     config.Log,
	})

	var bridge *facade.Bridge
	if config.FacadeURL != "" {
		bridge = facade.NewBridge(facade.Config{
			Responder:      facade.NewHTTPResponder(config.FacadeURL, httpClient),
			AnswerURI:      answerURI(config.AnswerPort),
			DefaultTimeout: config.QuestionTimeout,
			Log:            config.Log,
		})
	} else {
		bridge = facade.NewBridge(facade.Config{
			DefaultTimeout: config.QuestionTimeout,
			Log:            config.Log,
		})
	}

	return &App{
		ctx:              ctx,
		config:           config,
		version:          version,
		registry:         reg,
		client:           httpClient,
		schemas:          schema.NewStore(config.SpecDir),
		bridge:           bridge,
		done:             make(chan struct{}),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Bridge exposes the question/answer bridge so the answer callback server
// can feed it.
func (a *App) Bridge() *facade.Bridge {
	return a.bridge
}

// Result returns the most recent run's report, nil before the first run
// completes.
func (a *App) Result() *reporting.Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// Start runs the suite immediately and then, unless in run-once mode, again
// at every configured interval.
func (a *App) Start(ctx context.Context) error {
	defer func() {
		if r := recover(); r != nil {
			a.config.Log.Errorw("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	a.ctx = ctx
	a.done = make(chan struct{})
	a.running.Store(true)

	if a.config.RunOnce {
		a.config.Log.Info("Starting conformance harness in run-once mode")
	} else {
		a.config.Log.Infow("Starting conformance harness in continuous mode", "interval", a.config.RunInterval)
	}

	if err := a.runSuite(); err != nil {
		a.config.Log.Errorw("Runtime error running suite", "error", err)
		return NewRuntimeError(err)
	}

	if a.config.RunOnce {
		report := a.Result()
		switch ExitCodeForSummary(report.Summary) {
		case exitcodes.TestFailure:
			return NewTestFailureError(fmt.Sprintf("worst outcome %s", report.Summary.Worst))
		case exitcodes.Warning:
			return NewWarningError(fmt.Sprintf("%d warning(s)", report.Summary.Counts[types.OutcomeWarning]))
		}
		go func() {
			a.shutdownCallback(nil)
		}()
		return nil
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for {
			select {
			case <-time.After(a.config.RunInterval):
				if !a.running.Load() {
					return
				}
				a.config.Log.Info("Running periodic conformance suite")
				if err := a.runSuite(); err != nil {
					a.config.Log.Errorw("Error running periodic suite", "error", err)
				}
			case <-a.done:
				return
			case <-ctx.Done():
				a.running.Store(false)
				return
			}
		}
	}()
	a.config.Log.Debug("conformance harness started")
	return nil
}

// runSuite executes one complete run of the configured suite and renders
// its report.
func (a *App) runSuite() error {
	s, err := a.registry.Suite(a.config.SuiteID)
	if err != nil {
		return err
	}
	if err := a.validateIgnoreList(); err != nil {
		return err
	}
	cases, err := a.registry.Resolve(a.config.SuiteID, a.config.Selection)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return fmt.Errorf("selection resolves to zero cases in suite %s", a.config.SuiteID)
	}

	runID := uuid.NewString()
	var fileLogger *logging.FileLogger
	if a.config.LogDir != "" {
		fileLogger, err = logging.NewFileLogger(a.config.LogDir, runID)
		if err != nil {
			return err
		}
	}

	run, err := runner.NewRunner(runner.Config{
		Suite:        s,
		Cases:        cases,
		Endpoints:    a.config.Endpoints,
		Client:       a.client,
		Schemas:      a.schemas,
		Bridge:       a.bridge,
		FileLogger:   fileLogger,
		FatalTimeout: a.config.FatalTimeout,
		RunID:        runID,
		Log:          a.config.Log,
	})
	if err != nil {
		return err
	}

	res, err := run.Run(a.ctx)
	if err != nil {
		return err
	}

	report := reporting.NewReport(a.config.SuiteID, res.RunID, a.config.Endpoints, res.Results, a.config.Ignore)
	a.mu.Lock()
	a.result = &report
	a.mu.Unlock()

	printResultsTable(os.Stdout, report)
	if err := reporting.WriteText(os.Stdout, report); err != nil {
		a.config.Log.Warnw("Failed to print text summary", "error", err)
	}
	if a.config.Output != "" {
		if err := report.WriteFile(a.config.Output); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		a.config.Log.Infow("Report written", "path", a.config.Output)
	}

	a.config.Log.Infow("Run completed", "run_id", res.RunID, "state", res.State, "worst", report.Summary.Worst)
	return nil
}

// validateIgnoreList fails closed on ignore entries that name no case in
// the suite. Ignored cases are not removed from the execution set; the
// report rewrites their results to disabled.
func (a *App) validateIgnoreList() error {
	if len(a.config.Ignore) == 0 {
		return nil
	}
	infos, err := a.registry.ListCases(a.config.SuiteID)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		known[info.Name] = struct{}{}
	}
	for _, name := range a.config.Ignore {
		if _, ok := known[name]; !ok {
			return &registry.SelectionError{
				Suite:  a.config.SuiteID,
				Case:   name,
				Reason: "case does not exist in suite",
			}
		}
	}
	return nil
}

// Stop stops the conformance harness service.
func (a *App) Stop(ctx context.Context) error {
	a.config.Log.Info("Stopping conformance harness")
	if !a.running.Load() {
		return nil
	}
	a.running.Store(false)
	close(a.done)
	return nil
}

// Stopped returns true if the service is stopped.
func (a *App) Stopped() bool {
	return !a.running.Load()
}

// WaitForShutdown blocks until all goroutines have terminated or ctx
// expires.
func (a *App) WaitForShutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// answerURI is the callback URL advertised to external responders.
func answerURI(port int) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d%s", host, port, facade.AnswerPath)
}
