package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	conform "github.com/broadcastkit/conform"
	"github.com/broadcastkit/conform/exitcodes"
	"github.com/broadcastkit/conform/flags"
	"github.com/broadcastkit/conform/registry"
	"github.com/broadcastkit/conform/service"
	"github.com/broadcastkit/conform/suite"
	"github.com/broadcastkit/conform/suites/connection"
	"github.com/broadcastkit/conform/suites/registration"
)

var (
	Version   = "v0.3.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "conform"
	app.Usage = "Conformance test harness for networked media-control APIs"
	app.Flags = flags.Flags
	app.Action = run
	app.Commands = []*cli.Command{
		{
			Name:   "list-suites",
			Usage:  "List the registered test suites",
			Action: listSuites,
		},
		{
			Name:   "list-tests",
			Usage:  "List the cases of a suite in canonical order",
			Action: listTests,
		},
	}
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			switch {
			case conform.IsTestFailureError(err):
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			case conform.IsWarningError(err):
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.Warning))
			default:
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			}
		}
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcodes.RuntimeErr)
	}
}

func run(ctx *cli.Context) error {
	log, err := newLogger(ctx.String(flags.LogLevel.Name))
	if err != nil {
		return conform.NewRuntimeError(err)
	}
	defer log.Sync() //nolint:errcheck

	cfg, err := conform.NewConfig(ctx, log)
	if err != nil {
		return conform.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	reg, err := buildRegistry(cfg.SpecDir)
	if err != nil {
		return conform.NewRuntimeError(err)
	}

	appCtx, cancel := signal.NotifyContext(ctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	harness, err := conform.New(appCtx, cfg, Version, reg, func(error) { cancel() })
	if err != nil {
		return conform.NewRuntimeError(fmt.Errorf("failed to create harness: %w", err))
	}

	svc := service.New(service.Config{
		HealthzPort: cfg.HealthzPort,
		MetricsPort: cfg.MetricsPort,
		AnswerPort:  cfg.AnswerPort,
		Bridge:      harness.Bridge(),
		Log:         log,
	})
	svc.Start(appCtx)
	defer svc.Shutdown()

	if err := harness.Start(appCtx); err != nil {
		return err
	}

	if !cfg.RunOnce {
		<-appCtx.Done()
		if err := harness.Stop(context.Background()); err != nil {
			log.Warnw("Error stopping harness", "error", err)
		}
		return harness.WaitForShutdown(context.Background())
	}
	return nil
}

func listSuites(ctx *cli.Context) error {
	reg, err := buildRegistry(ctx.String(flags.SpecDir.Name))
	if err != nil {
		return conform.NewRuntimeError(err)
	}
	for _, id := range reg.SuiteIDs() {
		s, err := reg.Suite(id)
		if err != nil {
			return conform.NewRuntimeError(err)
		}
		fmt.Printf("%s\t%s\n", id, s.Description)
	}
	return nil
}

func listTests(ctx *cli.Context) error {
	suiteID := ctx.String(flags.Suite.Name)
	if suiteID == "" {
		return conform.NewRuntimeError(errors.New("--suite is required"))
	}
	reg, err := buildRegistry(ctx.String(flags.SpecDir.Name))
	if err != nil {
		return conform.NewRuntimeError(err)
	}
	cases, err := reg.ListCases(suiteID)
	if err != nil {
		return conform.NewRuntimeError(err)
	}
	for _, c := range cases {
		marker := " "
		if c.Auto {
			marker = "*"
		}
		fmt.Printf("%s %s\t%s\n", marker, c.Name, c.Description)
	}
	return nil
}

// buildRegistry registers the shipped suites, preferring spec manifest
// overrides from the spec directory when present.
func buildRegistry(specDir string) (*registry.Registry, error) {
	reg := registry.New()

	connSpec, err := loadSpecOverride(specDir, "connection.yaml")
	if err != nil {
		return nil, err
	}
	if err := reg.Register(connection.NewSuite(connSpec)); err != nil {
		return nil, err
	}

	regSpec, err := loadSpecOverride(specDir, "registration.yaml")
	if err != nil {
		return nil, err
	}
	if err := reg.Register(registration.NewSuite(regSpec)); err != nil {
		return nil, err
	}

	return reg, nil
}

// loadSpecOverride returns nil without error when the manifest is absent,
// letting the suite fall back to its built-in spec.
func loadSpecOverride(specDir, name string) (*suite.APISpec, error) {
	path := filepath.Join(specDir, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return suite.LoadAPISpec(path)
}

func newLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
