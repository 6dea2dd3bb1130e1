package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "CONFORM"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Suite = &cli.StringFlag{
		Name:    "suite",
		Value:   "",
		EnvVars: prefixEnvVars("SUITE"),
		Usage:   "Suite to run (eg. 'connection')",
	}
	Host = &cli.StringSliceFlag{
		Name:    "host",
		EnvVars: prefixEnvVars("HOST"),
		Usage:   "Host of an API under test, one per suite endpoint, in suite order",
	}
	Port = &cli.IntSliceFlag{
		Name:    "port",
		EnvVars: prefixEnvVars("PORT"),
		Usage:   "Port of an API under test, one per suite endpoint, in suite order",
	}
	Version = &cli.StringSliceFlag{
		Name:    "version",
		EnvVars: prefixEnvVars("VERSION"),
		Usage:   "API version under test (eg. 'v1.1'), one per suite endpoint, in suite order",
	}
	Selector = &cli.StringSliceFlag{
		Name:    "selector",
		EnvVars: prefixEnvVars("SELECTOR"),
		Usage:   "Instance selector for endpoints that need one; pass '' for endpoints that don't",
	}
	Protocol = &cli.StringFlag{
		Name:    "protocol",
		Value:   "http",
		EnvVars: prefixEnvVars("PROTOCOL"),
		Usage:   "Protocol used to reach the APIs under test ('http' or 'https')",
	}
	Tests = &cli.StringSliceFlag{
		Name:    "tests",
		EnvVars: prefixEnvVars("TESTS"),
		Usage:   "Test selection: 'all', 'auto', or individual case names. Default 'all'.",
	}
	Ignore = &cli.StringSliceFlag{
		Name:    "ignore",
		EnvVars: prefixEnvVars("IGNORE"),
		Usage:   "Case names to exclude from the selection",
	}
	Output = &cli.StringFlag{
		Name:    "output",
		Value:   "",
		EnvVars: prefixEnvVars("OUTPUT"),
		Usage:   "Write a machine-readable report to this path ('.json' or '.xml')",
	}
	SpecDir = &cli.StringFlag{
		Name:    "spec-dir",
		Value:   "specs",
		EnvVars: prefixEnvVars("SPEC_DIR"),
		Usage:   "Directory holding API spec manifests and JSON schemas",
	}
	LogDir = &cli.StringFlag{
		Name:    "log-dir",
		Value:   "",
		EnvVars: prefixEnvVars("LOG_DIR"),
		Usage:   "Directory for per-case log files; empty disables them",
	}
	FacadeURL = &cli.StringFlag{
		Name:    "facade-url",
		Value:   "",
		EnvVars: prefixEnvVars("FACADE_URL"),
		Usage:   "Base URL of an external question responder; empty runs non-interactively",
	}
	AnswerPort = &cli.IntFlag{
		Name:    "answer-port",
		Value:   5001,
		EnvVars: prefixEnvVars("ANSWER_PORT"),
		Usage:   "Port for the answer callback server used with --facade-url",
	}
	QuestionTimeout = &cli.DurationFlag{
		Name:    "question-timeout",
		Value:   2 * time.Minute,
		EnvVars: prefixEnvVars("QUESTION_TIMEOUT"),
		Usage:   "Default time to wait for an external answer before a question times out",
	}
	FatalTimeout = &cli.BoolFlag{
		Name:    "fatal-timeout",
		Value:   false,
		EnvVars: prefixEnvVars("FATAL_TIMEOUT"),
		Usage:   "Abort the run when a question times out instead of continuing",
	}
	RequestTimeout = &cli.DurationFlag{
		Name:    "request-timeout",
		Value:   10 * time.Second,
		EnvVars: prefixEnvVars("REQUEST_TIMEOUT"),
		Usage:   "HTTP timeout for requests against the APIs under test",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	MetricsPort = &cli.IntFlag{
		Name:    "metrics-port",
		Value:   7300,
		EnvVars: prefixEnvVars("METRICS_PORT"),
		Usage:   "Port for the prometheus metrics server; 0 disables it",
	}
	HealthzPort = &cli.IntFlag{
		Name:    "healthz-port",
		Value:   8080,
		EnvVars: prefixEnvVars("HEALTHZ_PORT"),
		Usage:   "Port for the health check server",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level ('debug', 'info', 'warn', 'error')",
	}
)

var requiredFlags = []cli.Flag{
	Suite,
	Host,
	Port,
	Version,
}

var optionalFlags = []cli.Flag{
	Selector,
	Protocol,
	Tests,
	Ignore,
	Output,
	SpecDir,
	LogDir,
	FacadeURL,
	AnswerPort,
	QuestionTimeout,
	FatalTimeout,
	RequestTimeout,
	RunInterval,
	MetricsPort,
	HealthzPort,
	LogLevel,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
