package conform

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/broadcastkit/conform/flags"
	"github.com/broadcastkit/conform/registry"
	"github.com/broadcastkit/conform/types"
)

// Config holds the application configuration
type Config struct {
	SuiteID   string
	Selection registry.Selection
	Endpoints []types.Endpoint
	Ignore    []string

	SpecDir string // directory of API spec manifests and JSON schemas
	Output  string // report file path; empty skips the machine-readable report
	LogDir  string // per-case log directory; empty disables file logs

	FacadeURL       string        // external question responder; empty runs non-interactively
	AnswerPort      int           // answer callback server port
	QuestionTimeout time.Duration // default wait for an external answer
	FatalTimeout    bool          // abort the run when a question times out

	RequestTimeout time.Duration // HTTP timeout against the implementation under test
	RunInterval    time.Duration // interval between runs
	RunOnce        bool          // exit after one run

	MetricsPort int
	HealthzPort int

	Log *zap.SugaredLogger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log *zap.SugaredLogger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	endpoints, err := assembleEndpoints(ctx)
	if err != nil {
		return nil, err
	}

	// The ignore list does not narrow the selection. Ignored cases still
	// execute; their results are rewritten to disabled at report time.
	sel, err := registry.ParseSelection(ctx.StringSlice(flags.Tests.Name), nil)
	if err != nil {
		return nil, err
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)

	specDir, err := filepath.Abs(ctx.String(flags.SpecDir.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for spec directory: %w", err)
	}
	logDir := ctx.String(flags.LogDir.Name)
	if logDir != "" {
		logDir, err = filepath.Abs(logDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for log directory: %w", err)
		}
	}

	return &Config{
		SuiteID:         ctx.String(flags.Suite.Name),
		Selection:       sel,
		Endpoints:       endpoints,
		Ignore:          ctx.StringSlice(flags.Ignore.Name),
		SpecDir:         specDir,
		Output:          ctx.String(flags.Output.Name),
		LogDir:          logDir,
		FacadeURL:       ctx.String(flags.FacadeURL.Name),
		AnswerPort:      ctx.Int(flags.AnswerPort.Name),
		QuestionTimeout: ctx.Duration(flags.QuestionTimeout.Name),
		FatalTimeout:    ctx.Bool(flags.FatalTimeout.Name),
		RequestTimeout:  ctx.Duration(flags.RequestTimeout.Name),
		RunInterval:     runInterval,
		RunOnce:         runInterval == 0,
		MetricsPort:     ctx.Int(flags.MetricsPort.Name),
		HealthzPort:     ctx.Int(flags.HealthzPort.Name),
		Log:             log,
	}, nil
}

// assembleEndpoints zips the positional host/port/version/selector flags into
// endpoint bindings. The three mandatory slices must have equal length;
// selectors may be omitted entirely or given per endpoint.
func assembleEndpoints(ctx *cli.Context) ([]types.Endpoint, error) {
	hosts := ctx.StringSlice(flags.Host.Name)
	ports := ctx.IntSlice(flags.Port.Name)
	versions := ctx.StringSlice(flags.Version.Name)
	selectors := ctx.StringSlice(flags.Selector.Name)
	protocol := ctx.String(flags.Protocol.Name)

	if len(hosts) == 0 {
		return nil, fmt.Errorf("at least one --host is required")
	}
	if len(ports) != len(hosts) || len(versions) != len(hosts) {
		return nil, fmt.Errorf("endpoint flags must align: got %d host(s), %d port(s), %d version(s)",
			len(hosts), len(ports), len(versions))
	}
	if len(selectors) != 0 && len(selectors) != len(hosts) {
		return nil, fmt.Errorf("--selector must be given once per endpoint or not at all: got %d for %d host(s)",
			len(selectors), len(hosts))
	}
	if protocol != "http" && protocol != "https" {
		return nil, fmt.Errorf("unsupported protocol %q", protocol)
	}

	endpoints := make([]types.Endpoint, len(hosts))
	for i := range hosts {
		ep := types.Endpoint{
			Host:     hosts[i],
			Port:     ports[i],
			Version:  versions[i],
			Protocol: protocol,
		}
		if len(selectors) != 0 {
			ep.Selector = selectors[i]
		}
		endpoints[i] = ep
	}
	return endpoints, nil
}
