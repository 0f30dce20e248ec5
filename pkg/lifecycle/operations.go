// Package lifecycle drives install, stop, upgrade and configure of a gaianet
// node as fixed sequences of shell steps.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/systemstart/gaia-node-manager/pkg/api"
	"github.com/systemstart/gaia-node-manager/pkg/configkeys"
	"github.com/systemstart/gaia-node-manager/pkg/extract"
	"github.com/systemstart/gaia-node-manager/pkg/metrics"
	"github.com/systemstart/gaia-node-manager/pkg/runner"
	"go.jetify.com/typeid"
)

// Config wires an Operations instance. Node and Runner are required.
type Config struct {
	Node    *api.NodeConfig
	Runner  runner.ProcessRunner
	Rules   *configkeys.Table // defaults to configkeys.NewTable(Node.BaseDir)
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Operations runs lifecycle operations against one node. It keeps no state
// between calls; callers must not run two operations on the same node at
// once.
type Operations struct {
	node     *api.NodeConfig
	runner   runner.ProcessRunner
	rules    *configkeys.Table
	commands *commandSet
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

// New validates cfg and parses the node's command templates.
func New(cfg Config) (*Operations, error) {
	if cfg.Node == nil {
		return nil, fmt.Errorf("node config is required")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("process runner is required")
	}

	commands, err := newCommandSet(cfg.Node.Commands)
	if err != nil {
		return nil, err
	}

	rules := cfg.Rules
	if rules == nil {
		rules = configkeys.NewTable(cfg.Node.BaseDir)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Operations{
		node:     cfg.Node,
		runner:   cfg.Runner,
		rules:    rules,
		commands: commands,
		metrics:  cfg.Metrics,
		logger:   logger.With("node", cfg.Node.Name),
	}, nil
}

// NewRunID returns a fresh id for one lifecycle invocation.
func NewRunID() string {
	id, err := typeid.WithPrefix("run")
	if err != nil {
		panic(err)
	}
	return id.String()
}

// Install installs the node binary, reloads the shell profile, initializes
// and starts the node, then extracts the public URL from the start output.
func (o *Operations) Install(ctx context.Context) (*api.LifecycleResult, error) {
	return o.execute(ctx, api.JobInstall, o.InstallSteps, true)
}

// Stop stops the node.
func (o *Operations) Stop(ctx context.Context) (*api.LifecycleResult, error) {
	return o.execute(ctx, api.JobStop, o.StopSteps, false)
}

// Upgrade stops the node, reinstalls it with --upgrade, then initializes
// and starts it again and extracts the public URL.
func (o *Operations) Upgrade(ctx context.Context) (*api.LifecycleResult, error) {
	return o.execute(ctx, api.JobUpgrade, o.UpgradeSteps, true)
}

// Configure validates the whole batch, then applies one key per step and
// restarts the node. An invalid batch runs nothing.
func (o *Operations) Configure(ctx context.Context, updates []api.ConfigUpdate) (*api.LifecycleResult, error) {
	return o.execute(ctx, api.JobConfigure, func() ([]api.Step, error) { return o.ConfigureSteps(updates) }, false)
}

// Run dispatches by job name. updates is only used by configure.
func (o *Operations) Run(ctx context.Context, job string, updates []api.ConfigUpdate) (*api.LifecycleResult, error) {
	switch job {
	case api.JobInstall:
		return o.Install(ctx)
	case api.JobStop:
		return o.Stop(ctx)
	case api.JobUpgrade:
		return o.Upgrade(ctx)
	case api.JobConfigure:
		return o.Configure(ctx, updates)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownJob, job)
	}
}

// Plan returns the steps job would run without running them.
func (o *Operations) Plan(job string, updates []api.ConfigUpdate) ([]api.Step, error) {
	switch job {
	case api.JobInstall:
		return o.InstallSteps()
	case api.JobStop:
		return o.StopSteps()
	case api.JobUpgrade:
		return o.UpgradeSteps()
	case api.JobConfigure:
		return o.ConfigureSteps(updates)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownJob, job)
	}
}

func (o *Operations) execute(ctx context.Context, op string, plan func() ([]api.Step, error), wantURL bool) (result *api.LifecycleResult, err error) {
	logger := o.logger.With("run", NewRunID(), "operation", op)
	defer func() {
		o.metrics.OperationFinished(op, err)
		if err != nil {
			logger.Error("operation failed", "error", err)
		}
	}()

	steps, err := plan()
	if err != nil {
		return nil, err
	}

	logger.Info("operation started", "steps", len(steps))

	seq := &runner.Sequence{Runner: o.runner, Logger: logger, Observer: o.metrics.Steps(op)}
	outputs, err := seq.Run(ctx, steps)
	if err != nil {
		return nil, err
	}

	result = &api.LifecycleResult{Outputs: outputs, Derived: map[string]string{}}
	if wantURL {
		publicURL, xerr := o.publicURL(outputs)
		if xerr != nil {
			return nil, xerr
		}
		result.Derived[api.DerivedPublicURL] = publicURL
		logger.Info("node public URL", "url", publicURL)
	}

	logger.Info("operation succeeded")
	return result, nil
}

func (o *Operations) publicURL(outputs *api.StepOutput) (string, error) {
	startOutput, _ := outputs.Get(api.StepStart)
	line, err := extract.Line(startOutput, o.node.PublicURLMarkers...)
	if err != nil {
		return "", &ExtractionError{Step: api.StepStart, Required: o.node.PublicURLMarkers, Err: err}
	}
	return line, nil
}
