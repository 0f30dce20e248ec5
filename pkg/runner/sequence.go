// Package runner executes ordered command sequences against a ProcessRunner.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/systemstart/gaia-node-manager/pkg/api"
)

// Observer is notified after every step that was started. Implementations
// must not block.
type Observer interface {
	StepFinished(step string, elapsed time.Duration, err error)
}

// Sequence runs steps one at a time, in order, stopping at the first failure.
type Sequence struct {
	Runner   ProcessRunner
	Logger   *slog.Logger
	Observer Observer
}

// Run executes steps in list order. Each step starts only after the previous
// one has completed. On failure no later step runs and the outputs collected
// so far are dropped; the returned error is a *ProcessExecutionError naming
// the failed step.
func (s *Sequence) Run(ctx context.Context, steps []api.Step) (*api.StepOutput, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	outputs := api.NewStepOutput()

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			logger.Error("step not started", "step", step.Name, "error", err)
			return nil, &ProcessExecutionError{Step: step.Name, Err: err}
		}

		logger.Info("running step", "step", step.Name, "index", i+1, "total", len(steps))

		started := time.Now()
		output, err := s.Runner.Run(ctx, step.Name, step.Command)
		elapsed := time.Since(started)
		s.observe(step.Name, elapsed, err)

		if err != nil {
			logger.Error("step failed", "step", step.Name, "elapsed", elapsed, "error", err)
			return nil, &ProcessExecutionError{Step: step.Name, Output: output, Err: err}
		}

		logger.Debug("step finished", "step", step.Name, "elapsed", elapsed, "bytes", len(output))
		outputs.Add(step.Name, output)
	}

	return outputs, nil
}

func (s *Sequence) observe(step string, elapsed time.Duration, err error) {
	if s.Observer != nil {
		s.Observer.StepFinished(step, elapsed, err)
	}
}
