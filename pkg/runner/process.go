package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// ProcessRunner runs one external command to completion and returns its
// captured output. A non-nil error means the command failed; the returned
// output is still used as the failure diagnostic.
type ProcessRunner interface {
	Run(ctx context.Context, name, command string) (string, error)
}

// ProcessRunnerFunc adapts a function to ProcessRunner.
type ProcessRunnerFunc func(ctx context.Context, name, command string) (string, error)

func (f ProcessRunnerFunc) Run(ctx context.Context, name, command string) (string, error) {
	return f(ctx, name, command)
}

// ShellRunner hands each command verbatim to "<Shell> -c".
type ShellRunner struct {
	Shell string
	Dir   string
	Env   map[string]string
}

// NewShellRunner creates a ShellRunner for the given shell binary.
func NewShellRunner(shell string) *ShellRunner {
	return &ShellRunner{Shell: shell}
}

func (r *ShellRunner) Run(ctx context.Context, name, command string) (string, error) {
	shell := r.Shell
	if shell == "" {
		shell = "bash"
	}
	if _, err := exec.LookPath(shell); err != nil {
		return "", fmt.Errorf("%s binary not found in PATH: %w", shell, err)
	}

	slog.Debug("spawning command", "step", name, "shell", shell, "command", command)

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range r.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("%s -c failed: %w", shell, err)
	}
	return out.String(), nil
}
