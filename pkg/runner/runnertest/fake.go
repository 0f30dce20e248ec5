// Package runnertest provides a scripted ProcessRunner for tests.
package runnertest

import (
	"context"
	"errors"
	"sync"

	"github.com/systemstart/gaia-node-manager/pkg/api"
)

// ErrScripted is the error returned for steps marked as failing.
var ErrScripted = errors.New("exit status 1")

// Fake replays scripted output per step name and records every invocation.
// Steps without a script succeed with empty output.
type Fake struct {
	mu      sync.Mutex
	outputs map[string]string
	fail    map[string]bool
	calls   []api.Step
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{outputs: make(map[string]string), fail: make(map[string]bool)}
}

// Succeed scripts step name to succeed with output.
func (f *Fake) Succeed(name, output string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[name] = output
	delete(f.fail, name)
	return f
}

// Fail scripts step name to fail with output as its diagnostic.
func (f *Fake) Fail(name, output string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[name] = output
	f.fail[name] = true
	return f
}

func (f *Fake) Run(_ context.Context, name, command string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, api.Step{Name: name, Command: command})
	if f.fail[name] {
		return f.outputs[name], ErrScripted
	}
	return f.outputs[name], nil
}

// Calls returns the recorded invocations in order.
func (f *Fake) Calls() []api.Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Step(nil), f.calls...)
}

// Count returns how many times step name was run.
func (f *Fake) Count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}
