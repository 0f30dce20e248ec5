// Package jobs maps numbered lifecycle jobs onto per-node Operations and
// encodes their results as JSON.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/systemstart/gaia-node-manager/pkg/api"
	"github.com/systemstart/gaia-node-manager/pkg/lifecycle"
	"golang.org/x/sync/semaphore"
)

// ID identifies a lifecycle job.
type ID uint8

const (
	Install   ID = 1
	Stop      ID = 2
	Upgrade   ID = 3
	Configure ID = 4
)

var jobNames = map[ID]string{
	Install:   api.JobInstall,
	Stop:      api.JobStop,
	Upgrade:   api.JobUpgrade,
	Configure: api.JobConfigure,
}

var (
	ErrUnknownJob  = errors.New("unknown job id")
	ErrUnknownNode = errors.New("unknown node")
	ErrBadPayload  = errors.New("invalid job payload")
)

func (id ID) String() string {
	if name, ok := jobNames[id]; ok {
		return name
	}
	return "job(" + strconv.Itoa(int(id)) + ")"
}

// ParseID accepts a job number or name.
func ParseID(s string) (ID, error) {
	for id, name := range jobNames {
		if s == name {
			return id, nil
		}
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownJob, s)
	}
	if _, ok := jobNames[ID(n)]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownJob, n)
	}
	return ID(n), nil
}

type node struct {
	ops  *lifecycle.Operations
	lock *semaphore.Weighted
}

// Dispatcher runs jobs against registered nodes, at most one job per node at
// a time.
type Dispatcher struct {
	mu    sync.RWMutex
	nodes map[string]*node
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{nodes: make(map[string]*node)}
}

// Register binds ops to a node name. Registering a name twice replaces the
// operations but keeps the node's lock.
func (d *Dispatcher) Register(name string, ops *lifecycle.Operations) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n, ok := d.nodes[name]; ok {
		n.ops = ops
		return
	}
	d.nodes[name] = &node{ops: ops, lock: semaphore.NewWeighted(1)}
}

// Dispatch decodes payload, runs job id on the named node and returns the
// JSON encoded result: step outputs in execution order plus derived fields.
// It waits while another job holds the node, until ctx is done.
func (d *Dispatcher) Dispatch(ctx context.Context, nodeName string, id ID, payload []byte) ([]byte, error) {
	job, ok := jobNames[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownJob, id)
	}

	d.mu.RLock()
	n, ok := d.nodes[nodeName]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, nodeName)
	}

	var updates []api.ConfigUpdate
	if id == Configure {
		var err error
		if updates, err = DecodeUpdates(payload); err != nil {
			return nil, err
		}
	}

	if !n.lock.TryAcquire(1) {
		slog.Info("waiting for node to become idle", "node", nodeName, "job", job)
		if err := n.lock.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("waiting for node %q: %w", nodeName, err)
		}
	}
	defer n.lock.Release(1)

	result, err := n.ops.Run(ctx, job, updates)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding %s result: %w", job, err)
	}
	return data, nil
}

// DecodeUpdates decodes a configure payload: a JSON list of {key, value}.
func DecodeUpdates(payload []byte) ([]api.ConfigUpdate, error) {
	var updates []api.ConfigUpdate
	if err := json.Unmarshal(payload, &updates); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return updates, nil
}
