package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// StepOutput maps step names to captured output, in insertion order.
// It is append-only: an existing name is never overwritten.
type StepOutput struct {
	names  []string
	values map[string]string
}

// NewStepOutput returns an empty StepOutput.
func NewStepOutput() *StepOutput {
	return &StepOutput{values: make(map[string]string)}
}

// Add records the output of step name. It reports false and leaves the
// existing entry untouched when name was already recorded.
func (o *StepOutput) Add(name, output string) bool {
	if o.values == nil {
		o.values = make(map[string]string)
	}
	if _, exists := o.values[name]; exists {
		return false
	}
	o.names = append(o.names, name)
	o.values[name] = output
	return true
}

// Get returns the output recorded for step name.
func (o *StepOutput) Get(name string) (string, bool) {
	if o == nil {
		return "", false
	}
	v, ok := o.values[name]
	return v, ok
}

// Names returns step names in execution order.
func (o *StepOutput) Names() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.names...)
}

// Len returns the number of recorded steps.
func (o *StepOutput) Len() int {
	if o == nil {
		return 0
	}
	return len(o.names)
}

// Map returns an unordered copy of the recorded outputs.
func (o *StepOutput) Map() map[string]string {
	m := make(map[string]string, o.Len())
	if o == nil {
		return m
	}
	for _, n := range o.names {
		m[n] = o.values[n]
	}
	return m
}

// MarshalJSON encodes the outputs as a JSON object keeping execution order.
func (o *StepOutput) MarshalJSON() ([]byte, error) {
	return marshalOrdered(o.Names(), func(name string) string {
		v, _ := o.Get(name)
		return v
	})
}

// MarshalJSON encodes the step outputs followed by the derived fields as a
// single flat JSON object.
func (r *LifecycleResult) MarshalJSON() ([]byte, error) {
	names := r.Outputs.Names()
	derived := slices.Sorted(maps.Keys(r.Derived))
	for _, k := range derived {
		if _, clash := r.Outputs.Get(k); clash {
			return nil, fmt.Errorf("derived field %q collides with a step name", k)
		}
	}
	return marshalOrdered(append(names, derived...), func(name string) string {
		if v, ok := r.Outputs.Get(name); ok {
			return v
		}
		return r.Derived[name]
	})
}

func marshalOrdered(keys []string, value func(string) string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", k, err)
		}
		vb, err := json.Marshal(value(k))
		if err != nil {
			return nil, fmt.Errorf("encoding value of %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
