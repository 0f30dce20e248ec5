package runner

import "fmt"

// ProcessExecutionError reports the step whose command failed. Output holds
// whatever the command wrote before it failed.
type ProcessExecutionError struct {
	Step   string
	Output string
	Err    error
}

func (e *ProcessExecutionError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("step %q failed: %v\noutput: %s", e.Step, e.Err, e.Output)
}

func (e *ProcessExecutionError) Unwrap() error {
	return e.Err
}
