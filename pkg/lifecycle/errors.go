package lifecycle

import (
	"errors"
	"fmt"
)

// ErrUnknownJob is returned for a job name that is not a lifecycle operation.
var ErrUnknownJob = errors.New("unknown lifecycle job")

// ExtractionError means every command succeeded but the derived value could
// not be found in the output of Step.
type ExtractionError struct {
	Step     string
	Required []string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting public URL from step %q: %v", e.Step, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
