package jobs

import (
	"encoding/json"
	"errors"

	"github.com/systemstart/gaia-node-manager/pkg/configkeys"
	"github.com/systemstart/gaia-node-manager/pkg/lifecycle"
	"github.com/systemstart/gaia-node-manager/pkg/runner"
)

const (
	FailureProcessExecution = "process_execution"
	FailureExtraction       = "extraction"
	FailureValidation       = "validation"
	FailureBadRequest       = "bad_request"
	FailureInternal         = "internal"
)

// Failure is the JSON error payload returned to a job's caller.
type Failure struct {
	Type     string   `json:"type"`
	Kind     string   `json:"kind,omitempty"`
	Step     string   `json:"step,omitempty"`
	Key      string   `json:"key,omitempty"`
	Value    string   `json:"value,omitempty"`
	Required []string `json:"required,omitempty"`
	Output   string   `json:"output,omitempty"`
	Message  string   `json:"message"`
}

// NewFailure classifies err into a Failure.
func NewFailure(err error) Failure {
	f := Failure{Type: FailureInternal, Message: err.Error()}

	var (
		perr *runner.ProcessExecutionError
		xerr *lifecycle.ExtractionError
		verr *configkeys.ValidationError
	)
	switch {
	case errors.As(err, &perr):
		f.Type = FailureProcessExecution
		f.Step = perr.Step
		f.Output = perr.Output
	case errors.As(err, &xerr):
		f.Type = FailureExtraction
		f.Step = xerr.Step
		f.Required = xerr.Required
	case errors.As(err, &verr):
		f.Type = FailureValidation
		f.Kind = verr.Kind.String()
		f.Key = verr.Key
		f.Value = verr.Value
	case errors.Is(err, ErrBadPayload), errors.Is(err, ErrUnknownJob), errors.Is(err, ErrUnknownNode):
		f.Type = FailureBadRequest
	}
	return f
}

// EncodeFailure returns the JSON form of NewFailure(err).
func EncodeFailure(err error) []byte {
	data, mErr := json.Marshal(struct {
		Error Failure `json:"error"`
	}{NewFailure(err)})
	if mErr != nil {
		return []byte(`{"error":{"type":"internal","message":"failure not encodable"}}`)
	}
	return data
}
