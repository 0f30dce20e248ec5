package configkeys

import (
	"errors"
	"fmt"
)

// Kind classifies a validation failure.
type Kind int

const (
	UnknownKey Kind = iota + 1
	InvalidURLOrPath
	InvalidNumber
	OutOfRange
	InvalidEnumValue
	PathNotFound
	DuplicateKey
)

var kindNames = map[Kind]string{
	UnknownKey:       "unknown_key",
	InvalidURLOrPath: "invalid_url_or_path",
	InvalidNumber:    "invalid_number",
	OutOfRange:       "out_of_range",
	InvalidEnumValue: "invalid_enum_value",
	PathNotFound:     "path_not_found",
	DuplicateKey:     "duplicate_key",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for errors.Is matching against a *ValidationError.
var (
	ErrUnknownKey       = errors.New("unknown config key")
	ErrInvalidURLOrPath = errors.New("invalid url or path")
	ErrInvalidNumber    = errors.New("invalid number")
	ErrOutOfRange       = errors.New("value out of range")
	ErrInvalidEnumValue = errors.New("invalid enum value")
	ErrPathNotFound     = errors.New("path not found")
	ErrDuplicateKey     = errors.New("duplicate config key")
)

var kindSentinels = map[Kind]error{
	UnknownKey:       ErrUnknownKey,
	InvalidURLOrPath: ErrInvalidURLOrPath,
	InvalidNumber:    ErrInvalidNumber,
	OutOfRange:       ErrOutOfRange,
	InvalidEnumValue: ErrInvalidEnumValue,
	PathNotFound:     ErrPathNotFound,
	DuplicateKey:     ErrDuplicateKey,
}

// ValidationError reports the first rejected pair of a batch.
type ValidationError struct {
	Kind   Kind
	Key    string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s=%q", kindSentinels[e.Kind], e.Key, e.Value)
	}
	return fmt.Sprintf("%s: %s=%q: %s", kindSentinels[e.Kind], e.Key, e.Value, e.Reason)
}

// Is matches the sentinel for the error's kind.
func (e *ValidationError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

func newError(kind Kind, key, value, reason string) *ValidationError {
	return &ValidationError{Kind: kind, Key: key, Value: value, Reason: reason}
}
