// Package extract recovers derived values from captured command output.
package extract

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when no line contains every required substring.
type NotFoundError struct {
	Required []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no line contains all of %q", e.Required)
}

// Line returns the first line of text, top to bottom, that contains every
// required substring, with surrounding whitespace trimmed.
func Line(text string, required ...string) (string, error) {
	for line := range strings.Lines(text) {
		if containsAll(line, required) {
			return strings.TrimSpace(line), nil
		}
	}
	return "", &NotFoundError{Required: append([]string(nil), required...)}
}

func containsAll(line string, required []string) bool {
	for _, r := range required {
		if !strings.Contains(line, r) {
			return false
		}
	}
	return true
}
