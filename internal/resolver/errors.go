// Package resolver runs the hypothesis-to-element pipeline: AI locate,
// selector repair, structural fallback, and insertion planning.
package resolver

import (
	"errors"
	"fmt"
)

// ErrNoDocument marks the one failure class that aborts a resolution.
var ErrNoDocument = errors.New("page document unavailable")

// ErrorCode represents a specific resolution failure
type ErrorCode string

const (
	ErrCodeNoDocument        ErrorCode = "NO_DOCUMENT"
	ErrCodeAIUnavailable     ErrorCode = "AI_UNAVAILABLE"
	ErrCodeAmbiguousSelector ErrorCode = "AMBIGUOUS_SELECTOR"
	ErrCodeNoElementFound    ErrorCode = "NO_ELEMENT_FOUND"
	ErrCodeMalformedSelector ErrorCode = "MALFORMED_SELECTOR"
)

// ResolutionError wraps errors with the pipeline stage context. Only
// NO_DOCUMENT aborts a resolution; every other code classifies a non-fatal
// condition that routes to the next fallback tier, surfacing in logs rather
// than as a returned error.
type ResolutionError struct {
	Code       ErrorCode
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ResolutionError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *ResolutionError) Is(target error) bool {
	if t, ok := target.(*ResolutionError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewResolutionError creates a new ResolutionError
func NewResolutionError(code ErrorCode, message string, err error) *ResolutionError {
	return &ResolutionError{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}
