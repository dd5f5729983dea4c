// Package errors provides the typed error kinds the orchestrator surfaces
// to its callers. Callers match on Kind rather than on concrete types.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Kind classifies a domain error.
type Kind string

const (
	// KindValidation marks user-correctable input errors (bad loan amount or term).
	KindValidation Kind = "VALIDATION"
	// KindNotFound marks unknown application or company lookups.
	KindNotFound Kind = "NOT_FOUND"
	// KindPrecondition marks out-of-order or malformed event sequences
	// (missing accounting connection, missing form at underwriting time).
	KindPrecondition Kind = "PRECONDITION"
	// KindUnderwriting marks decision-function failures. The orchestrator
	// absorbs these into the UnderwritingFailure status instead of
	// propagating them.
	KindUnderwriting Kind = "UNDERWRITING"
)

// DomainError is a structured error carrying a kind, a caller-facing message
// and the original cause, if any.
type DomainError struct {
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

// NewValidation creates a validation error.
func NewValidation(format string, args ...interface{}) *DomainError {
	return &DomainError{
		Kind:      KindValidation,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFound wraps a store-level not-found error, preserving its cause.
func NewNotFound(cause error, format string, args ...interface{}) *DomainError {
	return &DomainError{
		Kind:      KindNotFound,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewPrecondition creates a precondition error.
func NewPrecondition(format string, args ...interface{}) *DomainError {
	return &DomainError{
		Kind:      KindPrecondition,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now().UTC(),
	}
}

// NewUnderwriting wraps a decision-function failure.
func NewUnderwriting(cause error, format string, args ...interface{}) *DomainError {
	return &DomainError{
		Kind:      KindUnderwriting,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// KindOf returns the Kind of err if it is (or wraps) a DomainError, and ""
// otherwise.
func KindOf(err error) Kind {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is (or wraps) a DomainError of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
