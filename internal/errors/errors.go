// Package errors defines the failure taxonomy for the batch engine.
//
// Two families of errors exist, because remediation differs:
//
//   - ValidationError: the input line could never be submitted
//     (malformed coordinate, unmapped liftover region). Surfaced per line,
//     never retried, and the batch continues.
//   - DriverError: the coordinate was submitted to the external query
//     surface and the interaction failed. Its FailureKind decides whether
//     the retry loop applies (Timeout, TransientServiceError) or the task
//     fails terminally (RejectedInput, ProtocolError, Cancelled).
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions so callers can import only this
// package for error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// FailureKind
// -----------------------------------------------------------------------------

// FailureKind classifies a failed interaction with the external query surface.
type FailureKind string

const (
	// FailureTimeout indicates the per-task deadline elapsed before the
	// external surface produced a result. Retryable.
	FailureTimeout FailureKind = "timeout"

	// FailureTransient indicates a temporary service condition such as rate
	// limiting, a half-loaded page, or a navigation hiccup. Retryable.
	FailureTransient FailureKind = "transient_service_error"

	// FailureRejected indicates the external surface declared the submitted
	// input invalid. Terminal: retrying the same input cannot succeed.
	FailureRejected FailureKind = "rejected_input"

	// FailureProtocol indicates the response had an unexpected shape, for
	// example a critical form element that can no longer be located. Terminal
	// and likely requires a code update.
	FailureProtocol FailureKind = "protocol_error"

	// FailureCancelled indicates the batch was cancelled before the task
	// started. Terminal.
	FailureCancelled FailureKind = "cancelled"
)

// String returns the string representation of the failure kind.
func (k FailureKind) String() string { return string(k) }

// Retryable reports whether a failure of this kind may succeed on retry.
func (k FailureKind) Retryable() bool {
	return k == FailureTimeout || k == FailureTransient
}

// -----------------------------------------------------------------------------
// DriverError
// -----------------------------------------------------------------------------

// DriverError is a failed interaction with the external query surface.
// It carries the FailureKind used by the retry policy and wraps the
// underlying cause, if any.
type DriverError struct {
	Kind  FailureKind
	Op    string // operation that failed, e.g. "submit", "navigate"
	cause error
}

// NewDriverError creates a DriverError for the given kind and operation.
func NewDriverError(kind FailureKind, op string, cause error) *DriverError {
	return &DriverError{Kind: kind, Op: op, cause: cause}
}

// Error returns the formatted error message.
func (e *DriverError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("driver error [%s]: %s: %v", e.Kind, e.Op, e.cause)
	}
	return fmt.Sprintf("driver error [%s]: %s", e.Kind, e.Op)
}

// Unwrap returns the underlying cause.
func (e *DriverError) Unwrap() error { return e.cause }

// Is reports whether target is a DriverError or matches the wrapped cause.
func (e *DriverError) Is(target error) bool {
	if _, ok := target.(*DriverError); ok {
		return true
	}
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// -----------------------------------------------------------------------------
// ValidationError
// -----------------------------------------------------------------------------

// ValidationKind classifies why an input line could not be scheduled.
type ValidationKind string

const (
	// MalformedInput indicates the line could not be parsed into a valid
	// coordinate (bad chromosome label, non-positive position, wrong column
	// count, no accession for the chromosome/assembly pair).
	MalformedInput ValidationKind = "malformed_input"

	// UnmappedRegion indicates the liftover capability found no equivalent
	// region in the target assembly.
	UnmappedRegion ValidationKind = "unmapped_region"
)

// ValidationError is a per-line input failure. It is terminal and never
// enters the retry loop; the rest of the batch is unaffected.
type ValidationError struct {
	Kind   ValidationKind
	Line   int    // zero-based input line index
	Input  string // the raw line as read
	Reason string // human-readable detail
}

// NewValidationError creates a ValidationError for the given line.
func NewValidationError(kind ValidationKind, line int, input, reason string) *ValidationError {
	return &ValidationError{Kind: kind, Line: line, Input: input, Reason: reason}
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s] line %d %q: %s", e.Kind, e.Line, e.Input, e.Reason)
}

// Is reports whether target is a ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// -----------------------------------------------------------------------------
// Classification helpers
// -----------------------------------------------------------------------------

// IsRetryable reports whether err represents a transient condition that may
// succeed on retry. Validation errors are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var de *DriverError
	if As(err, &de) {
		return de.Kind.Retryable()
	}
	return false
}

// KindOf extracts the FailureKind from err. Errors that are not DriverErrors
// (including panics converted at the worker boundary by the caller) report
// FailureProtocol, the conservative terminal classification.
func KindOf(err error) FailureKind {
	var de *DriverError
	if As(err, &de) {
		return de.Kind
	}
	return FailureProtocol
}

// IsValidation reports whether err is a per-line input failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return As(err, &ve)
}
