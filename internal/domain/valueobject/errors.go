package valueobject

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the domain.
var (
	// ErrInvalidStatusTransition is returned by aggregate methods when the
	// current status does not permit the requested transition.
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")

	// ErrConcurrencyConflict is returned when a loan row lock could not be
	// acquired in time. Callers may retry.
	ErrConcurrencyConflict = errors.New("concurrent modification of loan, retry")

	// ErrScheduleExists is returned when a payment schedule has already been
	// generated for a loan.
	ErrScheduleExists = errors.New("payment schedule already exists for loan")
)

// ValidationError rejects a loan application or operation synchronously with
// a human-readable reason. It never indicates an infrastructure failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// GatewayError wraps a failed call to the external mobile-money network.
// The associated transaction has already been marked FAILED when this error
// surfaces; loan state is untouched.
type GatewayError struct {
	Op         string // "transfer", "requesttopay", "token", "status"
	StatusCode int    // HTTP status, 0 on transport failure
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway %s: unexpected status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// IsGateway reports whether err is a GatewayError.
func IsGateway(err error) bool {
	var g *GatewayError
	return errors.As(err, &g)
}
