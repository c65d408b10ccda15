/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place. Callers branch with errors.Is/errors.As;
  the HTTP layer maps these onto status codes.

ERROR CATEGORIES:
  1. Validation errors   - malformed submission fields, recovered locally
  2. InsufficientCredit  - VL submitted against too few credits
  3. DuplicateRequest    - identical pending request already exists
  4. Forbidden           - role/timing combination not permitted
  5. IllegalTransition   - state machine misuse (defensive; should not be
                           reachable through the normal interface)

Every error is raised before any state is written, so no operation leaves
the ledger or a request partially mutated.
*/
package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all field-level submission failures.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientCredit is returned when a VL submission or a ledger
	// deduction asks for more whole days than the balance can cover.
	ErrInsufficientCredit = errors.New("insufficient leave credits")

	// ErrDuplicateRequest is returned when an identical pending request
	// already exists for the employee.
	ErrDuplicateRequest = errors.New("duplicate pending request")

	// ErrForbidden is returned when the capability table denies an action.
	// No state mutation occurs.
	ErrForbidden = errors.New("forbidden")

	// ErrIllegalTransition is returned on state machine misuse, e.g.
	// approving a non-pending request or re-running the split policy.
	ErrIllegalTransition = errors.New("illegal state transition")

	// ErrNotFound is returned when a referenced request or employee
	// does not exist.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a specific invalid submission field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InsufficientCreditError details a credit shortage.
type InsufficientCreditError struct {
	EmployeeID string
	Available  decimal.Decimal // whole days available
	Requested  decimal.Decimal
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf("insufficient leave credits: %s whole day(s) available, %s requested",
		e.Available, e.Requested)
}

func (e *InsufficientCreditError) Unwrap() error { return ErrInsufficientCredit }

// ForbiddenError explains why the capability table denied an action.
type ForbiddenError struct {
	Actor  Actor
	Action Action
	Reason string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s by %s (%s) forbidden: %s", e.Action, e.Actor.ID, e.Actor.Role, e.Reason)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// TransitionError details a rejected state machine transition.
type TransitionError struct {
	RequestID string
	From      Status
	Attempted string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("request %s: cannot %s while %s", e.RequestID, e.Attempted, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid caller input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientCredit) ||
		errors.Is(err, ErrDuplicateRequest)
}

// IsForbidden reports whether the error is a capability denial.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
