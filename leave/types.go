/*
Package leave implements the leave credit rules engine.

PURPOSE:
  This package contains the three pieces that make up the core of the
  system: the credit ledger (earned/used/balance per employee-month),
  the request lifecycle (pending -> approved/denied/cancelled with dual
  approval), and the split/conversion policy that decides how much of an
  approved request is credited versus converted to unpaid time off.

KEY CONCEPTS IN THIS FILE (types.go):
  - Type:    Leave type codes (VL, SL, BL, SPL, LOA, LDV, UPTO)
  - Status:  Request lifecycle states
  - Request: A single leave request with approval and credit tracking
  - Actor:   Who is performing an operation (identity + role)

DESIGN PRINCIPLES:
  1. Precision: credits are decimal.Decimal, never float64
  2. Explicit time: every time-sensitive check takes "now" as a parameter
  3. Immutability at the boundary: the split policy returns new values,
     the service applies them atomically

SEE ALSO:
  - ledger.go: balance calculation and whole-day deduction
  - policy.go: split/conversion decision at approval time
  - service.go: lifecycle orchestration
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEAVE TYPES
// =============================================================================

// Type is a leave type code.
type Type string

const (
	TypeVL   Type = "VL"   // vacation leave (credited)
	TypeSL   Type = "SL"   // sick leave (credited)
	TypeBL   Type = "BL"   // bereavement leave
	TypeSPL  Type = "SPL"  // special leave
	TypeLOA  Type = "LOA"  // leave of absence
	TypeLDV  Type = "LDV"  // leave for domestic violence
	TypeUPTO Type = "UPTO" // unpaid time off; also the zero-credit fallback
)

// knownTypes is the set of recognized submission codes.
var knownTypes = map[Type]bool{
	TypeVL: true, TypeSL: true, TypeBL: true, TypeSPL: true,
	TypeLOA: true, TypeLDV: true, TypeUPTO: true,
}

// Valid reports whether t is a recognized leave type code.
func (t Type) Valid() bool { return knownTypes[t] }

// Credited reports whether this type draws down ledger credits on approval.
// Only VL and SL participate in the split/conversion policy.
func (t Type) Credited() bool { return t == TypeVL || t == TypeSL }

// =============================================================================
// LIFECYCLE STATES
// =============================================================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusDenied    Status = "denied"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is possible (other than
// administrative deletion).
func (s Status) Terminal() bool { return s != StatusPending }

// =============================================================================
// ACTORS AND ROLES
// =============================================================================

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
)

// Actor identifies who performs an operation.
type Actor struct {
	ID   string
	Role Role
}

// =============================================================================
// LEAVE REQUEST
// =============================================================================

// Request is a single leave request. Once approved it is immutable except
// for administrative deletion; the split policy mutates it exactly once at
// the moment dual approval completes.
type Request struct {
	ID         string
	EmployeeID string
	Type       Type
	StartDate  Date
	EndDate    Date

	// DaysRequested is decimal to permit half-day granularity at
	// submission. Credit deduction is always whole days.
	DaysRequested decimal.Decimal

	Reason     string
	Department string
	Status     Status

	// Credit outcome, written by the split policy on final approval.
	CreditsDeducted decimal.Decimal
	CreditsApplied  bool
	NoCreditReason  *string

	// Dual approval tracking. The request stays pending until both the
	// admin and HR approvals are recorded.
	AdminApprovedBy *string
	AdminApprovedAt *time.Time
	HRApprovedBy    *string
	HRApprovedAt    *time.Time

	// Final review (set on approval completion or denial).
	ReviewedBy  *string
	ReviewedAt  *time.Time
	ReviewNotes string

	// LinkedRequestID points from a companion UPTO request back to its
	// parent. Nil for ordinary requests.
	LinkedRequestID *string

	CancellationReason *string

	// FlaggedForReview marks submissions made while the employee carries
	// a high active attendance point total. Informational only.
	FlaggedForReview bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullyApproved reports whether both approver roles have recorded approval.
func (r *Request) FullyApproved() bool {
	return r.AdminApprovedBy != nil && r.HRApprovedBy != nil
}

// PartiallyCredited reports whether the split policy recorded a partial or
// zero credit outcome for this request. Such requests carry a relaxed
// cancellation rule (see capability.go).
func (r *Request) PartiallyCredited() bool { return r.NoCreditReason != nil }

// Companion reports whether this request is the uncredited tail of a split.
func (r *Request) Companion() bool { return r.LinkedRequestID != nil }

// Timing classifies the request's date range relative to now.
func (r *Request) Timing(now Date) Timing {
	switch {
	case now.Before(r.StartDate):
		return TimingFuture
	case now.After(r.EndDate):
		return TimingElapsed
	default:
		return TimingStarted
	}
}

// Timing describes where a request's leave period sits relative to "now".
type Timing string

const (
	TimingFuture  Timing = "future"  // period entirely ahead
	TimingStarted Timing = "started" // period has begun but not ended
	TimingElapsed Timing = "elapsed" // period entirely behind
)

// =============================================================================
// CREDIT LEDGER ROW
// =============================================================================

// CreditMonth is one ledger row: the credits earned, used and remaining for
// an employee in a given month. Rows are created by the monthly accrual
// collaborator; the engine only reads and decrements them.
type CreditMonth struct {
	EmployeeID string
	Year       int
	Month      time.Month
	Earned     decimal.Decimal
	Used       decimal.Decimal
	Balance    decimal.Decimal // invariant: Balance = Earned - Used, never negative
}

// BalanceSummary is the read-only credits-balance query result.
type BalanceSummary struct {
	EmployeeID  string
	Balance     decimal.Decimal
	TotalEarned decimal.Decimal
	TotalUsed   decimal.Decimal
}

// WholeDays truncates the balance down to the nearest whole number of days.
// The fractional remainder stays in the ledger and is never deducted.
func (b BalanceSummary) WholeDays() decimal.Decimal {
	return b.Balance.Floor()
}
