/*
store.go - Persistence contracts for the leave engine

PURPOSE:
  The rules engine depends only on these narrow interfaces, not on any
  specific persistence mechanism. Any relational store with atomic per-row
  updates satisfies them.

IMPLEMENTATIONS:
  store/sqlite:     SQLite-backed production store
  leave/store:      In-memory store for tests

CONCURRENCY:
  The store serializes ledger mutation per employee. ApplyApproval is the
  single write path for the pending->approved transition: it guards on the
  current status so the split policy can never run twice, and it applies the
  request mutation, companion insert, and ledger deduction as one atomic
  unit.
*/
package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Store is the repository contract for requests and the credit ledger.
type Store interface {
	RequestStore
	LedgerStore
}

// RequestStore persists leave requests.
type RequestStore interface {
	// SaveRequest inserts or updates a request.
	SaveRequest(ctx context.Context, r *Request) error

	// GetRequest returns a request by id, or ErrNotFound.
	GetRequest(ctx context.Context, id string) (*Request, error)

	// RequestsByEmployee returns all requests for an employee, newest first.
	RequestsByEmployee(ctx context.Context, employeeID string) ([]Request, error)

	// PendingRequests returns all requests awaiting approval.
	PendingRequests(ctx context.Context) ([]Request, error)

	// HasPendingDuplicate reports whether a pending request with identical
	// employee, type and date range already exists.
	HasPendingDuplicate(ctx context.Context, employeeID string, t Type, start, end Date) (bool, error)

	// ApplyApproval finalizes dual approval atomically:
	//   1. persists the parent mutation, guarded on the stored status still
	//      being pending (returns ErrIllegalTransition otherwise),
	//   2. inserts the optional companion request,
	//   3. deducts the given whole-day amount from the employee's ledger,
	//      oldest month first (returns ErrInsufficientCredit if the ledger
	//      no longer covers it).
	// Nothing is written if any step fails.
	ApplyApproval(ctx context.Context, parent *Request, companion *Request, deduction decimal.Decimal) error

	// DeleteRequest removes a request. Never touches the ledger.
	DeleteRequest(ctx context.Context, id string) error
}

// LedgerStore persists per-month credit rows. The engine reads and
// decrements rows; only the accrual collaborator creates them.
type LedgerStore interface {
	// CreditMonths returns all ledger rows for an employee, oldest first.
	CreditMonths(ctx context.Context, employeeID string) ([]CreditMonth, error)

	// Accrue creates or increments the (employee, year, month) row.
	// Used by the monthly accrual/backfill collaborator.
	Accrue(ctx context.Context, employeeID string, year int, month time.Month, amount decimal.Decimal) (*CreditMonth, error)

	// ApplyDeduction executes a deduction plan atomically. The plan must
	// come from PlanDeduction against a fresh read of the rows; the store
	// re-validates balances before writing.
	ApplyDeduction(ctx context.Context, employeeID string, plan []MonthDeduction) error
}
