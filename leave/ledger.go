/*
ledger.go - Credit ledger: balance aggregation and whole-day deduction

PURPOSE:
  Answers "how many whole days of credit are available" and "deduct N whole
  days". Rows live per (employee, year, month); the engine only reads and
  decrements them. Accrual is an external collaborator.

INVARIANTS:
  1. WHOLE-DAY DEDUCTION: deductions are always whole numbers of days. A
     balance of 2.75 allows at most 2 to be deducted in one operation; the
     0.75 remainder is preserved for future use.
  2. OLDEST FIRST: deductions consume the oldest month's balance first.
  3. NON-RESTORATION: deleting or cancelling a request that already
     deducted credits never reverses the deduction. There is deliberately
     no inverse of Deduct.

EXAMPLE:
  balance 2.75 (Jan 1.50, Feb 1.25), deduct 2
    -> Jan used +1.50 (balance 0), Feb used +0.50 (balance 0.75)

SEE ALSO:
  - policy.go: computes the whole-day amount at approval time
  - store.go:  ApplyDeduction persists the plan atomically
*/
package leave

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER - Read and deduct over CreditMonth rows
// =============================================================================

// Ledger answers balance queries and performs whole-day deductions against
// a LedgerStore.
type Ledger struct {
	store LedgerStore
}

func NewLedger(store LedgerStore) *Ledger {
	return &Ledger{store: store}
}

// Balance returns the employee's aggregate balance, total earned and total
// used across all ledger months.
func (l *Ledger) Balance(ctx context.Context, employeeID string) (BalanceSummary, error) {
	months, err := l.store.CreditMonths(ctx, employeeID)
	if err != nil {
		return BalanceSummary{}, fmt.Errorf("load ledger rows: %w", err)
	}
	return Summarize(employeeID, months), nil
}

// Deduct removes wholeDays from the employee's balance, oldest month first.
// Fails with ErrInsufficientCredit if wholeDays exceeds the floored balance,
// or if wholeDays is not a whole number (a caller that skipped the floor
// step).
func (l *Ledger) Deduct(ctx context.Context, employeeID string, wholeDays decimal.Decimal) error {
	months, err := l.store.CreditMonths(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("load ledger rows: %w", err)
	}
	plan, err := PlanDeduction(employeeID, months, wholeDays)
	if err != nil {
		return err
	}
	if len(plan) == 0 {
		return nil
	}
	return l.store.ApplyDeduction(ctx, employeeID, plan)
}

// =============================================================================
// PURE LEDGER ARITHMETIC
// =============================================================================

// Summarize aggregates ledger rows into a balance summary.
func Summarize(employeeID string, months []CreditMonth) BalanceSummary {
	s := BalanceSummary{
		EmployeeID:  employeeID,
		Balance:     decimal.Zero,
		TotalEarned: decimal.Zero,
		TotalUsed:   decimal.Zero,
	}
	for _, m := range months {
		s.Balance = s.Balance.Add(m.Balance)
		s.TotalEarned = s.TotalEarned.Add(m.Earned)
		s.TotalUsed = s.TotalUsed.Add(m.Used)
	}
	return s
}

// MonthDeduction is one step of a deduction plan: take Amount from the
// (Year, Month) row.
type MonthDeduction struct {
	Year   int
	Month  int
	Amount decimal.Decimal
}

// PlanDeduction computes how wholeDays spreads across ledger months,
// oldest first. Individual months may contribute fractional amounts, but
// the total is always the requested whole number of days.
//
// Errors:
//   - ErrInsufficientCredit if wholeDays is fractional or exceeds the
//     floored aggregate balance.
func PlanDeduction(employeeID string, months []CreditMonth, wholeDays decimal.Decimal) ([]MonthDeduction, error) {
	if wholeDays.IsNegative() {
		return nil, &ValidationError{Field: "whole_days", Message: "must not be negative"}
	}
	if wholeDays.IsZero() {
		return nil, nil
	}

	total := decimal.Zero
	for _, m := range months {
		total = total.Add(m.Balance)
	}

	// The ledger never deducts a fractional credit, and never more than
	// the floored balance.
	if !wholeDays.Equal(wholeDays.Floor()) || wholeDays.GreaterThan(total.Floor()) {
		return nil, &InsufficientCreditError{
			EmployeeID: employeeID,
			Available:  total.Floor(),
			Requested:  wholeDays,
		}
	}

	ordered := make([]CreditMonth, len(months))
	copy(ordered, months)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Year != ordered[j].Year {
			return ordered[i].Year < ordered[j].Year
		}
		return ordered[i].Month < ordered[j].Month
	})

	var plan []MonthDeduction
	remaining := wholeDays
	for _, m := range ordered {
		if remaining.IsZero() {
			break
		}
		if !m.Balance.IsPositive() {
			continue
		}
		take := decimal.Min(m.Balance, remaining)
		plan = append(plan, MonthDeduction{Year: m.Year, Month: int(m.Month), Amount: take})
		remaining = remaining.Sub(take)
	}

	// invariant: the floor check guarantees the plan covers wholeDays
	if !remaining.IsZero() {
		return nil, &InsufficientCreditError{
			EmployeeID: employeeID,
			Available:  total.Floor(),
			Requested:  wholeDays,
		}
	}
	return plan, nil
}
