// Package store provides an in-memory leave.Store implementation
// (for testing/dev).
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BisoyJan/primehub-systems-sub013/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	requests map[string]leave.Request
	months   map[monthKey]leave.CreditMonth
}

type monthKey struct {
	EmployeeID string
	Year       int
	Month      time.Month
}

func NewMemory() *Memory {
	return &Memory{
		requests: make(map[string]leave.Request),
		months:   make(map[monthKey]leave.CreditMonth),
	}
}

var _ leave.Store = (*Memory)(nil)

// =============================================================================
// REQUESTS
// =============================================================================

func (m *Memory) SaveRequest(_ context.Context, r *leave.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = *r
	return nil
}

func (m *Memory) GetRequest(_ context.Context, id string) (*leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, leave.ErrNotFound
	}
	return &r, nil
}

func (m *Memory) RequestsByEmployee(_ context.Context, employeeID string) ([]leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.Request
	for _, r := range m.requests {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) PendingRequests(_ context.Context) ([]leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.Request
	for _, r := range m.requests {
		if r.Status == leave.StatusPending {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) HasPendingDuplicate(_ context.Context, employeeID string, t leave.Type, start, end leave.Date) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.requests {
		if r.EmployeeID == employeeID && r.Type == t && r.Status == leave.StatusPending &&
			r.StartDate.Equal(start) && r.EndDate.Equal(end) {
			return true, nil
		}
	}
	return false, nil
}

// ApplyApproval mimics the transactional apply of the SQLite store: the
// status guard, parent update, companion insert and ledger deduction all
// happen under one lock, or not at all.
func (m *Memory) ApplyApproval(_ context.Context, parent *leave.Request, companion *leave.Request, deduction decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.requests[parent.ID]
	if !ok {
		return leave.ErrNotFound
	}
	if stored.Status != leave.StatusPending {
		return &leave.TransitionError{RequestID: parent.ID, From: stored.Status, Attempted: "approve"}
	}

	var plan []leave.MonthDeduction
	if deduction.IsPositive() {
		months := m.monthsForLocked(parent.EmployeeID)
		var err error
		plan, err = leave.PlanDeduction(parent.EmployeeID, months, deduction)
		if err != nil {
			return err
		}
	}

	for _, d := range plan {
		k := monthKey{EmployeeID: parent.EmployeeID, Year: d.Year, Month: time.Month(d.Month)}
		row := m.months[k]
		row.Used = row.Used.Add(d.Amount)
		row.Balance = row.Balance.Sub(d.Amount)
		m.months[k] = row
	}

	m.requests[parent.ID] = *parent
	if companion != nil {
		m.requests[companion.ID] = *companion
	}
	return nil
}

func (m *Memory) DeleteRequest(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return leave.ErrNotFound
	}
	delete(m.requests, id)
	return nil
}

// =============================================================================
// LEDGER
// =============================================================================

func (m *Memory) CreditMonths(_ context.Context, employeeID string) ([]leave.CreditMonth, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.monthsForLocked(employeeID), nil
}

func (m *Memory) monthsForLocked(employeeID string) []leave.CreditMonth {
	var out []leave.CreditMonth
	for _, row := range m.months {
		if row.EmployeeID == employeeID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

func (m *Memory) Accrue(_ context.Context, employeeID string, year int, month time.Month, amount decimal.Decimal) (*leave.CreditMonth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := monthKey{EmployeeID: employeeID, Year: year, Month: month}
	row, ok := m.months[k]
	if !ok {
		row = leave.CreditMonth{
			EmployeeID: employeeID,
			Year:       year,
			Month:      month,
			Earned:     decimal.Zero,
			Used:       decimal.Zero,
			Balance:    decimal.Zero,
		}
	}
	row.Earned = row.Earned.Add(amount)
	row.Balance = row.Balance.Add(amount)
	m.months[k] = row
	return &row, nil
}

func (m *Memory) ApplyDeduction(_ context.Context, employeeID string, plan []leave.MonthDeduction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Validate before writing: the whole plan applies or none of it.
	for _, d := range plan {
		k := monthKey{EmployeeID: employeeID, Year: d.Year, Month: time.Month(d.Month)}
		row, ok := m.months[k]
		if !ok || row.Balance.LessThan(d.Amount) {
			return &leave.InsufficientCreditError{
				EmployeeID: employeeID,
				Available:  row.Balance.Floor(),
				Requested:  d.Amount,
			}
		}
	}
	for _, d := range plan {
		k := monthKey{EmployeeID: employeeID, Year: d.Year, Month: time.Month(d.Month)}
		row := m.months[k]
		row.Used = row.Used.Add(d.Amount)
		row.Balance = row.Balance.Sub(d.Amount)
		m.months[k] = row
	}
	return nil
}
