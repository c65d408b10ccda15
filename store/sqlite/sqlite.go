/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements leave.Store and attendance.Store (plus employee records) using
  SQLite. In production the same patterns apply to PostgreSQL - only minor
  SQL dialect differences.

KEY TABLES:
  leave_requests:     Request lifecycle rows
  credit_months:      Ledger rows per (employee, year, month)
  attendance_points:  Violation points with expiration tags
  employees:          Entity records (hire date feeds the eligibility gate)

CONCURRENCY:
  Uses sync.Mutex around every write so ledger mutation is serialized per
  process; ApplyApproval additionally guards the pending->approved
  transition with a conditional UPDATE, so two simultaneous approvals
  cannot both read the same balance and double-spend credit.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers don't
  block, a single writer at a time, better crash recovery.

NON-RESTORATION:
  There is deliberately no code path that decrements credits_used. Request
  deletion is a plain DELETE; the ledger rows keep their post-deduction
  values.

USAGE:
  store, err := sqlite.New("./data/leave.db")   // or ":memory:"
  svc := leave.NewService(store, tracker, elig, logger)
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/BisoyJan/primehub-systems-sub013/attendance"
	"github.com/BisoyJan/primehub-systems-sub013/leave"
)

const (
	dateFormat = "2006-01-02"
	timeFormat = time.RFC3339
)

// Store implements the persistence interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

var (
	_ leave.Store      = (*Store)(nil)
	_ attendance.Store = (*Store)(nil)
)

// New creates a SQLite store. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Leave requests
	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days_requested TEXT NOT NULL,
		reason TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		credits_deducted TEXT NOT NULL DEFAULT '0',
		credits_applied BOOLEAN NOT NULL DEFAULT FALSE,
		no_credit_reason TEXT,
		admin_approved_by TEXT,
		admin_approved_at TEXT,
		hr_approved_by TEXT,
		hr_approved_at TEXT,
		reviewed_by TEXT,
		reviewed_at TEXT,
		review_notes TEXT NOT NULL DEFAULT '',
		linked_request_id TEXT,
		cancellation_reason TEXT,
		flagged_for_review BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_employee
		ON leave_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON leave_requests(status);

	-- Duplicate-pending lookups
	CREATE INDEX IF NOT EXISTS idx_requests_employee_type_range
		ON leave_requests(employee_id, leave_type, start_date, end_date)
		WHERE status = 'pending';

	-- Companion lookups
	CREATE INDEX IF NOT EXISTS idx_requests_linked
		ON leave_requests(linked_request_id) WHERE linked_request_id IS NOT NULL;

	-- Credit ledger: one row per employee-month
	CREATE TABLE IF NOT EXISTS credit_months (
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		credits_earned TEXT NOT NULL,
		credits_used TEXT NOT NULL,
		credits_balance TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, year, month)
	);

	-- Attendance violation points
	CREATE TABLE IF NOT EXISTS attendance_points (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		shift_date TEXT NOT NULL,
		point_type TEXT NOT NULL,
		points TEXT NOT NULL,
		policy TEXT NOT NULL,
		expires_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_points_employee
		ON attendance_points(employee_id, expires_at);

	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		hire_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// REQUEST STORE (leave.RequestStore interface)
// =============================================================================

const requestColumns = `id, employee_id, leave_type, start_date, end_date, days_requested,
	reason, department, status, credits_deducted, credits_applied, no_credit_reason,
	admin_approved_by, admin_approved_at, hr_approved_by, hr_approved_at,
	reviewed_by, reviewed_at, review_notes, linked_request_id, cancellation_reason,
	flagged_for_review, created_at, updated_at`

// SaveRequest inserts or updates a request row.
func (s *Store) SaveRequest(ctx context.Context, r *leave.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveRequest(ctx, s.db, r)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) saveRequest(ctx context.Context, db execer, r *leave.Request) error {
	query := `
		INSERT INTO leave_requests (` + requestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			leave_type = excluded.leave_type,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			days_requested = excluded.days_requested,
			status = excluded.status,
			credits_deducted = excluded.credits_deducted,
			credits_applied = excluded.credits_applied,
			no_credit_reason = excluded.no_credit_reason,
			admin_approved_by = excluded.admin_approved_by,
			admin_approved_at = excluded.admin_approved_at,
			hr_approved_by = excluded.hr_approved_by,
			hr_approved_at = excluded.hr_approved_at,
			reviewed_by = excluded.reviewed_by,
			reviewed_at = excluded.reviewed_at,
			review_notes = excluded.review_notes,
			cancellation_reason = excluded.cancellation_reason,
			updated_at = excluded.updated_at
	`
	_, err := db.ExecContext(ctx, query, requestArgs(r)...)
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

func requestArgs(r *leave.Request) []any {
	return []any{
		r.ID,
		r.EmployeeID,
		string(r.Type),
		r.StartDate.String(),
		r.EndDate.String(),
		r.DaysRequested.String(),
		r.Reason,
		r.Department,
		string(r.Status),
		r.CreditsDeducted.String(),
		r.CreditsApplied,
		nullString(r.NoCreditReason),
		nullString(r.AdminApprovedBy),
		nullTime(r.AdminApprovedAt),
		nullString(r.HRApprovedBy),
		nullTime(r.HRApprovedAt),
		nullString(r.ReviewedBy),
		nullTime(r.ReviewedAt),
		r.ReviewNotes,
		nullString(r.LinkedRequestID),
		nullString(r.CancellationReason),
		r.FlaggedForReview,
		r.CreatedAt.UTC().Format(timeFormat),
		r.UpdatedAt.UTC().Format(timeFormat),
	}
}

// GetRequest returns a request by id.
func (s *Store) GetRequest(ctx context.Context, id string) (*leave.Request, error) {
	rows, err := s.queryRequests(ctx, `SELECT `+requestColumns+` FROM leave_requests WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("request %s: %w", id, leave.ErrNotFound)
	}
	return &rows[0], nil
}

// RequestsByEmployee returns an employee's requests, newest first.
func (s *Store) RequestsByEmployee(ctx context.Context, employeeID string) ([]leave.Request, error) {
	return s.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM leave_requests WHERE employee_id = ? ORDER BY created_at DESC`,
		employeeID)
}

// PendingRequests returns all requests awaiting approval, oldest first.
func (s *Store) PendingRequests(ctx context.Context) ([]leave.Request, error) {
	return s.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM leave_requests WHERE status = 'pending' ORDER BY created_at ASC`)
}

// HasPendingDuplicate checks for an identical pending request.
func (s *Store) HasPendingDuplicate(ctx context.Context, employeeID string, t leave.Type, start, end leave.Date) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM leave_requests
		WHERE employee_id = ? AND leave_type = ? AND start_date = ? AND end_date = ?
		  AND status = 'pending'
	`, employeeID, string(t), start.String(), end.String()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicates: %w", err)
	}
	return count > 0, nil
}

// ApplyApproval finalizes dual approval in one transaction:
//  1. conditional UPDATE guarded on status='pending' (the split policy can
//     never run twice for a request),
//  2. companion insert,
//  3. ledger deduction, oldest month first, re-validated against the rows
//     as they exist inside the transaction.
func (s *Store) ApplyApproval(ctx context.Context, parent *leave.Request, companion *leave.Request, deduction decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE leave_requests SET
			leave_type = ?, start_date = ?, end_date = ?, days_requested = ?,
			status = ?, credits_deducted = ?, credits_applied = ?, no_credit_reason = ?,
			admin_approved_by = ?, admin_approved_at = ?, hr_approved_by = ?, hr_approved_at = ?,
			reviewed_by = ?, reviewed_at = ?, review_notes = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'
	`,
		string(parent.Type), parent.StartDate.String(), parent.EndDate.String(), parent.DaysRequested.String(),
		string(parent.Status), parent.CreditsDeducted.String(), parent.CreditsApplied, nullString(parent.NoCreditReason),
		nullString(parent.AdminApprovedBy), nullTime(parent.AdminApprovedAt),
		nullString(parent.HRApprovedBy), nullTime(parent.HRApprovedAt),
		nullString(parent.ReviewedBy), nullTime(parent.ReviewedAt),
		parent.ReviewNotes, parent.UpdatedAt.UTC().Format(timeFormat),
		parent.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to apply approval: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to apply approval: %w", err)
	}
	if affected == 0 {
		return &leave.TransitionError{RequestID: parent.ID, From: leave.StatusApproved, Attempted: "approve"}
	}

	if companion != nil {
		if err := s.saveRequest(ctx, tx, companion); err != nil {
			return err
		}
	}

	if deduction.IsPositive() {
		months, err := s.creditMonthsTx(ctx, tx, parent.EmployeeID)
		if err != nil {
			return err
		}
		plan, err := leave.PlanDeduction(parent.EmployeeID, months, deduction)
		if err != nil {
			return err
		}
		if err := s.applyDeductionTx(ctx, tx, parent.EmployeeID, plan, parent.UpdatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteRequest removes a request row. Ledger rows are untouched.
func (s *Store) DeleteRequest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM leave_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("request %s: %w", id, leave.ErrNotFound)
	}
	return nil
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]leave.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var out []leave.Request
	for rows.Next() {
		var (
			r                         leave.Request
			leaveType, status         string
			startDate, endDate        string
			daysRequested, deducted   string
			noCreditReason            sql.NullString
			adminBy, hrBy, reviewedBy sql.NullString
			adminAt, hrAt, reviewedAt sql.NullString
			linkedID, cancelReason    sql.NullString
			createdAt, updatedAt      string
		)
		if err := rows.Scan(
			&r.ID, &r.EmployeeID, &leaveType, &startDate, &endDate, &daysRequested,
			&r.Reason, &r.Department, &status, &deducted, &r.CreditsApplied, &noCreditReason,
			&adminBy, &adminAt, &hrBy, &hrAt,
			&reviewedBy, &reviewedAt, &r.ReviewNotes, &linkedID, &cancelReason,
			&r.FlaggedForReview, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}

		r.Type = leave.Type(leaveType)
		r.Status = leave.Status(status)
		if r.StartDate, err = leave.ParseDate(startDate); err != nil {
			return nil, err
		}
		if r.EndDate, err = leave.ParseDate(endDate); err != nil {
			return nil, err
		}
		if r.DaysRequested, err = decimal.NewFromString(daysRequested); err != nil {
			return nil, fmt.Errorf("failed to parse days_requested: %w", err)
		}
		if r.CreditsDeducted, err = decimal.NewFromString(deducted); err != nil {
			return nil, fmt.Errorf("failed to parse credits_deducted: %w", err)
		}
		r.NoCreditReason = strPtr(noCreditReason)
		r.AdminApprovedBy = strPtr(adminBy)
		r.AdminApprovedAt = timePtr(adminAt)
		r.HRApprovedBy = strPtr(hrBy)
		r.HRApprovedAt = timePtr(hrAt)
		r.ReviewedBy = strPtr(reviewedBy)
		r.ReviewedAt = timePtr(reviewedAt)
		r.LinkedRequestID = strPtr(linkedID)
		r.CancellationReason = strPtr(cancelReason)
		r.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		r.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// LEDGER STORE (leave.LedgerStore interface)
// =============================================================================

// CreditMonths returns all ledger rows for an employee, oldest first.
func (s *Store) CreditMonths(ctx context.Context, employeeID string) ([]leave.CreditMonth, error) {
	return s.creditMonthsTx(ctx, s.db, employeeID)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) creditMonthsTx(ctx context.Context, db querier, employeeID string) ([]leave.CreditMonth, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT employee_id, year, month, credits_earned, credits_used, credits_balance
		FROM credit_months
		WHERE employee_id = ?
		ORDER BY year ASC, month ASC
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger rows: %w", err)
	}
	defer rows.Close()

	var out []leave.CreditMonth
	for rows.Next() {
		var (
			m                     leave.CreditMonth
			month                 int
			earned, used, balance string
		)
		if err := rows.Scan(&m.EmployeeID, &m.Year, &month, &earned, &used, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		m.Month = time.Month(month)
		if m.Earned, err = decimal.NewFromString(earned); err != nil {
			return nil, fmt.Errorf("failed to parse credits_earned: %w", err)
		}
		if m.Used, err = decimal.NewFromString(used); err != nil {
			return nil, fmt.Errorf("failed to parse credits_used: %w", err)
		}
		if m.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("failed to parse credits_balance: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Accrue creates or increments a ledger row.
func (s *Store) Accrue(ctx context.Context, employeeID string, year int, month time.Month, amount decimal.Decimal) (*leave.CreditMonth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := leave.CreditMonth{
		EmployeeID: employeeID,
		Year:       year,
		Month:      month,
		Earned:     decimal.Zero,
		Used:       decimal.Zero,
		Balance:    decimal.Zero,
	}

	var earned, used, balance string
	err = tx.QueryRowContext(ctx, `
		SELECT credits_earned, credits_used, credits_balance
		FROM credit_months WHERE employee_id = ? AND year = ? AND month = ?
	`, employeeID, year, int(month)).Scan(&earned, &used, &balance)
	switch {
	case err == nil:
		if row.Earned, err = decimal.NewFromString(earned); err != nil {
			return nil, fmt.Errorf("failed to parse credits_earned: %w", err)
		}
		if row.Used, err = decimal.NewFromString(used); err != nil {
			return nil, fmt.Errorf("failed to parse credits_used: %w", err)
		}
		if row.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("failed to parse credits_balance: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		// first accrual for this month
	default:
		return nil, fmt.Errorf("failed to read ledger row: %w", err)
	}

	row.Earned = row.Earned.Add(amount)
	row.Balance = row.Balance.Add(amount)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credit_months (employee_id, year, month, credits_earned, credits_used, credits_balance, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, year, month) DO UPDATE SET
			credits_earned = excluded.credits_earned,
			credits_balance = excluded.credits_balance,
			updated_at = excluded.updated_at
	`, employeeID, year, int(month),
		row.Earned.String(), row.Used.String(), row.Balance.String(),
		time.Now().UTC().Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to accrue credits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &row, nil
}

// ApplyDeduction executes a deduction plan atomically.
func (s *Store) ApplyDeduction(ctx context.Context, employeeID string, plan []leave.MonthDeduction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.applyDeductionTx(ctx, tx, employeeID, plan, time.Now()); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) applyDeductionTx(ctx context.Context, tx *sql.Tx, employeeID string, plan []leave.MonthDeduction, at time.Time) error {
	for _, d := range plan {
		var used, balance string
		err := tx.QueryRowContext(ctx, `
			SELECT credits_used, credits_balance
			FROM credit_months WHERE employee_id = ? AND year = ? AND month = ?
		`, employeeID, d.Year, d.Month).Scan(&used, &balance)
		if err != nil {
			return fmt.Errorf("failed to read ledger row %d-%02d: %w", d.Year, d.Month, err)
		}

		curUsed, err := decimal.NewFromString(used)
		if err != nil {
			return fmt.Errorf("failed to parse credits_used: %w", err)
		}
		curBalance, err := decimal.NewFromString(balance)
		if err != nil {
			return fmt.Errorf("failed to parse credits_balance: %w", err)
		}
		if curBalance.LessThan(d.Amount) {
			return &leave.InsufficientCreditError{
				EmployeeID: employeeID,
				Available:  curBalance.Floor(),
				Requested:  d.Amount,
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE credit_months
			SET credits_used = ?, credits_balance = ?, updated_at = ?
			WHERE employee_id = ? AND year = ? AND month = ?
		`, curUsed.Add(d.Amount).String(), curBalance.Sub(d.Amount).String(),
			at.UTC().Format(timeFormat), employeeID, d.Year, d.Month)
		if err != nil {
			return fmt.Errorf("failed to deduct credits: %w", err)
		}
	}
	return nil
}

// =============================================================================
// ATTENDANCE STORE (attendance.Store interface)
// =============================================================================

// SavePoint records one attendance violation point.
func (s *Store) SavePoint(ctx context.Context, p *attendance.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expires any
	if p.ExpiresAt != nil {
		expires = p.ExpiresAt.UTC().Format(timeFormat)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_points (id, employee_id, shift_date, point_type, points, policy, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.EmployeeID, p.ShiftDate.UTC().Format(dateFormat), string(p.Type),
		p.Points.String(), string(p.Policy), expires, p.CreatedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("failed to save attendance point: %w", err)
	}
	return nil
}

// PointsByEmployee returns all recorded points for an employee.
func (s *Store) PointsByEmployee(ctx context.Context, employeeID string) ([]attendance.Point, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, shift_date, point_type, points, policy, expires_at, created_at
		FROM attendance_points
		WHERE employee_id = ?
		ORDER BY shift_date ASC
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance points: %w", err)
	}
	defer rows.Close()

	var out []attendance.Point
	for rows.Next() {
		var (
			p                 attendance.Point
			shiftDate, points string
			pointType, policy string
			expiresAt         sql.NullString
			createdAt         string
		)
		if err := rows.Scan(&p.ID, &p.EmployeeID, &shiftDate, &pointType, &points, &policy, &expiresAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance point: %w", err)
		}
		p.Type = attendance.PointType(pointType)
		p.Policy = attendance.ExpirationPolicy(policy)
		if p.ShiftDate, err = time.Parse(dateFormat, shiftDate); err != nil {
			return nil, fmt.Errorf("failed to parse shift_date: %w", err)
		}
		if p.Points, err = decimal.NewFromString(points); err != nil {
			return nil, fmt.Errorf("failed to parse points: %w", err)
		}
		p.ExpiresAt = timePtr(expiresAt)
		p.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// Employee is an entity record. The hire date feeds the tenure-based
// eligibility gate.
type Employee struct {
	ID        string
	Name      string
	Email     string
	HireDate  time.Time
	CreatedAt time.Time
}

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			hire_date = excluded.hire_date
	`, emp.ID, emp.Name, emp.Email,
		emp.HireDate.UTC().Format(dateFormat),
		emp.CreatedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee returns an employee by id, or nil when absent.
func (s *Store) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	var (
		emp                 Employee
		hireDate, createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, hire_date, created_at FROM employees WHERE id = ?
	`, id).Scan(&emp.ID, &emp.Name, &emp.Email, &hireDate, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if emp.HireDate, err = time.Parse(dateFormat, hireDate); err != nil {
		return nil, fmt.Errorf("failed to parse hire_date: %w", err)
	}
	emp.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, hire_date, created_at FROM employees ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var (
			emp                 Employee
			hireDate, createdAt string
		)
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.Email, &hireDate, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		if emp.HireDate, err = time.Parse(dateFormat, hireDate); err != nil {
			return nil, fmt.Errorf("failed to parse hire_date: %w", err)
		}
		emp.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		out = append(out, emp)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s *string) any {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return *s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeFormat)
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timePtr(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(timeFormat, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
