/*
service.go - Leave request lifecycle orchestration

PURPOSE:
  Drives a request through pending -> approved/denied/cancelled, applying
  the submission rules, dual-approval gating, and the split policy at the
  moment both approvals are recorded.

LIFECYCLE:

  Submit ──▶ pending ──▶ first approval (admin XOR hr) ──▶ still pending
                 │                                             │
                 │                              second distinct approval
                 │                                             │
                 │                                             ▼
                 ├──▶ denied                        approved + split policy
                 └──▶ cancelled                     runs exactly once

SUBMISSION-TIME CREDIT GATE:
  VL requires the current whole-day balance to cover the requested days;
  SL does not. Partial credit only ever applies at approval time. This
  asymmetry is deliberate, observed business behavior - do not "fix" it.

IDEMPOTENCY:
  The pending->approved transition is a one-way, single-writer change
  guarded inside the store (ApplyApproval). A repeated approval call after
  full approval fails with ErrIllegalTransition and mutates nothing.

SEE ALSO:
  - policy.go:     the split/conversion decision
  - capability.go: who may cancel/delete and when
*/
package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// highPointFlagThreshold is the active attendance point total at or above
// which a submission is flagged for review.
var highPointFlagThreshold = decimal.NewFromInt(6)

// halfDay is the granularity permitted for days_requested.
var halfDay = decimal.NewFromFloat(0.5)

// AttendanceSource exposes the attendance point accumulator. Consulted at
// submission; never redesigned here.
type AttendanceSource interface {
	ActivePoints(ctx context.Context, employeeID string, now time.Time) (decimal.Decimal, error)
}

// EligibilityFunc evaluates an employee's credit-program eligibility for a
// leave type (e.g. a minimum tenure gate). Evaluated externally and passed
// in; the policy only consumes the boolean.
type EligibilityFunc func(ctx context.Context, employeeID string, t Type, now time.Time) (bool, error)

// Service orchestrates the leave request lifecycle.
type Service struct {
	store    Store
	ledger   *Ledger
	points   AttendanceSource // may be nil; submissions are then never flagged
	eligible EligibilityFunc  // may be nil; employees are then always eligible
	log      *slog.Logger
}

func NewService(store Store, points AttendanceSource, eligible EligibilityFunc, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:    store,
		ledger:   NewLedger(store),
		points:   points,
		eligible: eligible,
		log:      log,
	}
}

// Ledger exposes the service's credit ledger for balance queries.
func (s *Service) Ledger() *Ledger { return s.ledger }

// =============================================================================
// SUBMISSION
// =============================================================================

// Submission is the validated input from the submission boundary.
type Submission struct {
	EmployeeID string
	Type       Type
	StartDate  Date
	EndDate    Date

	// DaysRequested is optional; zero means "all qualifying days in the
	// range". Half-day granularity is permitted.
	DaysRequested decimal.Decimal

	Reason     string
	Department string
}

// Submit creates a pending leave request.
//
// Errors: ErrValidation for malformed fields, ErrForbidden when submitting
// for another employee without a privileged role, ErrDuplicateRequest when
// an identical pending request exists, ErrInsufficientCredit for a VL
// submission the balance cannot cover.
func (s *Service) Submit(ctx context.Context, sub Submission, actor Actor, now time.Time) (*Request, error) {
	if sub.EmployeeID != actor.ID && actor.Role != RoleAdmin && actor.Role != RoleHR {
		return nil, &ForbiddenError{Actor: actor, Action: "submit",
			Reason: "only privileged roles may submit for another employee"}
	}

	days, err := s.validateSubmission(sub, now)
	if err != nil {
		return nil, err
	}

	dup, err := s.store.HasPendingDuplicate(ctx, sub.EmployeeID, sub.Type, sub.StartDate, sub.EndDate)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if dup {
		return nil, fmt.Errorf("%w: a pending %s request for %s to %s already exists",
			ErrDuplicateRequest, sub.Type, sub.StartDate, sub.EndDate)
	}

	// VL is gated on credits at submission; SL is not. Partial credit
	// only applies at approval.
	if sub.Type == TypeVL {
		bal, err := s.ledger.Balance(ctx, sub.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("balance check: %w", err)
		}
		if bal.WholeDays().LessThan(days) {
			return nil, &InsufficientCreditError{
				EmployeeID: sub.EmployeeID,
				Available:  bal.WholeDays(),
				Requested:  days,
			}
		}
	}

	flagged := false
	if s.points != nil {
		pts, err := s.points.ActivePoints(ctx, sub.EmployeeID, now)
		if err != nil {
			return nil, fmt.Errorf("attendance points: %w", err)
		}
		flagged = pts.GreaterThanOrEqual(highPointFlagThreshold)
	}

	req := &Request{
		ID:               uuid.NewString(),
		EmployeeID:       sub.EmployeeID,
		Type:             sub.Type,
		StartDate:        sub.StartDate,
		EndDate:          sub.EndDate,
		DaysRequested:    days,
		Reason:           sub.Reason,
		Department:       sub.Department,
		Status:           StatusPending,
		CreditsDeducted:  decimal.Zero,
		FlaggedForReview: flagged,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("save request: %w", err)
	}

	s.log.Info("leave request submitted",
		"request_id", req.ID,
		"employee_id", req.EmployeeID,
		"type", req.Type,
		"days", req.DaysRequested,
		"flagged", req.FlaggedForReview)
	return req, nil
}

func (s *Service) validateSubmission(sub Submission, now time.Time) (decimal.Decimal, error) {
	if !sub.Type.Valid() {
		return decimal.Zero, &ValidationError{Field: "leave_type",
			Message: fmt.Sprintf("unrecognized leave type %q", sub.Type)}
	}
	if sub.StartDate.IsZero() || sub.EndDate.IsZero() {
		return decimal.Zero, &ValidationError{Field: "start_date", Message: "start and end dates are required"}
	}
	if sub.EndDate.Before(sub.StartDate) {
		return decimal.Zero, &ValidationError{Field: "end_date", Message: "end date before start date"}
	}
	if sub.StartDate.Before(DateOf(now)) {
		return decimal.Zero, &ValidationError{Field: "start_date", Message: "start date is in the past"}
	}
	if n := utf8.RuneCountInString(sub.Reason); n < 10 || n > 1000 {
		return decimal.Zero, &ValidationError{Field: "reason", Message: "must be 10-1000 characters"}
	}

	workdays := CountWorkdays(sub.StartDate, sub.EndDate)
	if workdays == 0 {
		return decimal.Zero, &ValidationError{Field: "start_date",
			Message: "range contains no qualifying days"}
	}

	days := sub.DaysRequested
	if days.IsZero() {
		return decimal.NewFromInt(int64(workdays)), nil
	}
	if !days.IsPositive() {
		return decimal.Zero, &ValidationError{Field: "days_requested", Message: "must be positive"}
	}
	if !days.Mod(halfDay).IsZero() {
		return decimal.Zero, &ValidationError{Field: "days_requested",
			Message: "half-day granularity only (multiples of 0.5)"}
	}
	if days.GreaterThan(decimal.NewFromInt(int64(workdays))) {
		return decimal.Zero, &ValidationError{Field: "days_requested",
			Message: fmt.Sprintf("exceeds the %d qualifying day(s) in range", workdays)}
	}
	return days, nil
}

// =============================================================================
// DUAL APPROVAL
// =============================================================================

// Approve records one approver role's approval. The request stays pending
// until both distinct roles have acted; the second approval transitions it
// to approved and runs the split policy exactly once.
func (s *Service) Approve(ctx context.Context, requestID string, approver Actor, notes string, now time.Time) (*Request, error) {
	if approver.Role != RoleAdmin && approver.Role != RoleHR {
		return nil, &ForbiddenError{Actor: approver, Action: "approve",
			Reason: "only admin and HR roles may approve"}
	}

	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, &TransitionError{RequestID: req.ID, From: req.Status, Attempted: "approve"}
	}

	switch approver.Role {
	case RoleAdmin:
		if req.AdminApprovedBy != nil {
			return nil, &TransitionError{RequestID: req.ID, From: req.Status,
				Attempted: "record a second admin approval"}
		}
		req.AdminApprovedBy = &approver.ID
		req.AdminApprovedAt = &now
	case RoleHR:
		if req.HRApprovedBy != nil {
			return nil, &TransitionError{RequestID: req.ID, From: req.Status,
				Attempted: "record a second HR approval"}
		}
		req.HRApprovedBy = &approver.ID
		req.HRApprovedAt = &now
	}
	req.UpdatedAt = now

	if !req.FullyApproved() {
		if err := s.store.SaveRequest(ctx, req); err != nil {
			return nil, fmt.Errorf("save approval: %w", err)
		}
		s.log.Info("approval recorded, awaiting second approver",
			"request_id", req.ID, "role", approver.Role)
		return req, nil
	}

	return s.finalizeApproval(ctx, req, approver, notes, now)
}

// finalizeApproval completes the pending->approved transition and applies
// the split policy outcome atomically.
func (s *Service) finalizeApproval(ctx context.Context, req *Request, approver Actor, notes string, now time.Time) (*Request, error) {
	req.Status = StatusApproved
	req.ReviewedBy = &approver.ID
	req.ReviewedAt = &now
	req.ReviewNotes = notes

	var (
		balance  = decimal.Zero
		eligible = true
	)
	if req.Type.Credited() {
		bal, err := s.ledger.Balance(ctx, req.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("balance snapshot: %w", err)
		}
		balance = bal.Balance

		if s.eligible != nil {
			eligible, err = s.eligible(ctx, req.EmployeeID, req.Type, now)
			if err != nil {
				return nil, fmt.Errorf("eligibility check: %w", err)
			}
		}
	}

	outcome := Evaluate(*req, balance, eligible)
	if outcome.Companion != nil {
		outcome.Companion.ID = uuid.NewString()
		outcome.Companion.CreatedAt = now
		outcome.Companion.UpdatedAt = now
	}

	if err := s.store.ApplyApproval(ctx, &outcome.Parent, outcome.Companion, outcome.Deduction); err != nil {
		return nil, err
	}

	s.log.Info("leave request approved",
		"request_id", outcome.Parent.ID,
		"type", outcome.Parent.Type,
		"credits_deducted", outcome.Parent.CreditsDeducted,
		"split", outcome.Companion != nil)
	return &outcome.Parent, nil
}

// Deny transitions a pending request to denied. Either approver role may
// deny at any point before both approvals are recorded. No credit mutation.
func (s *Service) Deny(ctx context.Context, requestID string, approver Actor, notes string, now time.Time) (*Request, error) {
	if approver.Role != RoleAdmin && approver.Role != RoleHR {
		return nil, &ForbiddenError{Actor: approver, Action: "deny",
			Reason: "only admin and HR roles may deny"}
	}

	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, &TransitionError{RequestID: req.ID, From: req.Status, Attempted: "deny"}
	}

	req.Status = StatusDenied
	req.ReviewedBy = &approver.ID
	req.ReviewedAt = &now
	req.ReviewNotes = notes
	req.UpdatedAt = now

	if err := s.store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("save denial: %w", err)
	}
	s.log.Info("leave request denied", "request_id", req.ID, "by", approver.ID)
	return req, nil
}

// =============================================================================
// CANCELLATION AND DELETION
// =============================================================================

// Cancel cancels a request per the capability table. A non-empty reason is
// mandatory. Cancellation never restores deducted credits.
func (s *Service) Cancel(ctx context.Context, requestID string, actor Actor, reason string, now time.Time) (*Request, error) {
	if reason == "" {
		return nil, &ValidationError{Field: "cancellation_reason", Message: "is required"}
	}

	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := Allowed(actor, ActionCancel, req, DateOf(now)); err != nil {
		return nil, err
	}

	req.Status = StatusCancelled
	req.CancellationReason = &reason
	req.UpdatedAt = now

	if err := s.store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("save cancellation: %w", err)
	}
	s.log.Info("leave request cancelled", "request_id", req.ID, "by", actor.ID)
	return req, nil
}

// Delete removes a request per the capability table. Deleting an approved
// request with nonzero credits deducted leaves the ledger untouched.
func (s *Service) Delete(ctx context.Context, requestID string, actor Actor, now time.Time) error {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if err := Allowed(actor, ActionDelete, req, DateOf(now)); err != nil {
		return err
	}

	if err := s.store.DeleteRequest(ctx, requestID); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	s.log.Info("leave request deleted",
		"request_id", req.ID, "by", actor.ID, "credits_deducted", req.CreditsDeducted)
	return nil
}

// =============================================================================
// QUERIES AND ACCRUAL
// =============================================================================

// Balance is the read-only credits-balance query.
func (s *Service) Balance(ctx context.Context, employeeID string) (BalanceSummary, error) {
	return s.ledger.Balance(ctx, employeeID)
}

// Requests lists an employee's requests.
func (s *Service) Requests(ctx context.Context, employeeID string) ([]Request, error) {
	return s.store.RequestsByEmployee(ctx, employeeID)
}

// Pending lists requests awaiting approval.
func (s *Service) Pending(ctx context.Context) ([]Request, error) {
	return s.store.PendingRequests(ctx)
}

// Accrue records a monthly credit grant or backfill for an employee.
func (s *Service) Accrue(ctx context.Context, employeeID string, year int, month time.Month, amount decimal.Decimal) (*CreditMonth, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Message: "must be positive"}
	}
	if month < time.January || month > time.December {
		return nil, &ValidationError{Field: "month", Message: "must be 1-12"}
	}
	row, err := s.store.Accrue(ctx, employeeID, year, month, amount)
	if err != nil {
		return nil, fmt.Errorf("accrue: %w", err)
	}
	s.log.Info("credits accrued",
		"employee_id", employeeID, "year", year, "month", int(month), "amount", amount)
	return row, nil
}
