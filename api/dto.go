/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

ACTOR FIELDS:
  There is no authentication layer; the caller identifies itself with
  actor_id/actor_role fields on mutating requests (or X-Actor-ID and
  X-Actor-Role headers where a body would be awkward, such as DELETE).
  Authorization rules still apply to whatever identity is presented.

VALIDATION:
  Request bodies carry go-playground/validator struct tags; handlers run
  the validator before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
  - leave/service.go: The domain types these mirror
*/
package api

import (
	"time"

	"github.com/BisoyJan/primehub-systems-sub013/attendance"
	"github.com/BisoyJan/primehub-systems-sub013/leave"
	"github.com/BisoyJan/primehub-systems-sub013/store/sqlite"
)

// =============================================================================
// REQUEST BODIES
// =============================================================================

// SubmitLeaveRequest is the body for POST /api/requests.
type SubmitLeaveRequest struct {
	ActorID    string `json:"actor_id" validate:"required"`
	ActorRole  string `json:"actor_role" validate:"required,oneof=employee admin hr"`
	EmployeeID string `json:"employee_id" validate:"required"`
	Type       string `json:"type" validate:"required"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
	// Optional; zero means all workdays in the range. Half days allowed.
	DaysRequested string `json:"days_requested,omitempty"`
	Reason        string `json:"reason" validate:"required,min=10,max=1000"`
	Department    string `json:"department,omitempty"`
}

// ReviewRequest is the body for approve/deny.
type ReviewRequest struct {
	ActorID   string `json:"actor_id" validate:"required"`
	ActorRole string `json:"actor_role" validate:"required,oneof=admin hr"`
	Notes     string `json:"notes,omitempty" validate:"max=1000"`
}

// CancelRequest is the body for POST /api/requests/{id}/cancel.
type CancelRequest struct {
	ActorID   string `json:"actor_id" validate:"required"`
	ActorRole string `json:"actor_role" validate:"required,oneof=employee admin hr"`
	Reason    string `json:"reason" validate:"required,min=3,max=1000"`
}

// AccrueRequest is the body for POST /api/admin/accruals.
type AccrueRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Year       int    `json:"year" validate:"required,min=2000,max=2200"`
	Month      int    `json:"month" validate:"required,min=1,max=12"`
	Amount     string `json:"amount" validate:"required"`
}

// RecordPointRequest is the body for POST /api/admin/points.
type RecordPointRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	ShiftDate  string `json:"shift_date" validate:"required,datetime=2006-01-02"`
	Type       string `json:"type" validate:"required,oneof=ncns whole_day_absence half_day_absence tardy undertime"`
	Points     string `json:"points" validate:"required"`
	Policy     string `json:"policy" validate:"required,oneof=sro gbro none"`
}

// CreateEmployeeRequest is the body for POST /api/employees.
type CreateEmployeeRequest struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	HireDate string `json:"hire_date" validate:"required,datetime=2006-01-02"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// RequestDTO represents a leave request in API responses.
type RequestDTO struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	Type            string  `json:"type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	DaysRequested   string  `json:"days_requested"`
	Reason          string  `json:"reason"`
	Department      string  `json:"department,omitempty"`
	Status          string  `json:"status"`
	CreditsDeducted string  `json:"credits_deducted"`
	CreditsApplied  bool    `json:"credits_applied"`
	NoCreditReason  *string `json:"no_credit_reason,omitempty"`

	AdminApprovedBy *string `json:"admin_approved_by,omitempty"`
	AdminApprovedAt *string `json:"admin_approved_at,omitempty"`
	HRApprovedBy    *string `json:"hr_approved_by,omitempty"`
	HRApprovedAt    *string `json:"hr_approved_at,omitempty"`
	ReviewedBy      *string `json:"reviewed_by,omitempty"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
	ReviewNotes     string  `json:"review_notes,omitempty"`

	LinkedRequestID    *string `json:"linked_request_id,omitempty"`
	CancellationReason *string `json:"cancellation_reason,omitempty"`
	FlaggedForReview   bool    `json:"flagged_for_review,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// BalanceDTO represents the credits balance of an employee.
type BalanceDTO struct {
	EmployeeID  string `json:"employee_id"`
	Balance     string `json:"balance"`
	WholeDays   string `json:"whole_days"`
	TotalEarned string `json:"total_earned"`
	TotalUsed   string `json:"total_used"`
}

// CreditMonthDTO is one ledger row.
type CreditMonthDTO struct {
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Earned  string `json:"earned"`
	Used    string `json:"used"`
	Balance string `json:"balance"`
}

// PointDTO represents an attendance violation point.
type PointDTO struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	ShiftDate  string  `json:"shift_date"`
	Type       string  `json:"type"`
	Points     string  `json:"points"`
	Policy     string  `json:"policy"`
	ExpiresAt  *string `json:"expires_at,omitempty"`
	Expired    bool    `json:"expired"`
}

// PointsSummaryDTO wraps an employee's points with the active total.
type PointsSummaryDTO struct {
	EmployeeID   string     `json:"employee_id"`
	ActivePoints string     `json:"active_points"`
	Points       []PointDTO `json:"points"`
}

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	HireDate  string `json:"hire_date"`
	CreatedAt string `json:"created_at,omitempty"`
}

// DayCountDTO is the workday count for a date range.
type DayCountDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Workdays  int    `json:"workdays"`
}

// ErrorResponse is the JSON shape of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toRequestDTO(r *leave.Request) RequestDTO {
	return RequestDTO{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		Type:            string(r.Type),
		StartDate:       r.StartDate.String(),
		EndDate:         r.EndDate.String(),
		DaysRequested:   r.DaysRequested.String(),
		Reason:          r.Reason,
		Department:      r.Department,
		Status:          string(r.Status),
		CreditsDeducted: r.CreditsDeducted.String(),
		CreditsApplied:  r.CreditsApplied,
		NoCreditReason:  r.NoCreditReason,

		AdminApprovedBy: r.AdminApprovedBy,
		AdminApprovedAt: formatTimePtr(r.AdminApprovedAt),
		HRApprovedBy:    r.HRApprovedBy,
		HRApprovedAt:    formatTimePtr(r.HRApprovedAt),
		ReviewedBy:      r.ReviewedBy,
		ReviewedAt:      formatTimePtr(r.ReviewedAt),
		ReviewNotes:     r.ReviewNotes,

		LinkedRequestID:    r.LinkedRequestID,
		CancellationReason: r.CancellationReason,
		FlaggedForReview:   r.FlaggedForReview,

		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
}

func toRequestDTOs(rs []leave.Request) []RequestDTO {
	dtos := make([]RequestDTO, len(rs))
	for i := range rs {
		dtos[i] = toRequestDTO(&rs[i])
	}
	return dtos
}

func toBalanceDTO(b leave.BalanceSummary) BalanceDTO {
	return BalanceDTO{
		EmployeeID:  b.EmployeeID,
		Balance:     b.Balance.String(),
		WholeDays:   b.WholeDays().String(),
		TotalEarned: b.TotalEarned.String(),
		TotalUsed:   b.TotalUsed.String(),
	}
}

func toPointDTO(p attendance.Point, now time.Time) PointDTO {
	return PointDTO{
		ID:         p.ID,
		EmployeeID: p.EmployeeID,
		ShiftDate:  p.ShiftDate.Format("2006-01-02"),
		Type:       string(p.Type),
		Points:     p.Points.String(),
		Policy:     string(p.Policy),
		ExpiresAt:  formatTimePtr(p.ExpiresAt),
		Expired:    p.Expired(now),
	}
}

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		HireDate:  e.HireDate.Format("2006-01-02"),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
