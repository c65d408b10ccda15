/*
handlers.go - HTTP API handlers for the leave rules engine

PURPOSE:
  Exposes the leave credit and attendance point engine via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Requests:
    POST   /api/requests                 Submit a leave request
    GET    /api/requests/pending         List pending requests
    POST   /api/requests/{id}/approve    Record one role's approval
    POST   /api/requests/{id}/deny      Deny a pending request
    POST   /api/requests/{id}/cancel    Cancel a request
    DELETE /api/requests/{id}            Delete a request (no credit restore)

  Employees:
    GET    /api/employees                List employees
    POST   /api/employees                Create employee
    GET    /api/employees/{id}           Get employee
    GET    /api/employees/{id}/requests  Request history
    GET    /api/employees/{id}/balance   Credits balance summary
    GET    /api/employees/{id}/ledger    Per-month ledger rows
    GET    /api/employees/{id}/points    Attendance points

  Admin:
    POST   /api/admin/accruals           Grant monthly credits
    POST   /api/admin/points             Record an attendance point

  Utilities:
    GET    /api/day-count?start=&end=    Count workdays in a range

ERROR HANDLING:
  Domain errors map to HTTP status via their sentinel wrappers:
  - 400: validation, insufficient credit
  - 403: forbidden (ownership/role/capability rules)
  - 404: not found
  - 409: duplicate pending request, illegal status transition
  - 500: everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - leave/service.go: The lifecycle logic these handlers call
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/BisoyJan/primehub-systems-sub013/attendance"
	"github.com/BisoyJan/primehub-systems-sub013/leave"
	"github.com/BisoyJan/primehub-systems-sub013/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *leave.Service
	Tracker  *attendance.Tracker
	Store    *sqlite.Store
	validate *validator.Validate

	// nowFn is swappable in tests.
	nowFn func() time.Time
}

// NewHandler creates a handler wired to the given service, tracker and store.
func NewHandler(svc *leave.Service, tracker *attendance.Tracker, store *sqlite.Store) *Handler {
	return &Handler{
		Service:  svc,
		Tracker:  tracker,
		Store:    store,
		validate: validator.New(),
		nowFn:    time.Now,
	}
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// SubmitRequest creates a pending leave request.
// POST /api/requests
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body SubmitLeaveRequest
	if !h.decode(w, r, &body) {
		return
	}

	sub := leave.Submission{
		EmployeeID: body.EmployeeID,
		Type:       leave.Type(body.Type),
		Reason:     body.Reason,
		Department: body.Department,
	}

	var err error
	if sub.StartDate, err = leave.ParseDate(body.StartDate); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	if sub.EndDate, err = leave.ParseDate(body.EndDate); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}
	if body.DaysRequested != "" {
		if sub.DaysRequested, err = decimal.NewFromString(body.DaysRequested); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid days_requested", err)
			return
		}
	}

	actor := leave.Actor{ID: body.ActorID, Role: leave.Role(body.ActorRole)}
	req, err := h.Service.Submit(r.Context(), sub, actor, h.nowFn())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(req))
}

// ListPendingRequests returns all requests awaiting approval.
// GET /api/requests/pending
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Service.Pending(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pending requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(pending))
}

// ApproveRequest records one role's approval; when both roles have
// approved, the request finalizes and the split policy runs.
// POST /api/requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	var body ReviewRequest
	if !h.decode(w, r, &body) {
		return
	}

	actor := leave.Actor{ID: body.ActorID, Role: leave.Role(body.ActorRole)}
	req, err := h.Service.Approve(r.Context(), chi.URLParam(r, "id"), actor, body.Notes, h.nowFn())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// DenyRequest denies a pending request.
// POST /api/requests/{id}/deny
func (h *Handler) DenyRequest(w http.ResponseWriter, r *http.Request) {
	var body ReviewRequest
	if !h.decode(w, r, &body) {
		return
	}

	actor := leave.Actor{ID: body.ActorID, Role: leave.Role(body.ActorRole)}
	req, err := h.Service.Deny(r.Context(), chi.URLParam(r, "id"), actor, body.Notes, h.nowFn())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// CancelRequest cancels a request, subject to the capability rules.
// POST /api/requests/{id}/cancel
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	var body CancelRequest
	if !h.decode(w, r, &body) {
		return
	}

	actor := leave.Actor{ID: body.ActorID, Role: leave.Role(body.ActorRole)}
	req, err := h.Service.Cancel(r.Context(), chi.URLParam(r, "id"), actor, body.Reason, h.nowFn())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// DeleteRequest removes a request. Deducted credits are never restored.
// DELETE /api/requests/{id}
//
// Actor identity comes from the X-Actor-ID and X-Actor-Role headers since
// DELETE carries no body.
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	actor := leave.Actor{
		ID:   r.Header.Get("X-Actor-ID"),
		Role: leave.Role(r.Header.Get("X-Actor-Role")),
	}
	if actor.ID == "" {
		writeError(w, http.StatusBadRequest, "Missing X-Actor-ID header", nil)
		return
	}

	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id"), actor, h.nowFn()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates or updates an employee record.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var body CreateEmployeeRequest
	if !h.decode(w, r, &body) {
		return
	}

	hireDate, err := time.Parse("2006-01-02", body.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date", err)
		return
	}

	emp := sqlite.Employee{
		ID:       body.ID,
		Name:     body.Name,
		Email:    body.Email,
		HireDate: hireDate,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// GetRequests returns an employee's request history, newest first.
func (h *Handler) GetRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.Requests(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// GetBalance returns the employee's credits balance summary.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.Service.Balance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// GetLedger returns the employee's per-month ledger rows, oldest first.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	months, err := h.Store.CreditMonths(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get ledger", err)
		return
	}

	dtos := make([]CreditMonthDTO, len(months))
	for i, m := range months {
		dtos[i] = CreditMonthDTO{
			Year:    m.Year,
			Month:   int(m.Month),
			Earned:  m.Earned.String(),
			Used:    m.Used.String(),
			Balance: m.Balance.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPoints returns an employee's attendance points with the active total.
func (h *Handler) GetPoints(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	now := h.nowFn()

	points, err := h.Store.PointsByEmployee(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get attendance points", err)
		return
	}

	active := decimal.Zero
	dtos := make([]PointDTO, len(points))
	for i, p := range points {
		dtos[i] = toPointDTO(p, now)
		if !p.Expired(now) {
			active = active.Add(p.Points)
		}
	}
	writeJSON(w, http.StatusOK, PointsSummaryDTO{
		EmployeeID:   employeeID,
		ActivePoints: active.String(),
		Points:       dtos,
	})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// Accrue grants monthly credits to an employee's ledger.
// POST /api/admin/accruals
func (h *Handler) Accrue(w http.ResponseWriter, r *http.Request) {
	var body AccrueRequest
	if !h.decode(w, r, &body) {
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	month, err := h.Service.Accrue(r.Context(), body.EmployeeID, body.Year, time.Month(body.Month), amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreditMonthDTO{
		Year:    month.Year,
		Month:   int(month.Month),
		Earned:  month.Earned.String(),
		Used:    month.Used.String(),
		Balance: month.Balance.String(),
	})
}

// RecordPoint records one attendance violation point.
// POST /api/admin/points
func (h *Handler) RecordPoint(w http.ResponseWriter, r *http.Request) {
	var body RecordPointRequest
	if !h.decode(w, r, &body) {
		return
	}

	shiftDate, err := time.Parse("2006-01-02", body.ShiftDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift_date", err)
		return
	}
	points, err := decimal.NewFromString(body.Points)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid points", err)
		return
	}

	now := h.nowFn()
	p, err := h.Tracker.Record(r.Context(), body.EmployeeID, shiftDate,
		attendance.PointType(body.Type), points, attendance.ExpirationPolicy(body.Policy), now)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPointDTO(*p, now))
}

// =============================================================================
// UTILITY HANDLERS
// =============================================================================

// DayCount counts workdays (weekends excluded) in an inclusive range.
// GET /api/day-count?start=2025-11-01&end=2025-11-05
func (h *Handler) DayCount(w http.ResponseWriter, r *http.Request) {
	start, err := leave.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start", err)
		return
	}
	end, err := leave.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end must not be before start", nil)
		return
	}

	writeJSON(w, http.StatusOK, DayCountDTO{
		StartDate: start.String(),
		EndDate:   end.String(),
		Workdays:  leave.CountWorkdays(start, end),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// decode parses and validates a JSON body. Writes the error response and
// returns false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, leave.ErrDuplicateRequest),
		errors.Is(err, leave.ErrIllegalTransition):
		writeError(w, http.StatusConflict, "Conflict", err)
	case leave.IsForbidden(err):
		writeError(w, http.StatusForbidden, "Forbidden", err)
	case leave.IsClientError(err), errors.Is(err, attendance.ErrInvalidPoints):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
