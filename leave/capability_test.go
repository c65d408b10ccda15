package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BisoyJan/primehub-systems-sub013/leave"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var (
	owner    = leave.Actor{ID: "emp-1", Role: leave.RoleEmployee}
	other    = leave.Actor{ID: "emp-2", Role: leave.RoleEmployee}
	admin    = leave.Actor{ID: "adm-1", Role: leave.RoleAdmin}
	hrActor  = leave.Actor{ID: "hr-1", Role: leave.RoleHR}
	today    = leave.NewDate(2025, time.November, 5) // Wednesday
	lastWeek = leave.NewDate(2025, time.October, 27)
	nextWeek = leave.NewDate(2025, time.November, 10)
)

func request(status leave.Status, start, end leave.Date, split bool) *leave.Request {
	r := &leave.Request{
		ID:         "req-1",
		EmployeeID: "emp-1",
		Type:       leave.TypeVL,
		StartDate:  start,
		EndDate:    end,
		Status:     status,
	}
	if split {
		reason := "Partial VL credits"
		r.NoCreditReason = &reason
	}
	return r
}

// =============================================================================
// CANCELLATION RULES
// =============================================================================

func TestAllowed_Cancel_PendingByOwner(t *testing.T) {
	req := request(leave.StatusPending, lastWeek, lastWeek, false)
	assert.NoError(t, leave.Allowed(owner, leave.ActionCancel, req, today),
		"owner may cancel pending regardless of timing")
}

func TestAllowed_Cancel_PendingByAdmin(t *testing.T) {
	req := request(leave.StatusPending, nextWeek, nextWeek, false)
	assert.NoError(t, leave.Allowed(admin, leave.ActionCancel, req, today))
}

func TestAllowed_Cancel_PendingByStranger_Forbidden(t *testing.T) {
	req := request(leave.StatusPending, nextWeek, nextWeek, false)
	err := leave.Allowed(other, leave.ActionCancel, req, today)
	assert.ErrorIs(t, err, leave.ErrForbidden)
}

func TestAllowed_Cancel_ApprovedSplit_OwnerWhileNotElapsed(t *testing.T) {
	// A partially credited request stays cancellable by its owner until the
	// dates have fully elapsed.
	future := request(leave.StatusApproved, nextWeek, nextWeek.AddDays(2), true)
	assert.NoError(t, leave.Allowed(owner, leave.ActionCancel, future, today))

	started := request(leave.StatusApproved, today.AddDays(-1), nextWeek, true)
	assert.NoError(t, leave.Allowed(owner, leave.ActionCancel, started, today))

	elapsed := request(leave.StatusApproved, lastWeek, lastWeek.AddDays(2), true)
	assert.ErrorIs(t, leave.Allowed(owner, leave.ActionCancel, elapsed, today), leave.ErrForbidden)
}

func TestAllowed_Cancel_ApprovedFullCredit_AdminFutureOnly(t *testing.T) {
	// GIVEN: A fully credited approved request
	// THEN: Admin may cancel only while the period is entirely in the future

	future := request(leave.StatusApproved, nextWeek, nextWeek.AddDays(2), false)
	assert.NoError(t, leave.Allowed(admin, leave.ActionCancel, future, today))

	started := request(leave.StatusApproved, today, nextWeek, false)
	assert.ErrorIs(t, leave.Allowed(admin, leave.ActionCancel, started, today), leave.ErrForbidden,
		"once the leave has begun nobody may cancel")

	elapsed := request(leave.StatusApproved, lastWeek, lastWeek.AddDays(2), false)
	assert.ErrorIs(t, leave.Allowed(admin, leave.ActionCancel, elapsed, today), leave.ErrForbidden)
}

func TestAllowed_Cancel_ApprovedFullCredit_OwnerForbidden(t *testing.T) {
	future := request(leave.StatusApproved, nextWeek, nextWeek.AddDays(2), false)
	assert.ErrorIs(t, leave.Allowed(owner, leave.ActionCancel, future, today), leave.ErrForbidden,
		"a fully credited approval is admin-only to cancel")
}

func TestAllowed_Cancel_TerminalStatuses(t *testing.T) {
	denied := request(leave.StatusDenied, nextWeek, nextWeek, false)
	assert.ErrorIs(t, leave.Allowed(admin, leave.ActionCancel, denied, today), leave.ErrForbidden)

	cancelled := request(leave.StatusCancelled, nextWeek, nextWeek, false)
	assert.ErrorIs(t, leave.Allowed(owner, leave.ActionCancel, cancelled, today), leave.ErrForbidden)
}

// =============================================================================
// DELETION RULES
// =============================================================================

func TestAllowed_Delete_AdminAnyStatus(t *testing.T) {
	for _, status := range []leave.Status{
		leave.StatusPending, leave.StatusApproved, leave.StatusDenied, leave.StatusCancelled,
	} {
		req := request(status, lastWeek, lastWeek, false)
		assert.NoError(t, leave.Allowed(admin, leave.ActionDelete, req, today), "%s", status)
	}
}

func TestAllowed_Delete_OwnerTerminalOnly(t *testing.T) {
	cancelled := request(leave.StatusCancelled, lastWeek, lastWeek, false)
	assert.NoError(t, leave.Allowed(owner, leave.ActionDelete, cancelled, today))

	denied := request(leave.StatusDenied, lastWeek, lastWeek, false)
	assert.NoError(t, leave.Allowed(owner, leave.ActionDelete, denied, today))

	approved := request(leave.StatusApproved, lastWeek, lastWeek, false)
	assert.ErrorIs(t, leave.Allowed(owner, leave.ActionDelete, approved, today), leave.ErrForbidden)

	pending := request(leave.StatusPending, nextWeek, nextWeek, false)
	assert.ErrorIs(t, leave.Allowed(owner, leave.ActionDelete, pending, today), leave.ErrForbidden)
}

func TestAllowed_Delete_HRWithoutAdminRole_Forbidden(t *testing.T) {
	// HR approves requests but deletion stays an admin capability.
	approved := request(leave.StatusApproved, lastWeek, lastWeek, false)
	assert.ErrorIs(t, leave.Allowed(hrActor, leave.ActionDelete, approved, today), leave.ErrForbidden)
}
