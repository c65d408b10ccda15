package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BisoyJan/primehub-systems-sub013/leave"
	"github.com/BisoyJan/primehub-systems-sub013/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var testNow = time.Date(2025, time.November, 3, 9, 0, 0, 0, time.UTC)

func pendingVL(id, emp string) *leave.Request {
	return &leave.Request{
		ID:              id,
		EmployeeID:      emp,
		Type:            leave.TypeVL,
		StartDate:       leave.NewDate(2025, time.November, 10),
		EndDate:         leave.NewDate(2025, time.November, 14),
		DaysRequested:   dec("5"),
		Reason:          "Family vacation out of town",
		Status:          leave.StatusPending,
		CreditsDeducted: decimal.Zero,
		CreatedAt:       testNow,
		UpdatedAt:       testNow,
	}
}

// =============================================================================
// REQUEST PERSISTENCE
// =============================================================================

func TestSaveRequest_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	req := pendingVL("req-1", "emp-1")
	adminID := "adm-1"
	req.AdminApprovedBy = &adminID
	req.AdminApprovedAt = &testNow

	require.NoError(t, store.SaveRequest(ctx, req))

	got, err := store.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, leave.TypeVL, got.Type)
	assert.Equal(t, "2025-11-10", got.StartDate.String())
	assert.Equal(t, "2025-11-14", got.EndDate.String())
	assert.True(t, got.DaysRequested.Equal(dec("5")))
	require.NotNil(t, got.AdminApprovedBy)
	assert.Equal(t, "adm-1", *got.AdminApprovedBy)
	assert.Nil(t, got.HRApprovedBy)
	assert.Nil(t, got.NoCreditReason)
	assert.False(t, got.FlaggedForReview)
}

func TestSaveRequest_UpdatesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	req := pendingVL("req-1", "emp-1")
	require.NoError(t, store.SaveRequest(ctx, req))

	req.Status = leave.StatusDenied
	notes := "understaffed"
	req.ReviewNotes = notes
	require.NoError(t, store.SaveRequest(ctx, req))

	got, err := store.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusDenied, got.Status)
	assert.Equal(t, notes, got.ReviewNotes)
}

func TestGetRequest_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetRequest(context.Background(), "missing")
	assert.ErrorIs(t, err, leave.ErrNotFound)
}

func TestHasPendingDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRequest(ctx, pendingVL("req-1", "emp-1")))

	dup, err := store.HasPendingDuplicate(ctx, "emp-1", leave.TypeVL,
		leave.NewDate(2025, time.November, 10), leave.NewDate(2025, time.November, 14))
	require.NoError(t, err)
	assert.True(t, dup)

	// Different type, different range, different employee: no duplicate.
	dup, err = store.HasPendingDuplicate(ctx, "emp-1", leave.TypeSL,
		leave.NewDate(2025, time.November, 10), leave.NewDate(2025, time.November, 14))
	require.NoError(t, err)
	assert.False(t, dup)

	dup, err = store.HasPendingDuplicate(ctx, "emp-2", leave.TypeVL,
		leave.NewDate(2025, time.November, 10), leave.NewDate(2025, time.November, 14))
	require.NoError(t, err)
	assert.False(t, dup)

	// A non-pending request is not a duplicate.
	denied := pendingVL("req-2", "emp-3")
	denied.Status = leave.StatusDenied
	require.NoError(t, store.SaveRequest(ctx, denied))

	dup, err = store.HasPendingDuplicate(ctx, "emp-3", leave.TypeVL,
		leave.NewDate(2025, time.November, 10), leave.NewDate(2025, time.November, 14))
	require.NoError(t, err)
	assert.False(t, dup)
}

// =============================================================================
// APPROVAL TRANSACTION
// =============================================================================

func TestApplyApproval_DeductsAndInsertsCompanion(t *testing.T) {
	// GIVEN: A pending request and 2.75 credits across two months
	// WHEN: Applying a split approval (2 credited days + UPTO companion)
	// THEN: Parent updated, companion inserted, ledger drained oldest first

	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Accrue(ctx, "emp-1", 2025, time.September, dec("1.50"))
	require.NoError(t, err)
	_, err = store.Accrue(ctx, "emp-1", 2025, time.October, dec("1.25"))
	require.NoError(t, err)

	req := pendingVL("req-1", "emp-1")
	require.NoError(t, store.SaveRequest(ctx, req))

	parent := *req
	parent.Status = leave.StatusApproved
	parent.EndDate = leave.NewDate(2025, time.November, 11)
	parent.DaysRequested = dec("2")
	parent.CreditsDeducted = dec("2")
	parent.CreditsApplied = true
	reason := "Partial VL credits: 2 of 5 day(s) credited, remainder converted to UPTO"
	parent.NoCreditReason = &reason

	companion := *req
	companion.ID = "req-1-upto"
	companion.Type = leave.TypeUPTO
	companion.Status = leave.StatusApproved
	companion.StartDate = leave.NewDate(2025, time.November, 12)
	companion.DaysRequested = dec("3")
	companion.NoCreditReason = &reason
	companion.LinkedRequestID = &req.ID

	require.NoError(t, store.ApplyApproval(ctx, &parent, &companion, dec("2")))

	got, err := store.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, got.Status)
	assert.Equal(t, "2025-11-11", got.EndDate.String())
	assert.True(t, got.CreditsDeducted.Equal(dec("2")))

	gotCompanion, err := store.GetRequest(ctx, "req-1-upto")
	require.NoError(t, err)
	assert.Equal(t, leave.TypeUPTO, gotCompanion.Type)
	require.NotNil(t, gotCompanion.LinkedRequestID)
	assert.Equal(t, "req-1", *gotCompanion.LinkedRequestID)

	months, err := store.CreditMonths(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.True(t, months[0].Balance.IsZero(), "September drains first")
	assert.True(t, months[0].Used.Equal(dec("1.5")))
	assert.True(t, months[1].Balance.Equal(dec("0.75")))
	assert.True(t, months[1].Used.Equal(dec("0.5")))
}

func TestApplyApproval_SecondApplyRejected(t *testing.T) {
	// The status guard makes approval idempotent: once the row is no
	// longer pending a second apply fails and deducts nothing.

	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Accrue(ctx, "emp-1", 2025, time.October, dec("10"))
	require.NoError(t, err)

	req := pendingVL("req-1", "emp-1")
	require.NoError(t, store.SaveRequest(ctx, req))

	parent := *req
	parent.Status = leave.StatusApproved
	parent.CreditsDeducted = dec("5")
	parent.CreditsApplied = true

	require.NoError(t, store.ApplyApproval(ctx, &parent, nil, dec("5")))

	err = store.ApplyApproval(ctx, &parent, nil, dec("5"))
	assert.ErrorIs(t, err, leave.ErrIllegalTransition)

	months, err := store.CreditMonths(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, months, 1)
	assert.True(t, months[0].Balance.Equal(dec("5")), "only one deduction happened")
}

func TestApplyApproval_InsufficientCreditRollsBack(t *testing.T) {
	// GIVEN: A balance that no longer covers the deduction
	// WHEN: ApplyApproval runs
	// THEN: Nothing is written, the request stays pending

	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Accrue(ctx, "emp-1", 2025, time.October, dec("1.25"))
	require.NoError(t, err)

	req := pendingVL("req-1", "emp-1")
	require.NoError(t, store.SaveRequest(ctx, req))

	parent := *req
	parent.Status = leave.StatusApproved
	parent.CreditsDeducted = dec("5")
	parent.CreditsApplied = true

	err = store.ApplyApproval(ctx, &parent, nil, dec("5"))
	assert.ErrorIs(t, err, leave.ErrInsufficientCredit)

	got, err := store.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, got.Status, "the approval update rolled back")

	months, err := store.CreditMonths(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, months[0].Balance.Equal(dec("1.25")))
}

// =============================================================================
// DELETION AND NON-RESTORATION
// =============================================================================

func TestDeleteRequest_LedgerUntouched(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Accrue(ctx, "emp-1", 2025, time.October, dec("10"))
	require.NoError(t, err)

	req := pendingVL("req-1", "emp-1")
	require.NoError(t, store.SaveRequest(ctx, req))

	parent := *req
	parent.Status = leave.StatusApproved
	parent.CreditsDeducted = dec("5")
	parent.CreditsApplied = true
	require.NoError(t, store.ApplyApproval(ctx, &parent, nil, dec("5")))

	require.NoError(t, store.DeleteRequest(ctx, "req-1"))

	_, err = store.GetRequest(ctx, "req-1")
	assert.ErrorIs(t, err, leave.ErrNotFound)

	months, err := store.CreditMonths(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, months[0].Balance.Equal(dec("5")), "deletion never restores credits")
	assert.True(t, months[0].Used.Equal(dec("5")))
}

func TestDeleteRequest_NotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.DeleteRequest(context.Background(), "missing")
	assert.ErrorIs(t, err, leave.ErrNotFound)
}

// =============================================================================
// LEDGER ROWS
// =============================================================================

func TestAccrue_AccumulatesWithinMonth(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	row, err := store.Accrue(ctx, "emp-1", 2025, time.January, dec("1.25"))
	require.NoError(t, err)
	assert.True(t, row.Balance.Equal(dec("1.25")))

	row, err = store.Accrue(ctx, "emp-1", 2025, time.January, dec("1.25"))
	require.NoError(t, err)
	assert.True(t, row.Earned.Equal(dec("2.5")))
	assert.True(t, row.Balance.Equal(dec("2.5")))

	months, err := store.CreditMonths(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, months, 1)
}

func TestCreditMonths_OrderedOldestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Accrue(ctx, "emp-1", 2025, time.February, dec("1"))
	require.NoError(t, err)
	_, err = store.Accrue(ctx, "emp-1", 2024, time.December, dec("1"))
	require.NoError(t, err)
	_, err = store.Accrue(ctx, "emp-1", 2025, time.January, dec("1"))
	require.NoError(t, err)

	months, err := store.CreditMonths(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, months, 3)
	assert.Equal(t, 2024, months[0].Year)
	assert.Equal(t, time.January, months[1].Month)
	assert.Equal(t, time.February, months[2].Month)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployee_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := sqlite.Employee{
		ID:       "emp-1",
		Name:     "Alex Reyes",
		Email:    "alex@example.com",
		HireDate: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveEmployee(ctx, emp))

	got, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alex Reyes", got.Name)
	assert.Equal(t, emp.HireDate, got.HireDate)

	missing, err := store.GetEmployee(ctx, "emp-2")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
