package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BisoyJan/primehub-systems-sub013/leave"
	memstore "github.com/BisoyJan/primehub-systems-sub013/leave/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func month(emp string, year int, m time.Month, earned, used string) leave.CreditMonth {
	e, u := dec(earned), dec(used)
	return leave.CreditMonth{
		EmployeeID: emp,
		Year:       year,
		Month:      m,
		Earned:     e,
		Used:       u,
		Balance:    e.Sub(u),
	}
}

// =============================================================================
// WHOLE-DAY FLOORING
// =============================================================================

func TestPlanDeduction_FlooredBalance(t *testing.T) {
	// GIVEN: Balance 2.75 across two months (Jan 1.50, Feb 1.25)
	// WHEN: Deducting 2 whole days
	// THEN: Jan contributes 1.50, Feb contributes 0.50; 0.75 remains

	months := []leave.CreditMonth{
		month("emp-1", 2025, time.January, "1.50", "0"),
		month("emp-1", 2025, time.February, "1.25", "0"),
	}

	plan, err := leave.PlanDeduction("emp-1", months, dec("2"))
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, 2025, plan[0].Year)
	assert.Equal(t, int(time.January), plan[0].Month)
	assert.True(t, plan[0].Amount.Equal(dec("1.50")), "oldest month drains first")
	assert.Equal(t, int(time.February), plan[1].Month)
	assert.True(t, plan[1].Amount.Equal(dec("0.50")))
}

func TestPlanDeduction_MoreThanFloor_Rejected(t *testing.T) {
	// GIVEN: Balance 2.75
	// WHEN: Deducting 3 whole days
	// THEN: Rejected; fractional remainder never counts toward a whole day

	months := []leave.CreditMonth{
		month("emp-1", 2025, time.January, "2.75", "0"),
	}

	_, err := leave.PlanDeduction("emp-1", months, dec("3"))
	require.Error(t, err)

	var insufficient *leave.InsufficientCreditError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Available.Equal(dec("2")), "available reports the floored balance")
	assert.True(t, leave.IsClientError(err))
}

func TestPlanDeduction_FractionalAmount_Rejected(t *testing.T) {
	months := []leave.CreditMonth{
		month("emp-1", 2025, time.January, "5", "0"),
	}

	_, err := leave.PlanDeduction("emp-1", months, dec("1.5"))
	assert.ErrorIs(t, err, leave.ErrInsufficientCredit, "fractional deductions are never allowed")
}

func TestPlanDeduction_ZeroIsNoOp(t *testing.T) {
	plan, err := leave.PlanDeduction("emp-1", nil, decimal.Zero)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestPlanDeduction_OldestFirstAcrossYears(t *testing.T) {
	// GIVEN: Rows from two years, supplied out of order
	// THEN: Dec 2024 drains before Jan 2025

	months := []leave.CreditMonth{
		month("emp-1", 2025, time.January, "1", "0"),
		month("emp-1", 2024, time.December, "1", "0"),
	}

	plan, err := leave.PlanDeduction("emp-1", months, dec("2"))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, 2024, plan[0].Year)
	assert.Equal(t, 2025, plan[1].Year)
}

// =============================================================================
// LEDGER OVER A STORE
// =============================================================================

func TestLedger_BalanceAndDeduct(t *testing.T) {
	// GIVEN: 1.25 accrued in each of Jan and Feb
	// WHEN: Deducting 2 whole days
	// THEN: Balance drops to 0.5 and used totals 2

	store := memstore.NewMemory()
	ledger := leave.NewLedger(store)
	ctx := context.Background()

	_, err := store.Accrue(ctx, "emp-1", 2025, time.January, dec("1.25"))
	require.NoError(t, err)
	_, err = store.Accrue(ctx, "emp-1", 2025, time.February, dec("1.25"))
	require.NoError(t, err)

	bal, err := ledger.Balance(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, bal.Balance.Equal(dec("2.5")))
	assert.True(t, bal.WholeDays().Equal(dec("2")))

	require.NoError(t, ledger.Deduct(ctx, "emp-1", dec("2")))

	bal, err = ledger.Balance(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, bal.Balance.Equal(dec("0.5")), "fractional remainder is preserved")
	assert.True(t, bal.TotalUsed.Equal(dec("2")))
	assert.True(t, bal.TotalEarned.Equal(dec("2.5")))
}

func TestLedger_Deduct_InsufficientLeavesLedgerUntouched(t *testing.T) {
	store := memstore.NewMemory()
	ledger := leave.NewLedger(store)
	ctx := context.Background()

	_, err := store.Accrue(ctx, "emp-1", 2025, time.January, dec("0.75"))
	require.NoError(t, err)

	err = ledger.Deduct(ctx, "emp-1", dec("1"))
	assert.ErrorIs(t, err, leave.ErrInsufficientCredit)

	bal, err := ledger.Balance(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, bal.Balance.Equal(dec("0.75")))
}

func TestSummarize_EmptyLedger(t *testing.T) {
	s := leave.Summarize("emp-1", nil)
	assert.True(t, s.Balance.IsZero())
	assert.True(t, s.WholeDays().IsZero())
}
