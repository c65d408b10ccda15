package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BisoyJan/primehub-systems-sub013/leave"
)

func TestCountWorkdays_WeekendsExcluded(t *testing.T) {
	// GIVEN: Sat Nov 1 2025 through Wed Nov 5 2025
	// WHEN: Counting workdays
	// THEN: Only Mon/Tue/Wed count

	start := leave.NewDate(2025, time.November, 1) // Saturday
	end := leave.NewDate(2025, time.November, 5)   // Wednesday

	assert.Equal(t, 3, leave.CountWorkdays(start, end))
}

func TestCountWorkdays_SingleDay(t *testing.T) {
	mon := leave.NewDate(2025, time.November, 3)
	assert.Equal(t, 1, leave.CountWorkdays(mon, mon), "a single weekday counts as one")

	sat := leave.NewDate(2025, time.November, 1)
	assert.Equal(t, 0, leave.CountWorkdays(sat, sat), "a single weekend day counts as zero")
}

func TestCountWorkdays_FullWeek(t *testing.T) {
	// Mon Nov 3 through Sun Nov 9 spans exactly one work week
	start := leave.NewDate(2025, time.November, 3)
	end := leave.NewDate(2025, time.November, 9)

	assert.Equal(t, 5, leave.CountWorkdays(start, end))
}

func TestWorkdays_OrderedAndWeekdayOnly(t *testing.T) {
	// GIVEN: Fri Nov 7 through Tue Nov 11
	// THEN: Fri, Mon, Tue in chronological order

	days := leave.Workdays(leave.NewDate(2025, time.November, 7), leave.NewDate(2025, time.November, 11))

	require.Len(t, days, 3)
	assert.Equal(t, "2025-11-07", days[0].String())
	assert.Equal(t, "2025-11-10", days[1].String())
	assert.Equal(t, "2025-11-11", days[2].String())
}

func TestParseDate_RoundTrip(t *testing.T) {
	d, err := leave.ParseDate("2025-11-03")
	require.NoError(t, err)
	assert.Equal(t, "2025-11-03", d.String())
	assert.Equal(t, time.Monday, d.Weekday())

	_, err = leave.ParseDate("11/03/2025")
	assert.Error(t, err, "non ISO format should be rejected")
}

func TestDate_Comparisons(t *testing.T) {
	a := leave.NewDate(2025, time.March, 10)
	b := leave.NewDate(2025, time.March, 11)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.Equal(a.AddDays(0)))
	assert.True(t, a.AddDays(1).Equal(b))
}
