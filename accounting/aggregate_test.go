package accounting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listerineh/payplay-app/accounting"
)

func twoPersonAccount(c accounting.Cadence, due, paidA, paidB string) accounting.Account {
	return accounting.Account{
		TotalAmount: accounting.MustMoney(due).MulInt(2),
		Cadence:     c,
		Lines: []accounting.Line{
			{UserID: "u-ana", Name: "Ana", AmountDue: accounting.MustMoney(due), AmountPaid: accounting.MustMoney(paidA)},
			{UserID: "u-ben", Name: "Ben", AmountDue: accounting.MustMoney(due), AmountPaid: accounting.MustMoney(paidB)},
		},
	}
}

// =============================================================================
// SUMMARY
// =============================================================================

func TestSummarize_MonthlyRoom(t *testing.T) {
	// GIVEN: two participants owing $100/period each, 3 elapsed periods
	// WHEN: Ana paid $300 and Ben paid $150
	// THEN: due-to-date $600, paid $450, progress 75%

	acct := twoPersonAccount(accounting.CadenceMonthly, "100.00", "300.00", "150.00")
	s := accounting.Summarize(acct, monthlyPeriods(t, 3))

	assert.True(t, s.TotalDueToDate.Equal(accounting.NewMoney(600)))
	assert.True(t, s.TotalPaid.Equal(accounting.NewMoney(450)))
	assert.InDelta(t, 75.0, s.Progress, 0.0001)
}

func TestSummarize_OneTimeUsesFlatAmount(t *testing.T) {
	acct := twoPersonAccount(accounting.CadenceOneTime, "250.00", "250.00", "0.00")
	s := accounting.Summarize(acct, nil)

	assert.True(t, s.TotalDueToDate.Equal(accounting.NewMoney(500)))
	assert.True(t, s.TotalPaid.Equal(accounting.NewMoney(250)))
	assert.InDelta(t, 50.0, s.Progress, 0.0001)
}

func TestSummarize_ZeroDueYieldsZeroProgress(t *testing.T) {
	// No division by zero: a room with nothing due reports 0%, not NaN.
	acct := accounting.Account{
		TotalAmount: accounting.NewMoney(0),
		Cadence:     accounting.CadenceOneTime,
		Lines: []accounting.Line{
			{UserID: "u-1", Name: "Solo", AmountDue: accounting.NewMoney(0), AmountPaid: accounting.NewMoney(0)},
		},
	}
	s := accounting.Summarize(acct, nil)
	assert.Zero(t, s.Progress)
	assert.True(t, s.TotalDueToDate.IsZero())
}

func TestSummarize_FallsBackToTotalAmount(t *testing.T) {
	// Rooms persisted without payment lines still summarize off the stored
	// room total.
	acct := accounting.Account{
		TotalAmount: accounting.NewMoney(400),
		Cadence:     accounting.CadenceOneTime,
	}
	s := accounting.Summarize(acct, nil)
	assert.True(t, s.TotalDueToDate.Equal(accounting.NewMoney(400)))
}

func TestSummarize_MissingPaymentRecordStillCountsTowardDue(t *testing.T) {
	// GIVEN: a three-person roster where one payment record went missing
	// WHEN: summarizing over 2 elapsed periods at $100/participant
	// THEN: due-to-date covers all three ($600), paid covers the two lines
	acct := twoPersonAccount(accounting.CadenceMonthly, "100.00", "100.00", "0.00")
	acct.Participants = 3

	s := accounting.Summarize(acct, monthlyPeriods(t, 2))

	assert.True(t, s.TotalDueToDate.Equal(accounting.NewMoney(600)))
	assert.True(t, s.TotalPaid.Equal(accounting.NewMoney(100)))
}

func TestAmountPerPeriod_UsesFullRoster(t *testing.T) {
	acct := twoPersonAccount(accounting.CadenceMonthly, "100.00", "0.00", "0.00")
	acct.Participants = 3
	assert.True(t, accounting.AmountPerPeriod(acct).Equal(accounting.NewMoney(300)))

	// Roster size zero means "derive from the lines".
	acct.Participants = 0
	assert.True(t, accounting.AmountPerPeriod(acct).Equal(accounting.NewMoney(200)))
}

// =============================================================================
// STATUS CLASSIFICATION
// =============================================================================

func TestStatusOf_Boundaries(t *testing.T) {
	due := accounting.NewMoney(300) // 3 periods x $100

	cases := []struct {
		name string
		paid string
		want accounting.Status
	}{
		{"exactly settled", "300.00", accounting.StatusPaid},
		{"overpaid", "300.01", accounting.StatusPaid},
		{"one cent short", "299.99", accounting.StatusPartiallyPaid},
		{"barely started", "0.01", accounting.StatusPartiallyPaid},
		{"nothing paid", "0.00", accounting.StatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			line := accounting.Line{AmountDue: accounting.NewMoney(100), AmountPaid: accounting.MustMoney(tc.paid)}
			assert.Equal(t, tc.want, accounting.StatusOf(line, due))
		})
	}
}

func TestStatusOf_ZeroDueIsNeverPaid(t *testing.T) {
	// paid requires a positive due-to-date; a free room stays pending until
	// someone actually pays something.
	line := accounting.Line{AmountDue: accounting.NewMoney(0), AmountPaid: accounting.NewMoney(0)}
	assert.Equal(t, accounting.StatusPending, accounting.StatusOf(line, accounting.NewMoney(0)))

	line.AmountPaid = accounting.NewMoney(5)
	assert.Equal(t, accounting.StatusPartiallyPaid, accounting.StatusOf(line, accounting.NewMoney(0)))
}

func TestStatuses_PerParticipant(t *testing.T) {
	acct := twoPersonAccount(accounting.CadenceMonthly, "100.00", "300.00", "0.00")
	statuses := accounting.Statuses(acct, monthlyPeriods(t, 3))

	assert.Equal(t, accounting.StatusPaid, statuses["u-ana"])
	assert.Equal(t, accounting.StatusPending, statuses["u-ben"])
}

// =============================================================================
// CHART SERIES AND BREAKDOWN
// =============================================================================

func TestChartSeries_PendingFlooredAtZero(t *testing.T) {
	// Overpaying must not drive the pending stack negative.
	acct := twoPersonAccount(accounting.CadenceMonthly, "100.00", "350.00", "120.00")
	rows := accounting.ChartSeries(acct, monthlyPeriods(t, 3))
	require.Len(t, rows, 2)

	assert.Equal(t, "Ana", rows[0].Name)
	assert.True(t, rows[0].Paid.Equal(accounting.NewMoney(350)))
	assert.True(t, rows[0].Pending.IsZero())
	assert.True(t, rows[0].Total.Equal(accounting.NewMoney(300)))

	assert.True(t, rows[1].Pending.Equal(accounting.NewMoney(180)))
}

func TestBreakdown_EmptyForOneTime(t *testing.T) {
	acct := twoPersonAccount(accounting.CadenceOneTime, "250.00", "100.00", "0.00")
	assert.Empty(t, accounting.Breakdown(acct, nil))
}

func TestBreakdown_AllocatesPerParticipant(t *testing.T) {
	acct := twoPersonAccount(accounting.CadenceMonthly, "100.00", "250.00", "80.00")
	byUser := accounting.Breakdown(acct, monthlyPeriods(t, 3))
	require.Len(t, byUser, 2)

	ana := byUser["u-ana"]
	require.Len(t, ana, 3)
	assert.True(t, ana[2].Paid.Equal(accounting.NewMoney(50)))
	assert.True(t, ana[2].Balance.Equal(accounting.NewMoney(50)))

	ben := byUser["u-ben"]
	require.Len(t, ben, 3)
	assert.True(t, ben[0].Paid.Equal(accounting.NewMoney(80)))
	assert.True(t, ben[1].Paid.IsZero())
}

// =============================================================================
// REMAINING OWED
// =============================================================================

func TestRemainingOwed_FloorsAtZero(t *testing.T) {
	line := accounting.Line{AmountDue: accounting.NewMoney(100), AmountPaid: accounting.MustMoney("250.00")}

	owed := accounting.RemainingOwed(line, accounting.NewMoney(300))
	assert.True(t, owed.Equal(accounting.NewMoney(50)))

	owed = accounting.RemainingOwed(line, accounting.NewMoney(200))
	assert.True(t, owed.IsZero(), "overpaid participants owe nothing, not a refund")
}
