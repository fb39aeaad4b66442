/*
aggregate.go - Room-level accounting aggregates

PURPOSE:
  Derives everything the room details view needs from an Account snapshot
  and its enumerated periods: total due to date, total paid, overall
  progress, per-participant status badges, chart-ready contribution rows,
  and the full per-participant payment breakdown.

STATUS CLASSIFICATION:
  Each participant is judged against their OWN due-to-date
  (amountDue x periodCount, or the flat amountDue for one-time rooms):
    paid            due-to-date > 0 and amountPaid >= due-to-date
    partially_paid  amountPaid > 0 but not fully paid
    pending         amountPaid == 0

DIVISION BY ZERO:
  A room with zero due amounts reports 0% progress rather than NaN.
*/
package accounting

// Summary is the headline state of a room: how much is owed so far across
// all participants, how much has been paid, and the resulting percentage.
type Summary struct {
	TotalDueToDate Money
	TotalPaid      Money

	// Progress is TotalPaid / TotalDueToDate * 100. It is 0 when nothing
	// is due yet and may exceed 100 when a room is overfunded.
	Progress float64
}

// Status classifies a participant's standing against their due-to-date.
type Status string

const (
	StatusPaid          Status = "paid"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPending       Status = "pending"
)

// ChartRow is one participant's contribution series for the stacked chart.
type ChartRow struct {
	Name    string
	Paid    Money
	Pending Money
	Total   Money
}

// AmountPerPeriod returns the room-wide amount due for a single period:
// the per-participant due times the full roster size, so a participant
// whose payment record went missing still counts toward the room total.
// Rooms persisted before payments existed fall back to the stored total
// amount.
func AmountPerPeriod(a Account) Money {
	if len(a.Lines) > 0 && a.Lines[0].AmountDue.IsPositive() {
		return a.Lines[0].AmountDue.MulInt(int64(a.participantCount()))
	}
	return a.TotalAmount
}

// LineDueToDate is a single participant's cumulative obligation: the flat
// per-participant amount for one-time rooms, otherwise due x periodCount.
func LineDueToDate(line Line, cadence Cadence, periodCount int) Money {
	if !cadence.Recurring() {
		return line.AmountDue
	}
	return line.AmountDue.MulInt(int64(periodCount))
}

// StatusOf classifies a payment line against its due-to-date.
func StatusOf(line Line, dueToDate Money) Status {
	if dueToDate.IsPositive() && line.AmountPaid.GreaterThanOrEqual(dueToDate) {
		return StatusPaid
	}
	if line.AmountPaid.IsPositive() {
		return StatusPartiallyPaid
	}
	return StatusPending
}

// RemainingOwed is how much a participant can still be charged: their
// due-to-date minus lifetime paid, floored at zero. The payment-recording
// flow uses it as the upper bound for a new payment.
func RemainingOwed(line Line, dueToDate Money) Money {
	return dueToDate.Sub(line.AmountPaid).Max(NewMoney(0))
}

// Summarize computes the room's headline totals for the elapsed periods.
func Summarize(a Account, periods []Period) Summary {
	paid := NewMoney(0)
	for _, line := range a.Lines {
		paid = paid.Add(line.AmountPaid)
	}

	due := AmountPerPeriod(a)
	if a.Cadence.Recurring() {
		due = due.MulInt(int64(len(periods)))
	}

	var progress float64
	if due.IsPositive() {
		progress = paid.Div(due) * 100
	}

	return Summary{TotalDueToDate: due, TotalPaid: paid, Progress: progress}
}

// ChartSeries builds one stacked-bar row per participant.
func ChartSeries(a Account, periods []Period) []ChartRow {
	rows := make([]ChartRow, 0, len(a.Lines))
	for _, line := range a.Lines {
		total := LineDueToDate(line, a.Cadence, len(periods))
		rows = append(rows, ChartRow{
			Name:    line.Name,
			Paid:    line.AmountPaid,
			Pending: total.Sub(line.AmountPaid).Max(NewMoney(0)),
			Total:   total,
		})
	}
	return rows
}

// Breakdown allocates each participant's paid pool across the elapsed
// periods. Empty for one-time rooms, which have no period dimension.
func Breakdown(a Account, periods []Period) map[string][]PeriodAllocation {
	out := make(map[string][]PeriodAllocation)
	if !a.Cadence.Recurring() {
		return out
	}
	for _, line := range a.Lines {
		out[line.UserID] = Allocate(line.AmountDue, line.AmountPaid, periods)
	}
	return out
}

// Statuses evaluates every participant's status in one pass.
func Statuses(a Account, periods []Period) map[string]Status {
	out := make(map[string]Status, len(a.Lines))
	for _, line := range a.Lines {
		out[line.UserID] = StatusOf(line, LineDueToDate(line, a.Cadence, len(periods)))
	}
	return out
}
