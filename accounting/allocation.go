/*
allocation.go - Waterfall allocation of payments across periods

PURPOSE:
  A participant's lifetime paid amount is a single cumulative number; the
  ledger never records which period a payment was "for". This file spreads
  that pool across the elapsed periods earliest-first, producing the
  per-period paid/due/balance breakdown shown in the room details view.

ALGORITHM:
  For each period in chronological order:
    paidForPeriod = min(remainingPool, duePerPeriod)
    remainingPool -= paidForPeriod
    balance       = duePerPeriod - paidForPeriod
  Every subtraction re-rounds to cents (Money does this internally), so
  the sum of allocated amounts always reconciles with the pool.

GUARANTEES:
  - sum(Paid) == min(totalPaid, duePerPeriod * len(periods))
  - Balance is never negative
  - Paid never exceeds duePerPeriod for a single period
  - Output length equals input length

  A zero duePerPeriod leaves every period fully settled regardless of the
  pool; that is a valid room configuration, not an error.

NOT DEFINED FOR one-time:
  One-time rooms have no periods. Callers render a single due/paid/balance
  triple instead (see aggregate.go).
*/
package accounting

// PeriodAllocation is one row of a participant's payment breakdown.
type PeriodAllocation struct {
	Period  Period
	Due     Money
	Paid    Money
	Balance Money
}

// Allocate distributes totalPaid across the given periods earliest-first.
func Allocate(duePerPeriod, totalPaid Money, periods []Period) []PeriodAllocation {
	pool := totalPaid
	out := make([]PeriodAllocation, 0, len(periods))
	for _, p := range periods {
		paid := pool.Min(duePerPeriod)
		pool = pool.Sub(paid)
		out = append(out, PeriodAllocation{
			Period:  p,
			Due:     duePerPeriod,
			Paid:    paid,
			Balance: duePerPeriod.Sub(paid),
		})
	}
	return out
}
