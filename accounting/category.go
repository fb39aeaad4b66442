/*
category.go - Expense category breakdown

PURPOSE:
  Groups a user's expense transactions by category for the dashboard pie
  chart: per-category sums and each category's share of total expenses.
  This is the one aggregate that looks across transactions rather than
  inside a room.
*/
package accounting

import "sort"

// NoExpensesCategory is the synthetic placeholder emitted when a user has
// no expense transactions at all, so the chart still renders one slice.
const NoExpensesCategory = "No Expenses"

// CategoryAmount is a single expense observation: category plus amount.
type CategoryAmount struct {
	Category string
	Amount   Money
}

// CategorySlice is one slice of the breakdown.
type CategorySlice struct {
	Category   string
	Amount     Money
	Percentage float64
}

// CategoryBreakdown sums expenses per category and derives each category's
// percentage of the total. With no expenses it returns the single
// placeholder slice at 100%. Slices are ordered by amount descending
// (category name breaks ties) so output is deterministic.
func CategoryBreakdown(expenses []CategoryAmount) []CategorySlice {
	if len(expenses) == 0 {
		return []CategorySlice{{Category: NoExpensesCategory, Amount: NewMoney(0), Percentage: 100}}
	}

	totals := make(map[string]Money)
	total := NewMoney(0)
	for _, e := range expenses {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
		total = total.Add(e.Amount)
	}

	out := make([]CategorySlice, 0, len(totals))
	for category, amount := range totals {
		var pct float64
		if total.IsPositive() {
			pct = amount.Div(total) * 100
		}
		out = append(out, CategorySlice{Category: category, Amount: amount, Percentage: pct})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})
	return out
}
