/*
Package dashboard derives the landing-page summary from a user's
transaction history.

PURPOSE:
  The dashboard shows one user's overall financial position: total
  income, total expenses, the balance between them, and how expenses
  split across categories. Room payments feed in naturally because
  recording a payment appends an expense transaction to the same
  history.
*/
package dashboard

import (
	"github.com/listerineh/payplay-app/accounting"
	"github.com/listerineh/payplay-app/room"
)

// Summary is the dashboard header plus the expense pie chart.
type Summary struct {
	TotalBalance  accounting.Money
	TotalIncome   accounting.Money
	TotalExpenses accounting.Money
	Breakdown     []accounting.CategorySlice
}

// Summarize folds a transaction history into the dashboard view.
// Balance is income minus expenses and may go negative; the breakdown
// covers expense transactions only.
func Summarize(txs []room.Transaction) Summary {
	var (
		income   = accounting.NewMoney(0)
		expenses = accounting.NewMoney(0)
		slices   []accounting.CategoryAmount
	)
	for _, tx := range txs {
		switch tx.Type {
		case room.TxIncome:
			income = income.Add(tx.Amount)
		case room.TxExpense:
			expenses = expenses.Add(tx.Amount)
			slices = append(slices, accounting.CategoryAmount{Category: tx.Category, Amount: tx.Amount})
		}
	}
	return Summary{
		TotalBalance:  income.Sub(expenses),
		TotalIncome:   income,
		TotalExpenses: expenses,
		Breakdown:     accounting.CategoryBreakdown(slices),
	}
}
