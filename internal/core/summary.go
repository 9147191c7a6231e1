package core

import "github.com/shopspring/decimal"

// Summary holds the running totals of a ledger.
type Summary struct {
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal
}

// Summarize recomputes the totals from scratch.
// Amounts are summed as decimals so the balance is exact for the stored values.
func Summarize(l Ledger) Summary {
	income := decimal.Zero
	for _, r := range l.Income {
		income = income.Add(decimal.NewFromFloat(r.Amount))
	}
	expenses := decimal.Zero
	for _, r := range l.Expenses {
		expenses = expenses.Add(decimal.NewFromFloat(r.Amount))
	}
	return Summary{
		TotalIncome:   income,
		TotalExpenses: expenses,
		Balance:       income.Sub(expenses),
	}
}

// Line renders the one-line summary shown under the tables.
func (s Summary) Line() string {
	return "Total Income: " + FormatDecimal(s.TotalIncome) +
		" | Total Expenses: " + FormatDecimal(s.TotalExpenses) +
		" | Balance: " + FormatDecimal(s.Balance)
}
