package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(NewLedger())
	assert.True(t, s.TotalIncome.IsZero())
	assert.True(t, s.TotalExpenses.IsZero())
	assert.True(t, s.Balance.IsZero())
	assert.Equal(t, "Total Income: $0.00 | Total Expenses: $0.00 | Balance: $0.00", s.Line())
}

func TestSummarizeBalance(t *testing.T) {
	l := Ledger{
		Income:   []IncomeRecord{{Source: "Salary", Amount: 1000}},
		Expenses: []ExpenseRecord{{Category: "Rent", Amount: 400}},
	}
	s := Summarize(l)
	assert.True(t, s.TotalIncome.Equal(decimal.NewFromInt(1000)))
	assert.True(t, s.TotalExpenses.Equal(decimal.NewFromInt(400)))
	assert.True(t, s.Balance.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, "Total Income: $1000.00 | Total Expenses: $400.00 | Balance: $600.00", s.Line())
}

func TestSummarizeIsExactForDecimalInputs(t *testing.T) {
	// 0.1 + 0.2 drifts in float64; the totals must not.
	l := Ledger{
		Income: []IncomeRecord{
			{Source: "a", Amount: 0.1},
			{Source: "b", Amount: 0.2},
		},
		Expenses: []ExpenseRecord{{Category: "c", Amount: 0.3}},
	}
	s := Summarize(l)
	assert.Equal(t, "0.3", s.TotalIncome.String())
	assert.True(t, s.Balance.IsZero())
}

func TestSummarizeBalanceEqualsDifferenceOfSums(t *testing.T) {
	incomes := []float64{1000, 250.75, -20, 0.01, 3.3}
	expenses := []float64{400, 19.99, 0.02, 1e3}

	l := NewLedger()
	wantIncome, wantExpenses := decimal.Zero, decimal.Zero
	for _, a := range incomes {
		l.Income = append(l.Income, IncomeRecord{Source: "s", Amount: a})
		wantIncome = wantIncome.Add(decimal.NewFromFloat(a))
	}
	for _, a := range expenses {
		l.Expenses = append(l.Expenses, ExpenseRecord{Category: "c", Amount: a})
		wantExpenses = wantExpenses.Add(decimal.NewFromFloat(a))
	}

	s := Summarize(l)
	assert.True(t, s.Balance.Equal(wantIncome.Sub(wantExpenses)))
	assert.Equal(t, "-185.95", s.Balance.String())
}
