package core

import "time"

// Change describes one successful ledger mutation.
// Exactly one of Income or Expense is set, matching Kind.
type Change struct {
	ID      string
	Kind    RecordKind
	Income  *IncomeRecord
	Expense *ExpenseRecord
	Summary Summary
	At      time.Time
}

// Label returns the source or category of the changed record.
func (c Change) Label() string {
	switch {
	case c.Income != nil:
		return c.Income.Source
	case c.Expense != nil:
		return c.Expense.Category
	}
	return ""
}

// Amount returns the amount of the changed record.
func (c Change) Amount() float64 {
	switch {
	case c.Income != nil:
		return c.Income.Amount
	case c.Expense != nil:
		return c.Expense.Amount
	}
	return 0
}
