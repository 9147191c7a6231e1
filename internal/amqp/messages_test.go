package amqp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfin/internal/core"
)

func TestNewLedgerChangeMessage(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := core.Ledger{
		Income:   []core.IncomeRecord{{Source: "Salary", Amount: 1000}},
		Expenses: []core.ExpenseRecord{{Category: "Rent", Amount: 400}},
	}
	rec := l.Expenses[0]
	c := core.Change{
		ID:      "abc",
		Kind:    core.KindExpense,
		Expense: &rec,
		Summary: core.Summarize(l),
		At:      at,
	}

	msg := NewLedgerChangeMessage(c)
	assert.Equal(t, "abc", msg.ID)
	assert.Equal(t, core.KindExpense, msg.Kind)
	assert.Equal(t, "Rent", msg.Label)
	assert.Equal(t, 400.0, msg.Amount)
	assert.Equal(t, "1000", msg.TotalIncome)
	assert.Equal(t, "400", msg.TotalExpenses)
	assert.Equal(t, "600", msg.Balance)

	body, err := msg.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"kind":"expense"`)

	back, err := LedgerChangeMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, msg.Balance, back.Balance)
	assert.True(t, back.Timestamp.Equal(at))
}

func TestLedgerChangeMessageFromJSONInvalid(t *testing.T) {
	_, err := LedgerChangeMessageFromJSON([]byte("not json"))
	assert.Error(t, err)
}
