package worker

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfin/internal/amqp"
	"selfin/internal/core"
)

func msg(id string, kind core.RecordKind, label string, amount float64, balance string) *amqp.LedgerChangeMessage {
	return &amqp.LedgerChangeMessage{
		ID:        id,
		Kind:      kind,
		Label:     label,
		Amount:    amount,
		Balance:   balance,
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestHandleLedgerChange(t *testing.T) {
	var buf bytes.Buffer
	w := NewChangeWatcher(&buf)
	ctx := context.Background()

	require.NoError(t, w.HandleLedgerChange(ctx, msg("a", core.KindIncome, "Salary", 1000, "1000")))
	require.NoError(t, w.HandleLedgerChange(ctx, msg("b", core.KindExpense, "Rent", 400, "600")))

	out := buf.String()
	assert.Contains(t, out, "Salary")
	assert.Contains(t, out, "$1000.00")
	assert.Contains(t, out, "balance $600.00")
	assert.Equal(t, 2, w.Processed())
}

func TestHandleLedgerChangeSkipsDuplicates(t *testing.T) {
	var buf bytes.Buffer
	w := NewChangeWatcher(&buf)
	m := msg("a", core.KindExpense, "Rent", 400, "-400")

	require.NoError(t, w.HandleLedgerChange(context.Background(), m))
	require.NoError(t, w.HandleLedgerChange(context.Background(), m))

	assert.Equal(t, 1, w.Processed())
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
	assert.Contains(t, buf.String(), "balance $-400.00")
}

func TestHandleLedgerChangeBadBalance(t *testing.T) {
	w := NewChangeWatcher(&bytes.Buffer{})
	err := w.HandleLedgerChange(context.Background(), msg("a", core.KindIncome, "Salary", 1, "lots"))
	assert.Error(t, err)
	assert.Equal(t, 0, w.Processed())
}

func TestHandleLedgerChangeUnknownKind(t *testing.T) {
	var buf bytes.Buffer
	w := NewChangeWatcher(&buf)
	require.NoError(t, w.HandleLedgerChange(context.Background(), msg("a", "transfer", "x", 1, "0")))
	assert.Empty(t, buf.String())
	assert.Equal(t, 0, w.Processed())
}
