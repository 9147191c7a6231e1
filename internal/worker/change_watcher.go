package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"selfin/internal/amqp"
	"selfin/internal/core"
)

// ChangeWatcher prints ledger change events received from the broker.
type ChangeWatcher struct {
	out io.Writer

	mu        sync.Mutex
	processed int
	seen      map[string]struct{}
}

func NewChangeWatcher(out io.Writer) *ChangeWatcher {
	return &ChangeWatcher{
		out:  out,
		seen: make(map[string]struct{}),
	}
}

// HandleLedgerChange writes one line per event. Redelivered IDs are skipped.
// A malformed balance is returned as an error so the delivery is requeued.
func (w *ChangeWatcher) HandleLedgerChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, dup := w.seen[msg.ID]; dup {
		slog.DebugContext(ctx, "Skipping duplicate ledger change", "change_id", msg.ID)
		return nil
	}

	balance, err := decimal.NewFromString(msg.Balance)
	if err != nil {
		return fmt.Errorf("parse balance %q: %w", msg.Balance, err)
	}

	var verb string
	switch msg.Kind {
	case core.KindIncome:
		verb = "income"
	case core.KindExpense:
		verb = "expense"
	default:
		slog.WarnContext(ctx, "Ignoring ledger change of unknown kind", "change_id", msg.ID, "kind", msg.Kind)
		w.seen[msg.ID] = struct{}{}
		return nil
	}

	if _, err := fmt.Fprintf(w.out, "%s  %-7s %-20s %10s  balance %s\n",
		msg.Timestamp.Local().Format("2006-01-02 15:04:05"),
		verb, msg.Label, core.FormatAmount(msg.Amount), core.FormatDecimal(balance)); err != nil {
		return fmt.Errorf("write change: %w", err)
	}

	w.seen[msg.ID] = struct{}{}
	w.processed++
	slog.InfoContext(ctx, "Processed ledger change",
		"change_id", msg.ID,
		"kind", msg.Kind,
		"balance", balance.StringFixed(2))
	return nil
}

// Processed returns how many distinct changes were printed.
func (w *ChangeWatcher) Processed() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.processed
}
