package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"selfin/internal/core"
	applog "selfin/internal/log"
)

const (
	MsgIncomeAdded  = "Income added successfully!"
	MsgExpenseAdded = "Expense added successfully!"
)

// LedgerStore is the persistence the service drives.
type LedgerStore interface {
	// AddIncome and AddExpense return the totals as of their own append.
	AddIncome(ctx context.Context, r core.IncomeRecord) (core.Summary, error)
	AddExpense(ctx context.Context, r core.ExpenseRecord) (core.Summary, error)
	Snapshot() core.Ledger
}

// Publisher forwards ledger changes outside the process.
type Publisher interface {
	PublishLedgerChange(ctx context.Context, c core.Change) error
}

// Listener is called synchronously after every successful mutation.
type Listener func(ctx context.Context, c core.Change)

// Result is what a command handler hands back to the presentation layer.
type Result struct {
	Message string
	Change  core.Change
}

// LedgerService turns form input into ledger mutations and announces them.
type LedgerService struct {
	store     LedgerStore
	publisher Publisher

	mu        sync.RWMutex
	listeners []Listener
}

// NewLedgerService wires the store and an optional publisher (nil disables it).
func NewLedgerService(store LedgerStore, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// Subscribe registers l for every future change.
func (s *LedgerService) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// AddIncome validates the raw form values and appends an income record.
// The amount is checked before the source.
func (s *LedgerService) AddIncome(ctx context.Context, source, amountText string) (Result, error) {
	amount, err := core.ParseAmount(amountText)
	if err != nil {
		return Result{}, err
	}
	rec := core.IncomeRecord{Source: source, Amount: amount}
	sum, err := s.store.AddIncome(ctx, rec)
	if err != nil {
		return Result{}, fmt.Errorf("add income: %w", err)
	}

	slog.InfoContext(ctx, "Income added",
		applog.FieldSource, rec.Source,
		applog.FieldAmount, rec.Amount,
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldOperation, applog.OpCreate)

	change := newChange(core.KindIncome, sum)
	change.Income = &rec
	s.announce(ctx, change)

	return Result{Message: MsgIncomeAdded, Change: change}, nil
}

// AddExpense validates the raw form values and appends an expense record.
func (s *LedgerService) AddExpense(ctx context.Context, category, amountText string) (Result, error) {
	amount, err := core.ParseAmount(amountText)
	if err != nil {
		return Result{}, err
	}
	rec := core.ExpenseRecord{Category: category, Amount: amount}
	sum, err := s.store.AddExpense(ctx, rec)
	if err != nil {
		return Result{}, fmt.Errorf("add expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense added",
		applog.FieldCategory, rec.Category,
		applog.FieldAmount, rec.Amount,
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldOperation, applog.OpCreate)

	change := newChange(core.KindExpense, sum)
	change.Expense = &rec
	s.announce(ctx, change)

	return Result{Message: MsgExpenseAdded, Change: change}, nil
}

// Ledger returns the current records with freshly computed totals.
func (s *LedgerService) Ledger() (core.Ledger, core.Summary) {
	l := s.store.Snapshot()
	return l, core.Summarize(l)
}

func newChange(kind core.RecordKind, sum core.Summary) core.Change {
	return core.Change{
		ID:      uuid.NewString(),
		Kind:    kind,
		Summary: sum,
		At:      time.Now().UTC(),
	}
}

func (s *LedgerService) announce(ctx context.Context, c core.Change) {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, c)
	}

	if s.publisher == nil {
		return
	}
	// The record is already on disk; a failed publish is only logged.
	if err := s.publisher.PublishLedgerChange(ctx, c); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger change",
			applog.FieldComponent, applog.ComponentAMQP,
			applog.FieldOperation, applog.OpPublish,
			applog.FieldChangeID, c.ID,
			applog.FieldKind, c.Kind,
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypeNetwork)
	}
}

// Close releases the publisher if it holds a connection.
func (s *LedgerService) Close() error {
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
