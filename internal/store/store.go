// Package store keeps the ledger in memory and mirrors it to a single
// structured-text file after every mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"selfin/internal/core"
	applog "selfin/internal/log"
)

// ErrPersist wraps every failure to write the ledger file.
var ErrPersist = errors.New("persist ledger")

type Store struct {
	mu     sync.Mutex
	path   string
	format Format
	ledger core.Ledger
	logger *applog.Logger
}

// Open loads the ledger at path, or starts an empty one if the file does not
// exist. Malformed contents are returned as an error; nothing is recovered.
// A nil logger falls back to the slog default.
func Open(path string, logger *applog.Logger) (*Store, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = applog.Default()
	}
	s := &Store{path: path, format: format, logger: logger.WithComponent(applog.ComponentStore)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.ledger = core.NewLedger()
		s.logger.Info("Ledger file not found, starting empty",
			applog.FieldLedgerFile, s.path,
			applog.FieldOperation, applog.OpRead)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read ledger file: %w", err)
	}
	l, err := decode(s.format, data)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.path, err)
	}
	s.ledger = l
	s.logger.Info("Ledger loaded",
		applog.FieldLedgerFile, s.path,
		applog.FieldOperation, applog.OpRead,
		"format", s.format,
		"income_records", len(l.Income),
		"expense_records", len(l.Expenses))
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a copy of the current ledger.
func (s *Store) Snapshot() core.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Clone()
}

// AddIncome appends r and rewrites the file, returning the totals right after
// this append. An invalid record leaves the ledger untouched; so does a
// failed write.
func (s *Store) AddIncome(ctx context.Context, r core.IncomeRecord) (core.Summary, error) {
	if err := r.Validate(); err != nil {
		return core.Summary{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Income = append(s.ledger.Income, r)
	if err := s.persist(ctx); err != nil {
		s.ledger.Income = s.ledger.Income[:len(s.ledger.Income)-1]
		return core.Summary{}, err
	}
	s.logger.DebugContext(ctx, "Income record persisted",
		applog.FieldSource, r.Source,
		applog.FieldAmount, r.Amount,
		applog.FieldLedgerFile, s.path)
	return core.Summarize(s.ledger), nil
}

// AddExpense is AddIncome for expense records.
func (s *Store) AddExpense(ctx context.Context, r core.ExpenseRecord) (core.Summary, error) {
	if err := r.Validate(); err != nil {
		return core.Summary{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Expenses = append(s.ledger.Expenses, r)
	if err := s.persist(ctx); err != nil {
		s.ledger.Expenses = s.ledger.Expenses[:len(s.ledger.Expenses)-1]
		return core.Summary{}, err
	}
	s.logger.DebugContext(ctx, "Expense record persisted",
		applog.FieldCategory, r.Category,
		applog.FieldAmount, r.Amount,
		applog.FieldLedgerFile, s.path)
	return core.Summarize(s.ledger), nil
}

// persist overwrites the whole file. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	data, err := encode(s.format, s.ledger)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersist, s.format, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.ErrorContext(ctx, "Failed to write ledger file",
			applog.FieldLedgerFile, s.path,
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypePersistence)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
