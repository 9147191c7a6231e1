package core

import "errors"

const (
	KindIncome  RecordKind = "income"
	KindExpense RecordKind = "expense"
)

type (
	RecordKind string

	IncomeRecord struct {
		Source string  `json:"source" yaml:"source" toml:"source"`
		Amount float64 `json:"amount" yaml:"amount" toml:"amount"`
	}

	ExpenseRecord struct {
		Category string  `json:"category" yaml:"category" toml:"category"`
		Amount   float64 `json:"amount" yaml:"amount" toml:"amount"`
	}

	// Ledger is the complete set of records, in insertion order.
	Ledger struct {
		Income   []IncomeRecord  `json:"income" yaml:"income" toml:"income"`
		Expenses []ExpenseRecord `json:"expenses" yaml:"expenses" toml:"expenses"`
	}
)

var (
	ErrInvalidAmount = errors.New("amount must be a number")
	ErrEmptySource   = errors.New("source cannot be empty")
	ErrEmptyCategory = errors.New("category cannot be empty")
)

// IsValidation reports whether err is one of the input validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrEmptySource) ||
		errors.Is(err, ErrEmptyCategory)
}

// Validate rejects a non-finite amount or an empty source. The source is kept
// exactly as typed, so whitespace alone is a valid label.
func (r IncomeRecord) Validate() error {
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	if r.Source == "" {
		return ErrEmptySource
	}
	return nil
}

func (r ExpenseRecord) Validate() error {
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	if r.Category == "" {
		return ErrEmptyCategory
	}
	return nil
}

// NewLedger returns an empty ledger with non-nil sequences.
func NewLedger() Ledger {
	return Ledger{
		Income:   []IncomeRecord{},
		Expenses: []ExpenseRecord{},
	}
}

// Normalize replaces missing sequences with empty ones.
func (l *Ledger) Normalize() {
	if l.Income == nil {
		l.Income = []IncomeRecord{}
	}
	if l.Expenses == nil {
		l.Expenses = []ExpenseRecord{}
	}
}

// Clone returns a copy that shares no backing arrays with l.
func (l Ledger) Clone() Ledger {
	out := Ledger{
		Income:   make([]IncomeRecord, len(l.Income)),
		Expenses: make([]ExpenseRecord, len(l.Expenses)),
	}
	copy(out.Income, l.Income)
	copy(out.Expenses, l.Expenses)
	return out
}

// Len returns the total number of records.
func (l Ledger) Len() int {
	return len(l.Income) + len(l.Expenses)
}
