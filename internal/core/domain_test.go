package core

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomeRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     IncomeRecord
		wantErr error
	}{
		{"valid", IncomeRecord{Source: "Salary", Amount: 1000}, nil},
		{"negative amount allowed", IncomeRecord{Source: "Refund", Amount: -5}, nil},
		{"zero amount allowed", IncomeRecord{Source: "Gift", Amount: 0}, nil},
		{"empty source", IncomeRecord{Source: "", Amount: 1}, ErrEmptySource},
		{"whitespace source allowed", IncomeRecord{Source: "   ", Amount: 1}, nil},
		{"nan amount", IncomeRecord{Source: "x", Amount: math.NaN()}, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpenseRecordValidate(t *testing.T) {
	assert.NoError(t, ExpenseRecord{Category: "Rent", Amount: 400}.Validate())
	assert.ErrorIs(t, ExpenseRecord{Category: "", Amount: 400}.Validate(), ErrEmptyCategory)
	assert.NoError(t, ExpenseRecord{Category: " \t", Amount: 400}.Validate())
	assert.ErrorIs(t, ExpenseRecord{Category: "Rent", Amount: math.Inf(1)}.Validate(), ErrInvalidAmount)
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(ErrEmptySource))
	assert.True(t, IsValidation(ErrEmptyCategory))
	_, err := ParseAmount("abc")
	assert.True(t, IsValidation(err))
	assert.False(t, IsValidation(errors.New("disk full")))
	assert.False(t, IsValidation(nil))
}

func TestLedgerCloneIsIndependent(t *testing.T) {
	l := NewLedger()
	l.Income = append(l.Income, IncomeRecord{Source: "Salary", Amount: 1000})

	c := l.Clone()
	c.Income[0].Source = "changed"
	c.Expenses = append(c.Expenses, ExpenseRecord{Category: "Rent", Amount: 400})

	require.Len(t, l.Income, 1)
	assert.Equal(t, "Salary", l.Income[0].Source)
	assert.Empty(t, l.Expenses)
	assert.Equal(t, 2, c.Len())
}

func TestLedgerNormalize(t *testing.T) {
	var l Ledger
	l.Normalize()
	assert.NotNil(t, l.Income)
	assert.NotNil(t, l.Expenses)
	assert.Equal(t, 0, l.Len())
}
