package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1000", 1000, true},
		{"1000.0", 1000, true},
		{" 12.50 ", 12.5, true},
		{"-3", -3, true},
		{"0", 0, true},
		{"1e3", 1000, true},
		{"abc", 0, false},
		{"", 0, false},
		{"   ", 0, false},
		{"1,5", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
		{"1e400", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if assert.NoError(t, err, "input %q", tc.in) {
				assert.Equal(t, tc.out, got, "input %q", tc.in)
			}
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", tc.in)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$1000.00", FormatAmount(1000))
	assert.Equal(t, "$12.50", FormatAmount(12.5))
	assert.Equal(t, "$-3.00", FormatAmount(-3))
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "$600.00", FormatDecimal(decimal.NewFromInt(600)))
	assert.Equal(t, "$-400.00", FormatDecimal(decimal.NewFromInt(-400)))
	assert.Equal(t, "$0.30", FormatDecimal(decimal.RequireFromString("0.3")))
}
