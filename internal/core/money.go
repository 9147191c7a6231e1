// Package core provides the ledger domain types and amount handling.
//
// This file contains functions for parsing amounts typed into a form and
// formatting them for display.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input into an amount.
//
// Any finite decimal or scientific notation number is accepted, including
// negative values and zero. Surrounding whitespace is ignored.
// Returns ErrInvalidAmount for empty or non-numeric input and for NaN or
// infinities, which the ledger file cannot represent.
//
// Examples:
//
//	ParseAmount("1000")  -> 1000, nil
//	ParseAmount(" 12.5") -> 12.5, nil
//	ParseAmount("-3")    -> -3, nil
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := validateAmount(v); err != nil {
		return 0, fmt.Errorf("%w: %q", err, s)
	}
	return v, nil
}

func validateAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidAmount
	}
	return nil
}

// FormatAmount renders an amount the way the tables show it, e.g. "$1000.00".
func FormatAmount(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// FormatDecimal renders an exact total with two decimals, e.g. "$-400.00".
func FormatDecimal(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
