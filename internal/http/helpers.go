package http

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"selfin/internal/core"
)

// rowView is one table line as shown on the page.
type rowView struct {
	Label  string
	Amount string
}

// ledgerView feeds both index.html and the ledger partial.
type ledgerView struct {
	Income   []rowView
	Expenses []rowView
	Summary  string
	Negative bool
}

func (s *Server) view() ledgerView {
	l, sum := s.ledger.Ledger()
	return buildView(l, sum)
}

func buildView(l core.Ledger, sum core.Summary) ledgerView {
	v := ledgerView{
		Income:   make([]rowView, 0, len(l.Income)),
		Expenses: make([]rowView, 0, len(l.Expenses)),
		Summary:  sum.Line(),
		Negative: sum.Balance.IsNegative(),
	}
	for _, r := range l.Income {
		v.Income = append(v.Income, rowView{Label: r.Source, Amount: core.FormatAmount(r.Amount)})
	}
	for _, r := range l.Expenses {
		v.Expenses = append(v.Expenses, rowView{Label: r.Category, Amount: core.FormatAmount(r.Amount)})
	}
	return v
}

// sanitizeInput removes control characters. Spaces are kept as typed.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
