package amqp

import (
	"encoding/json"
	"time"

	"selfin/internal/core"
)

// LedgerChangeMessage is the wire form of a ledger change.
// Totals are decimal strings so consumers see the exact values.
type LedgerChangeMessage struct {
	ID            string          `json:"id"`
	Kind          core.RecordKind `json:"kind"`
	Label         string          `json:"label"`
	Amount        float64         `json:"amount"`
	TotalIncome   string          `json:"total_income"`
	TotalExpenses string          `json:"total_expenses"`
	Balance       string          `json:"balance"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewLedgerChangeMessage builds the message for c.
func NewLedgerChangeMessage(c core.Change) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		ID:            c.ID,
		Kind:          c.Kind,
		Label:         c.Label(),
		Amount:        c.Amount(),
		TotalIncome:   c.Summary.TotalIncome.String(),
		TotalExpenses: c.Summary.TotalExpenses.String(),
		Balance:       c.Summary.Balance.String(),
		Timestamp:     c.At,
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangeMessageFromJSON creates a message from JSON bytes
func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
