package amqp

import (
	"encoding/json"
	"time"

	"expensed/internal/core"
)

// Event types carried on the ledger stream.
const (
	EventExpenseCreated = "expense.created"
	EventExpenseDeleted = "expense.deleted"
)

// LedgerEventMessage describes one committed ledger mutation. Created events
// carry the full expense so consumers can mirror it without a database
// round-trip; deleted events carry only the identifiers.
type LedgerEventMessage struct {
	Type        string    `json:"type"`
	ExpenseID   int64     `json:"expense_id"`
	OwnerID     int64     `json:"owner_id"`
	Date        string    `json:"date,omitempty"` // DD-MM-YYYY
	Description string    `json:"description,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Category    string    `json:"category,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseCreatedMessage builds the event for a freshly inserted expense.
func NewExpenseCreatedMessage(e core.Expense) *LedgerEventMessage {
	return &LedgerEventMessage{
		Type:        EventExpenseCreated,
		ExpenseID:   e.ID,
		OwnerID:     e.OwnerID,
		Date:        e.Date.Wire(),
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Category:    e.Category,
		Timestamp:   time.Now(),
	}
}

// NewExpenseDeletedMessage builds the event for a removed expense.
func NewExpenseDeletedMessage(ownerID, expenseID int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Type:      EventExpenseDeleted,
		ExpenseID: expenseID,
		OwnerID:   ownerID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
