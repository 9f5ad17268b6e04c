package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// Message types carried in the AMQP Type property.
const (
	TypeTransactionRecorded = "transaction.recorded"
	TypeBudgetExceeded      = "budget.exceeded"
)

// TransactionRecordedMessage announces a stored transaction. It carries only
// identifiers; consumers read the row back from the store.
type TransactionRecordedMessage struct {
	MessageID     string    `json:"message_id"`
	TransactionID int64     `json:"transaction_id"`
	UserID        int64     `json:"user_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// BudgetExceededMessage reports a category overrun for the current month.
type BudgetExceededMessage struct {
	MessageID    string    `json:"message_id"`
	UserID       int64     `json:"user_id"`
	Category     string    `json:"category"`
	Month        string    `json:"month"`
	SpentCents   int64     `json:"spent_cents"`
	LimitCents   int64     `json:"limit_cents"`
	OverageCents int64     `json:"overage_cents"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(tx core.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		MessageID:     uuid.NewString(),
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Timestamp:     time.Now(),
	}
}

func NewBudgetExceededMessage(userID int64, o core.Overage) *BudgetExceededMessage {
	return &BudgetExceededMessage{
		MessageID:    uuid.NewString(),
		UserID:       userID,
		Category:     o.Category,
		Month:        o.Month,
		SpentCents:   o.Spent.Cents,
		LimitCents:   o.Limit.Cents,
		OverageCents: o.Amount.Cents,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *BudgetExceededMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func BudgetExceededMessageFromJSON(data []byte) (*BudgetExceededMessage, error) {
	var msg BudgetExceededMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
