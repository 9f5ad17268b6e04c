package services

import (
	"context"

	"fintrack/internal/core"
)

// EventPublisher is notified after state changes. Implementations live in
// internal/amqp; a nil publisher disables events.
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, tx core.Transaction) error
	PublishBudgetExceeded(ctx context.Context, userID int64, o core.Overage) error
	Close() error
}
