package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fintrack/internal/core"
)

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishTransactionRecorded(ctx context.Context, tx core.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockEventPublisher) PublishBudgetExceeded(ctx context.Context, userID int64, o core.Overage) error {
	args := m.Called(ctx, userID, o)
	return args.Error(0)
}

func (m *mockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
