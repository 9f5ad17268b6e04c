// Package ports declares the storage contracts the services depend on.
// Both the SQLite repository and the in-memory store implement them.
package ports

import (
	"context"

	"fintrack/internal/core"
)

type (
	UserStore interface {
		// CreateUser returns core.ErrDuplicateUsername when the name is taken.
		CreateUser(ctx context.Context, username, password string) (int64, error)
		// FindUserByUsername reports found == false for unknown names.
		FindUserByUsername(ctx context.Context, username string) (user core.User, found bool, err error)
		UserExists(ctx context.Context, id int64) (bool, error)
	}

	TransactionStore interface {
		InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
		ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
		// SumByKind totals every transaction of the user, grouped by kind.
		SumByKind(ctx context.Context, userID int64) (core.Totals, error)
		// SumExpenses totals expenses for one category inside an inclusive date window.
		SumExpenses(ctx context.Context, userID int64, category string, window core.MonthWindow) (core.Money, error)
	}

	BudgetStore interface {
		// UpsertBudget replaces any existing limit for (user, category).
		UpsertBudget(ctx context.Context, b core.Budget) error
		GetBudget(ctx context.Context, userID int64, category string) (b core.Budget, found bool, err error)
	}

	// Archiver copies the whole store aside and back.
	Archiver interface {
		Backup(ctx context.Context) (location string, err error)
		Restore(ctx context.Context) error
	}

	Store interface {
		UserStore
		TransactionStore
		BudgetStore
		Archiver
		Close() error
	}
)
