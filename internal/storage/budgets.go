package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// UpsertBudget implements ports.BudgetStore
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) error {
	_, err := r.exec(ctx, sqlb.Insert("budgets").
		Columns("user_id", "category", "limit_cents").
		Values(b.UserID, b.Category, b.Limit.Cents).
		Suffix("ON CONFLICT(user_id, category) DO UPDATE SET limit_cents = excluded.limit_cents"))
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	logger(ctx).InfoContext(ctx, "Budget saved to SQLite",
		log.FieldUserID, b.UserID,
		log.FieldCategory, b.Category,
		log.FieldLimitCents, b.Limit.Cents)
	return nil
}

// GetBudget implements ports.BudgetStore
func (r *SQLiteRepository) GetBudget(ctx context.Context, userID int64, category string) (core.Budget, bool, error) {
	b := core.Budget{UserID: userID, Category: category}
	err := r.queryRow(ctx, sqlb.Select("limit_cents").
		From("budgets").
		Where(sq.Eq{"user_id": userID, "category": category}),
		&b.Limit.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("get budget %q: %w", category, err)
	}
	return b, true, nil
}
