package services

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// BudgetService stores per-category monthly limits and evaluates spend
// against them.
type BudgetService struct {
	users   ports.UserStore
	budgets ports.BudgetStore
	txs     ports.TransactionStore
	clock   Clock
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(users ports.UserStore, budgets ports.BudgetStore, txs ports.TransactionStore, clock Clock) *BudgetService {
	return &BudgetService{users: users, budgets: budgets, txs: txs, clock: clock}
}

// SetBudget replaces the limit for (user, category).
func (s *BudgetService) SetBudget(ctx context.Context, userID int64, category, limit string) error {
	l, err := core.ParseLimit(limit)
	if err != nil {
		return err
	}
	b := core.Budget{UserID: userID, Category: strings.TrimSpace(category), Limit: l}
	if err := b.Validate(); err != nil {
		return err
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return err
	}

	if err := s.budgets.UpsertBudget(ctx, b); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

// GetBudget returns the current limit, if any.
func (s *BudgetService) GetBudget(ctx context.Context, userID int64, category string) (core.Budget, bool, error) {
	return s.budgets.GetBudget(ctx, userID, strings.TrimSpace(category))
}

// CheckBudget compares this calendar month's expenses in category with the
// budget. It reports an overage only when a budget exists and spend is
// strictly above it.
func (s *BudgetService) CheckBudget(ctx context.Context, userID int64, category string) (core.Overage, bool, error) {
	category = strings.TrimSpace(category)

	b, found, err := s.budgets.GetBudget(ctx, userID, category)
	if err != nil {
		return core.Overage{}, false, fmt.Errorf("check budget: %w", err)
	}
	if !found {
		return core.Overage{}, false, nil
	}

	window := core.MonthOf(s.clock())
	spent, err := s.txs.SumExpenses(ctx, userID, category, window)
	if err != nil {
		return core.Overage{}, false, fmt.Errorf("check budget: %w", err)
	}

	o, over := core.EvaluateBudget(b, window, spent)
	if over {
		log.For(ctx, log.ComponentBudget).WarnContext(ctx, "Budget exceeded",
			log.FieldUserID, userID,
			log.FieldCategory, category,
			log.FieldMonth, o.Month,
			log.FieldSpentCents, o.Spent.Cents,
			log.FieldLimitCents, o.Limit.Cents,
			log.FieldOverageCents, o.Amount.Cents)
	}
	return o, over, nil
}
