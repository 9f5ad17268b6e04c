package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// Clock returns the current time. Tests pin it; production uses time.Now.
type Clock func() time.Time

// Options configures NewService. Zero values select plaintext credentials,
// no event publishing and the wall clock.
type Options struct {
	Hasher auth.Hasher
	Events EventPublisher
	Clock  Clock
}

// Service holds all business logic services.
type Service struct {
	Accounts *AccountService
	Ledger   *LedgerService
	Budgets  *BudgetService
	Reports  *ReportService

	store  ports.Store
	events EventPublisher
}

// NewService wires the services around a single injected store.
func NewService(store ports.Store, opts Options) *Service {
	if opts.Hasher == nil {
		opts.Hasher = auth.Plain{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	ledger := NewLedgerService(store, store, opts.Clock)
	return &Service{
		Accounts: NewAccountService(store, opts.Hasher),
		Ledger:   ledger,
		Budgets:  NewBudgetService(store, store, store, opts.Clock),
		Reports:  NewReportService(ledger),
		store:    store,
		events:   opts.Events,
	}
}

// Recorded is the outcome of RecordTransaction. Overage is set only when an
// expense pushed its category past the monthly budget.
type Recorded struct {
	Transaction core.Transaction
	Overage     *core.Overage
}

// RecordTransaction adds a transaction and, for expenses, evaluates the
// category budget. The budget check is advisory: its failure is logged and
// never undoes the insert.
func (s *Service) RecordTransaction(ctx context.Context, in NewTransaction) (Recorded, error) {
	tx, err := s.Ledger.Record(ctx, in)
	if err != nil {
		return Recorded{}, err
	}
	out := Recorded{Transaction: tx}

	s.publish(ctx, "transaction_recorded", func(p EventPublisher) error {
		return p.PublishTransactionRecorded(ctx, tx)
	})

	if tx.Kind != core.Expense {
		return out, nil
	}

	o, over, err := s.Budgets.CheckBudget(ctx, tx.UserID, tx.Category)
	if err != nil {
		log.For(ctx, log.ComponentLedger).WarnContext(ctx, "Budget check failed after transaction",
			log.FieldTransactionID, tx.ID,
			log.FieldCategory, tx.Category,
			log.FieldError, err)
		return out, nil
	}
	if over {
		out.Overage = &o
		s.publish(ctx, "budget_exceeded", func(p EventPublisher) error {
			return p.PublishBudgetExceeded(ctx, tx.UserID, o)
		})
	}
	return out, nil
}

// Backup copies the store aside.
func (s *Service) Backup(ctx context.Context) (string, error) {
	return s.store.Backup(ctx)
}

// Restore replaces the store with its last backup.
func (s *Service) Restore(ctx context.Context) error {
	return s.store.Restore(ctx)
}

func (s *Service) publish(ctx context.Context, event string, fn func(EventPublisher) error) {
	if s.events == nil {
		return
	}
	if err := fn(s.events); err != nil {
		log.For(ctx, log.ComponentLedger).ErrorContext(ctx, "Failed to publish event",
			log.FieldEvent, event,
			log.FieldError, err)
	}
}

// Close closes the store and the event publisher.
func (s *Service) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	return errors.Join(errs...)
}
