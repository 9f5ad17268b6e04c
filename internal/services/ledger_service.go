package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// NewTransaction is the raw input of an add. Amount, Kind and Date arrive as
// text from the front ends; an empty Date means today.
type NewTransaction struct {
	UserID   int64
	Amount   string
	Category string
	Kind     string
	Date     string
}

// LedgerService records transactions and computes per-user totals.
type LedgerService struct {
	users ports.UserStore
	txs   ports.TransactionStore
	clock Clock
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(users ports.UserStore, txs ports.TransactionStore, clock Clock) *LedgerService {
	return &LedgerService{users: users, txs: txs, clock: clock}
}

// AddTransaction validates and persists a transaction, returning its id.
func (s *LedgerService) AddTransaction(ctx context.Context, in NewTransaction) (int64, error) {
	tx, err := s.Record(ctx, in)
	if err != nil {
		return 0, err
	}
	return tx.ID, nil
}

// Record is AddTransaction returning the stored transaction.
func (s *LedgerService) Record(ctx context.Context, in NewTransaction) (core.Transaction, error) {
	tx, err := s.parse(in)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := requireUser(ctx, s.users, tx.UserID); err != nil {
		return core.Transaction{}, err
	}

	id, err := s.txs.InsertTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	tx.ID = id

	log.For(ctx, log.ComponentLedger).DebugContext(ctx, "Transaction recorded",
		log.FieldOperation, log.OpAdd,
		log.FieldTransactionID, tx.ID,
		log.FieldTransactionRef, tx.Ref)
	return tx, nil
}

func (s *LedgerService) parse(in NewTransaction) (core.Transaction, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(in.Kind)
	if err != nil {
		return core.Transaction{}, err
	}

	date := core.DateOf(s.clock())
	if strings.TrimSpace(in.Date) != "" {
		if date, err = core.ParseDate(in.Date); err != nil {
			return core.Transaction{}, err
		}
	}

	tx := core.Transaction{
		Ref:      uuid.NewString(),
		UserID:   in.UserID,
		Amount:   amount,
		Category: strings.TrimSpace(in.Category),
		Kind:     kind,
		Date:     date,
	}
	return tx, tx.Validate()
}

// Totals sums the user's transactions by kind.
func (s *LedgerService) Totals(ctx context.Context, userID int64) (core.Totals, error) {
	t, err := s.txs.SumByKind(ctx, userID)
	if err != nil {
		return core.Totals{}, fmt.Errorf("totals for user %d: %w", userID, err)
	}
	return t, nil
}

// Transactions lists the user's transactions oldest first.
func (s *LedgerService) Transactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.txs.ListTransactions(ctx, userID)
}

func requireUser(ctx context.Context, users ports.UserStore, id int64) error {
	ok, err := users.UserExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return fmt.Errorf("user %d: %w", id, core.ErrUnknownUser)
	}
	return nil
}
