// Package memory is a process-local implementation of the storage ports.
// Backup and Restore keep a single snapshot in memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

var _ ports.Store = (*Store)(nil)

type budgetKey struct {
	userID   int64
	category string
}

type state struct {
	users   []core.User
	txs     []core.Transaction
	budgets map[budgetKey]core.Money
}

type Store struct {
	mu       sync.Mutex
	cur      state
	snapshot *state
}

func New() *Store {
	return &Store{cur: state{budgets: map[budgetKey]core.Money{}}}
}

// CreateUser implements ports.UserStore
func (s *Store) CreateUser(_ context.Context, username, password string) (int64, error) {
	if err := core.ValidateUsername(username); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.cur.users {
		if u.Username == username {
			return 0, core.ErrDuplicateUsername
		}
	}
	id := int64(len(s.cur.users) + 1)
	s.cur.users = append(s.cur.users, core.User{ID: id, Username: username, Password: password})
	return id, nil
}

// FindUserByUsername implements ports.UserStore
func (s *Store) FindUserByUsername(_ context.Context, username string) (core.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.cur.users {
		if u.Username == username {
			return u, true, nil
		}
	}
	return core.User{}, false, nil
}

// UserExists implements ports.UserStore
func (s *Store) UserExists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userExists(id), nil
}

func (s *Store) userExists(id int64) bool {
	return id > 0 && id <= int64(len(s.cur.users))
}

// InsertTransaction implements ports.TransactionStore
func (s *Store) InsertTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.userExists(tx.UserID) {
		return 0, fmt.Errorf("user %d: %w", tx.UserID, core.ErrUnknownUser)
	}
	tx.ID = int64(len(s.cur.txs) + 1)
	if tx.Ref == "" {
		tx.Ref = uuid.NewString()
	}
	s.cur.txs = append(s.cur.txs, tx)
	return tx.ID, nil
}

// GetTransaction implements ports.TransactionStore
func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || id > int64(len(s.cur.txs)) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return s.cur.txs[id-1], nil
}

// ListTransactions implements ports.TransactionStore
func (s *Store) ListTransactions(_ context.Context, userID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.cur.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out, nil
}

// SumByKind implements ports.TransactionStore
func (s *Store) SumByKind(_ context.Context, userID int64) (core.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		t   core.Totals
		err error
	)
	for _, tx := range s.cur.txs {
		if tx.UserID != userID {
			continue
		}
		switch tx.Kind {
		case core.Income:
			t.Income, err = t.Income.CheckedAdd(tx.Amount)
		case core.Expense:
			t.Expense, err = t.Expense.CheckedAdd(tx.Amount)
		}
		if err != nil {
			return core.Totals{}, fmt.Errorf("sum %s for user %d: %w", tx.Kind, userID, err)
		}
	}
	return t, nil
}

// SumExpenses implements ports.TransactionStore
func (s *Store) SumExpenses(_ context.Context, userID int64, category string, window core.MonthWindow) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total core.Money
	for _, tx := range s.cur.txs {
		if tx.UserID == userID && tx.Category == category && tx.Kind == core.Expense && window.Contains(tx.Date) {
			var err error
			if total, err = total.CheckedAdd(tx.Amount); err != nil {
				return core.Money{}, fmt.Errorf("sum expenses for %q: %w", category, err)
			}
		}
	}
	return total, nil
}

// UpsertBudget implements ports.BudgetStore
func (s *Store) UpsertBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.userExists(b.UserID) {
		return fmt.Errorf("user %d: %w", b.UserID, core.ErrUnknownUser)
	}
	s.cur.budgets[budgetKey{b.UserID, b.Category}] = b.Limit
	return nil
}

// GetBudget implements ports.BudgetStore
func (s *Store) GetBudget(_ context.Context, userID int64, category string) (core.Budget, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit, ok := s.cur.budgets[budgetKey{userID, category}]
	if !ok {
		return core.Budget{}, false, nil
	}
	return core.Budget{UserID: userID, Category: category, Limit: limit}, true, nil
}

// Backup implements ports.Archiver
func (s *Store) Backup(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.cur.clone()
	s.snapshot = &snap
	return "memory:snapshot", nil
}

// Restore implements ports.Archiver
func (s *Store) Restore(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return fmt.Errorf("restore: %w", core.ErrNotFound)
	}
	s.cur = s.snapshot.clone()
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (st state) clone() state {
	out := state{
		users:   append([]core.User(nil), st.users...),
		txs:     append([]core.Transaction(nil), st.txs...),
		budgets: make(map[budgetKey]core.Money, len(st.budgets)),
	}
	for k, v := range st.budgets {
		out.budgets[k] = v
	}
	return out
}
