package memory

import (
	"context"
	"errors"
	"math"
	"testing"

	"fintrack/internal/core"
)

func TestMemoryStoreUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.CreateUser(ctx, "alice", "pw")
	if err != nil || id != 1 {
		t.Fatalf("unexpected create: id=%d err=%v", id, err)
	}
	if _, err := s.CreateUser(ctx, "alice", "x"); err != core.ErrDuplicateUsername {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	u, found, _ := s.FindUserByUsername(ctx, "alice")
	if !found || u.ID != 1 || u.Password != "pw" {
		t.Fatalf("unexpected lookup: %+v found=%v", u, found)
	}
}

func TestMemoryStoreRejectsUnknownUser(t *testing.T) {
	s := New()
	_, err := s.InsertTransaction(context.Background(), core.Transaction{
		UserID: 3, Amount: core.Money{Cents: 1}, Category: "c", Kind: core.Income, Date: core.NewDate(2025, 1, 1),
	})
	if err == nil {
		t.Fatalf("expected error for unknown user")
	}
}

func TestMemoryStoreSnapshot(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Restore(ctx); err == nil {
		t.Fatalf("restore without backup should fail")
	}

	uid, _ := s.CreateUser(ctx, "alice", "pw")
	if _, err := s.Backup(ctx); err != nil {
		t.Fatalf("backup: %v", err)
	}
	_ = s.UpsertBudget(ctx, core.Budget{UserID: uid, Category: "Food", Limit: core.Money{Cents: 100}})
	_, _ = s.CreateUser(ctx, "bob", "pw")

	if err := s.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, found, _ := s.FindUserByUsername(ctx, "bob"); found {
		t.Fatalf("bob should be gone after restore")
	}
	if _, found, _ := s.GetBudget(ctx, uid, "Food"); found {
		t.Fatalf("budget should be gone after restore")
	}
}

func TestMemoryStoreSumOverflow(t *testing.T) {
	ctx := context.Background()
	s := New()
	uid, _ := s.CreateUser(ctx, "alice", "pw")
	for i := 0; i < 2; i++ {
		s.cur.txs = append(s.cur.txs, core.Transaction{
			ID: int64(i + 1), UserID: uid, Amount: core.Money{Cents: math.MaxInt64/2 + 1},
			Category: "Food", Kind: core.Expense, Date: core.NewDate(2025, 6, 1),
		})
	}

	if _, err := s.SumByKind(ctx, uid); !errors.Is(err, core.ErrAmountOverflow) {
		t.Fatalf("expected ErrAmountOverflow, got %v", err)
	}
	june := core.MonthWindow{Start: core.NewDate(2025, 6, 1), End: core.NewDate(2025, 6, 30)}
	if _, err := s.SumExpenses(ctx, uid, "Food", june); !errors.Is(err, core.ErrAmountOverflow) {
		t.Fatalf("expected ErrAmountOverflow, got %v", err)
	}
}

func TestMemoryStoreRejectsAmountAboveCap(t *testing.T) {
	ctx := context.Background()
	s := New()
	uid, _ := s.CreateUser(ctx, "alice", "pw")
	_, err := s.InsertTransaction(ctx, core.Transaction{
		UserID: uid, Amount: core.Money{Cents: core.MaxCents + 1}, Category: "c", Kind: core.Income, Date: core.NewDate(2025, 1, 1),
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
