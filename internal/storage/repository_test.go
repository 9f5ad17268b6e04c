package storage

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "finance_app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustUser(t *testing.T, repo *SQLiteRepository, name string) int64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), name, "secret")
	require.NoError(t, err)
	return id
}

func TestSQLiteRepository_Users(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id := mustUser(t, repo, "alice")
	assert.Positive(t, id)

	_, err := repo.CreateUser(ctx, "alice", "other")
	assert.ErrorIs(t, err, core.ErrDuplicateUsername)

	u, found, err := repo.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, core.User{ID: id, Username: "alice", Password: "secret"}, u)

	_, found, err = repo.FindUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, found)

	exists, err := repo.UserExists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.UserExists(ctx, id+100)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLiteRepository_Transactions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	uid := mustUser(t, repo, "alice")
	other := mustUser(t, repo, "bob")

	add := func(user int64, cents int64, category string, kind core.Kind, date core.Date) int64 {
		t.Helper()
		id, err := repo.InsertTransaction(ctx, core.Transaction{
			UserID:   user,
			Amount:   core.Money{Cents: cents},
			Category: category,
			Kind:     kind,
			Date:     date,
		})
		require.NoError(t, err)
		return id
	}

	salary := add(uid, 10000, "Salary", core.Income, core.NewDate(2025, 6, 1))
	add(uid, 2500, "Food", core.Expense, core.NewDate(2025, 6, 3))
	add(uid, 1500, "Food", core.Expense, core.NewDate(2025, 6, 30))
	add(uid, 9900, "Food", core.Expense, core.NewDate(2025, 5, 31))
	add(uid, 700, "Rent", core.Expense, core.NewDate(2025, 6, 10))
	add(other, 5000, "Food", core.Expense, core.NewDate(2025, 6, 10))

	t.Run("get", func(t *testing.T) {
		tx, err := repo.GetTransaction(ctx, salary)
		require.NoError(t, err)
		assert.Equal(t, core.Income, tx.Kind)
		assert.Equal(t, "2025-06-01", tx.Date.String())
		assert.Equal(t, int64(10000), tx.Amount.Cents)

		_, err = repo.GetTransaction(ctx, 9999)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("list is per user and ordered by date", func(t *testing.T) {
		txs, err := repo.ListTransactions(ctx, uid)
		require.NoError(t, err)
		require.Len(t, txs, 5)
		assert.Equal(t, "2025-05-31", txs[0].Date.String())
		assert.Equal(t, "2025-06-30", txs[4].Date.String())
	})

	t.Run("sum by kind", func(t *testing.T) {
		totals, err := repo.SumByKind(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), totals.Income.Cents)
		assert.Equal(t, int64(2500+1500+9900+700), totals.Expense.Cents)
	})

	t.Run("sum by kind for user without transactions", func(t *testing.T) {
		nobody := mustUser(t, repo, "carol")
		totals, err := repo.SumByKind(ctx, nobody)
		require.NoError(t, err)
		assert.Equal(t, core.Totals{}, totals)
	})

	t.Run("sum expenses restricted to month and category", func(t *testing.T) {
		june := core.MonthWindow{Start: core.NewDate(2025, 6, 1), End: core.NewDate(2025, 6, 30)}
		spent, err := repo.SumExpenses(ctx, uid, "Food", june)
		require.NoError(t, err)
		assert.Equal(t, int64(4000), spent.Cents)

		spent, err = repo.SumExpenses(ctx, uid, "Travel", june)
		require.NoError(t, err)
		assert.Zero(t, spent.Cents)
	})

	t.Run("schema rejects bad rows", func(t *testing.T) {
		_, err := repo.InsertTransaction(ctx, core.Transaction{
			UserID: uid, Amount: core.Money{Cents: 100}, Category: "x", Kind: "gift", Date: core.NewDate(2025, 1, 1),
		})
		assert.Error(t, err)

		_, err = repo.InsertTransaction(ctx, core.Transaction{
			UserID: 4242, Amount: core.Money{Cents: 100}, Category: "x", Kind: core.Income, Date: core.NewDate(2025, 1, 1),
		})
		assert.Error(t, err, "foreign key on user_id must be enforced")
	})
}

func TestSQLiteRepository_BudgetUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	uid := mustUser(t, repo, "alice")

	_, found, err := repo.GetBudget(ctx, uid, "Food")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.UpsertBudget(ctx, core.Budget{UserID: uid, Category: "Food", Limit: core.Money{Cents: 20000}}))
	require.NoError(t, repo.UpsertBudget(ctx, core.Budget{UserID: uid, Category: "Food", Limit: core.Money{Cents: 30000}}))

	b, found, err := repo.GetBudget(ctx, uid, "Food")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(30000), b.Limit.Cents)

	var rows int
	require.NoError(t, repo.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM budgets").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestSQLiteRepository_BackupRestore(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	mustUser(t, repo, "alice")

	before, err := os.ReadFile(repo.Path())
	require.NoError(t, err)

	dst, err := repo.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, repo.Path()+DefaultBackupSuffix, dst)

	require.NoError(t, repo.Restore(ctx))

	after, err := os.ReadFile(repo.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// The reopened pool is usable.
	_, found, err := repo.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSQLiteRepository_RestoreDiscardsLaterWrites(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	mustUser(t, repo, "alice")

	_, err := repo.Backup(ctx)
	require.NoError(t, err)

	mustUser(t, repo, "bob")
	require.NoError(t, repo.Restore(ctx))

	_, found, err := repo.FindUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteRepository_RestoreWithoutBackup(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Restore(context.Background())
	assert.ErrorIs(t, err, fs.ErrNotExist)

	// The live store is untouched and still open.
	_, err = repo.CreateUser(context.Background(), "alice", "pw")
	assert.NoError(t, err)
}

func TestWithBackupSuffix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.db")
	repo, err := NewSQLiteRepository(path, WithBackupSuffix(".bak"))
	require.NoError(t, err)
	defer repo.Close()

	assert.Equal(t, path+".bak", repo.BackupPath())
}

func TestSQLiteRepository_TransactionRefSurvivesIDReuse(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	uid := mustUser(t, repo, "alice")

	_, err := repo.Backup(ctx)
	require.NoError(t, err)

	tx := core.Transaction{UserID: uid, Amount: core.Money{Cents: 1000}, Category: "Food", Kind: core.Expense, Date: core.NewDate(2025, 6, 1)}
	first, err := repo.InsertTransaction(ctx, tx)
	require.NoError(t, err)
	before, err := repo.GetTransaction(ctx, first)
	require.NoError(t, err)
	assert.Len(t, before.Ref, 36)

	require.NoError(t, repo.Restore(ctx))

	tx.Category = "Rent"
	second, err := repo.InsertTransaction(ctx, tx)
	require.NoError(t, err)
	after, err := repo.GetTransaction(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, first, second, "restore rewinds the id sequence")
	assert.NotEqual(t, before.Ref, after.Ref)
}

func TestSQLiteRepository_KeepsGivenRef(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	uid := mustUser(t, repo, "alice")

	tx := core.Transaction{Ref: "fixed-ref", UserID: uid, Amount: core.Money{Cents: 1}, Category: "c", Kind: core.Income, Date: core.NewDate(2025, 1, 1)}
	id, err := repo.InsertTransaction(ctx, tx)
	require.NoError(t, err)

	got, err := repo.GetTransaction(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "fixed-ref", got.Ref)

	_, err = repo.InsertTransaction(ctx, tx)
	assert.Error(t, err, "refs are unique")
}

func TestSQLiteRepository_RejectsAmountAboveCap(t *testing.T) {
	repo := newTestRepo(t)
	uid := mustUser(t, repo, "alice")

	_, err := repo.InsertTransaction(context.Background(), core.Transaction{
		UserID: uid, Amount: core.Money{Cents: core.MaxCents + 1}, Category: "c", Kind: core.Income, Date: core.NewDate(2025, 1, 1),
	})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestSQLiteRepository_SumOverflow(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	uid := mustUser(t, repo, "alice")

	// Rows written before amounts were capped.
	for i, ref := range []string{"legacy-1", "legacy-2"} {
		_, err := repo.db.ExecContext(ctx,
			"INSERT INTO transactions (ref, user_id, amount_cents, category, type, date) VALUES (?, ?, ?, 'Food', 'expense', ?)",
			ref, uid, int64(math.MaxInt64/2+1), fmt.Sprintf("2025-06-0%d", i+1))
		require.NoError(t, err)
	}

	_, err := repo.SumByKind(ctx, uid)
	assert.ErrorIs(t, err, core.ErrAmountOverflow)

	june := core.MonthWindow{Start: core.NewDate(2025, 6, 1), End: core.NewDate(2025, 6, 30)}
	_, err = repo.SumExpenses(ctx, uid, "Food", june)
	assert.ErrorIs(t, err, core.ErrAmountOverflow)
}
