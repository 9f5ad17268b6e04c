package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

var transactionColumns = []string{"id", "ref", "user_id", "amount_cents", "category", "type", "date"}

// InsertTransaction implements ports.TransactionStore. A missing Ref is
// filled with a fresh UUID.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	if tx.Ref == "" {
		tx.Ref = uuid.NewString()
	}

	res, err := r.exec(ctx, sqlb.Insert("transactions").
		Columns("ref", "user_id", "amount_cents", "category", "type", "date").
		Values(tx.Ref, tx.UserID, tx.Amount.Cents, tx.Category, string(tx.Kind), tx.Date.String()))
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read transaction id: %w", err)
	}

	logger(ctx).InfoContext(ctx, "Transaction saved to SQLite",
		log.FieldTransactionID, id,
		log.FieldTransactionRef, tx.Ref,
		log.FieldUserID, tx.UserID,
		log.FieldAmountCents, tx.Amount.Cents,
		log.FieldCategory, tx.Category,
		log.FieldKind, tx.Kind,
		log.FieldDate, tx.Date.String())

	return id, nil
}

// GetTransaction implements ports.TransactionStore
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var (
		tx   core.Transaction
		kind string
		date string
	)
	err := r.queryRow(ctx, sqlb.Select(transactionColumns...).
		From("transactions").
		Where(sq.Eq{"id": id}),
		&tx.ID, &tx.Ref, &tx.UserID, &tx.Amount.Cents, &tx.Category, &kind, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}

	if err := fillKindAndDate(&tx, kind, date); err != nil {
		return core.Transaction{}, fmt.Errorf("decode transaction %d: %w", id, err)
	}
	return tx, nil
}

// ListTransactions implements ports.TransactionStore
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	var out []core.Transaction
	err := r.query(ctx, sqlb.Select(transactionColumns...).
		From("transactions").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("date", "id"),
		func(rows *sql.Rows) error {
			var (
				tx   core.Transaction
				kind string
				date string
			)
			if err := rows.Scan(&tx.ID, &tx.Ref, &tx.UserID, &tx.Amount.Cents, &tx.Category, &kind, &date); err != nil {
				return err
			}
			if err := fillKindAndDate(&tx, kind, date); err != nil {
				return err
			}
			out = append(out, tx)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// SumByKind implements ports.TransactionStore
func (r *SQLiteRepository) SumByKind(ctx context.Context, userID int64) (core.Totals, error) {
	var totals core.Totals
	err := r.query(ctx, sqlb.Select("type", "COALESCE(SUM(amount_cents), 0)").
		From("transactions").
		Where(sq.Eq{"user_id": userID}).
		GroupBy("type"),
		func(rows *sql.Rows) error {
			var (
				kind  string
				cents int64
			)
			if err := rows.Scan(&kind, &cents); err != nil {
				return err
			}
			switch core.Kind(kind) {
			case core.Income:
				totals.Income = core.Money{Cents: cents}
			case core.Expense:
				totals.Expense = core.Money{Cents: cents}
			default:
				logger(ctx).WarnContext(ctx, "Ignoring unknown transaction kind", log.FieldKind, kind, log.FieldUserID, userID)
			}
			return nil
		})
	if err != nil {
		return core.Totals{}, fmt.Errorf("sum transactions by kind: %w", wrapSumError(err))
	}
	return totals, nil
}

// SumExpenses implements ports.TransactionStore
func (r *SQLiteRepository) SumExpenses(ctx context.Context, userID int64, category string, window core.MonthWindow) (core.Money, error) {
	var cents int64
	err := r.queryRow(ctx, sqlb.Select("COALESCE(SUM(amount_cents), 0)").
		From("transactions").
		Where(sq.And{
			sq.Eq{"user_id": userID, "category": category, "type": string(core.Expense)},
			sq.GtOrEq{"date": window.Start.String()},
			sq.LtOrEq{"date": window.End.String()},
		}),
		&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses for %q: %w", category, wrapSumError(err))
	}
	return core.Money{Cents: cents}, nil
}

func fillKindAndDate(tx *core.Transaction, kind, date string) error {
	k, err := core.ParseKind(kind)
	if err != nil {
		return err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return err
	}
	tx.Kind = k
	tx.Date = d
	return nil
}
