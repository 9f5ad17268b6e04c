package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
	"fintrack/internal/sheets"
)

// SyncWorker mirrors recorded transactions into a spreadsheet. Rows are
// matched on the transaction ref, since a restore can hand an exported id to
// a new transaction.
type SyncWorker struct {
	txs    ports.TransactionStore
	sheets sheets.Exporter
}

func NewSyncWorker(txs ports.TransactionStore, exporter sheets.Exporter) *SyncWorker {
	return &SyncWorker{txs: txs, sheets: exporter}
}

// Handlers returns the AMQP handlers served by this worker.
func (w *SyncWorker) Handlers() amqp.Handlers {
	return amqp.Handlers{
		TransactionRecorded: w.HandleTransactionRecorded,
		BudgetExceeded:      w.HandleBudgetExceeded,
	}
}

// HandleTransactionRecorded appends the transaction unless the sheet already
// has it. A transaction missing from the store (for example discarded by a
// restore) is skipped.
func (w *SyncWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	logger := log.For(ctx, log.ComponentWorker).With(
		log.FieldOperation, log.OpSync,
		log.FieldMessageID, msg.MessageID,
		log.FieldTransactionID, msg.TransactionID)
	logger.InfoContext(ctx, "Processing transaction recorded message")

	tx, err := w.txs.GetTransaction(ctx, msg.TransactionID)
	if errors.Is(err, core.ErrNotFound) {
		logger.WarnContext(ctx, "Transaction no longer in store, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	exported, err := w.sheets.ExportedRefs(ctx)
	if err != nil {
		return fmt.Errorf("read exported refs: %w", err)
	}
	if exported[tx.Ref] {
		logger.InfoContext(ctx, "Transaction already exported", log.FieldTransactionRef, tx.Ref)
		return nil
	}

	ref, err := w.sheets.Append(ctx, tx)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	logger.InfoContext(ctx, "Successfully synced transaction",
		log.FieldTransactionRef, tx.Ref,
		log.FieldSheetsRef, ref,
		log.FieldCategory, tx.Category,
		log.FieldAmountCents, tx.Amount.Cents)
	return nil
}

// HandleBudgetExceeded records the overrun in the worker log.
func (w *SyncWorker) HandleBudgetExceeded(ctx context.Context, msg *amqp.BudgetExceededMessage) error {
	log.For(ctx, log.ComponentWorker).WarnContext(ctx, "Budget exceeded",
		log.FieldMessageID, msg.MessageID,
		log.FieldUserID, msg.UserID,
		log.FieldCategory, msg.Category,
		log.FieldMonth, msg.Month,
		log.FieldOverageCents, msg.OverageCents)
	return nil
}

// SyncUser appends every transaction of the user that the sheet lacks and
// returns how many rows were written.
func (w *SyncWorker) SyncUser(ctx context.Context, userID int64) (int, error) {
	logger := log.For(ctx, log.ComponentWorker).With(
		log.FieldOperation, log.OpExport,
		log.FieldUserID, userID)

	txs, err := w.txs.ListTransactions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	exported, err := w.sheets.ExportedRefs(ctx)
	if err != nil {
		return 0, fmt.Errorf("read exported refs: %w", err)
	}

	pending := pendingOnly(txs, exported)
	if len(pending) == 0 {
		logger.InfoContext(ctx, "Nothing to export")
		return 0, nil
	}

	ref, err := w.sheets.AppendAll(ctx, pending)
	if err != nil {
		return 0, fmt.Errorf("append to sheets: %w", err)
	}

	logger.InfoContext(ctx, "Export completed",
		"total", len(txs),
		"exported", len(pending),
		log.FieldSheetsRef, ref)
	return len(pending), nil
}

func pendingOnly(txs []core.Transaction, exported map[string]bool) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		if !exported[tx.Ref] {
			out = append(out, tx)
		}
	}
	return out
}
