// Package worker consumes transaction sync messages and writes the ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// TransactionSource is what the worker needs from storage: the row to sync and
// the status transitions.
type TransactionSource interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	PendingSync(ctx context.Context, limit int) ([]storage.PendingSyncTransaction, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// LedgerWriter is the append-only ledger destination.
type LedgerWriter interface {
	Append(ctx context.Context, t core.Transaction) (string, error)
	Strike(ctx context.Context, transactionID int64) error
}

type SyncWorker struct {
	source TransactionSource
	ledger LedgerWriter
}

func NewSyncWorker(source TransactionSource, ledger LedgerWriter) *SyncWorker {
	return &SyncWorker{source: source, ledger: ledger}
}

// HandleSync loads the transaction and appends it to the ledger. Returning an
// error requeues the message; a missing transaction is treated as already
// resolved and dropped.
func (w *SyncWorker) HandleSync(ctx context.Context, id int64) error {
	t, err := w.source.GetTransaction(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Transaction gone before sync, dropping",
			log.FieldComponent, log.ComponentWorker,
			log.FieldTxID, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", id, err)
	}

	ref, err := w.ledger.Append(ctx, t)
	if err != nil {
		if markErr := w.source.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to record sync error",
				log.FieldComponent, log.ComponentWorker,
				log.FieldTxID, id,
				log.FieldError, markErr)
		}
		return fmt.Errorf("append transaction %d to ledger: %w", id, err)
	}

	if err := w.source.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark transaction %d synced: %w", id, err)
	}

	slog.InfoContext(ctx, "Transaction synced to ledger",
		log.FieldComponent, log.ComponentWorker,
		log.FieldTxID, id,
		log.FieldLedgerRef, ref)
	return nil
}

// HandleDelete strikes the transaction from the ledger.
func (w *SyncWorker) HandleDelete(ctx context.Context, id int64) error {
	if err := w.ledger.Strike(ctx, id); err != nil {
		return fmt.Errorf("strike transaction %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Transaction deletion recorded in ledger",
		log.FieldComponent, log.ComponentWorker,
		log.FieldTxID, id)
	return nil
}

// ResyncPending drains rows still marked pending, typically after the worker
// was down while the API kept accepting writes. Individual failures are marked
// and skipped so one bad row cannot stall the batch.
func (w *SyncWorker) ResyncPending(ctx context.Context, batchSize int) (int, error) {
	pending, err := w.source.PendingSync(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending transactions: %w", err)
	}

	synced := 0
	for _, p := range pending {
		if err := w.HandleSync(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to resync transaction",
				log.FieldComponent, log.ComponentWorker,
				log.FieldTxID, p.ID,
				log.FieldError, err)
			continue
		}
		synced++
	}

	if len(pending) > 0 {
		slog.InfoContext(ctx, "Pending resync finished",
			log.FieldComponent, log.ComponentWorker,
			"attempted", len(pending),
			"synced", synced)
	}
	return synced, nil
}
