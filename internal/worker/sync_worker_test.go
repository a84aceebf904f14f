package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type fakeSource struct {
	transactions map[int64]core.Transaction
	pending      []storage.PendingSyncTransaction
	synced       []int64
	errored      []int64
	getErr       error
}

func (f *fakeSource) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	if f.getErr != nil {
		return core.Transaction{}, f.getErr
	}
	t, ok := f.transactions[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (f *fakeSource) PendingSync(_ context.Context, limit int) ([]storage.PendingSyncTransaction, error) {
	if limit < len(f.pending) {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeSource) MarkSynced(_ context.Context, id int64) error {
	f.synced = append(f.synced, id)
	return nil
}

func (f *fakeSource) MarkSyncError(_ context.Context, id int64) error {
	f.errored = append(f.errored, id)
	return nil
}

type fakeLedger struct {
	appended []int64
	struck   []int64
	err      error
}

func (f *fakeLedger) Append(_ context.Context, t core.Transaction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, t.ID)
	return "Transactions!A5:F5", nil
}

func (f *fakeLedger) Strike(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.struck = append(f.struck, id)
	return nil
}

func sampleTransaction(id int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		UserID:      1,
		Type:        core.Expense,
		Amount:      core.Money{Cents: 1250},
		Category:    "Food",
		Description: "lunch",
		Date:        core.Date{Time: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestHandleSyncAppendsAndMarks(t *testing.T) {
	source := &fakeSource{transactions: map[int64]core.Transaction{7: sampleTransaction(7)}}
	ledger := &fakeLedger{}
	w := NewSyncWorker(source, ledger)

	if err := w.HandleSync(context.Background(), 7); err != nil {
		t.Fatalf("HandleSync: %v", err)
	}
	if len(ledger.appended) != 1 || ledger.appended[0] != 7 {
		t.Fatalf("expected append of tx 7, got %v", ledger.appended)
	}
	if len(source.synced) != 1 || source.synced[0] != 7 {
		t.Fatalf("expected tx 7 marked synced, got %v", source.synced)
	}
}

func TestHandleSyncMissingTransactionDrops(t *testing.T) {
	source := &fakeSource{transactions: map[int64]core.Transaction{}}
	ledger := &fakeLedger{}
	w := NewSyncWorker(source, ledger)

	if err := w.HandleSync(context.Background(), 99); err != nil {
		t.Fatalf("missing transaction should not error: %v", err)
	}
	if len(ledger.appended) != 0 {
		t.Fatalf("nothing should reach the ledger: %v", ledger.appended)
	}
}

func TestHandleSyncLedgerFailureMarksError(t *testing.T) {
	source := &fakeSource{transactions: map[int64]core.Transaction{7: sampleTransaction(7)}}
	ledger := &fakeLedger{err: errors.New("quota exceeded")}
	w := NewSyncWorker(source, ledger)

	err := w.HandleSync(context.Background(), 7)
	if err == nil {
		t.Fatalf("expected error when ledger append fails")
	}
	if len(source.errored) != 1 || source.errored[0] != 7 {
		t.Fatalf("expected sync error recorded for tx 7, got %v", source.errored)
	}
	if len(source.synced) != 0 {
		t.Fatalf("failed sync must not mark synced: %v", source.synced)
	}
}

func TestHandleDelete(t *testing.T) {
	ledger := &fakeLedger{}
	w := NewSyncWorker(&fakeSource{}, ledger)

	if err := w.HandleDelete(context.Background(), 3); err != nil {
		t.Fatalf("HandleDelete: %v", err)
	}
	if len(ledger.struck) != 1 || ledger.struck[0] != 3 {
		t.Fatalf("expected strike of tx 3, got %v", ledger.struck)
	}
}

func TestResyncPendingSkipsFailures(t *testing.T) {
	source := &fakeSource{
		transactions: map[int64]core.Transaction{
			1: sampleTransaction(1),
			3: sampleTransaction(3),
		},
		pending: []storage.PendingSyncTransaction{{ID: 1}, {ID: 2}, {ID: 3}},
	}
	ledger := &fakeLedger{}
	w := NewSyncWorker(source, ledger)

	synced, err := w.ResyncPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("ResyncPending: %v", err)
	}
	// tx 2 is missing and is dropped, not counted as a failure of the batch.
	if synced != 3 {
		t.Fatalf("expected 3 handled, got %d", synced)
	}
	if len(ledger.appended) != 2 {
		t.Fatalf("expected 2 ledger appends, got %v", ledger.appended)
	}
}
