package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"kassza/internal/amqp"
	"kassza/internal/core"
	"kassza/internal/sheets/memory"
	"kassza/internal/storage"
)

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()

	repo, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func addTransaction(t *testing.T, repo *storage.Repository, desc string, amount float64) core.Transaction {
	t.Helper()

	tr, err := repo.CreateTransaction(context.Background(), core.NewTransactionParams{
		Description: desc,
		Amount:      amount,
		Date:        "2024-03-10",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	return *tr
}

func TestHandleMessageUpsert(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.New()
	w := NewMirrorWorker(repo, store, 10)
	ctx := context.Background()

	tr := addTransaction(t, repo, "groceries", -4200)

	if err := w.HandleMessage(ctx, amqp.NewUpsertMessage(tr.ID)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	mirrored, ok := store.Get(tr.ID)
	if !ok {
		t.Fatal("transaction not mirrored")
	}
	if mirrored.Description != "groceries" || mirrored.Amount != -4200 {
		t.Errorf("mirrored = %+v, want description=groceries amount=-4200", mirrored)
	}

	pending, err := repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingSync: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d rows, want 0 after mirror", len(pending))
	}
}

func TestHandleMessageDelete(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.New()
	w := NewMirrorWorker(repo, store, 10)
	ctx := context.Background()

	tr := addTransaction(t, repo, "groceries", -4200)
	if err := w.HandleMessage(ctx, amqp.NewUpsertMessage(tr.ID)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := repo.DeleteTransaction(ctx, tr.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := w.HandleMessage(ctx, amqp.NewDeleteMessage(tr.ID)); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, ok := store.Get(tr.ID); ok {
		t.Error("transaction still in mirror after delete")
	}
}

func TestHandleMessageUpsertGoneTransaction(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.New()
	w := NewMirrorWorker(repo, store, 10)

	// Row deleted before the worker saw the message; not an error.
	if err := w.HandleMessage(context.Background(), amqp.NewUpsertMessage(999)); err != nil {
		t.Errorf("HandleMessage = %v, want nil for missing row", err)
	}
	if store.Len() != 0 {
		t.Errorf("mirror has %d rows, want 0", store.Len())
	}
}

func TestProcessPendingMirrorsBacklog(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.New()
	w := NewMirrorWorker(repo, store, 10)
	ctx := context.Background()

	addTransaction(t, repo, "salary", 500000)
	addTransaction(t, repo, "rent", -120000)
	addTransaction(t, repo, "groceries", -4200)

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}

	if store.Len() != 3 {
		t.Errorf("mirror has %d rows, want 3", store.Len())
	}

	pending, err := repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingSync: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d rows, want 0 after catch-up", len(pending))
	}
}

func TestMirrorFailureMarksSyncError(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.New()
	store.SetFail(errors.New("quota exceeded"))
	w := NewMirrorWorker(repo, store, 10)
	ctx := context.Background()

	tr := addTransaction(t, repo, "groceries", -4200)

	if err := w.HandleMessage(ctx, amqp.NewUpsertMessage(tr.ID)); err == nil {
		t.Fatal("expected error from failing writer")
	}

	// Row left the pending set and carries the error status.
	pending, err := repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingSync: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d rows, want 0 after error mark", len(pending))
	}

	// Recovery: writer comes back, the row can be retried by marking it
	// pending again through an update.
	store.SetFail(nil)
	desc := "groceries updated"
	if _, err := repo.UpdateTransaction(ctx, tr.ID, core.UpdateTransactionParams{Description: &desc}); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	mirrored, ok := store.Get(tr.ID)
	if !ok {
		t.Fatal("transaction not mirrored after recovery")
	}
	if mirrored.Description != "groceries updated" {
		t.Errorf("description = %q, want updated value", mirrored.Description)
	}
}
