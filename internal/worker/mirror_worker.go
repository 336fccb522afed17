package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kassza/internal/amqp"
	"kassza/internal/core"
	"kassza/internal/sheets"
	"kassza/internal/storage"
)

// MirrorWorker replicates ledger rows from SQLite to the spreadsheet mirror.
// It serves two paths: AMQP messages for near-real-time replication, and a
// periodic catch-up pass over rows still marked 'pending', which recovers
// from lost messages and worker downtime.
type MirrorWorker struct {
	storage   *storage.Repository
	writer    sheets.LedgerWriter
	batchSize int
}

func NewMirrorWorker(storage *storage.Repository, writer sheets.LedgerWriter, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		storage:   storage,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleMessage processes a single mirror message from AMQP.
func (w *MirrorWorker) HandleMessage(ctx context.Context, msg *amqp.MirrorMessage) error {
	switch msg.Kind {
	case amqp.KindUpsert:
		return w.mirrorTransaction(ctx, msg.ID)
	case amqp.KindDelete:
		return w.removeFromMirror(ctx, msg.ID)
	default:
		return fmt.Errorf("unknown message kind %q", msg.Kind)
	}
}

// ProcessPending mirrors rows that haven't been synced yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *MirrorWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.ListPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, tr := range pending {
		if err := w.mirrorTransaction(ctx, tr.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction", "id", tr.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupCheck mirrors any backlog of pending rows at worker startup, with a
// larger batch than the periodic pass.
func (w *MirrorWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.ListPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, tr := range pending {
		if err := w.mirrorTransaction(ctx, tr.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction during startup",
				"id", tr.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup mirror check completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *MirrorWorker) mirrorTransaction(ctx context.Context, id int64) error {
	tr, err := w.storage.GetTransaction(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted between the message and now; the delete message handles
		// the mirror side.
		slog.WarnContext(ctx, "Transaction gone before mirroring, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.writer.Upsert(ctx, *tr)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("upsert to mirror: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
		// Don't return error here - the mirror write actually worked
	}

	slog.InfoContext(ctx, "Successfully mirrored transaction",
		"id", id,
		"row_ref", ref)

	return nil
}

func (w *MirrorWorker) removeFromMirror(ctx context.Context, id int64) error {
	if err := w.writer.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove from mirror: %w", err)
	}

	slog.InfoContext(ctx, "Removed transaction from mirror", "id", id)
	return nil
}
