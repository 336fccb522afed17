package storage

import (
	"context"
	"fmt"
	"log/slog"

	"kassza/internal/core"
)

// Sync bookkeeping for the spreadsheet mirror. Rows start out 'pending',
// move to 'synced' once the worker has appended them, and to 'error'
// when the append repeatedly fails. Updates flip a row back to
// 'pending' so the mirror picks the change up on the next pass.

// ListPendingSync returns up to limit transactions awaiting mirroring,
// oldest first.
func (r *Repository) ListPendingSync(ctx context.Context, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		return []core.Transaction{}, nil
	}
	return r.queryTransactions(ctx, `
		SELECT`+transactionColumns+`
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		WHERE t.sync_status = 'pending'
		ORDER BY t.id ASC
		LIMIT ?`, limit)
}

// MarkSynced records that the mirror holds the row's current state.
func (r *Repository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.setSyncStatus(ctx, id, "synced"); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError flags a row the mirror could not absorb.
func (r *Repository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.setSyncStatus(ctx, id, "error"); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

func (r *Repository) setSyncStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set sync status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sync status rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return nil
}
