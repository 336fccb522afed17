package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kassza/internal/core"
)

// transactionColumns is the select list shared by every read that
// returns full rows; category_name comes from the left join.
const transactionColumns = `
	t.id, t.description, t.amount, t.currency, t.date, t.category_id, c.name, t.created_at`

const transactionOrder = ` ORDER BY t.date DESC, t.created_at DESC, t.id DESC`

func scanTransaction(row interface{ Scan(...any) error }) (*core.Transaction, error) {
	var (
		tr           core.Transaction
		categoryID   sql.NullInt64
		categoryName sql.NullString
	)
	if err := row.Scan(&tr.ID, &tr.Description, &tr.Amount, &tr.Currency,
		&tr.Date, &categoryID, &categoryName, &tr.CreatedAt); err != nil {
		return nil, err
	}
	if categoryID.Valid {
		tr.CategoryID = &categoryID.Int64
	}
	if categoryName.Valid {
		tr.CategoryName = &categoryName.String
	}
	return &tr, nil
}

// CreateTransaction validates and persists a new ledger entry, returning
// it with the assigned id. A non-nil CategoryID must reference an
// existing category at the moment of the insert; the check runs inside
// the insert transaction.
func (r *Repository) CreateTransaction(ctx context.Context, params core.NewTransactionParams) (*core.Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	currency := params.Currency
	if currency == "" {
		currency = core.DefaultCurrency
	}
	date, err := core.ParseDate(params.Date)
	if err != nil {
		return nil, err
	}

	var id int64
	now := time.Now().UTC()
	err = r.inTx(ctx, func(tx *sql.Tx) error {
		if params.CategoryID != nil {
			if err := categoryExists(ctx, tx, *params.CategoryID); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (description, amount, currency, date, category_id, created_at, sync_status)
			VALUES (?, ?, ?, ?, ?, ?, 'pending')`,
			params.Description, params.Amount, string(currency), date, nullableID(params.CategoryID), now)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("transaction insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", id,
		"amount", params.Amount,
		"currency", string(currency),
		"date", date)

	return r.GetTransaction(ctx, id)
}

// UpdateTransaction applies a partial update to an existing transaction:
// nil fields keep their stored value, the double pointer on CategoryID
// distinguishes "unchanged" from "set or clear". Fails with
// core.ErrNotFound when the id does not exist.
func (r *Repository) UpdateTransaction(ctx context.Context, id int64, params core.UpdateTransactionParams) (*core.Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var (
			current    core.Transaction
			categoryID sql.NullInt64
		)
		err := tx.QueryRowContext(ctx, `
			SELECT description, amount, currency, date, category_id
			FROM transactions WHERE id = ?`, id,
		).Scan(&current.Description, &current.Amount, &current.Currency, &current.Date, &categoryID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("load transaction: %w", err)
		}
		if categoryID.Valid {
			current.CategoryID = &categoryID.Int64
		}

		if params.Description != nil {
			current.Description = *params.Description
		}
		if params.Amount != nil {
			current.Amount = *params.Amount
		}
		if params.Currency != nil {
			current.Currency = *params.Currency
		}
		if params.Date != nil {
			date, err := core.ParseDate(*params.Date)
			if err != nil {
				return err
			}
			current.Date = date
		}
		if params.CategoryID != nil {
			current.CategoryID = *params.CategoryID
		}

		if current.CategoryID != nil {
			if err := categoryExists(ctx, tx, *current.CategoryID); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE transactions
			SET description = ?, amount = ?, currency = ?, date = ?, category_id = ?, sync_status = 'pending'
			WHERE id = ?`,
			current.Description, current.Amount, string(current.Currency),
			current.Date, nullableID(current.CategoryID), id)
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Transaction updated", "id", id)
	return r.GetTransaction(ctx, id)
}

// DeleteTransaction removes a ledger entry. Zero rows affected fails
// with core.ErrNotFound.
func (r *Repository) DeleteTransaction(ctx context.Context, id int64) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete transaction rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// GetTransaction returns a single transaction with its category name
// joined in, or core.ErrNotFound.
func (r *Repository) GetTransaction(ctx context.Context, id int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT`+transactionColumns+`
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		WHERE t.id = ?`, id)

	tr, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return tr, nil
}

// ListTransactions returns every ledger entry, most recent business date
// first, ties broken by record creation time.
func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT`+transactionColumns+`
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id`+transactionOrder)
}

// ListRecentTransactions returns the limit most recent entries in the
// same order as ListTransactions. A non-positive limit yields an empty
// slice.
func (r *Repository) ListRecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		return []core.Transaction{}, nil
	}
	return r.queryTransactions(ctx, `
		SELECT`+transactionColumns+`
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id`+transactionOrder+`
		LIMIT ?`, limit)
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		tr, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

func categoryExists(ctx context.Context, tx *sql.Tx, id int64) error {
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return fmt.Errorf("category %d: %w", id, core.ErrUnknownCategory)
	}
	return nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
