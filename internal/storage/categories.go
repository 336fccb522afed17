package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"kassza/internal/core"
)

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM categories
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// CreateCategory persists a new category. The name is trimmed before
// storage; an empty name fails with core.ErrEmptyName and an existing
// name (case-sensitive) with core.ErrDuplicateCategory.
func (r *Repository) CreateCategory(ctx context.Context, name string) (*core.Category, error) {
	trimmed, err := core.ValidateCategoryName(name)
	if err != nil {
		return nil, err
	}

	var created core.Category
	err = r.inTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM categories WHERE name = ?)`, trimmed,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check existing category: %w", err)
		}
		if exists {
			return fmt.Errorf("%q: %w", trimmed, core.ErrDuplicateCategory)
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name, created_at) VALUES (?, ?)`, trimmed, now)
		if err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("category insert id: %w", err)
		}
		created = core.Category{ID: id, Name: trimmed, CreatedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Category created", "id", created.ID, "name", created.Name)
	return &created, nil
}

// DeleteCategory removes a category only if no transaction references it.
// The reference count and the delete run in one transaction, so a
// concurrent insert cannot slip between the check and the delete. Returns
// core.ErrCategoryInUse when referenced and core.ErrNotFound when the id
// does not exist.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var refs int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, id,
		).Scan(&refs); err != nil {
			return fmt.Errorf("count category references: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("category %d referenced by %d transactions: %w", id, refs, core.ErrCategoryInUse)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete category rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("category %d: %w", id, core.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

// CountTransactionsForCategory reports how many transactions reference
// the category. Deleting a category is only allowed when this is zero.
func (r *Repository) CountTransactionsForCategory(ctx context.Context, categoryID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions for category: %w", err)
	}
	return count, nil
}

// CanDeleteCategory reports whether the category is unreferenced. This is
// advisory only: DeleteCategory re-checks inside its own transaction, so a
// reference created after this call still blocks the delete.
func (r *Repository) CanDeleteCategory(ctx context.Context, categoryID int64) (bool, error) {
	count, err := r.CountTransactionsForCategory(ctx, categoryID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
