package storage

import (
	"context"
	"errors"
	"math"
	"testing"

	"kassza/internal/core"
)

func TestCreateTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c := mustCategory(t, repo, "Salary")
	created := mustTransaction(t, repo, core.NewTransactionParams{
		Description: "march salary",
		Amount:      450000,
		Date:        "2024-03-01",
		Currency:    core.HUF,
		CategoryID:  &c.ID,
	})

	if created.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be populated")
	}

	got, err := repo.GetTransaction(ctx, created.ID)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if got.Description != "march salary" || got.Amount != 450000 ||
		got.Date != "2024-03-01" || got.Currency != core.HUF {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
	if got.CategoryID == nil || *got.CategoryID != c.ID {
		t.Fatalf("expected category id %d, got %v", c.ID, got.CategoryID)
	}
	if got.CategoryName == nil || *got.CategoryName != "Salary" {
		t.Fatalf("expected joined category name, got %v", got.CategoryName)
	}
}

func TestCreateTransactionDefaultsCurrency(t *testing.T) {
	repo := newTestRepo(t)

	created := mustTransaction(t, repo, core.NewTransactionParams{
		Description: "lunch",
		Amount:      -1800,
		Date:        "2024-03-05",
	})
	if created.Currency != core.HUF {
		t.Fatalf("expected default HUF, got %q", created.Currency)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	missing := int64(99999)
	cases := []struct {
		name   string
		params core.NewTransactionParams
		want   error
	}{
		{"empty description", core.NewTransactionParams{Description: " ", Amount: 1, Date: "2024-03-05"}, core.ErrEmptyDescription},
		{"nan amount", core.NewTransactionParams{Description: "x", Amount: math.NaN(), Date: "2024-03-05"}, core.ErrInvalidAmount},
		{"inf amount", core.NewTransactionParams{Description: "x", Amount: math.Inf(1), Date: "2024-03-05"}, core.ErrInvalidAmount},
		{"bad date", core.NewTransactionParams{Description: "x", Amount: 1, Date: "2024-02-30"}, core.ErrInvalidDate},
		{"unknown category", core.NewTransactionParams{Description: "x", Amount: 1, Date: "2024-03-05", CategoryID: &missing}, core.ErrUnknownCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := repo.CreateTransaction(ctx, tc.params); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUpdateTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c := mustCategory(t, repo, "Fun")
	created := mustTransaction(t, repo, core.NewTransactionParams{
		Description: "cinema",
		Amount:      -3000,
		Date:        "2024-03-08",
		CategoryID:  &c.ID,
	})

	// partial update: only the amount changes
	amount := -3500.0
	updated, err := repo.UpdateTransaction(ctx, created.ID, core.UpdateTransactionParams{Amount: &amount})
	if err != nil {
		t.Fatalf("update transaction: %v", err)
	}
	if updated.Amount != -3500 {
		t.Fatalf("expected amount -3500, got %v", updated.Amount)
	}
	if updated.Description != "cinema" || updated.Date != "2024-03-08" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
	if updated.CategoryID == nil || *updated.CategoryID != c.ID {
		t.Fatalf("category reference lost on partial update")
	}

	// clear the category reference
	var noCategory *int64
	updated, err = repo.UpdateTransaction(ctx, created.ID, core.UpdateTransactionParams{CategoryID: &noCategory})
	if err != nil {
		t.Fatalf("clear category: %v", err)
	}
	if updated.CategoryID != nil {
		t.Fatalf("expected nil category, got %v", *updated.CategoryID)
	}
	if updated.CategoryName != nil {
		t.Fatalf("expected nil category name, got %q", *updated.CategoryName)
	}

	// full replace
	desc := "theater"
	date := "2024-04-02"
	currency := core.EUR
	catRef := &c.ID
	updated, err = repo.UpdateTransaction(ctx, created.ID, core.UpdateTransactionParams{
		Description: &desc,
		Amount:      &amount,
		Date:        &date,
		Currency:    &currency,
		CategoryID:  &catRef,
	})
	if err != nil {
		t.Fatalf("full update: %v", err)
	}
	if updated.Description != desc || updated.Date != date || updated.Currency != core.EUR {
		t.Fatalf("full update mismatch: %+v", updated)
	}
}

func TestUpdateTransactionErrors(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	desc := "x"
	if _, err := repo.UpdateTransaction(ctx, 12345, core.UpdateTransactionParams{Description: &desc}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	created := mustTransaction(t, repo, core.NewTransactionParams{
		Description: "row", Amount: 1, Date: "2024-03-05",
	})
	missing := int64(4242)
	ref := &missing
	if _, err := repo.UpdateTransaction(ctx, created.ID, core.UpdateTransactionParams{CategoryID: &ref}); !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := mustTransaction(t, repo, core.NewTransactionParams{
		Description: "one-off", Amount: 10, Date: "2024-03-05",
	})
	if err := repo.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestListTransactionsOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := mustTransaction(t, repo, core.NewTransactionParams{Description: "older day", Amount: 1, Date: "2024-03-01"})
	second := mustTransaction(t, repo, core.NewTransactionParams{Description: "same day early", Amount: 2, Date: "2024-03-02"})
	third := mustTransaction(t, repo, core.NewTransactionParams{Description: "same day late", Amount: 3, Date: "2024-03-02"})

	list, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(list))
	}
	// date DESC first, then most recently entered within the same date
	if list[0].ID != third.ID || list[1].ID != second.ID || list[2].ID != first.ID {
		t.Fatalf("unexpected order: %d, %d, %d", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestListRecentTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		mustTransaction(t, repo, core.NewTransactionParams{
			Description: "entry", Amount: float64(i + 1), Date: "2024-03-05",
		})
	}

	recent, err := repo.ListRecentTransactions(ctx, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(recent))
	}

	empty, err := repo.ListRecentTransactions(ctx, 0)
	if err != nil {
		t.Fatalf("recent with limit 0: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty slice for limit 0, got %d rows", len(empty))
	}

	empty, err = repo.ListRecentTransactions(ctx, -3)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty slice for negative limit, got %d rows (err=%v)", len(empty), err)
	}
}

func TestSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := mustTransaction(t, repo, core.NewTransactionParams{
		Description: "pending row", Amount: 5, Date: "2024-03-05",
	})

	pending, err := repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != created.ID {
		t.Fatalf("expected the new row pending, got %+v", pending)
	}

	if err := repo.MarkSynced(ctx, created.ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, err = repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending after sync: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending rows, got %d", len(pending))
	}

	// an update flips the row back to pending
	amount := 6.0
	if _, err := repo.UpdateTransaction(ctx, created.ID, core.UpdateTransactionParams{Amount: &amount}); err != nil {
		t.Fatalf("update: %v", err)
	}
	pending, err = repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending after update: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected row pending again after update, got %d", len(pending))
	}

	if err := repo.MarkSyncError(ctx, created.ID); err != nil {
		t.Fatalf("mark error: %v", err)
	}
	if err := repo.MarkSynced(ctx, 99999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}
