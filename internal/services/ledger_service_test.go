package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"kassza/internal/core"
	"kassza/internal/log"
	"kassza/internal/storage"
)

func newTestStorage(t *testing.T) *storage.Repository {
	t.Helper()

	repo, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestLedgerServiceAddTransaction(t *testing.T) {
	svc := NewLedgerService(newTestStorage(t), nil)
	ctx := context.Background()

	tr, err := svc.AddTransaction(ctx, core.NewTransactionParams{
		Description: "groceries",
		Amount:      -4200,
		Date:        "2024-03-10",
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if tr.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if tr.Currency != core.HUF {
		t.Errorf("currency = %q, want default %q", tr.Currency, core.HUF)
	}

	got, err := svc.GetTransaction(ctx, tr.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Description != "groceries" || got.Amount != -4200 {
		t.Errorf("got %+v, want description=groceries amount=-4200", got)
	}
}

func TestLedgerServiceAddTransactionUnknownCategory(t *testing.T) {
	svc := NewLedgerService(newTestStorage(t), nil)

	missing := int64(9999)
	_, err := svc.AddTransaction(context.Background(), core.NewTransactionParams{
		Description: "rent",
		Amount:      -120000,
		Date:        "2024-03-01",
		CategoryID:  &missing,
	})
	if !errors.Is(err, core.ErrUnknownCategory) {
		t.Errorf("err = %v, want ErrUnknownCategory", err)
	}
}

func TestLedgerServiceUpdateTransaction(t *testing.T) {
	svc := NewLedgerService(newTestStorage(t), nil)
	ctx := context.Background()

	tr, err := svc.AddTransaction(ctx, core.NewTransactionParams{
		Description: "salary",
		Amount:      500000,
		Date:        "2024-03-05",
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	amount := 510000.0
	updated, err := svc.UpdateTransaction(ctx, tr.ID, core.UpdateTransactionParams{
		Amount: &amount,
	})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if updated.Amount != 510000 {
		t.Errorf("amount = %v, want 510000", updated.Amount)
	}
	if updated.Description != "salary" {
		t.Errorf("description = %q, want unchanged", updated.Description)
	}
}

func TestLedgerServiceDeleteTransactionNotFound(t *testing.T) {
	svc := NewLedgerService(newTestStorage(t), nil)

	err := svc.DeleteTransaction(context.Background(), 404)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLedgerServiceCategoryLifecycle(t *testing.T) {
	svc := NewLedgerService(newTestStorage(t), nil)
	ctx := context.Background()

	cat, err := svc.AddCategory(ctx, "  Hobbi  ")
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if cat.Name != "Hobbi" {
		t.Errorf("name = %q, want trimmed %q", cat.Name, "Hobbi")
	}

	if _, err := svc.AddCategory(ctx, "Hobbi"); !errors.Is(err, core.ErrDuplicateCategory) {
		t.Errorf("duplicate err = %v, want ErrDuplicateCategory", err)
	}

	_, err = svc.AddTransaction(ctx, core.NewTransactionParams{
		Description: "paint",
		Amount:      -3000,
		Date:        "2024-03-12",
		CategoryID:  &cat.ID,
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	if err := svc.DeleteCategory(ctx, cat.ID); !errors.Is(err, core.ErrCategoryInUse) {
		t.Errorf("delete err = %v, want ErrCategoryInUse", err)
	}
}

func TestReportServiceRendersWithData(t *testing.T) {
	repo := newTestStorage(t)
	ledger := NewLedgerService(repo, nil)
	reports := NewReportService(repo, log.New(log.DefaultConfig()))
	ctx := context.Background()

	seed := []core.NewTransactionParams{
		{Description: "salary", Amount: 1000, Date: "2024-03-05"},
		{Description: "groceries", Amount: -300, Date: "2024-03-10"},
		{Description: "consulting", Amount: 50, Date: "2024-03-15", Currency: core.EUR},
	}
	for _, p := range seed {
		if _, err := ledger.AddTransaction(ctx, p); err != nil {
			t.Fatalf("AddTransaction(%q): %v", p.Description, err)
		}
	}

	month := core.Month{Year: 2024, Month: 3}

	counts, err := reports.MonthCounts(ctx, month)
	if err != nil {
		t.Fatalf("MonthCounts: %v", err)
	}
	if counts.HUF != 2 || counts.EUR != 1 || counts.Total != 3 {
		t.Errorf("counts = %+v, want HUF=2 EUR=1 Total=3", counts)
	}

	totals, err := reports.IncomeExpense(ctx, month)
	if err != nil {
		t.Fatalf("IncomeExpense: %v", err)
	}
	want := core.IncomeExpense{IncomeHUF: 1000, ExpenseHUF: 300, IncomeEUR: 50, ExpenseEUR: 0}
	if totals != want {
		t.Errorf("totals = %+v, want %+v", totals, want)
	}
}

func TestReportServiceReturnsZeroValuesOnStorageFault(t *testing.T) {
	repo := newTestStorage(t)
	reports := NewReportService(repo, log.New(log.DefaultConfig()))
	repo.Close()

	ctx := context.Background()
	month := core.Month{Year: 2024, Month: 3}

	counts, err := reports.MonthCounts(ctx, month)
	if err == nil {
		t.Fatal("expected error from closed storage")
	}
	if counts != (core.MonthCounts{}) {
		t.Errorf("counts = %+v, want zero value", counts)
	}

	flows, err := reports.DailyFlows(ctx, month)
	if err == nil {
		t.Fatal("expected error from closed storage")
	}
	if flows == nil || len(flows) != 0 {
		t.Errorf("flows = %v, want empty non-nil slice", flows)
	}
}
