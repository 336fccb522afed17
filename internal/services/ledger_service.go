package services

import (
	"context"
	"fmt"
	"log/slog"

	"kassza/internal/amqp"
	"kassza/internal/core"
	"kassza/internal/storage"
)

// LedgerService orchestrates ledger mutations across SQLite and AMQP.
//
// Writes go to SQLite first; a mirror message is published afterwards so the
// worker can replicate the row to Google Sheets. Publish failures never fail
// the write, the row stays 'pending' and the worker's catch-up pass picks it
// up later.
type LedgerService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

func NewLedgerService(storage *storage.Repository, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// AddTransaction records a transaction and publishes a mirror message.
func (s *LedgerService) AddTransaction(ctx context.Context, params core.NewTransactionParams) (core.Transaction, error) {
	tr, err := s.storage.CreateTransaction(ctx, params)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	s.publishUpsert(ctx, tr.ID)
	return *tr, nil
}

// UpdateTransaction applies a partial update and publishes a mirror message.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id int64, params core.UpdateTransactionParams) (core.Transaction, error) {
	tr, err := s.storage.UpdateTransaction(ctx, id, params)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.publishUpsert(ctx, tr.ID)
	return *tr, nil
}

// DeleteTransaction removes a transaction and publishes a delete message.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if s.amqpClient == nil {
		return nil
	}
	if err := s.amqpClient.PublishDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
		// Don't fail the request - the row is gone locally
	}

	return nil
}

// GetTransaction looks up one transaction by ID.
func (s *LedgerService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	tr, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	return *tr, nil
}

// ListTransactions returns all transactions, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx)
}

// ListRecentTransactions returns the newest transactions up to limit.
func (s *LedgerService) ListRecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	return s.storage.ListRecentTransactions(ctx, limit)
}

// ListCategories returns all categories sorted by name. On a storage
// fault the error comes back alongside an empty slice, so callers can log
// it and still render an empty list.
func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	cats, err := s.storage.ListCategories(ctx)
	if err != nil {
		return []core.Category{}, err
	}
	return cats, nil
}

// AddCategory creates a category with a unique, trimmed name.
func (s *LedgerService) AddCategory(ctx context.Context, name string) (core.Category, error) {
	cat, err := s.storage.CreateCategory(ctx, name)
	if err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	return *cat, nil
}

// DeleteCategory removes a category if no transaction references it.
func (s *LedgerService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.storage.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *LedgerService) publishUpsert(ctx context.Context, id int64) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping mirror message")
		return
	}

	if err := s.amqpClient.PublishUpsert(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish mirror message",
			"id", id, "error", err)
		// Don't fail the request - the row is saved locally
	}
}

// Close closes both storage and AMQP connections
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
