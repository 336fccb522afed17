package memory

import (
	"context"
	"fmt"
	"sync"

	"kassza/internal/core"
	ports "kassza/internal/sheets"
)

// Store is an in-memory LedgerWriter for tests and local runs without
// Google credentials.
type Store struct {
	mu   sync.Mutex
	rows map[int64]core.Transaction
	fail error
}

var _ ports.LedgerWriter = (*Store)(nil)

func New() *Store {
	return &Store{rows: make(map[int64]core.Transaction)}
}

// SetFail makes every subsequent call return err. Pass nil to recover.
func (s *Store) SetFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *Store) Upsert(_ context.Context, tr core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return "", s.fail
	}
	s.rows[tr.ID] = tr
	return fmt.Sprintf("mem:%d", tr.ID), nil
}

func (s *Store) Remove(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	delete(s.rows, id)
	return nil
}

// Get returns the mirrored row for an ID, if present.
func (s *Store) Get(id int64) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.rows[id]
	return tr, ok
}

// Len returns the number of mirrored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
