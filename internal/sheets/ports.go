package sheets

import (
	"context"

	"kassza/internal/core"
)

// Ports for outbound mirror adapters.
type (
	// LedgerWriter replicates ledger rows to an external sheet. Upsert is
	// keyed by transaction ID so a message replayed after an edit writes
	// the latest state.
	LedgerWriter interface {
		Upsert(ctx context.Context, tr core.Transaction) (rowRef string, err error)
		Remove(ctx context.Context, id int64) error
	}
)
