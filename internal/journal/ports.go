// Package journal defines the outbound record of accepted transactions.
// The ledger never reads it back.
package journal

import (
	"context"

	"moneyflow/internal/core"
)

// Ports for outbound adapters.
type (
	// Writer appends one entry per accepted transaction. Appending an entry
	// whose transaction id is already journaled is a no-op that returns the
	// existing reference.
	Writer interface {
		Append(ctx context.Context, e core.JournalEntry) (ref string, err error)
	}

	// Reader lists a session's entries in append order.
	Reader interface {
		ListEntries(ctx context.Context, sessionID string) ([]core.JournalEntry, error)
	}

	ReadWriter interface {
		Writer
		Reader
	}
)
