package memory

import (
	"context"
	"fmt"
	"sync"

	"moneyflow/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []core.JournalEntry
	refs  map[string]string // transaction id -> ref
}

func New() *Store {
	return &Store{refs: make(map[string]string)}
}

// Append stores the entry and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.JournalEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref, ok := s.refs[e.Transaction.ID]; ok {
		return ref, nil
	}
	s.items = append(s.items, e)
	ref := fmt.Sprintf("mem:%d", len(s.items))
	s.refs[e.Transaction.ID] = ref
	return ref, nil
}

// ListEntries returns the entries of one session in append order.
func (s *Store) ListEntries(_ context.Context, sessionID string) ([]core.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.JournalEntry
	for _, e := range s.items {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
