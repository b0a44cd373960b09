package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"moneyflow/internal/core"
	"moneyflow/internal/journal"
)

var _ journal.ReadWriter = (*Store)(nil)

func entry(session, id string) core.JournalEntry {
	return core.JournalEntry{
		SessionID: session,
		Transaction: core.Transaction{
			ID:          id,
			Description: "t",
			Amount:      decimal.NewFromInt(5),
			Category:    core.Expense,
		},
		BalanceAfter: decimal.NewFromInt(-5),
	}
}

func TestMemoryStoreAppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, entry("a", "tx-1"))
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	if _, err := s.Append(ctx, entry("b", "tx-2")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := s.Append(ctx, entry("a", "tx-3")); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.ListEntries(ctx, "a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Transaction.ID != "tx-1" || got[1].Transaction.ID != "tx-3" {
		t.Fatalf("unexpected entries: %+v", got)
	}
	if none, _ := s.ListEntries(ctx, "missing"); len(none) != 0 {
		t.Fatalf("expected no entries, got %d", len(none))
	}
}

func TestMemoryStoreAppendIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, _ := s.Append(ctx, entry("a", "tx-1"))
	again, err := s.Append(ctx, entry("a", "tx-1"))
	if err != nil || again != first {
		t.Fatalf("redelivery: ref=%q err=%v, want %q", again, err, first)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestMemoryStoreRejectsInvalidEntry(t *testing.T) {
	s := New()
	bad := entry("", "tx-1")
	if _, err := s.Append(context.Background(), bad); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("rejected entry was stored")
	}
}
