package google

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"moneyflow/internal/core"
)

// Journal sheet layout, one entry per row.
const (
	colRecordedAt = iota
	colSession
	colTransaction
	colDescription
	colCategory
	colAmount
	colBalance
	numCols
)

var headerRow = []any{"recorded_at", "session_id", "transaction_id", "description", "category", "amount", "balance"}

// entryToRow renders amounts as strings; with RAW input Sheets keeps them
// verbatim instead of rounding through a float.
func entryToRow(e core.JournalEntry) []any {
	return []any{
		e.RecordedAt.UTC().Format(time.RFC3339),
		e.SessionID,
		e.Transaction.ID,
		e.Transaction.Description,
		e.Transaction.Category.String(),
		e.Transaction.Amount.String(),
		e.BalanceAfter.String(),
	}
}

func rowToEntry(row []any) (core.JournalEntry, error) {
	cols := toStrings(row)
	if len(cols) < numCols {
		return core.JournalEntry{}, fmt.Errorf("short row: %d columns", len(cols))
	}
	recordedAt, err := time.Parse(time.RFC3339, cols[colRecordedAt])
	if err != nil {
		return core.JournalEntry{}, fmt.Errorf("recorded_at %q: %w", cols[colRecordedAt], err)
	}
	category, err := core.ParseCategory(cols[colCategory])
	if err != nil {
		return core.JournalEntry{}, err
	}
	amount, err := decimal.NewFromString(cols[colAmount])
	if err != nil {
		return core.JournalEntry{}, fmt.Errorf("amount %q: %w", cols[colAmount], err)
	}
	balance, err := decimal.NewFromString(cols[colBalance])
	if err != nil {
		return core.JournalEntry{}, fmt.Errorf("balance %q: %w", cols[colBalance], err)
	}
	return core.JournalEntry{
		SessionID: cols[colSession],
		Transaction: core.Transaction{
			ID:          cols[colTransaction],
			Description: cols[colDescription],
			Amount:      amount,
			Category:    category,
		},
		BalanceAfter: balance,
		RecordedAt:   recordedAt,
	}, nil
}

func isHeader(row []any) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(fmt.Sprint(row[0])), fmt.Sprint(headerRow[0]))
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
