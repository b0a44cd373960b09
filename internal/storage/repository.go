package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"moneyflow/internal/core"
	"moneyflow/internal/journal"

	_ "modernc.org/sqlite"
)

var _ journal.ReadWriter = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db            *sql.DB
	queries       *Queries
	schemaVersion uint
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := migrateJournal(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:            db,
		queries:       New(db),
		schemaVersion: version,
	}

	return repo, nil
}

// SchemaVersion is the journal migration version the database was opened at.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.schemaVersion
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements journal.Writer. Redelivered entries return the id of the
// row written the first time.
func (r *SQLiteRepository) Append(ctx context.Context, e core.JournalEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}

	inserted, err := r.queries.InsertEntry(ctx, InsertEntryParams{
		TransactionID: e.Transaction.ID,
		SessionID:     e.SessionID,
		Description:   e.Transaction.Description,
		Category:      e.Transaction.Category.String(),
		Amount:        e.Transaction.Amount.String(),
		BalanceAfter:  e.BalanceAfter.String(),
		RecordedAt:    e.RecordedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", fmt.Errorf("insert journal entry: %w", err)
	}

	id, err := r.queries.GetEntryIDByTransaction(ctx, e.Transaction.ID)
	if err != nil {
		return "", fmt.Errorf("get journal entry id: %w", err)
	}

	if inserted == 0 {
		slog.DebugContext(ctx, "Journal entry already stored",
			"id", id,
			"transaction_id", e.Transaction.ID)
	} else {
		slog.InfoContext(ctx, "Journal entry saved to SQLite",
			"id", id,
			"session_id", e.SessionID,
			"transaction_id", e.Transaction.ID,
			"category", e.Transaction.Category.String(),
			"amount", e.Transaction.Amount.String())
	}

	return strconv.FormatInt(id, 10), nil
}

// ListEntries implements journal.Reader
func (r *SQLiteRepository) ListEntries(ctx context.Context, sessionID string) ([]core.JournalEntry, error) {
	rows, err := r.queries.ListEntriesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}

	entries := make([]core.JournalEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toCore()
		if err != nil {
			return nil, fmt.Errorf("journal entry %d: %w", row.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// SessionSummary describes one journaled session
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	Entries      int64     `json:"entries"`
	LastRecorded time.Time `json:"last_recorded"`
}

// ListSessions returns every session with at least one entry, most recently
// written last.
func (r *SQLiteRepository) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := r.queries.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]SessionSummary, 0, len(rows))
	for _, row := range rows {
		last, err := time.Parse(time.RFC3339Nano, row.LastRecorded)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", row.SessionID, err)
		}
		out = append(out, SessionSummary{SessionID: row.SessionID, Entries: row.Entries, LastRecorded: last})
	}
	return out, nil
}

func (row JournalEntry) toCore() (core.JournalEntry, error) {
	category, err := core.ParseCategory(row.Category)
	if err != nil {
		return core.JournalEntry{}, err
	}
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.JournalEntry{}, fmt.Errorf("amount: %w", err)
	}
	balance, err := decimal.NewFromString(row.BalanceAfter)
	if err != nil {
		return core.JournalEntry{}, fmt.Errorf("balance: %w", err)
	}
	recordedAt, err := time.Parse(time.RFC3339Nano, row.RecordedAt)
	if err != nil {
		return core.JournalEntry{}, fmt.Errorf("recorded_at: %w", err)
	}
	return core.JournalEntry{
		SessionID: row.SessionID,
		Transaction: core.Transaction{
			ID:          row.TransactionID,
			Description: row.Description,
			Amount:      amount,
			Category:    category,
		},
		BalanceAfter: balance,
		RecordedAt:   recordedAt,
	}, nil
}
