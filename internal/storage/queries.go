package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// JournalEntry is one row of journal_entries. Amounts are decimal strings.
type JournalEntry struct {
	ID            int64
	TransactionID string
	SessionID     string
	Description   string
	Category      string
	Amount        string
	BalanceAfter  string
	RecordedAt    string
}

const insertEntry = `
INSERT INTO journal_entries (transaction_id, session_id, description, category, amount, balance_after, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (transaction_id) DO NOTHING`

type InsertEntryParams struct {
	TransactionID string
	SessionID     string
	Description   string
	Category      string
	Amount        string
	BalanceAfter  string
	RecordedAt    string
}

// InsertEntry returns the number of inserted rows: 0 when the transaction is
// already journaled.
func (q *Queries) InsertEntry(ctx context.Context, arg InsertEntryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertEntry,
		arg.TransactionID,
		arg.SessionID,
		arg.Description,
		arg.Category,
		arg.Amount,
		arg.BalanceAfter,
		arg.RecordedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getEntryIDByTransaction = `SELECT id FROM journal_entries WHERE transaction_id = ?`

func (q *Queries) GetEntryIDByTransaction(ctx context.Context, transactionID string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, getEntryIDByTransaction, transactionID).Scan(&id)
	return id, err
}

const listEntriesBySession = `
SELECT id, transaction_id, session_id, description, category, amount, balance_after, recorded_at
FROM journal_entries
WHERE session_id = ?
ORDER BY id`

func (q *Queries) ListEntriesBySession(ctx context.Context, sessionID string) ([]JournalEntry, error) {
	rows, err := q.db.QueryContext(ctx, listEntriesBySession, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []JournalEntry
	for rows.Next() {
		var i JournalEntry
		if err := rows.Scan(
			&i.ID,
			&i.TransactionID,
			&i.SessionID,
			&i.Description,
			&i.Category,
			&i.Amount,
			&i.BalanceAfter,
			&i.RecordedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const listSessions = `
SELECT session_id, COUNT(*), MAX(recorded_at)
FROM journal_entries
GROUP BY session_id
ORDER BY MAX(id)`

type SessionRow struct {
	SessionID    string
	Entries      int64
	LastRecorded string
}

func (q *Queries) ListSessions(ctx context.Context) ([]SessionRow, error) {
	rows, err := q.db.QueryContext(ctx, listSessions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SessionRow
	for rows.Next() {
		var i SessionRow
		if err := rows.Scan(&i.SessionID, &i.Entries, &i.LastRecorded); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}
