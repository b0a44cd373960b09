package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"moneyflow/internal/core"
	"moneyflow/internal/journal"
	applog "moneyflow/internal/log"
)

var (
	_ journal.Writer = (*SheetsWriter)(nil)
	_ journal.Reader = (*SheetsWriter)(nil)
)

type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string

	// Used when no service account is configured
	OAuthClientFile string
	OAuthClientJSON string
	OAuthTokenFile  string
}

// UsesServiceAccount reports whether service account credentials are set.
func (c Config) UsesServiceAccount() bool {
	return strings.TrimSpace(c.CredentialsJSON) != "" || strings.TrimSpace(c.CredentialsFile) != ""
}

// SheetsWriter journals entries as rows of one Google Sheets tab.
type SheetsWriter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *applog.Logger
}

// New creates a writer authenticated with service account credentials,
// inline JSON taking precedence over the file. Without a service account it
// falls back to a saved OAuth user token.
func New(ctx context.Context, cfg Config, logger *applog.Logger, opts ...goption.ClientOption) (*SheetsWriter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if len(opts) == 0 {
		var err error
		if opts, err = clientOptions(ctx, cfg); err != nil {
			return nil, err
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Journal"
	}
	return &SheetsWriter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheet:         sheet,
		logger:        logger.WithComponent(applog.ComponentSheets),
	}, nil
}

func clientOptions(ctx context.Context, cfg Config) ([]goption.ClientOption, error) {
	if !cfg.UsesServiceAccount() && strings.TrimSpace(cfg.OAuthTokenFile) != "" {
		return userOptions(ctx, cfg)
	}
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	return []goption.ClientOption{
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, nil
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// Append adds one row per entry. A transaction id already on the sheet
// returns the existing row's range.
func (w *SheetsWriter) Append(ctx context.Context, e core.JournalEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if w.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rows, err := w.readRows(ctx)
	if err != nil {
		return "", err
	}
	for i, row := range rows {
		cols := toStrings(row)
		if len(cols) > colTransaction && cols[colTransaction] == e.Transaction.ID {
			return w.rowRange(i + 1), nil
		}
	}

	values := [][]any{entryToRow(e)}
	if len(rows) == 0 {
		values = [][]any{headerRow, entryToRow(e)}
	}

	resp, err := w.svc.Spreadsheets.Values.Append(w.spreadsheetID, w.sheet+"!A:G", &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", w.sheet, err)
	}

	ref := w.sheet
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	w.logger.DebugContext(ctx, "Journal row appended",
		applog.FieldSessionID, e.SessionID,
		applog.FieldTransactionID, e.Transaction.ID,
		applog.FieldJournalRef, ref)
	return ref, nil
}

// ListEntries scans the sheet for a session's rows. Rows that do not parse
// are skipped.
func (w *SheetsWriter) ListEntries(ctx context.Context, sessionID string) ([]core.JournalEntry, error) {
	if w.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rows, err := w.readRows(ctx)
	if err != nil {
		return nil, err
	}

	var out []core.JournalEntry
	for i, row := range rows {
		if isHeader(row) {
			continue
		}
		e, err := rowToEntry(row)
		if err != nil {
			w.logger.WarnContext(ctx, "Skipping malformed journal row", "row", i+1, applog.FieldError, err)
			continue
		}
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (w *SheetsWriter) readRows(ctx context.Context) ([][]any, error) {
	rng := w.sheet + "!A:G"
	resp, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (w *SheetsWriter) rowRange(n int) string {
	return fmt.Sprintf("%s!A%d:G%d", w.sheet, n, n)
}
