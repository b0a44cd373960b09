package backend

import (
	"context"
	"errors"
	"fmt"

	gjournal "moneyflow/internal/journal/google"
	"moneyflow/internal/journal/memory"
	applog "moneyflow/internal/log"
	"moneyflow/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateSinks opens every configured sink. If one fails, the ones already
// opened are released before returning.
func (f *DefaultFactory) CreateSinks(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	result := &BackendResult{}
	var closers []func() error
	result.Cleanup = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for _, t := range config.Types {
		sink, closer, err := f.createSink(ctx, t, config)
		if err != nil {
			_ = result.Cleanup()
			return nil, err
		}
		result.Sinks = append(result.Sinks, sink)
		if closer != nil {
			closers = append(closers, closer)
		}
	}

	return result, nil
}

func (f *DefaultFactory) createSink(ctx context.Context, t BackendType, config Config) (Sink, func() error, error) {
	switch t {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return Sink{}, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite journal", "db_path", config.SQLiteDBPath, "schema_version", repo.SchemaVersion())
		return Sink{Name: t.String(), Writer: repo}, repo.Close, nil

	case SheetsBackend:
		w, err := gjournal.New(ctx, gjournal.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsFile: config.GoogleCredentialsFile,
			CredentialsJSON: config.GoogleCredentialsJSON,
			OAuthClientFile: config.GoogleOAuthClientFile,
			OAuthClientJSON: config.GoogleOAuthClientJSON,
			OAuthTokenFile:  config.GoogleOAuthTokenFile,
		}, f.logger)
		if err != nil {
			return Sink{}, nil, fmt.Errorf("failed to initialize Google Sheets journal: %w", err)
		}
		f.logger.Info("Initialized Google Sheets journal", "sheet", config.GoogleSheetName)
		return Sink{Name: t.String(), Writer: w}, nil, nil

	case MemoryBackend:
		f.logger.Info("Initialized in-memory journal")
		return Sink{Name: t.String(), Writer: memory.New()}, nil, nil

	default:
		return Sink{}, nil, fmt.Errorf("unsupported backend type: %s", t)
	}
}
