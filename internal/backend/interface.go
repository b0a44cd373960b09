package backend

import (
	"context"

	"moneyflow/internal/journal"
)

// Sink is one named journal destination
type Sink struct {
	Name   string
	Writer journal.Writer
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the configured sinks and a cleanup releasing them
type BackendResult struct {
	Sinks   []Sink
	Cleanup CleanupFunc
}

// Factory creates journal sinks based on configuration
type Factory interface {
	CreateSinks(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for sink creation
type Config struct {
	Types []BackendType

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string
	GoogleOAuthClientFile string
	GoogleOAuthClientJSON string
	GoogleOAuthTokenFile  string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
