package backend

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"moneyflow/internal/config"
	applog "moneyflow/internal/log"
)

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{JournalBackend: "memory, sqlite", SQLiteDBPath: "x.db"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if len(cfg.Types) != 2 || cfg.Types[0] != MemoryBackend || cfg.Types[1] != SQLiteBackend {
		t.Errorf("Types = %v", cfg.Types)
	}

	if _, err := FromAppConfig(&config.Config{JournalBackend: "redis"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Types: []BackendType{MemoryBackend}}, false},
		{"no types", Config{}, true},
		{"sqlite without path", Config{Types: []BackendType{SQLiteBackend}}, true},
		{"sheets without credentials", Config{Types: []BackendType{SheetsBackend}, GoogleSpreadsheetID: "x"}, true},
		{"unknown", Config{Types: []BackendType{"kafka"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSinks(t *testing.T) {
	f := NewFactory(applog.New(applog.Config{Output: io.Discard}))
	result, err := f.CreateSinks(context.Background(), Config{
		Types:        []BackendType{MemoryBackend, SQLiteBackend},
		SQLiteDBPath: filepath.Join(t.TempDir(), "journal.db"),
	})
	if err != nil {
		t.Fatalf("CreateSinks: %v", err)
	}
	defer result.Cleanup()

	if len(result.Sinks) != 2 {
		t.Fatalf("got %d sinks, want 2", len(result.Sinks))
	}
	if result.Sinks[0].Name != "memory" || result.Sinks[1].Name != "sqlite" {
		t.Errorf("unexpected sink names: %s, %s", result.Sinks[0].Name, result.Sinks[1].Name)
	}
}

func TestCreateSinksReleasesOnFailure(t *testing.T) {
	f := NewFactory(applog.New(applog.Config{Output: io.Discard}))
	_, err := f.CreateSinks(context.Background(), Config{
		Types:                 []BackendType{SQLiteBackend, SheetsBackend},
		SQLiteDBPath:          filepath.Join(t.TempDir(), "journal.db"),
		GoogleSpreadsheetID:   "x",
		GoogleCredentialsFile: "/non/existent.json",
	})
	if err == nil {
		t.Fatal("expected sheets sink to fail")
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	if len(got) != 3 || got[0] != "sqlite" {
		t.Errorf("GetBackendTypeStrings() = %v", got)
	}
}
