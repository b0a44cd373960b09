package backend

import (
	"errors"
	"fmt"

	"moneyflow/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	var types []BackendType
	for _, name := range appConfig.JournalBackends() {
		bt := BackendType(name)
		if !bt.IsValid() {
			return Config{}, fmt.Errorf("invalid backend type in config: %s", name)
		}
		types = append(types, bt)
	}

	return Config{
		Types: types,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		GoogleSpreadsheetID:   appConfig.GoogleSpreadsheetID,
		GoogleSheetName:       appConfig.GoogleSheetName,
		GoogleCredentialsFile: appConfig.GoogleCredentialsFile,
		GoogleCredentialsJSON: appConfig.GoogleCredentialsJSON,
		GoogleOAuthClientFile: appConfig.GoogleOAuthClientFile,
		GoogleOAuthClientJSON: appConfig.GoogleOAuthClientJSON,
		GoogleOAuthTokenFile:  appConfig.GoogleOAuthTokenFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if len(c.Types) == 0 {
		return errors.New("at least one backend type is required")
	}

	for _, t := range c.Types {
		switch t {
		case SQLiteBackend:
			if c.SQLiteDBPath == "" {
				return errors.New("SQLite database path is required for sqlite backend")
			}
		case SheetsBackend:
			if c.GoogleSpreadsheetID == "" {
				return errors.New("Google Spreadsheet ID is required for sheets backend")
			}
			if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" && c.GoogleOAuthTokenFile == "" {
				return errors.New("either GoogleCredentialsFile, GoogleCredentialsJSON or GoogleOAuthTokenFile must be provided for sheets backend")
			}
		case MemoryBackend:
		default:
			return fmt.Errorf("invalid backend type: %s", t)
		}
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, SheetsBackend, MemoryBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
