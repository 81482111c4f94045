package backend

import (
	"fmt"
	"time"

	"bankdash/internal/config"
	"bankdash/internal/sources/google"
)

// Config holds configuration for backend creation
type Config struct {
	Source SourceType

	// ThemeStore is "memory" or "sqlite".
	ThemeStore   string
	SQLiteDBPath string

	// memory
	FetchDelay        time.Duration
	SummaryFetchDelay time.Duration

	// jsonfile
	DataDir string

	Sheets google.Config
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	source := SourceType(appConfig.DataSource)
	if !source.IsValid() {
		return Config{}, fmt.Errorf("invalid data source in config: %s", appConfig.DataSource)
	}

	return Config{
		Source:            source,
		ThemeStore:        appConfig.ThemeStore,
		SQLiteDBPath:      appConfig.SQLiteDBPath,
		FetchDelay:        appConfig.FetchDelay,
		SummaryFetchDelay: appConfig.SummaryFetchDelay,
		DataDir:           appConfig.DataDir,
		Sheets: google.Config{
			SpreadsheetID:     appConfig.GoogleSpreadsheetID,
			TransactionsRange: appConfig.GoogleTransactionsRange,
			SummaryRange:      appConfig.GoogleSummaryRange,
			CredentialsJSON:   appConfig.GoogleServiceAccountJSON,
			CredentialsFile:   appConfig.GoogleServiceAccountFile,
		},
	}, nil
}

// needsSQLite reports whether the database must be opened.
func (c Config) needsSQLite() bool {
	return c.Source == SQLiteSource || c.ThemeStore == "sqlite"
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Source.IsValid() {
		return fmt.Errorf("invalid data source: %s", c.Source)
	}
	if c.needsSQLite() && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required")
	}
	switch c.Source {
	case JSONFileSource:
		if c.DataDir == "" {
			return fmt.Errorf("data directory is required for jsonfile source")
		}
	case SheetsSource:
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets source")
		}
	}
	return nil
}
