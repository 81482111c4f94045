package backend

import (
	"context"
	"errors"
	"fmt"

	"bankdash/internal/log"
	"bankdash/internal/sources/google"
	"bankdash/internal/sources/jsonfile"
	"bankdash/internal/sources/memory"
	"bankdash/internal/storage"
	"bankdash/internal/theme"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Create opens the database when needed and builds the supplier on top of it.
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Themes: theme.NewMemoryStore()}

	if config.needsSQLite() {
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		res.Repository = repo
		res.Recorder = repo
		res.Cleanup = repo.Close
		if config.ThemeStore == "sqlite" {
			res.Themes = repo
		}
		f.logger.InfoContext(ctx, "Initialized SQLite repository", "db_path", config.SQLiteDBPath)
	}

	switch config.Source {
	case SQLiteSource:
		res.Supplier = res.Repository
	case SheetsSource:
		cli, err := google.New(ctx, config.Sheets, f.logger)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to initialize Google Sheets client: %w", err), res.Close())
		}
		res.Supplier = cli
	case JSONFileSource:
		res.Supplier = jsonfile.New(config.DataDir)
	default:
		store := memory.NewFixture()
		store.SetDelays(config.FetchDelay, config.SummaryFetchDelay)
		res.Supplier = store
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		log.FieldSource, res.Supplier.Name(),
		"theme_store", config.ThemeStore,
		"audit_enabled", res.Recorder != nil)
	return res, nil
}
