package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"bankdash/internal/aggregate"
	"bankdash/internal/core"
	"bankdash/internal/sources"
	"bankdash/internal/sources/jsonfile"
	"bankdash/internal/sources/memory"
	"bankdash/internal/storage"
)

type importCmd struct {
	From string `default:"memory" help:"Where to read the statement [memory jsonfile:/path/dir]"`
	To   string `default:"sqlite" enum:"sqlite,jsonfile" help:"Where to store it: sqlite (SQLITE_DB_PATH) or jsonfile (DATA_DIR)."`
}

// Run replaces the stored statement of the target with the one read from
// the source. The target then serves it as DATA_SOURCE.
func (c *importCmd) Run(g *Globals, out io.Writer) error {
	ctx := context.Background()
	cfg, logger, err := loadConfig(g)
	if err != nil {
		return err
	}

	from, err := openSource(c.From)
	if err != nil {
		return err
	}
	txs, err := from.FetchTransactions(ctx)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.From, err)
	}
	if err := core.ValidateAll(txs); err != nil {
		return fmt.Errorf("read %s: %w", c.From, err)
	}

	var dest string
	switch c.To {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return err
		}
		defer repo.Close()
		if err := repo.ReplaceTransactions(ctx, txs); err != nil {
			return err
		}
		dest = cfg.SQLiteDBPath
	case "jsonfile":
		if err := jsonfile.Write(cfg.DataDir, txs, aggregate.Summarize(txs)); err != nil {
			return fmt.Errorf("write %s: %w", cfg.DataDir, err)
		}
		dest = cfg.DataDir
	}

	logger.Info("Statement imported", "from", c.From, "to", c.To, "transactions", len(txs))
	fmt.Fprintf(out, "imported %d transactions into %s %s\n", len(txs), c.To, dest)
	return nil
}

// openSource parses "memory" or "jsonfile:/path/dir".
func openSource(spec string) (sources.TransactionFetcher, error) {
	if spec == "memory" {
		store := memory.NewFixture()
		store.SetDelays(0, 0)
		return store, nil
	}
	kind, dir, ok := strings.Cut(spec, ":")
	if !ok || kind != "jsonfile" || dir == "" {
		return nil, fmt.Errorf("invalid import source %q: want memory or jsonfile:<dir>", spec)
	}
	return jsonfile.New(dir), nil
}
