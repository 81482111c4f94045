package backend

import (
	"context"
	"path/filepath"
	"testing"

	"bankdash/internal/config"
	"bankdash/internal/core"
	"bankdash/internal/sources/jsonfile"
	"bankdash/internal/sources/memory"
	"bankdash/internal/theme"
)

func TestFromAppConfig(t *testing.T) {
	cfg := config.Config{
		DataSource:               "sheets",
		ThemeStore:               "sqlite",
		SQLiteDBPath:             "./x.db",
		GoogleSpreadsheetID:      "sheet-1",
		GoogleTransactionsRange:  "T!A:F",
		GoogleSummaryRange:       "S!A:B",
		GoogleServiceAccountJSON: "{}",
	}
	got, err := FromAppConfig(&cfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if got.Source != SheetsSource || got.Sheets.SpreadsheetID != "sheet-1" || got.Sheets.CredentialsJSON != "{}" {
		t.Errorf("FromAppConfig() = %+v", got)
	}
	if !got.needsSQLite() {
		t.Error("sqlite theme store should open the database")
	}

	if _, err := FromAppConfig(&config.Config{DataSource: "redis"}); err == nil {
		t.Error("expected error for unknown source")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	res, err := NewFactory(nil).Create(context.Background(), Config{Source: MemorySource, ThemeStore: "memory"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer res.Close()

	if _, ok := res.Supplier.(*memory.Store); !ok {
		t.Fatalf("Supplier = %T, want *memory.Store", res.Supplier)
	}
	if res.Recorder != nil || res.Repository != nil {
		t.Error("memory backend should not open SQLite")
	}
	if _, ok := res.Themes.(*theme.MemoryStore); !ok {
		t.Errorf("Themes = %T, want *theme.MemoryStore", res.Themes)
	}

	txs, err := res.Supplier.FetchTransactions(context.Background())
	if err != nil {
		t.Fatalf("FetchTransactions() error = %v", err)
	}
	if len(txs) != 5 {
		t.Errorf("got %d transactions, want 5", len(txs))
	}
}

func TestCreateJSONFileBackendWithSQLiteTheme(t *testing.T) {
	dir := t.TempDir()
	res, err := NewFactory(nil).Create(context.Background(), Config{
		Source:       JSONFileSource,
		DataDir:      dir,
		ThemeStore:   "sqlite",
		SQLiteDBPath: filepath.Join(dir, "bankdash.db"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer res.Close()

	if _, ok := res.Supplier.(*jsonfile.Source); !ok {
		t.Fatalf("Supplier = %T, want *jsonfile.Source", res.Supplier)
	}
	if res.Themes != res.Repository {
		t.Error("theme store should be the SQLite repository")
	}
	if res.Recorder == nil {
		t.Error("upload recorder should be set when SQLite is open")
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	res, err := NewFactory(nil).Create(context.Background(), Config{
		Source:       SQLiteSource,
		ThemeStore:   "memory",
		SQLiteDBPath: filepath.Join(dir, "bankdash.db"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer res.Close()

	if res.Supplier.Name() != "sqlite" {
		t.Errorf("Supplier.Name() = %q, want sqlite", res.Supplier.Name())
	}
	sum, err := res.Supplier.FetchSummary(context.Background())
	if err != nil {
		t.Fatalf("FetchSummary() error = %v", err)
	}
	if !sum.Equal(core.FinancialSummary{}) {
		t.Errorf("empty database summary = %+v", sum)
	}
}

func TestCreateRejectsInvalidConfig(t *testing.T) {
	f := NewFactory(nil)
	cases := []Config{
		{Source: "nope"},
		{Source: SQLiteSource},
		{Source: JSONFileSource},
		{Source: SheetsSource},
	}
	for _, c := range cases {
		if _, err := f.Create(context.Background(), c); err == nil {
			t.Errorf("Create(%+v) should fail", c)
		}
	}
}
