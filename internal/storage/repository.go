package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bankdash/internal/core"
	"bankdash/internal/sources"
	"bankdash/internal/theme"
	"bankdash/internal/upload"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	sourceName = "sqlite"
	themeKey   = "theme"
)

var (
	_ sources.Supplier = (*SQLiteRepository)(nil)
	_ theme.Store      = (*SQLiteRepository)(nil)
	_ upload.Recorder  = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Name() string { return sourceName }

// Ping checks the database connection; used by readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// FetchTransactions implements sources.TransactionFetcher
func (r *SQLiteRepository) FetchTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, &core.FetchError{Source: sourceName, Op: "transactions", Err: err}
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Transaction{
			ID:          row.ID,
			Date:        row.Date,
			Description: row.Description,
			Amount:      core.FromCents(row.AmountCents),
			Category:    row.Category,
			Type:        core.TransactionType(row.Type),
		})
	}
	return out, nil
}

// FetchSummary implements sources.SummaryFetcher. Totals are computed by
// SQLite so they serve as an independent check of the in-process aggregation.
func (r *SQLiteRepository) FetchSummary(ctx context.Context) (core.FinancialSummary, error) {
	t, err := r.queries.GetTotals(ctx)
	if err != nil {
		return core.FinancialSummary{}, &core.FetchError{Source: sourceName, Op: "summary", Err: err}
	}
	income := core.FromCents(t.IncomeCents)
	expenses := core.FromCents(t.ExpenseCents)
	return core.FinancialSummary{
		TotalIncome:      income,
		TotalExpenses:    expenses,
		NetBalance:       income.Sub(expenses),
		TransactionCount: int(t.TransactionCount),
	}, nil
}

// ReplaceTransactions swaps the stored statement in a single transaction.
// Amounts are stored in cents.
func (r *SQLiteRepository) ReplaceTransactions(ctx context.Context, txs []core.Transaction) error {
	if err := core.ValidateAll(txs); err != nil {
		return fmt.Errorf("validate transactions: %w", err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteTransactions(ctx); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	for _, t := range txs {
		err := q.InsertTransaction(ctx, InsertTransactionParams{
			ID:          t.ID,
			Date:        t.Date,
			Description: t.Description,
			AmountCents: core.ToCents(t.Amount),
			Category:    t.Category,
			Type:        string(t.Type),
		})
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transactions: %w", err)
	}

	slog.InfoContext(ctx, "Statement stored in SQLite", "transactions", len(txs))
	return nil
}

// Load implements theme.Store
func (r *SQLiteRepository) Load(ctx context.Context) (theme.Theme, bool, error) {
	v, err := r.queries.GetPreference(ctx, themeKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get theme preference: %w", err)
	}
	return theme.Theme(v), true, nil
}

// Save implements theme.Store
func (r *SQLiteRepository) Save(ctx context.Context, t theme.Theme) error {
	if err := r.queries.UpsertPreference(ctx, themeKey, string(t)); err != nil {
		return fmt.Errorf("save theme preference: %w", err)
	}
	return nil
}

// RecordUpload implements upload.Recorder
func (r *SQLiteRepository) RecordUpload(ctx context.Context, ev upload.Event) error {
	err := r.queries.InsertUpload(ctx, InsertUploadParams{
		ID:         ev.ID.String(),
		Filename:   ev.Filename,
		SizeBytes:  ev.SizeBytes,
		ReceivedAt: ev.ReceivedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("record upload: %w", err)
	}
	return nil
}

// MarkUploadProcessed stamps an upload as handled by the worker, inserting
// it first when the worker runs against a different database.
func (r *SQLiteRepository) MarkUploadProcessed(ctx context.Context, ev upload.Event, at time.Time) error {
	err := r.queries.MarkUploadProcessed(ctx, MarkUploadProcessedParams{
		ID:          ev.ID.String(),
		Filename:    ev.Filename,
		SizeBytes:   ev.SizeBytes,
		ReceivedAt:  ev.ReceivedAt.UTC().Format(time.RFC3339Nano),
		ProcessedAt: at.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("mark upload processed: %w", err)
	}
	slog.InfoContext(ctx, "Upload marked as processed", "upload_id", ev.ID.String())
	return nil
}

// UploadRecord is an audited upload.
type UploadRecord struct {
	upload.Event
	ProcessedAt *time.Time
}

// ListUploads returns the most recent uploads first.
func (r *SQLiteRepository) ListUploads(ctx context.Context, limit int) ([]UploadRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.queries.ListUploads(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	out := make([]UploadRecord, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return nil, fmt.Errorf("upload %q: %w", row.ID, err)
		}
		received, err := time.Parse(time.RFC3339Nano, row.ReceivedAt)
		if err != nil {
			return nil, fmt.Errorf("upload %s received_at: %w", row.ID, err)
		}
		rec := UploadRecord{Event: upload.Event{ID: id, Filename: row.Filename, SizeBytes: row.SizeBytes, ReceivedAt: received}}
		if row.ProcessedAt.Valid {
			at, err := time.Parse(time.RFC3339Nano, row.ProcessedAt.String)
			if err != nil {
				return nil, fmt.Errorf("upload %s processed_at: %w", row.ID, err)
			}
			rec.ProcessedAt = &at
		}
		out = append(out, rec)
	}
	return out, nil
}
