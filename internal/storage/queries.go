package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Transaction struct {
	Position    int64
	ID          string
	Date        string
	Description string
	AmountCents int64
	Category    string
	Type        string
}

const listTransactions = `SELECT position, id, date, description, amount_cents, category, type
FROM transactions
ORDER BY position`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(&i.Position, &i.ID, &i.Date, &i.Description, &i.AmountCents, &i.Category, &i.Type); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertTransaction = `INSERT INTO transactions (id, date, description, amount_cents, category, type)
VALUES (?, ?, ?, ?, ?, ?)`

type InsertTransactionParams struct {
	ID          string
	Date        string
	Description string
	AmountCents int64
	Category    string
	Type        string
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		arg.ID, arg.Date, arg.Description, arg.AmountCents, arg.Category, arg.Type)
	return err
}

const deleteTransactions = `DELETE FROM transactions`

func (q *Queries) DeleteTransactions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteTransactions)
	return err
}

const getTotals = `SELECT
    CAST(COALESCE(SUM(CASE WHEN type = 'credit' THEN ABS(amount_cents) ELSE 0 END), 0) AS INTEGER) AS income_cents,
    CAST(COALESCE(SUM(CASE WHEN type = 'debit' THEN ABS(amount_cents) ELSE 0 END), 0) AS INTEGER) AS expense_cents,
    COUNT(*) AS transaction_count
FROM transactions`

type GetTotalsRow struct {
	IncomeCents      int64
	ExpenseCents     int64
	TransactionCount int64
}

func (q *Queries) GetTotals(ctx context.Context) (GetTotalsRow, error) {
	row := q.db.QueryRowContext(ctx, getTotals)
	var i GetTotalsRow
	err := row.Scan(&i.IncomeCents, &i.ExpenseCents, &i.TransactionCount)
	return i, err
}

const getPreference = `SELECT value FROM preferences WHERE key = ?`

func (q *Queries) GetPreference(ctx context.Context, key string) (string, error) {
	row := q.db.QueryRowContext(ctx, getPreference, key)
	var value string
	err := row.Scan(&value)
	return value, err
}

const upsertPreference = `INSERT INTO preferences (key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

func (q *Queries) UpsertPreference(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, upsertPreference, key, value)
	return err
}

type StatementUpload struct {
	ID          string
	Filename    string
	SizeBytes   int64
	ReceivedAt  string
	ProcessedAt sql.NullString
}

const insertUpload = `INSERT INTO statement_uploads (id, filename, size_bytes, received_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING`

type InsertUploadParams struct {
	ID         string
	Filename   string
	SizeBytes  int64
	ReceivedAt string
}

func (q *Queries) InsertUpload(ctx context.Context, arg InsertUploadParams) error {
	_, err := q.db.ExecContext(ctx, insertUpload, arg.ID, arg.Filename, arg.SizeBytes, arg.ReceivedAt)
	return err
}

const markUploadProcessed = `INSERT INTO statement_uploads (id, filename, size_bytes, received_at, processed_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET processed_at = excluded.processed_at`

type MarkUploadProcessedParams struct {
	ID          string
	Filename    string
	SizeBytes   int64
	ReceivedAt  string
	ProcessedAt string
}

func (q *Queries) MarkUploadProcessed(ctx context.Context, arg MarkUploadProcessedParams) error {
	_, err := q.db.ExecContext(ctx, markUploadProcessed,
		arg.ID, arg.Filename, arg.SizeBytes, arg.ReceivedAt, arg.ProcessedAt)
	return err
}

const listUploads = `SELECT id, filename, size_bytes, received_at, processed_at
FROM statement_uploads
ORDER BY received_at DESC
LIMIT ?`

func (q *Queries) ListUploads(ctx context.Context, limit int64) ([]StatementUpload, error) {
	rows, err := q.db.QueryContext(ctx, listUploads, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StatementUpload
	for rows.Next() {
		var i StatementUpload
		if err := rows.Scan(&i.ID, &i.Filename, &i.SizeBytes, &i.ReceivedAt, &i.ProcessedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
