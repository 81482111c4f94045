package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bankdash/internal/core"

	"github.com/shopspring/decimal"
)

const transactionsJSON = `[
  {"id":"1","date":"2024-03-01","description":"Grocery Store","amount":-156.78,"category":"Groceries","type":"debit"},
  {"id":"2","date":"2024-03-02","description":"Salary Deposit","amount":3500.00,"category":"Income","type":"credit"}
]`

const summaryJSON = `{"totalIncome":3500,"totalExpenses":156.78,"netBalance":3343.22,"transactionCount":2}`

func mustWrite(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestFetch(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, TransactionsFile, transactionsJSON)
	mustWrite(t, dir, SummaryFile, summaryJSON)
	s := New(dir)

	txs, err := s.FetchTransactions(context.Background())
	if err != nil || len(txs) != 2 {
		t.Fatalf("unexpected fetch: %v err=%v", txs, err)
	}
	if txs[0].Type != core.Debit || !txs[0].Amount.Equal(decimal.RequireFromString("-156.78")) {
		t.Fatalf("unexpected first transaction %+v", txs[0])
	}

	sum, err := s.FetchSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !sum.NetBalance.Equal(decimal.RequireFromString("3343.22")) || sum.TransactionCount != 2 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestMissingFileIsFetchError(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.FetchTransactions(context.Background())
	if !errors.Is(err, core.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	_, err = s.FetchSummary(context.Background())
	if core.ErrorCode(err) != core.CodeFetch {
		t.Fatalf("expected FETCH_FAILED, got %v", err)
	}
}

func TestMalformedFileIsFetchError(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, TransactionsFile, `{"not":"a list"}`)
	_, err := New(dir).FetchTransactions(context.Background())
	var fetchErr *core.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Op != "transactions" {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seed")
	txs := []core.Transaction{{ID: "9", Date: "2024-04-01", Description: "Bus", Amount: decimal.RequireFromString("-2.50"), Category: "Transport", Type: core.Debit}}
	sum := core.FinancialSummary{TotalExpenses: decimal.RequireFromString("2.50"), NetBalance: decimal.RequireFromString("-2.50"), TransactionCount: 1}
	if err := Write(dir, txs, sum); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := New(dir)
	got, err := s.FetchTransactions(context.Background())
	if err != nil || len(got) != 1 || got[0].ID != "9" || !got[0].Amount.Equal(txs[0].Amount) {
		t.Fatalf("unexpected round trip %+v err=%v", got, err)
	}
	gotSum, err := s.FetchSummary(context.Background())
	if err != nil || !gotSum.Equal(sum) {
		t.Fatalf("unexpected summary %+v err=%v", gotSum, err)
	}
}
