package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"bankdash/internal/core"

	"github.com/shopspring/decimal"
)

func TestFixtureSummary(t *testing.T) {
	s := NewFixture()
	s.SetDelays(0, 0)

	txs, err := s.FetchTransactions(context.Background())
	if err != nil || len(txs) != 5 {
		t.Fatalf("unexpected fetch: %d txs, err=%v", len(txs), err)
	}
	if err := core.ValidateAll(txs); err != nil {
		t.Fatalf("fixture must validate: %v", err)
	}

	sum, err := s.FetchSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := core.FinancialSummary{
		TotalIncome:      decimal.RequireFromString("4300.00"),
		TotalExpenses:    decimal.RequireFromString("1402.68"),
		NetBalance:       decimal.RequireFromString("2897.32"),
		TransactionCount: 5,
	}
	if !sum.Equal(want) {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestFetchReturnsCopy(t *testing.T) {
	s := NewFixture()
	s.SetDelays(0, 0)

	txs, _ := s.FetchTransactions(context.Background())
	txs[0].Category = "Changed"

	again, _ := s.FetchTransactions(context.Background())
	if again[0].Category != "Groceries" {
		t.Fatalf("store leaked its backing slice")
	}
}

func TestFailureInjection(t *testing.T) {
	s := NewFixture()
	s.SetDelays(0, 0)
	s.Fail(errors.New("503"), nil)

	_, err := s.FetchTransactions(context.Background())
	var fetchErr *core.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Op != "transactions" || fetchErr.Source != "memory" {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if _, err := s.FetchSummary(context.Background()); err != nil {
		t.Fatalf("summary should still succeed: %v", err)
	}

	s.Fail(nil, nil)
	if _, err := s.FetchTransactions(context.Background()); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
}

func TestDelayIsCancellable(t *testing.T) {
	s := NewFixture()
	s.SetDelays(time.Hour, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.FetchTransactions(ctx)
	if !errors.Is(err, core.ErrFetch) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected cancelled fetch, got %v", err)
	}
}

func TestPinnedSummary(t *testing.T) {
	s := New(nil)
	s.SetDelays(0, 0)
	pinned := core.FinancialSummary{TotalIncome: decimal.NewFromInt(1), NetBalance: decimal.NewFromInt(1), TransactionCount: 1}
	s.SetSummary(pinned)

	got, err := s.FetchSummary(context.Background())
	if err != nil || !got.Equal(pinned) {
		t.Fatalf("expected pinned summary, got %+v err=%v", got, err)
	}
}
