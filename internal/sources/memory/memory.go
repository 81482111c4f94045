package memory

import (
	"context"
	"sync"
	"time"

	"bankdash/internal/aggregate"
	"bankdash/internal/core"
	"bankdash/internal/sources"

	"github.com/shopspring/decimal"
)

// Default latencies of the simulated endpoints.
const (
	DefaultTransactionsDelay = 1000 * time.Millisecond
	DefaultSummaryDelay      = 800 * time.Millisecond
)

const sourceName = "memory"

var _ sources.Supplier = (*Store)(nil)

// Store serves a fixed statement after a simulated network delay.
type Store struct {
	mu               sync.Mutex
	items            []core.Transaction
	summary          *core.FinancialSummary
	txDelay          time.Duration
	summaryDelay     time.Duration
	failTransactions error
	failSummary      error
}

// New returns a store holding txs. The supplied summary is derived from
// txs unless overridden with SetSummary.
func New(txs []core.Transaction) *Store {
	return &Store{
		items:        append([]core.Transaction(nil), txs...),
		txDelay:      DefaultTransactionsDelay,
		summaryDelay: DefaultSummaryDelay,
	}
}

// NewFixture returns a store seeded with the sample statement.
func NewFixture() *Store {
	return New(Fixture())
}

// Fixture is the five-transaction sample statement.
func Fixture() []core.Transaction {
	return []core.Transaction{
		{ID: "1", Date: "2024-03-01", Description: "Grocery Store", Amount: decimal.RequireFromString("-156.78"), Category: "Groceries", Type: core.Debit},
		{ID: "2", Date: "2024-03-02", Description: "Salary Deposit", Amount: decimal.RequireFromString("3500.00"), Category: "Income", Type: core.Credit},
		{ID: "3", Date: "2024-03-03", Description: "Restaurant", Amount: decimal.RequireFromString("-45.90"), Category: "Dining", Type: core.Debit},
		{ID: "4", Date: "2024-03-04", Description: "Rent Payment", Amount: decimal.RequireFromString("-1200.00"), Category: "Housing", Type: core.Debit},
		{ID: "5", Date: "2024-03-05", Description: "Freelance Payment", Amount: decimal.RequireFromString("800.00"), Category: "Income", Type: core.Credit},
	}
}

func (s *Store) Name() string { return sourceName }

// SetDelays overrides the simulated latencies. Zero disables the wait.
func (s *Store) SetDelays(transactions, summary time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txDelay, s.summaryDelay = transactions, summary
}

// SetSummary pins the totals reported by FetchSummary.
func (s *Store) SetSummary(sum core.FinancialSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = &sum
}

// Fail makes subsequent fetches return the given errors; nil clears.
func (s *Store) Fail(transactions, summary error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failTransactions, s.failSummary = transactions, summary
}

// Replace swaps the served statement.
func (s *Store) Replace(txs []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Transaction(nil), txs...)
}

func (s *Store) FetchTransactions(ctx context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	delay, fail := s.txDelay, s.failTransactions
	items := append([]core.Transaction(nil), s.items...)
	s.mu.Unlock()

	if err := wait(ctx, delay); err != nil {
		return nil, &core.FetchError{Source: sourceName, Op: "transactions", Err: err}
	}
	if fail != nil {
		return nil, &core.FetchError{Source: sourceName, Op: "transactions", Err: fail}
	}
	return items, nil
}

func (s *Store) FetchSummary(ctx context.Context) (core.FinancialSummary, error) {
	s.mu.Lock()
	delay, fail := s.summaryDelay, s.failSummary
	pinned := s.summary
	items := append([]core.Transaction(nil), s.items...)
	s.mu.Unlock()

	if err := wait(ctx, delay); err != nil {
		return core.FinancialSummary{}, &core.FetchError{Source: sourceName, Op: "summary", Err: err}
	}
	if fail != nil {
		return core.FinancialSummary{}, &core.FetchError{Source: sourceName, Op: "summary", Err: fail}
	}
	if pinned != nil {
		return *pinned, nil
	}
	return aggregate.Summarize(items), nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
