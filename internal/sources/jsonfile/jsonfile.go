// Package jsonfile reads a statement from transactions.json and
// summary.json in a data directory.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bankdash/internal/core"
	"bankdash/internal/sources"
)

const (
	TransactionsFile = "transactions.json"
	SummaryFile      = "summary.json"
)

const sourceName = "jsonfile"

var _ sources.Supplier = (*Source)(nil)

type Source struct {
	dir string
}

func New(dir string) *Source {
	return &Source{dir: dir}
}

func (s *Source) Name() string { return sourceName }

// Dir returns the data directory.
func (s *Source) Dir() string { return s.dir }

func (s *Source) FetchTransactions(ctx context.Context) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := s.read(ctx, TransactionsFile, &txs); err != nil {
		return nil, &core.FetchError{Source: sourceName, Op: "transactions", Err: err}
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

func (s *Source) FetchSummary(ctx context.Context) (core.FinancialSummary, error) {
	var sum core.FinancialSummary
	if err := s.read(ctx, SummaryFile, &sum); err != nil {
		return core.FinancialSummary{}, &core.FetchError{Source: sourceName, Op: "summary", Err: err}
	}
	return sum, nil
}

func (s *Source) read(ctx context.Context, name string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s not found", path)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Write stores a statement and its summary in dir, e.g. to seed a data
// directory from another supplier.
func Write(dir string, txs []core.Transaction, sum core.FinancialSummary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := map[string]any{TransactionsFile: txs, SummaryFile: sum}
	for name, v := range files {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
