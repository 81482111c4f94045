package sources

import (
	"context"

	"bankdash/internal/core"
)

// Ports for data suppliers.
type (
	TransactionFetcher interface {
		// FetchTransactions returns the full statement in supplier order.
		FetchTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	SummaryFetcher interface {
		// FetchSummary returns the supplier's own totals for the statement.
		FetchSummary(ctx context.Context) (core.FinancialSummary, error)
	}

	// Supplier is the full data supplier contract.
	Supplier interface {
		TransactionFetcher
		SummaryFetcher
		// Name identifies the supplier in logs and errors.
		Name() string
	}
)
