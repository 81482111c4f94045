// Package aggregate derives summary views from a transaction sequence.
//
// All functions are pure: they never mutate their input and keep no state
// between calls.
package aggregate

import (
	"sort"

	"bankdash/internal/core"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Order selects how category summaries are ordered.
type Order string

const (
	// OrderFirstSeen keeps categories in order of first occurrence.
	OrderFirstSeen Order = "first_seen"
	// OrderTotalDesc sorts by descending total; ties keep first occurrence.
	OrderTotalDesc Order = "total_desc"
)

// Scope selects which transactions feed the category breakdown.
type Scope string

const (
	ScopeAll    Scope = "all"
	ScopeDebits Scope = "debits"
)

// Options tunes the breakdowns. The zero value is valid.
type Options struct {
	Order Order
	Scope Scope
	// FillGaps adds zero entries for months without debits between the
	// first and last month present.
	FillGaps bool
}

// Report bundles every derived view of a transaction set.
type Report struct {
	Summary    core.FinancialSummary  `json:"summary"`
	Categories []core.CategorySummary `json:"categoryBreakdown"`
	Monthly    []core.MonthlySpending `json:"monthlySpending"`
}

// Build computes the summary and both breakdowns.
func Build(txs []core.Transaction, opts Options) (Report, error) {
	monthly, err := Monthly(txs, opts)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Summary:    Summarize(txs),
		Categories: Categories(txs, opts),
		Monthly:    monthly,
	}, nil
}

// Summarize totals credits and debits by magnitude.
func Summarize(txs []core.Transaction) core.FinancialSummary {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case core.Credit:
			income = income.Add(t.Magnitude())
		case core.Debit:
			expenses = expenses.Add(t.Magnitude())
		}
	}
	return core.FinancialSummary{
		TotalIncome:      income,
		TotalExpenses:    expenses,
		NetBalance:       income.Sub(expenses),
		TransactionCount: len(txs),
	}
}

// Categories groups transactions by category label. Percentages are
// relative to the sum of all category totals.
func Categories(txs []core.Transaction, opts Options) []core.CategorySummary {
	out := make([]core.CategorySummary, 0)
	index := map[string]int{}
	grand := decimal.Zero
	for _, t := range txs {
		if opts.Scope == ScopeDebits && !t.IsDebit() {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, core.CategorySummary{Category: t.Category, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(t.Magnitude())
		grand = grand.Add(t.Magnitude())
	}
	for i := range out {
		if grand.IsZero() {
			out[i].Percentage = decimal.Zero
			continue
		}
		out[i].Percentage = out[i].Total.Div(grand).Mul(hundred)
	}
	if opts.Order == OrderTotalDesc {
		sort.SliceStable(out, func(a, b int) bool {
			return out[a].Total.GreaterThan(out[b].Total)
		})
	}
	return out
}

// Monthly sums debit magnitudes per calendar month in chronological order.
// Dates are parsed for every transaction, so a malformed date anywhere in
// the input fails with *core.ParseError.
func Monthly(txs []core.Transaction, opts Options) ([]core.MonthlySpending, error) {
	totals := map[core.YearMonth]decimal.Decimal{}
	var months []core.YearMonth
	for _, t := range txs {
		day, err := t.Day()
		if err != nil {
			return nil, err
		}
		if !t.IsDebit() {
			continue
		}
		ym := core.MonthOf(day)
		if _, ok := totals[ym]; !ok {
			months = append(months, ym)
			totals[ym] = decimal.Zero
		}
		totals[ym] = totals[ym].Add(t.Magnitude())
	}
	sort.Slice(months, func(a, b int) bool { return months[a].Before(months[b]) })

	out := make([]core.MonthlySpending, 0, len(months))
	if len(months) == 0 {
		return out, nil
	}
	if !opts.FillGaps {
		for _, ym := range months {
			out = append(out, core.MonthlySpending{Month: ym, Amount: totals[ym]})
		}
		return out, nil
	}
	last := months[len(months)-1]
	for ym := months[0]; !last.Before(ym); ym = ym.Next() {
		amount, ok := totals[ym]
		if !ok {
			amount = decimal.Zero
		}
		out = append(out, core.MonthlySpending{Month: ym, Amount: amount})
	}
	return out, nil
}

// PercentageSum adds up category percentages; used to check that a
// breakdown covers the whole spend.
func PercentageSum(cats []core.CategorySummary) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range cats {
		sum = sum.Add(c.Percentage)
	}
	return sum
}
