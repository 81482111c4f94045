package presentation

import (
	"time"

	"bankdash/internal/core"
	"bankdash/internal/dashboard"

	"github.com/shopspring/decimal"
)

// JSON shapes served by the API. Amounts are numbers rounded to cents.

type TransactionJSON struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
}

type CategoryJSON struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
}

type MonthlyJSON struct {
	Month  string  `json:"month"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// SummaryJSON mirrors the summary document of the data supplier, with the
// breakdowns embedded.
type SummaryJSON struct {
	TotalIncome       float64        `json:"totalIncome"`
	TotalExpenses     float64        `json:"totalExpenses"`
	NetBalance        float64        `json:"netBalance"`
	TransactionCount  int            `json:"transactionCount"`
	CategoryBreakdown []CategoryJSON `json:"categoryBreakdown"`
	MonthlySpending   []MonthlyJSON  `json:"monthlySpending"`
}

type DashboardJSON struct {
	Version      uint64            `json:"version"`
	Source       string            `json:"source"`
	LoadedAt     time.Time         `json:"loadedAt"`
	Summary      SummaryJSON       `json:"summary"`
	Supplied     SummaryJSON       `json:"suppliedSummary"`
	Transactions []TransactionJSON `json:"transactions"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func TransactionsJSON(txs []core.Transaction) []TransactionJSON {
	out := make([]TransactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, TransactionJSON{
			ID:          t.ID,
			Date:        t.Date,
			Description: t.Description,
			Amount:      money(t.Amount),
			Category:    t.Category,
			Type:        string(t.Type),
		})
	}
	return out
}

func CategoriesJSON(cats []core.CategorySummary) []CategoryJSON {
	out := make([]CategoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryJSON{
			Category:   c.Category,
			Total:      money(c.Total),
			Percentage: c.Percentage.Round(2).InexactFloat64(),
		})
	}
	return out
}

func MonthlyListJSON(months []core.MonthlySpending) []MonthlyJSON {
	out := make([]MonthlyJSON, 0, len(months))
	for _, m := range months {
		out = append(out, MonthlyJSON{
			Month:  m.Month.String(),
			Label:  m.Month.Label(),
			Amount: money(m.Amount),
		})
	}
	return out
}

func summaryJSON(s core.FinancialSummary, cats []core.CategorySummary, months []core.MonthlySpending) SummaryJSON {
	return SummaryJSON{
		TotalIncome:       money(s.TotalIncome),
		TotalExpenses:     money(s.TotalExpenses),
		NetBalance:        money(s.NetBalance),
		TransactionCount:  s.TransactionCount,
		CategoryBreakdown: CategoriesJSON(cats),
		MonthlySpending:   MonthlyListJSON(months),
	}
}

// SummaryOf returns the derived summary with both breakdowns.
func SummaryOf(snap *dashboard.Snapshot) SummaryJSON {
	return summaryJSON(snap.Report.Summary, snap.Report.Categories, snap.Report.Monthly)
}

// DashboardOf returns the whole snapshot.
func DashboardOf(snap *dashboard.Snapshot) DashboardJSON {
	return DashboardJSON{
		Version:      snap.Version,
		Source:       snap.Source,
		LoadedAt:     snap.LoadedAt,
		Summary:      SummaryOf(snap),
		Supplied:     summaryJSON(snap.Supplied, nil, nil),
		Transactions: TransactionsJSON(snap.Transactions),
	}
}
