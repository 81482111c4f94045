package presentation

import (
	"strconv"
	"time"

	"bankdash/internal/core"
	"bankdash/internal/dashboard"
	"bankdash/internal/theme"
)

// Tab selects the panel shown below the metrics.
type Tab string

const (
	TabTransactions Tab = "transactions"
	TabSpending     Tab = "spending"
	TabCategories   Tab = "categories"
)

// Tabs lists the panels in display order.
var Tabs = []Tab{TabTransactions, TabSpending, TabCategories}

// ParseTab falls back to the transactions tab for unknown values.
func ParseTab(s string) Tab {
	for _, t := range Tabs {
		if string(t) == s {
			return t
		}
	}
	return TabTransactions
}

// Title is the capitalized tab label.
func (t Tab) Title() string {
	switch t {
	case TabSpending:
		return "Spending"
	case TabCategories:
		return "Categories"
	}
	return "Transactions"
}

// Metric is one headline card.
type Metric struct {
	Label string
	Value string
	Kind  string
}

// Metrics renders the four headline cards. Money values are shown as
// magnitudes, so a negative net balance is displayed without its sign.
func Metrics(s core.FinancialSummary) []Metric {
	return []Metric{
		{Label: "Total Income", Value: FormatINR(s.TotalIncome.Abs()), Kind: "income"},
		{Label: "Total Expenses", Value: FormatINR(s.TotalExpenses.Abs()), Kind: "expense"},
		{Label: "Net Balance", Value: FormatINR(s.NetBalance.Abs()), Kind: "balance"},
		{Label: "Transactions", Value: strconv.Itoa(s.TransactionCount), Kind: "count"},
	}
}

// Row is one line of the transaction table.
type Row struct {
	ID          string
	Date        string
	Description string
	Category    string
	Amount      string
	Credit      bool
}

// Table renders transactions in supplier order.
func Table(txs []core.Transaction) []Row {
	rows := make([]Row, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, Row{
			ID:          t.ID,
			Date:        FormatDate(t.Date),
			Description: t.Description,
			Category:    t.Category,
			Amount:      FormatINR(t.Magnitude()),
			Credit:      t.IsCredit(),
		})
	}
	return rows
}

// TabLink is a tab button.
type TabLink struct {
	Tab    Tab
	Title  string
	Active bool
}

// Dashboard is everything the page template needs.
type Dashboard struct {
	Theme    theme.Theme
	Dark     bool
	Tab      Tab
	Tabs     []TabLink
	Loading  bool
	Error    string
	HasData  bool
	Version  uint64
	LoadedAt time.Time
	Metrics  []Metric
	Rows     []Row
	Bars     BarChart
	Pie      PieChart
}

// Build assembles the view for a snapshot. snap is nil before the first
// successful load. After a failed load only the error is shown.
func Build(snap *dashboard.Snapshot, st dashboard.Status, t theme.Theme, tab Tab) Dashboard {
	v := Dashboard{
		Theme:   t,
		Dark:    t.IsDark(),
		Tab:     tab,
		Loading: st.Loading,
		Error:   st.Message(),
	}
	for _, tb := range Tabs {
		v.Tabs = append(v.Tabs, TabLink{Tab: tb, Title: tb.Title(), Active: tb == tab})
	}
	if v.Error != "" {
		v.Loading = false
		return v
	}
	if snap == nil {
		v.Loading = true
		return v
	}
	v.HasData = true
	v.Version = snap.Version
	v.LoadedAt = snap.LoadedAt
	v.Metrics = Metrics(snap.Summary())
	switch tab {
	case TabSpending:
		v.Bars = NewBarChart(snap.Report.Monthly, t)
	case TabCategories:
		v.Pie = NewPieChart(snap.Report.Categories, t)
	default:
		v.Rows = Table(snap.Transactions)
	}
	return v
}
