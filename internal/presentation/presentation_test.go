package presentation

import (
	"errors"
	"strings"
	"testing"

	"bankdash/internal/aggregate"
	"bankdash/internal/core"
	"bankdash/internal/dashboard"
	"bankdash/internal/sources/memory"
	"bankdash/internal/theme"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func snapshot(t *testing.T) *dashboard.Snapshot {
	t.Helper()
	txs := memory.Fixture()
	report, err := aggregate.Build(txs, aggregate.Options{})
	require.NoError(t, err)
	return dashboard.NewStore().Publish(&dashboard.Snapshot{
		Source:       "memory",
		Transactions: txs,
		Supplied:     report.Summary,
		Report:       report,
	})
}

func TestFormatINR(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3500.00", "₹3,500"},
		{"45.90", "₹45.9"},
		{"1402.68", "₹1,402.68"},
		{"123456.78", "₹1,23,456.78"},
		{"12345678", "₹1,23,45,678"},
		{"0", "₹0"},
		{"999", "₹999"},
		{"0.005", "₹0.01"},
		{"-1200", "-₹1,200"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatINR(d(tt.in)))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Mar 1, 2024", FormatDate("2024-03-01"))
	assert.Equal(t, "Dec 31, 2023", FormatDate("2023-12-31"))
	assert.Equal(t, "not-a-date", FormatDate("not-a-date"))
}

func TestLegend(t *testing.T) {
	c := core.CategorySummary{Category: "Groceries", Total: d("156.78"), Percentage: d("2.7492")}
	assert.Equal(t, "Groceries (2.7%)", Legend(c))

	c = core.CategorySummary{Category: "Income", Percentage: d("75")}
	assert.Equal(t, "Income (75.0%)", Legend(c))
}

func TestPaletteFollowsTheme(t *testing.T) {
	light := PaletteFor(theme.Light)
	dark := PaletteFor(theme.Dark)

	assert.Equal(t, "#3B82F6", light.Bar)
	assert.Equal(t, "#60A5FA", dark.Bar)
	assert.Equal(t, "#273236", light.Color(0))
	assert.Equal(t, "#B0C4DE", dark.Color(0))
	assert.Equal(t, light.Color(0), light.Color(6), "palette cycles")
}

func TestParseTab(t *testing.T) {
	assert.Equal(t, TabSpending, ParseTab("spending"))
	assert.Equal(t, TabCategories, ParseTab("categories"))
	assert.Equal(t, TabTransactions, ParseTab(""))
	assert.Equal(t, TabTransactions, ParseTab("bogus"))
}

func TestMetricsShowMagnitudes(t *testing.T) {
	m := Metrics(core.FinancialSummary{
		TotalIncome:      d("100"),
		TotalExpenses:    d("250.5"),
		NetBalance:       d("-150.5"),
		TransactionCount: 3,
	})
	require.Len(t, m, 4)
	assert.Equal(t, "Total Income", m[0].Label)
	assert.Equal(t, "₹100", m[0].Value)
	assert.Equal(t, "₹250.5", m[1].Value)
	assert.Equal(t, "Net Balance", m[2].Label)
	assert.Equal(t, "₹150.5", m[2].Value)
	assert.Equal(t, "3", m[3].Value)
}

func TestTableKeepsOrderAndFlagsCredits(t *testing.T) {
	rows := Table(memory.Fixture())
	require.Len(t, rows, 5)
	assert.Equal(t, "Grocery Store", rows[0].Description)
	assert.Equal(t, "₹156.78", rows[0].Amount)
	assert.False(t, rows[0].Credit)
	assert.Equal(t, "Mar 2, 2024", rows[1].Date)
	assert.True(t, rows[1].Credit)
	assert.Equal(t, "₹3,500", rows[1].Amount)
}

func TestBarChartScalesToLargestMonth(t *testing.T) {
	months := []core.MonthlySpending{
		{Month: core.YearMonth{Year: 2024, Month: 1}, Amount: d("500")},
		{Month: core.YearMonth{Year: 2024, Month: 2}, Amount: d("1000")},
		{Month: core.YearMonth{Year: 2024, Month: 3}, Amount: d("0")},
	}
	c := NewBarChart(months, theme.Light)
	require.Len(t, c.Bars, 3)
	assert.Equal(t, "#3B82F6", c.Color)

	tallest := c.Bars[1]
	assert.InDelta(t, barChartHeight-barPadTop-barPadBottom, tallest.Height, 0.01)
	assert.InDelta(t, tallest.Height/2, c.Bars[0].Height, 0.01)
	assert.Zero(t, c.Bars[2].Height)
	assert.Equal(t, c.BaseY, c.Bars[2].Y)
	assert.Equal(t, "Feb 2024", tallest.Label)
	assert.Equal(t, "₹1,000", tallest.Value)

	require.Len(t, c.Ticks, barTicks+1)
	assert.Equal(t, "₹0", c.Ticks[0].Label)
	assert.Equal(t, "₹1,000", c.Ticks[barTicks].Label)
}

func TestBarChartEmpty(t *testing.T) {
	c := NewBarChart(nil, theme.Dark)
	assert.True(t, c.Empty())
	assert.Equal(t, "#60A5FA", c.Color)
}

func TestPieChart(t *testing.T) {
	cats := []core.CategorySummary{
		{Category: "Housing", Total: d("75"), Percentage: d("75")},
		{Category: "Dining", Total: d("25"), Percentage: d("25")},
		{Category: "Other", Total: d("0"), Percentage: d("0")},
	}
	c := NewPieChart(cats, theme.Light)
	require.Len(t, c.Slices, 3)
	assert.Equal(t, pieRadius, c.Radius)

	// 75% sweeps past half a turn and ends at nine o'clock
	assert.Equal(t, "M 100.00 100.00 L 100.00 20.00 A 80.00 80.00 0 1 1 20.00 100.00 Z", c.Slices[0].Path)
	assert.True(t, strings.HasPrefix(c.Slices[1].Path, "M 100.00 100.00 L 20.00 100.00 A 80.00 80.00 0 0 1"))
	assert.Empty(t, c.Slices[2].Path)
	assert.Equal(t, "Other (0.0%)", c.Slices[2].Legend)
	assert.Equal(t, "#455A68", c.Slices[1].Color)
}

func TestPieChartSingleCategoryIsFullCircle(t *testing.T) {
	c := NewPieChart([]core.CategorySummary{{Category: "All", Total: d("10"), Percentage: d("100")}}, theme.Dark)
	require.Len(t, c.Slices, 1)
	assert.Contains(t, c.Slices[0].Path, "a 80.00 80.00 0 1 1 0 160.00")
}

func TestBuildBeforeFirstLoad(t *testing.T) {
	v := Build(nil, dashboard.Status{}, theme.Light, TabTransactions)
	assert.True(t, v.Loading)
	assert.False(t, v.HasData)
	require.Len(t, v.Tabs, 3)
	assert.True(t, v.Tabs[0].Active)
}

func TestBuildShowsErrorOnly(t *testing.T) {
	st := dashboard.Status{Err: &core.FetchError{Source: "memory", Op: "summary", Err: errors.New("down")}}
	v := Build(snapshot(t), st, theme.Dark, TabTransactions)
	assert.Equal(t, "Failed to fetch summary", v.Error)
	assert.False(t, v.HasData)
	assert.False(t, v.Loading)
	assert.True(t, v.Dark)
}

func TestBuildPerTab(t *testing.T) {
	snap := snapshot(t)

	v := Build(snap, dashboard.Status{}, theme.Light, TabTransactions)
	assert.True(t, v.HasData)
	assert.Len(t, v.Rows, 5)
	assert.True(t, v.Bars.Empty())
	assert.Equal(t, "₹2,897.32", v.Metrics[2].Value)

	v = Build(snap, dashboard.Status{}, theme.Light, TabSpending)
	assert.Empty(t, v.Rows)
	require.Len(t, v.Bars.Bars, 1)
	assert.Equal(t, "₹1,402.68", v.Bars.Bars[0].Value)

	v = Build(snap, dashboard.Status{}, theme.Light, TabCategories)
	assert.Len(t, v.Pie.Slices, 4)
	assert.True(t, v.Tabs[2].Active)
}

func TestSummaryJSON(t *testing.T) {
	s := SummaryOf(snapshot(t))
	assert.Equal(t, 4300.0, s.TotalIncome)
	assert.Equal(t, 1402.68, s.TotalExpenses)
	assert.Equal(t, 2897.32, s.NetBalance)
	assert.Equal(t, 5, s.TransactionCount)
	require.Len(t, s.MonthlySpending, 1)
	assert.Equal(t, "2024-03", s.MonthlySpending[0].Month)
	assert.Equal(t, "Mar 2024", s.MonthlySpending[0].Label)
	require.Len(t, s.CategoryBreakdown, 4)
	assert.Equal(t, "Groceries", s.CategoryBreakdown[0].Category)
}

func TestDashboardJSONCarriesSignedAmounts(t *testing.T) {
	out := DashboardOf(snapshot(t))
	assert.Equal(t, uint64(1), out.Version)
	require.Len(t, out.Transactions, 5)
	assert.Equal(t, -156.78, out.Transactions[0].Amount)
	assert.Equal(t, "debit", out.Transactions[0].Type)
	assert.Empty(t, out.Supplied.CategoryBreakdown)
}
