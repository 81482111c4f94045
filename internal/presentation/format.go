// Package presentation turns dashboard snapshots into view models for the
// HTML templates and the JSON API. Nothing here mutates a snapshot.
package presentation

import (
	"strings"

	"bankdash/internal/core"
	"bankdash/internal/theme"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "₹"

// TableDateLayout renders 2024-03-01 as "Mar 1, 2024".
const TableDateLayout = "Jan 2, 2006"

var (
	lightPie = []string{"#273236", "#455A68", "#5065F5", "#3344AD", "#4D61FC", "#151980"}
	darkPie  = []string{"#B0C4DE", "#ADD8E6", "#87CEEB", "#4682B4", "#4169E1", "#191970"}
)

// Palette holds the chart colors of one theme.
type Palette struct {
	Pie []string
	Bar string
}

// PaletteFor returns the chart colors for t.
func PaletteFor(t theme.Theme) Palette {
	if t.IsDark() {
		return Palette{Pie: darkPie, Bar: "#60A5FA"}
	}
	return Palette{Pie: lightPie, Bar: "#3B82F6"}
}

// Color cycles through the pie palette.
func (p Palette) Color(i int) string {
	return p.Pie[i%len(p.Pie)]
}

// FormatINR renders d with Indian digit grouping and at most two fraction
// digits, trailing zeros dropped: 123456.7 -> ₹1,23,456.7, 3500.00 -> ₹3,500.
func FormatINR(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	s := d.Abs().Round(2).String()
	intPart, frac, _ := strings.Cut(s, ".")
	if sign == "-" && intPart == "0" && frac == "" {
		sign = ""
	}
	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(CurrencySymbol)
	b.WriteString(groupIndian(intPart))
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// groupIndian places a comma before the last three digits and then every
// two digits: 1234567 -> 12,34,567.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}

// FormatDate renders a YYYY-MM-DD date for the transaction table. A value
// that does not parse is shown as is.
func FormatDate(s string) string {
	t, err := core.ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format(TableDateLayout)
}

// Legend renders "Groceries (2.7%)".
func Legend(c core.CategorySummary) string {
	return c.Category + " (" + c.RoundedPercentage().StringFixed(1) + "%)"
}
