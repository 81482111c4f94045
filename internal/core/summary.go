package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FinancialSummary holds the headline totals of a transaction set.
type FinancialSummary struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	NetBalance       decimal.Decimal `json:"netBalance"`
	TransactionCount int             `json:"transactionCount"`
}

// Equal compares two summaries by value.
func (s FinancialSummary) Equal(o FinancialSummary) bool {
	return s.TransactionCount == o.TransactionCount &&
		s.TotalIncome.Equal(o.TotalIncome) &&
		s.TotalExpenses.Equal(o.TotalExpenses) &&
		s.NetBalance.Equal(o.NetBalance)
}

// CategorySummary is the aggregated spend of a single category.
type CategorySummary struct {
	Category   string          `json:"category"`
	Total      decimal.Decimal `json:"total"`
	Percentage decimal.Decimal `json:"percentage"`
}

// RoundedPercentage returns the percentage rounded to one decimal place.
func (c CategorySummary) RoundedPercentage() decimal.Decimal {
	return c.Percentage.Round(1)
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf truncates t to its calendar month.
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Before reports whether ym is chronologically earlier than o.
func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

// Next returns the following calendar month.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// String renders the month as 2024-03.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Label renders the month for chart axes, e.g. "Mar 2024".
func (ym YearMonth) Label() string {
	return fmt.Sprintf("%s %d", ym.Month.String()[:3], ym.Year)
}

// MarshalText implements encoding.TextMarshaler.
func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ym *YearMonth) UnmarshalText(b []byte) error {
	t, err := time.Parse("2006-01", string(b))
	if err != nil {
		return &ParseError{Field: "month", Value: string(b), Err: err}
	}
	*ym = MonthOf(t)
	return nil
}

// MonthlySpending is the total debit magnitude of one calendar month.
type MonthlySpending struct {
	Month  YearMonth       `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}
