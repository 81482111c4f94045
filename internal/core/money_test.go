package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"-156.78", "-156.78", true},
		{"3500,00", "3500", true},
		{" 2.50 ", "2.5", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1,2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestCentsRoundTrip(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
	}{
		{"-156.78", -15678},
		{"1402.68", 140268},
		{"1.005", 101},
		{"0", 0},
	}
	for _, tc := range cases {
		got := ToCents(decimal.RequireFromString(tc.in))
		if got != tc.cents {
			t.Fatalf("%s expected %d cents, got %d", tc.in, tc.cents, got)
		}
	}
	if !FromCents(-15678).Equal(decimal.RequireFromString("-156.78")) {
		t.Fatalf("FromCents mismatch")
	}
}

func TestYearMonth(t *testing.T) {
	ym := MonthOf(time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC))
	if ym.String() != "2024-12" || ym.Label() != "Dec 2024" {
		t.Fatalf("unexpected rendering %s / %s", ym, ym.Label())
	}
	next := ym.Next()
	if next != (YearMonth{Year: 2025, Month: time.January}) {
		t.Fatalf("unexpected next month %v", next)
	}
	if !ym.Before(next) || next.Before(ym) {
		t.Fatalf("ordering broken")
	}

	var parsed YearMonth
	if err := parsed.UnmarshalText([]byte("2024-03")); err != nil || parsed != (YearMonth{2024, time.March}) {
		t.Fatalf("unmarshal: %v %v", parsed, err)
	}
	if err := parsed.UnmarshalText([]byte("March")); err == nil {
		t.Fatalf("expected parse error")
	}
}
