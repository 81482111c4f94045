package presentation

import (
	"fmt"
	"math"

	"bankdash/internal/core"
	"bankdash/internal/theme"

	"github.com/shopspring/decimal"
)

// Bar chart geometry in SVG user units.
const (
	barChartWidth  = 640
	barChartHeight = 320
	barPadLeft     = 80
	barPadRight    = 20
	barPadTop      = 20
	barPadBottom   = 40
	barTicks       = 4
)

// Pie chart geometry; the radius matches the dashboard's outer radius.
const (
	pieSize   = 200
	pieRadius = 80
)

// Bar is one month of the spending chart.
type Bar struct {
	Label  string
	Month  string
	Value  string
	Amount float64
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// CenterX is the x coordinate of the bar's axis label.
func (b Bar) CenterX() float64 { return round2(b.X + b.Width/2) }

// Tick is a labelled horizontal grid line.
type Tick struct {
	Label string
	Y     float64
}

type BarChart struct {
	Bars    []Bar
	Ticks   []Tick
	Color   string
	Width   int
	Height  int
	BaseY   float64
	PlotX   float64
	PlotEnd float64
}

// Empty reports whether there is nothing to draw.
func (c BarChart) Empty() bool { return len(c.Bars) == 0 }

// LabelX and LabelY position tick and month labels outside the plot.
func (c BarChart) LabelX() float64 { return c.PlotX - 8 }
func (c BarChart) LabelY() float64 { return c.BaseY + 20 }

// NewBarChart lays out monthly spending as bars scaled to the largest month.
func NewBarChart(months []core.MonthlySpending, t theme.Theme) BarChart {
	chart := BarChart{
		Color:   PaletteFor(t).Bar,
		Width:   barChartWidth,
		Height:  barChartHeight,
		BaseY:   barChartHeight - barPadBottom,
		PlotX:   barPadLeft,
		PlotEnd: barChartWidth - barPadRight,
	}
	if len(months) == 0 {
		return chart
	}

	peak := decimal.Zero
	for _, m := range months {
		if m.Amount.GreaterThan(peak) {
			peak = m.Amount
		}
	}
	plotW := float64(barChartWidth - barPadLeft - barPadRight)
	plotH := float64(barChartHeight - barPadTop - barPadBottom)
	slot := plotW / float64(len(months))
	width := slot * 0.6

	for i := 0; i <= barTicks; i++ {
		v := peak.Mul(decimal.NewFromInt(int64(i))).Div(decimal.NewFromInt(barTicks))
		chart.Ticks = append(chart.Ticks, Tick{
			Label: FormatINR(v.Round(0)),
			Y:     round2(chart.BaseY - plotH*float64(i)/barTicks),
		})
	}

	maxF := peak.InexactFloat64()
	for i, m := range months {
		amount := m.Amount.InexactFloat64()
		h := 0.0
		if maxF > 0 {
			h = plotH * amount / maxF
		}
		chart.Bars = append(chart.Bars, Bar{
			Label:  m.Month.Label(),
			Month:  m.Month.String(),
			Value:  FormatINR(m.Amount),
			Amount: amount,
			X:      round2(barPadLeft + slot*float64(i) + (slot-width)/2),
			Y:      round2(chart.BaseY - h),
			Width:  round2(width),
			Height: round2(h),
		})
	}
	return chart
}

// Slice is one category of the pie chart.
type Slice struct {
	Category   string
	Legend     string
	Value      string
	Percentage float64
	Color      string
	Path       string
}

type PieChart struct {
	Slices []Slice
	Size   int
	Radius int
}

func (c PieChart) Empty() bool { return len(c.Slices) == 0 }

// NewPieChart turns a category breakdown into SVG wedges, starting at
// twelve o'clock and running clockwise. Categories with a zero total keep
// their legend entry but get no wedge.
func NewPieChart(cats []core.CategorySummary, t theme.Theme) PieChart {
	palette := PaletteFor(t)
	chart := PieChart{Size: pieSize, Radius: pieRadius}

	total := decimal.Zero
	for _, c := range cats {
		total = total.Add(c.Total)
	}
	totalF := total.InexactFloat64()

	angle := 0.0
	for i, c := range cats {
		s := Slice{
			Category:   c.Category,
			Legend:     Legend(c),
			Value:      FormatINR(c.Total),
			Percentage: c.RoundedPercentage().InexactFloat64(),
			Color:      palette.Color(i),
		}
		if totalF > 0 {
			sweep := 2 * math.Pi * c.Total.InexactFloat64() / totalF
			s.Path = wedge(pieSize/2, pieSize/2, pieRadius, angle, angle+sweep)
			angle += sweep
		}
		chart.Slices = append(chart.Slices, s)
	}
	return chart
}

// wedge returns an SVG path for the sector between two angles measured
// clockwise from twelve o'clock.
func wedge(cx, cy, r, from, to float64) string {
	sweep := to - from
	if sweep <= 0 {
		return ""
	}
	if sweep >= 2*math.Pi-1e-9 {
		// a single arc cannot describe a full circle
		return fmt.Sprintf("M %.2f %.2f m 0 %.2f a %.2f %.2f 0 1 1 0 %.2f a %.2f %.2f 0 1 1 0 %.2f Z",
			cx, cy, -r, r, r, 2*r, r, r, -2*r)
	}
	x0, y0 := point(cx, cy, r, from)
	x1, y1 := point(cx, cy, r, to)
	large := 0
	if sweep > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
		cx, cy, x0, y0, r, r, large, x1, y1)
}

func point(cx, cy, r, angle float64) (float64, float64) {
	return cx + r*math.Sin(angle), cy - r*math.Cos(angle)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
