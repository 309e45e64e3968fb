package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WeekStart is the weekday that opens a new grid column.
type WeekStart time.Weekday

const (
	WeekStartSunday = WeekStart(time.Sunday)
	WeekStartMonday = WeekStart(time.Monday)
)

// ParseWeekStart accepts full or three-letter English weekday names.
func ParseWeekStart(s string) (WeekStart, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if s == name || s == name[:3] {
			return WeekStart(wd), nil
		}
	}
	return 0, fmt.Errorf("unknown week start %q", s)
}

func (w WeekStart) String() string {
	return strings.ToLower(time.Weekday(w).String())
}

func (w WeekStart) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *WeekStart) UnmarshalText(b []byte) error {
	parsed, err := ParseWeekStart(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// DayOfWeekIndex is the grid row of d: 0 for the week start day through 6.
func DayOfWeekIndex(d Date, ws WeekStart) int {
	return (int(d.Weekday()) + 7 - int(ws)) % 7
}

// WeekIndex is the grid column of d: the number of week start days after
// January 1 of d's year up to and including d.
func WeekIndex(d Date, ws WeekStart) int {
	jan1 := NewDate(d.Year, time.January, 1)
	return (d.YearDay() - 1 + DayOfWeekIndex(jan1, ws)) / 7
}

// GridCell places one day on a year grid.
type GridCell struct {
	Date   Date `json:"date"`
	Column int  `json:"column"`
	Row    int  `json:"row"`
}

// MonthOutline is the cell range a month occupies on its year grid.
type MonthOutline struct {
	Month       time.Month `json:"month"`
	FirstColumn int        `json:"first_column"`
	FirstRow    int        `json:"first_row"`
	LastColumn  int        `json:"last_column"`
	LastRow     int        `json:"last_row"`
	Days        int        `json:"days"`
}

// Path returns a closed SVG path tracing the month's cells, for cells of
// the given size in user units.
func (m MonthOutline) Path(size float64) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	w0, d0 := float64(m.FirstColumn), float64(m.FirstRow)
	w1, d1 := float64(m.LastColumn), float64(m.LastRow)

	var b strings.Builder
	b.WriteString("M" + f((w0+1)*size) + "," + f(d0*size))
	b.WriteString("H" + f(w0*size) + "V" + f(7*size))
	b.WriteString("H" + f(w1*size) + "V" + f((d1+1)*size))
	b.WriteString("H" + f((w1+1)*size) + "V0")
	b.WriteString("H" + f((w0+1)*size) + "Z")
	return b.String()
}

// LabelX is the horizontal center for the month caption.
func (m MonthOutline) LabelX(size float64) float64 {
	w0, w1 := float64(m.FirstColumn), float64(m.LastColumn)
	return (w0+1)*size + (w1-w0)*size/2
}

// YearGrid is the layout of one calendar year.
type YearGrid struct {
	Year   int            `json:"year"`
	Cells  []GridCell     `json:"cells"`
	Months []MonthOutline `json:"months"`
}

// Weeks is the number of columns the grid spans.
func (g YearGrid) Weeks() int {
	if len(g.Cells) == 0 {
		return 0
	}
	return g.Cells[len(g.Cells)-1].Column + 1
}

// YearRange returns the first and last year to lay out. Without data both
// bounds fall on the current year so callers still get one empty grid.
func YearRange(span Span, ok bool) (int, int) {
	if !ok {
		now := clock.Now().Year()
		return now, now
	}
	return span.Start.Year, span.End.Year
}

// Layout builds a grid for every year touched by span, in ascending order.
func Layout(span Span, ok bool, ws WeekStart) []YearGrid {
	first, last := YearRange(span, ok)
	grids := make([]YearGrid, 0, last-first+1)
	for y := first; y <= last; y++ {
		grids = append(grids, LayoutYear(y, ws))
	}
	return grids
}

// LayoutYear places every day of year on the grid and outlines its months.
func LayoutYear(year int, ws WeekStart) YearGrid {
	jan1 := NewDate(year, time.January, 1)
	days := NewDate(year, time.December, 31).YearDay()

	grid := YearGrid{
		Year:   year,
		Cells:  make([]GridCell, 0, days),
		Months: make([]MonthOutline, 0, 12),
	}
	for i := 0; i < days; i++ {
		d := jan1.AddDays(i)
		grid.Cells = append(grid.Cells, GridCell{
			Date:   d,
			Column: WeekIndex(d, ws),
			Row:    DayOfWeekIndex(d, ws),
		})
	}

	for m := time.January; m <= time.December; m++ {
		first := NewDate(year, m, 1)
		last := NewDate(year, m, DaysIn(year, m))
		grid.Months = append(grid.Months, MonthOutline{
			Month:       m,
			FirstColumn: WeekIndex(first, ws),
			FirstRow:    DayOfWeekIndex(first, ws),
			LastColumn:  WeekIndex(last, ws),
			LastRow:     DayOfWeekIndex(last, ws),
			Days:        last.Day,
		})
	}

	return grid
}
