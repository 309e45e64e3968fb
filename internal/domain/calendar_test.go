package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekStart(t *testing.T) {
	cases := []struct {
		in   string
		want WeekStart
	}{
		{"monday", WeekStartMonday},
		{"Mon", WeekStartMonday},
		{"sunday", WeekStartSunday},
		{" SUN ", WeekStartSunday},
		{"saturday", WeekStart(time.Saturday)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseWeekStart(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := ParseWeekStart("someday")
	require.Error(t, err)
}

func TestDayOfWeekIndex(t *testing.T) {
	// 2020-01-06 is a Monday.
	monday := d(2020, 1, 6)

	assert.Equal(t, 0, DayOfWeekIndex(monday, WeekStartMonday))
	assert.Equal(t, 1, DayOfWeekIndex(monday, WeekStartSunday))
	assert.Equal(t, 6, DayOfWeekIndex(d(2020, 1, 5), WeekStartMonday))
	assert.Equal(t, 0, DayOfWeekIndex(d(2020, 1, 5), WeekStartSunday))
}

func TestWeekIndex_MondayStart(t *testing.T) {
	// 2020-01-01 is a Wednesday.
	assert.Equal(t, 0, WeekIndex(d(2020, 1, 1), WeekStartMonday))
	assert.Equal(t, 0, WeekIndex(d(2020, 1, 5), WeekStartMonday), "Sunday closes the first week")
	assert.Equal(t, 1, WeekIndex(d(2020, 1, 6), WeekStartMonday), "Monday opens a new column")
	assert.Equal(t, 52, WeekIndex(d(2020, 12, 28), WeekStartMonday))
	assert.Equal(t, 52, WeekIndex(d(2020, 12, 31), WeekStartMonday))
}

func TestWeekIndex_YearStartingOnWeekStart(t *testing.T) {
	// 2018-01-01 is a Monday: January 1 itself is not counted.
	assert.Equal(t, 0, WeekIndex(d(2018, 1, 1), WeekStartMonday))
	assert.Equal(t, 0, WeekIndex(d(2018, 1, 7), WeekStartMonday))
	assert.Equal(t, 1, WeekIndex(d(2018, 1, 8), WeekStartMonday))
}

func TestWeekIndex_SundayStart(t *testing.T) {
	// 2020-01-05 is a Sunday.
	assert.Equal(t, 0, WeekIndex(d(2020, 1, 4), WeekStartSunday))
	assert.Equal(t, 1, WeekIndex(d(2020, 1, 5), WeekStartSunday))
	assert.Equal(t, 1, WeekIndex(d(2020, 1, 6), WeekStartSunday))
}

func TestLayout_GridInvariants(t *testing.T) {
	for _, ws := range []WeekStart{WeekStartMonday, WeekStartSunday, WeekStart(time.Thursday)} {
		t.Run(ws.String(), func(t *testing.T) {
			for _, year := range []int{2019, 2020, 2023} {
				grid := LayoutYear(year, ws)

				require.Len(t, grid.Cells, NewDate(year, 12, 31).YearDay())
				assert.LessOrEqual(t, grid.Weeks(), 54)

				for i, cell := range grid.Cells {
					assert.GreaterOrEqual(t, cell.Row, 0)
					assert.LessOrEqual(t, cell.Row, 6)
					if i == 0 {
						continue
					}
					prev := grid.Cells[i-1]
					assert.True(t, prev.Date.Before(cell.Date))
					assert.GreaterOrEqual(t, cell.Column, prev.Column, "column decreased at %s", cell.Date)
					if i >= 7 {
						week := grid.Cells[i-7]
						assert.Equal(t, week.Row, cell.Row, "row differs 7 days apart at %s", cell.Date)
						assert.Equal(t, week.Column+1, cell.Column, "column not advanced after 7 days at %s", cell.Date)
					}
				}
			}
		})
	}
}

func TestLayout_CellsAreUnique(t *testing.T) {
	grid := LayoutYear(2021, WeekStartMonday)

	seen := make(map[[2]int]Date)
	for _, c := range grid.Cells {
		key := [2]int{c.Column, c.Row}
		prev, dup := seen[key]
		assert.False(t, dup, "%s and %s share a cell", prev, c.Date)
		seen[key] = c.Date
	}
}

func TestLayout_MonthMembership(t *testing.T) {
	grid := LayoutYear(2020, WeekStartMonday)
	require.Len(t, grid.Months, 12)

	wantDays := []int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	for i, m := range grid.Months {
		assert.Equal(t, time.Month(i+1), m.Month)
		assert.Equal(t, wantDays[i], m.Days, "days in %s", m.Month)
	}

	feb := grid.Months[1]
	// 2020-02-01 is a Saturday, 2020-02-29 a Saturday.
	assert.Equal(t, 4, feb.FirstColumn)
	assert.Equal(t, 5, feb.FirstRow)
	assert.Equal(t, 8, feb.LastColumn)
	assert.Equal(t, 5, feb.LastRow)
}

func TestMonthOutline_Path(t *testing.T) {
	m := MonthOutline{Month: time.February, FirstColumn: 4, FirstRow: 5, LastColumn: 8, LastRow: 5}

	assert.Equal(t, "M90,90H72V126H144V108H162V0H90Z", m.Path(18))
	assert.Equal(t, 126.0, m.LabelX(18))
}

func TestLayout_YearRange(t *testing.T) {
	span := Span{Start: d(2018, 11, 1), End: d(2020, 2, 1)}

	grids := Layout(span, true, WeekStartMonday)

	require.Len(t, grids, 3)
	assert.Equal(t, 2018, grids[0].Year)
	assert.Equal(t, 2019, grids[1].Year)
	assert.Equal(t, 2020, grids[2].Year)
}

func TestLayout_NoDataUsesToday(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)))
	defer SetClock(nil)

	grids := Layout(Span{}, false, WeekStartMonday)

	require.Len(t, grids, 1)
	assert.Equal(t, 2024, grids[0].Year)
	assert.Len(t, grids[0].Cells, 366)
}
