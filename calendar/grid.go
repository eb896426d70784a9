// Package calendar lays a year of daily values out as a GitHub-like week grid:
// one column per Sunday..Saturday week, one row per weekday.
package calendar

import (
	"time"

	"github.com/stsysd/milecal/model"
)

// DaysPerWeek is the number of rows of the grid.
const DaysPerWeek = 7

// Cell is one day of the grid.
type Cell struct {
	Date         time.Time
	Value        float64 // 0 when the day has no record
	WeekIndex    int     // zero-based column
	DayOfWeek    int     // 0 = Sunday .. 6 = Saturday
	InTargetYear bool    // false for the week-completion padding days
}

// MonthBoundary locates the column holding the first day of a month.
type MonthBoundary struct {
	Month     time.Month
	WeekIndex int
}

// Grid is the complete week grid for one target year.
type Grid struct {
	Year   int
	Cells  []Cell // consecutive days from DisplayStart to DisplayEnd
	Months []MonthBoundary

	DisplayStart time.Time // Sunday on or before January 1
	DisplayEnd   time.Time // Saturday on or after December 31
}

// Layout builds the grid of targetYear from ds.
//
// The grid runs from the Sunday on or before January 1 to the Saturday on or after
// December 31. Days outside the target year are present only to complete the first
// and last week and are flagged with InTargetYear == false. All arithmetic is UTC.
func Layout(ds *model.Dataset, targetYear int) (*Grid, error) {
	year, err := model.NewYear(targetYear)
	if err != nil {
		return nil, err
	}

	yearStart := year.Start()
	yearEnd := year.End()

	// align first column to Sunday and last column to Saturday
	displayStart := yearStart.AddDate(0, 0, -int(yearStart.Weekday()))
	displayEnd := yearEnd.AddDate(0, 0, int(time.Saturday-yearEnd.Weekday()))

	days := int(displayEnd.Sub(displayStart).Hours()/24) + 1
	cells := make([]Cell, 0, days)

	week := 0
	for current := displayStart; !current.After(displayEnd); current = current.AddDate(0, 0, 1) {
		dow := int(current.Weekday())
		// each Sunday after the first placed cell opens a new column
		if dow == 0 && len(cells) > 0 {
			week++
		}
		cells = append(cells, Cell{
			Date:         current,
			Value:        ds.Value(current),
			WeekIndex:    week,
			DayOfWeek:    dow,
			InTargetYear: current.Year() == targetYear,
		})
	}

	g := &Grid{
		Year:         targetYear,
		Cells:        cells,
		DisplayStart: displayStart,
		DisplayEnd:   displayEnd,
	}
	g.Months = monthBoundaries(g, yearStart, yearEnd)
	return g, nil
}

// monthBoundaries finds the column of each month's first day within the target year.
// A month whose first day is not on the grid is omitted.
func monthBoundaries(g *Grid, yearStart, yearEnd time.Time) []MonthBoundary {
	var out []MonthBoundary
	for first := yearStart; !first.After(yearEnd); first = first.AddDate(0, 1, 0) {
		cell, ok := g.CellFor(first)
		if !ok {
			continue
		}
		out = append(out, MonthBoundary{Month: first.Month(), WeekIndex: cell.WeekIndex})
	}
	return out
}

// CellFor returns the cell of the day of t.
func (g *Grid) CellFor(t time.Time) (Cell, bool) {
	t = model.TruncateToDay(t)
	if t.Before(g.DisplayStart) || t.After(g.DisplayEnd) {
		return Cell{}, false
	}
	idx := int(t.Sub(g.DisplayStart).Hours() / 24)
	if idx < 0 || idx >= len(g.Cells) {
		return Cell{}, false
	}
	return g.Cells[idx], true
}

// At returns the cell at the given column and weekday row.
func (g *Grid) At(week, day int) (Cell, bool) {
	if day < 0 || day >= DaysPerWeek {
		return Cell{}, false
	}
	idx := week*DaysPerWeek + day
	if week < 0 || idx >= len(g.Cells) {
		return Cell{}, false
	}
	return g.Cells[idx], true
}

// Weeks returns the number of columns.
func (g *Grid) Weeks() int {
	if len(g.Cells) == 0 {
		return 0
	}
	return g.Cells[len(g.Cells)-1].WeekIndex + 1
}

// Total sums the values of the days inside the target year.
func (g *Grid) Total() float64 {
	var total float64
	for _, c := range g.Cells {
		if c.InTargetYear {
			total += c.Value
		}
	}
	return total
}

// Values returns the values of the days inside the target year.
func (g *Grid) Values() []float64 {
	out := make([]float64, 0, len(g.Cells))
	for _, c := range g.Cells {
		if c.InTargetYear {
			out = append(out, c.Value)
		}
	}
	return out
}
