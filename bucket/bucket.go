// Package bucket groups daily records by calendar year and projects every year onto a
// shared reference year so that several years can be overlaid on one time axis.
package bucket

import (
	"fmt"
	"sort"
	"time"

	"github.com/stsysd/milecal/model"
)

// ReferenceYear is the common year every date is projected onto.
// It must be a leap year so that February 29 stays representable.
const ReferenceYear = 2000

// Point is one entry of a YearSeries.
type Point struct {
	Date       time.Time // month-day projected onto the reference year
	Cumulative float64   // running total of the source year up to and including Date
	SourceYear int
}

// YearSeries is the cumulative distance series of one calendar year,
// ordered by normalized date.
type YearSeries struct {
	Year   int
	Points []Point

	// Padded is set when the last point is a synthetic carry-forward to the end of
	// the reference year rather than a recorded day.
	Padded bool
}

// Total returns the last recorded cumulative value of the year.
func (s *YearSeries) Total() float64 {
	if s == nil || len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Cumulative
}

// Recorded returns the points that correspond to recorded days.
func (s *YearSeries) Recorded() []Point {
	if s.Padded {
		return s.Points[:len(s.Points)-1]
	}
	return s.Points
}

// Normalize projects the month and day of date onto referenceYear.
// February 29 cannot be projected onto a non-leap year and yields a DataError
// rather than rolling over into March.
func Normalize(date time.Time, referenceYear int) (time.Time, error) {
	date = date.UTC()
	_, m, d := date.Date()
	if m == time.February && d == 29 && !model.IsLeapYear(referenceYear) {
		return time.Time{}, model.NewDataError(date.Format(model.DateLayout),
			fmt.Sprintf("February 29 cannot be projected onto non-leap reference year %d", referenceYear))
	}
	return time.Date(referenceYear, m, d, 0, 0, 0, 0, time.UTC), nil
}

// ReferenceYearEnd returns December 31 of the reference year.
func ReferenceYearEnd(referenceYear int) time.Time {
	return time.Date(referenceYear, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// Bucket groups ds by year and computes the running total of each year on the
// default reference year. See BucketOnto.
func Bucket(ds *model.Dataset, currentYear int) (map[int]*YearSeries, error) {
	return BucketOnto(ds, currentYear, ReferenceYear)
}

// BucketOnto groups ds by year, projects each date onto referenceYear and computes a
// running total per year. Totals never carry across years.
//
// Years strictly before currentYear whose last point falls before the reference
// year's final day get one extra point on that day carrying the last total forward.
func BucketOnto(ds *model.Dataset, currentYear, referenceYear int) (map[int]*YearSeries, error) {
	type entry struct {
		date  time.Time
		miles float64
	}

	groups := make(map[int][]entry)
	seen := make(map[int]map[time.Time]struct{})
	for _, r := range ds.Records() {
		year := r.Date.Year()
		normalized, err := Normalize(r.Date, referenceYear)
		if err != nil {
			return nil, err
		}
		if seen[year] == nil {
			seen[year] = make(map[time.Time]struct{})
		}
		if _, dup := seen[year][normalized]; dup {
			return nil, model.NewDataError(r.Key(), "duplicate date within year")
		}
		seen[year][normalized] = struct{}{}
		groups[year] = append(groups[year], entry{date: normalized, miles: r.DistanceMiles})
	}

	yearEnd := ReferenceYearEnd(referenceYear)
	out := make(map[int]*YearSeries, len(groups))
	for year, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].date.Before(entries[j].date)
		})

		series := &YearSeries{Year: year, Points: make([]Point, 0, len(entries)+1)}
		var cumulative float64
		for _, e := range entries {
			cumulative += e.miles
			series.Points = append(series.Points, Point{Date: e.date, Cumulative: cumulative, SourceYear: year})
		}

		last := series.Points[len(series.Points)-1]
		if year < currentYear && last.Date.Before(yearEnd) {
			series.Points = append(series.Points, Point{Date: yearEnd, Cumulative: last.Cumulative, SourceYear: year})
			series.Padded = true
		}
		out[year] = series
	}
	return out, nil
}

// NewestFirst returns the years of m in descending order, the order used for legend
// entries and color assignment.
func NewestFirst(m map[int]*YearSeries) []int {
	years := make([]int, 0, len(m))
	for y := range m {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// MaxTotal returns the largest cumulative value across all series.
func MaxTotal(m map[int]*YearSeries) float64 {
	var max float64
	for _, s := range m {
		if t := s.Total(); t > max {
			max = t
		}
	}
	return max
}
