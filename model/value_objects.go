// Package model provides value objects for calendar handling.
package model

import (
	"fmt"
	"time"
)

// DateLayout is the ISO-8601 date-only layout used for dataset keys.
const DateLayout = "2006-01-02"

// MinYear and MaxYear bound the years a calendar can be laid out for.
const (
	MinYear = 1
	MaxYear = 9999
)

// ParseDate parses a YYYY-MM-DD key into a UTC midnight time.
func ParseDate(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, NewDataError(key, "unparseable date, use YYYY-MM-DD")
	}
	return t, nil
}

// TruncateToDay zeroes the time component and pins the date to UTC.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsLeapYear reports whether year has a February 29.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Year represents a validated calendar year value object.
type Year struct {
	value int
}

// NewYear creates a new year value object.
func NewYear(year int) (*Year, error) {
	if year < MinYear || year > MaxYear {
		return nil, NewDataError("", fmt.Sprintf("year %d is out of range %d..%d", year, MinYear, MaxYear))
	}
	return &Year{value: year}, nil
}

// Int returns the year number.
func (y *Year) Int() int {
	return y.value
}

// Start returns January 1 of the year.
func (y *Year) Start() time.Time {
	return time.Date(y.value, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// End returns December 31 of the year.
func (y *Year) End() time.Time {
	return time.Date(y.value, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// Contains checks if t falls on a day of the year.
func (y *Year) Contains(t time.Time) bool {
	return t.UTC().Year() == y.value
}

// TrailingYears returns n years ending at current, newest first.
func TrailingYears(current, n int) []int {
	if n <= 0 {
		return nil
	}
	years := make([]int, 0, n)
	for i := range n {
		years = append(years, current-i)
	}
	return years
}
