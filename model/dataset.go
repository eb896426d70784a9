package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"
)

// Dataset is the date-keyed running log as loaded from the input JSON.
// It is immutable after construction.
type Dataset struct {
	records map[string]DailyRecord
}

// NewDataset builds a dataset from records. Two records on the same day are a DataError.
func NewDataset(records []DailyRecord) (*Dataset, error) {
	m := make(map[string]DailyRecord, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		r.Date = TruncateToDay(r.Date)
		key := r.Key()
		if _, dup := m[key]; dup {
			return nil, NewDataError(key, "duplicate date")
		}
		m[key] = r
	}
	return &Dataset{records: m}, nil
}

// ParseDataset decodes the running log JSON. location is only used in error messages.
//
// Syntax errors are reported as FetchError, shape violations (non-object values,
// bad date keys, duplicate keys, negative distances) as DataError. A missing, null
// or non-numeric distance_miles counts as zero.
func ParseDataset(location string, r io.Reader) (*Dataset, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, NewFetchError(location, fmt.Errorf("failed to decode JSON: %w", err))
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, NewDataError("", "top-level value must be an object keyed by date")
	}

	records := make(map[string]DailyRecord)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, NewFetchError(location, fmt.Errorf("failed to decode JSON: %w", err))
		}
		key, ok := tok.(string)
		if !ok {
			return nil, NewFetchError(location, fmt.Errorf("unexpected token %v", tok))
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, NewFetchError(location, fmt.Errorf("failed to decode value for %q: %w", key, err))
		}

		if _, dup := records[key]; dup {
			return nil, NewDataError(key, "duplicate date")
		}

		rec, err := parseRecord(key, raw)
		if err != nil {
			return nil, err
		}
		records[key] = *rec
	}

	if _, err := dec.Token(); err != nil {
		return nil, NewFetchError(location, fmt.Errorf("failed to decode JSON: %w", err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, NewFetchError(location, errors.New("unexpected data after top-level object"))
	}

	return &Dataset{records: records}, nil
}

func parseRecord(key string, raw json.RawMessage) (*DailyRecord, error) {
	date, err := ParseDate(key)
	if err != nil {
		return nil, err
	}

	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return NewDailyRecord(date, 0)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, NewDataError(key, "record must be an object")
	}

	var miles float64
	if v, ok := fields["distance_miles"]; ok {
		if err := json.Unmarshal(v, &miles); err != nil {
			miles = 0
		}
	}
	return NewDailyRecord(date, miles)
}

// Len returns the number of recorded days.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// IsEmpty checks if the dataset holds no records.
func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}

// Lookup returns the record for the day of t.
func (d *Dataset) Lookup(t time.Time) (DailyRecord, bool) {
	if d == nil {
		return DailyRecord{}, false
	}
	r, ok := d.records[TruncateToDay(t).Format(DateLayout)]
	return r, ok
}

// Value returns the distance recorded on the day of t, or 0 when absent.
func (d *Dataset) Value(t time.Time) float64 {
	r, _ := d.Lookup(t)
	return r.DistanceMiles
}

// Records returns all records in ascending date order.
func (d *Dataset) Records() []DailyRecord {
	if d == nil {
		return nil
	}
	out := make([]DailyRecord, 0, len(d.records))
	for _, r := range d.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Years returns the distinct years with at least one record, ascending.
func (d *Dataset) Years() []int {
	if d == nil {
		return nil
	}
	seen := make(map[int]struct{})
	for _, r := range d.records {
		seen[r.Date.Year()] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// ValuesInYears returns the distances recorded within any of the given years,
// in ascending date order.
func (d *Dataset) ValuesInYears(years []int) []float64 {
	want := make(map[int]struct{}, len(years))
	for _, y := range years {
		want[y] = struct{}{}
	}
	var out []float64
	for _, r := range d.Records() {
		if _, ok := want[r.Date.Year()]; ok {
			out = append(out, r.DistanceMiles)
		}
	}
	return out
}

// MarshalJSON encodes the dataset in the running log format, newest day first.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	records := d.Records()
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if i < len(records)-1 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(r.Key())
		value, err := json.Marshal(map[string]float64{"distance_miles": r.DistanceMiles})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
