// Package sample generates a plausible running log for demos and screenshots.
package sample

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/stsysd/milecal/model"
)

// Generate creates running data for every day from from through to.
// The same seed always yields the same log.
func Generate(from, to time.Time, seed uint64) (*model.Dataset, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var records []model.DailyRecord
	to = model.TruncateToDay(to)
	for day := model.TruncateToDay(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		miles := dailyMiles(rng, day)
		if miles == 0 {
			continue
		}
		rec, err := model.NewDailyRecord(day, miles)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return model.NewDataset(records)
}

// GenerateYears creates a log for the given years, ending at until for the year in progress.
func GenerateYears(years []int, until time.Time, seed uint64) (*model.Dataset, error) {
	if len(years) == 0 {
		return model.NewDataset(nil)
	}
	first, last := years[0], years[0]
	for _, y := range years {
		first = min(first, y)
		last = max(last, y)
	}
	end := time.Date(last, time.December, 31, 0, 0, 0, 0, time.UTC)
	if until.Before(end) {
		end = until
	}
	return Generate(time.Date(first, time.January, 1, 0, 0, 0, 0, time.UTC), end, seed)
}

func dailyMiles(rng *rand.Rand, day time.Time) float64 {
	var miles float64
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		// 週末は長めに走る
		if rng.IntN(10) < 7 {
			miles = 5 + rng.Float64()*8
		}
	default:
		if rng.IntN(10) < 5 {
			miles = 2 + rng.Float64()*4
		}
	}

	// たまにレース
	if rng.IntN(90) == 0 {
		if rng.IntN(3) == 0 {
			miles = 26.2
		} else {
			miles = 13.1
		}
	}
	return math.Round(miles*100) / 100
}
