// Package linechart draws the cumulative distance of each year as one line on a shared
// January..December axis.
package linechart

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/stsysd/milecal/bucket"
	"github.com/stsysd/milecal/colorscale"
	"github.com/stsysd/milecal/model"
)

// Options configures the chart.
type Options struct {
	Width         int
	Height        int
	Padding       chart.Box
	ReferenceYear int
	Ramp          colorscale.Ramp
	StrokeWidth   float64
	DimAlpha      uint8 // alpha of the years that are not highlighted
	YTicks        int
}

// DefaultOptions returns the 800x400 layout with a right margin for the legend.
func DefaultOptions() *Options {
	return &Options{
		Width:         800,
		Height:        400,
		Padding:       chart.Box{Top: 40, Right: 60, Bottom: 60, Left: 50},
		ReferenceYear: bucket.ReferenceYear,
		Ramp:          colorscale.Viridis,
		StrokeWidth:   2,
		DimAlpha:      51,
		YTicks:        10,
	}
}

// Render writes the cumulative chart of series as SVG. Lines are colored by their
// position in newest-first order. It returns model.ErrEmptyData when there is no series.
func Render(w io.Writer, series map[int]*bucket.YearSeries, hl Highlight, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(series) == 0 {
		return model.ErrEmptyData
	}

	lines := buildSeries(series, hl, opts)
	chartSeries := make([]chart.Series, 0, len(lines))
	for _, l := range lines {
		chartSeries = append(chartSeries, l)
	}

	start := time.Date(opts.ReferenceYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := bucket.ReferenceYearEnd(opts.ReferenceYear)

	graph := chart.Chart{
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: opts.Padding,
		},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(start),
				Max: chart.TimeToFloat64(end),
			},
			Ticks: monthTicks(opts.ReferenceYear),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: colorscale.NiceMax(bucket.MaxTotal(series), opts.YTicks),
			},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return strconv.FormatFloat(f, 'f', 0, 64)
				}
				return ""
			},
		},
		Series: chartSeries,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("chart render failed: %w", err)
	}
	return nil
}

// buildSeries turns each year into a time series, newest year first.
func buildSeries(series map[int]*bucket.YearSeries, hl Highlight, opts *Options) []chart.TimeSeries {
	years := bucket.NewestFirst(series)
	out := make([]chart.TimeSeries, 0, len(years))
	for i, year := range years {
		s := series[year]
		xs := make([]time.Time, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j] = p.Date
			ys[j] = p.Cumulative
		}

		color := opts.Ramp.Index(i, len(years))
		width := opts.StrokeWidth
		if hl.Dims(year) {
			color = color.WithAlpha(opts.DimAlpha)
		} else if _, ok := hl.Year(); ok {
			width++
		}

		out = append(out, chart.TimeSeries{
			Name: strconv.Itoa(year),
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: width,
			},
			XValues: xs,
			YValues: ys,
		})
	}
	return out
}

// monthTicks labels the first day of each month of the reference year.
func monthTicks(referenceYear int) []chart.Tick {
	ticks := make([]chart.Tick, 0, 12)
	for m := time.January; m <= time.December; m++ {
		t := time.Date(referenceYear, m, 1, 0, 0, 0, 0, time.UTC)
		ticks = append(ticks, chart.Tick{
			Value: chart.TimeToFloat64(t),
			Label: t.Format("Jan"),
		})
	}
	return ticks
}

// LegendColors returns the color of each year in newest-first order, for host pages
// that draw their own legend.
func LegendColors(series map[int]*bucket.YearSeries, ramp colorscale.Ramp) map[int]drawing.Color {
	years := bucket.NewestFirst(series)
	out := make(map[int]drawing.Color, len(years))
	for i, y := range years {
		out[y] = ramp.Index(i, len(years))
	}
	return out
}
