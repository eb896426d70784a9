package heatmap

import (
	"github.com/stsysd/milecal/colorscale"
)

// Options configures rendering parameters.
type Options struct {
	CellSize    int    // size of each day cell (px); 0 derives it from MaxWidth
	CellPadding int    // padding between cells (px)
	FontSize    int    // font size for day and month labels (px)
	FontFamily  string // font family for labels
	MaxWidth    int    // target width of the cell area when CellSize is 0 (px)
	MinCellSize int    // lower bound for a derived CellSize (px)

	Palette     colorscale.Palette
	LegendTitle string // caption above the color legend
	Unit        string // unit shown in tooltips
}

// DefaultOptions mirrors the desktop layout: 53 weeks fitted into 900px.
func DefaultOptions() *Options {
	return &Options{
		CellPadding: 2,
		FontSize:    10,
		FontFamily:  "sans-serif",
		MaxWidth:    900,
		MinCellSize: 6,
		Palette:     colorscale.DefaultPalette,
		LegendTitle: "Miles Run",
		Unit:        "miles",
	}
}

const (
	weeksPerYear  = 53
	labelGutter   = 40 // room for the day labels left of the grid
	legendHeight  = 40 // band reserved for the legend above the first year
	legendWidth   = 200
	legendBar     = 10
	yearSpacing   = 70 // vertical space between two year blocks
	legendTicks   = 5
	gradientStops = 6
)

var (
	dayNames   = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

// cellSize resolves the cell size, deriving it from MaxWidth when unset.
func (o *Options) cellSize() int {
	if o.CellSize > 0 {
		return o.CellSize
	}
	available := float64(o.MaxWidth - labelGutter)
	size := int(available/weeksPerYear) - o.CellPadding
	if size < o.MinCellSize {
		size = o.MinCellSize
	}
	return size
}
