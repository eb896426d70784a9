// yearly.go
// Generates a multi-year GitHub-like daily heatmap as SVG.
package heatmap

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo"
	"github.com/google/uuid"

	"github.com/stsysd/milecal/calendar"
	"github.com/stsysd/milecal/colorscale"
	"github.com/stsysd/milecal/model"
)

// GenerateYearlyHeatmapSVG returns an SVG string with one block per grid, stacked in
// the given order, under a single color legend. It returns "" when grids is empty.
func GenerateYearlyHeatmapSVG(grids []*calendar.Grid, domain colorscale.Domain, opts *Options) string {
	var buf bytes.Buffer
	if err := RenderYears(&buf, grids, domain, opts); err != nil {
		return ""
	}
	return buf.String()
}

// RenderYears writes the heatmap of grids to w. Every block is colored against the same
// domain so intensities compare across years.
func RenderYears(w io.Writer, grids []*calendar.Grid, domain colorscale.Domain, opts *Options) error {
	// default options
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(grids) == 0 {
		return model.ErrEmptyData
	}

	cs := opts.cellSize()
	step := cs + opts.CellPadding
	weeks := weeksPerYear
	for _, g := range grids {
		if g.Weeks() > weeks {
			weeks = g.Weeks()
		}
	}

	// compute dimensions
	gridWidth := weeks * step
	blockHeight := calendar.DaysPerWeek * step
	width := gridWidth + labelGutter
	height := (blockHeight+yearSpacing)*len(grids) + legendHeight

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, height,
		fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height),
		`preserveAspectRatio="xMidYMid meet"`)
	canvas.Gstyle(fmt.Sprintf("font-family:%s;font-size:%dpx", opts.FontFamily, opts.FontSize))
	canvas.Gtransform(fmt.Sprintf("translate(30,%d)", legendHeight+10))

	renderLegend(canvas, domain, opts, gridWidth)

	for i, g := range grids {
		yOffset := i * (blockHeight + yearSpacing)
		renderYear(canvas, g, domain, opts, cs, step, yOffset)
	}

	canvas.Gend()
	canvas.Gend()
	canvas.End()

	_, err := w.Write(buf.Bytes())
	return err
}

func renderYear(canvas *svg.SVG, g *calendar.Grid, domain colorscale.Domain, opts *Options, cs, step, yOffset int) {
	canvas.Group(`class="year"`, fmt.Sprintf(`data-year="%d"`, g.Year))

	canvas.Text(0, yOffset-5, strconv.Itoa(g.Year),
		`class="year-label"`, `font-size="14px"`, `font-weight="bold"`)

	for i, name := range dayNames {
		canvas.Text(-10, i*step+cs+yOffset, name, `class="day-label"`, `text-anchor="end"`)
	}

	for _, c := range g.Cells {
		x := c.WeekIndex * step
		y := c.DayOfWeek*step + yOffset
		fill := colorscale.Hex(opts.Palette.CellColor(c, domain))
		stroke := "none"
		if !c.InTargetYear {
			stroke = "#f0f0f0"
		}
		key := c.Date.Format(model.DateLayout)

		// 各セルをgで囲み、title要素（ツールチップ）を添える
		canvas.Group(`class="day"`)
		canvas.Rect(x, y, cs, cs,
			fmt.Sprintf(`fill="%s"`, fill),
			fmt.Sprintf(`stroke="%s"`, stroke),
			`stroke-width="0.5"`,
			fmt.Sprintf(`data-date="%s"`, key),
			fmt.Sprintf(`data-value="%s"`, strconv.FormatFloat(c.Value, 'f', -1, 64)),
			fmt.Sprintf(`data-fill="%s"`, colorscale.Classify(c)))
		canvas.Title(fmt.Sprintf("%s: %.2f %s", c.Date.Format("Mon Jan 02 2006"), c.Value, opts.Unit))
		canvas.Gend()
	}

	// month labels
	labelY := calendar.DaysPerWeek*step + 15 + yOffset
	for _, mb := range g.Months {
		canvas.Text(mb.WeekIndex*step, labelY, monthNames[mb.Month-1], `class="month-label"`)
	}

	canvas.Gend()
}

// renderLegend draws the gradient bar, its value axis and the caption above the first year.
func renderLegend(canvas *svg.SVG, domain colorscale.Domain, opts *Options, gridWidth int) {
	// ids must stay unique when several heatmaps share one page
	gradientID := "milecal-gradient-" + uuid.NewString()

	stops := make([]svg.Offcolor, 0, gradientStops)
	for k := range gradientStops {
		t := float64(k) / float64(gradientStops-1)
		stops = append(stops, svg.Offcolor{
			Offset:  uint8(t * 100),
			Color:   colorscale.Hex(opts.Palette.ValueColor(t*domain.Max, domain)),
			Opacity: 1,
		})
	}
	canvas.Def()
	canvas.LinearGradient(gradientID, 0, 0, 100, 0, stops)
	canvas.DefEnd()

	canvas.Group(`class="legend"`,
		fmt.Sprintf(`transform="translate(%d,%d)"`, (gridWidth-legendWidth)/2, -legendHeight+5))
	canvas.Rect(0, 0, legendWidth, legendBar, fmt.Sprintf(`fill="url(#%s)"`, gradientID))

	for _, v := range colorscale.Ticks(domain, legendTicks) {
		x := int(domain.Intensity(v) * legendWidth)
		canvas.Line(x, legendBar, x, legendBar+6, `stroke="#000"`)
		canvas.Text(x, legendBar+16, strconv.FormatFloat(v, 'f', -1, 64),
			`class="legend-tick"`, `text-anchor="middle"`, `font-size="8px"`)
	}

	canvas.Text(legendWidth/2, -5, opts.LegendTitle, `class="legend-title"`, `text-anchor="middle"`)
	canvas.Gend()
}
