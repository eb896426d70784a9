// Package colorscale maps daily distances onto a color ramp shared by every year shown
// together, keeping "no value" and "outside the year" apart from small positive values.
package colorscale

import (
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/stsysd/milecal/calendar"
	"github.com/stsysd/milecal/model"
)

// FallbackMax is the domain maximum used when there is no positive value at all.
const FallbackMax = 10

// Domain is the [Min, Max] value range mapped onto the ramp. Min is always 0.
type Domain struct {
	Min float64
	Max float64
}

// BuildDomain returns [0, max(values)], or [0, FallbackMax] when no value is positive.
func BuildDomain(values []float64) Domain {
	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		max = FallbackMax
	}
	return Domain{Min: 0, Max: max}
}

// DomainForYears builds the shared domain from every recorded day of the given years.
func DomainForYears(ds *model.Dataset, years []int) Domain {
	return BuildDomain(ds.ValuesInYears(years))
}

// Intensity maps v linearly onto [0,1], clamping values outside the domain.
func (d Domain) Intensity(v float64) float64 {
	width := d.Max - d.Min
	if width <= 0 {
		return 0
	}
	return clamp01((v - d.Min) / width)
}

// Fill is how a grid cell is painted.
type Fill int

const (
	FillOutOfYear Fill = iota // padding day of an adjacent year
	FillZero                  // day in the year with no distance
	FillRamp                  // positive distance, colored by intensity
)

func (f Fill) String() string {
	switch f {
	case FillOutOfYear:
		return "out-of-year"
	case FillZero:
		return "zero"
	case FillRamp:
		return "ramp"
	}
	return "unknown"
}

// Classify decides the fill of a cell. Out-of-year cells never take the ramp,
// whatever their value.
func Classify(c calendar.Cell) Fill {
	if !c.InTargetYear {
		return FillOutOfYear
	}
	if c.Value > 0 {
		return FillRamp
	}
	return FillZero
}

// Palette holds the colors of the three fills.
type Palette struct {
	OutOfYear drawing.Color
	Zero      drawing.Color
	Ramp      Ramp

	// RampStart skips the palest part of the ramp so small values stay visible.
	RampStart float64
}

// DefaultPalette is the blue heatmap palette.
var DefaultPalette = Palette{
	OutOfYear: drawing.ColorFromHex("f8f9fa"),
	Zero:      drawing.ColorFromHex("ebedf0"),
	Ramp:      Blues,
	RampStart: 0.15,
}

// ValueColor returns the ramp color for a positive value.
func (p Palette) ValueColor(v float64, d Domain) drawing.Color {
	return p.Ramp.At(p.RampStart + d.Intensity(v)*(1-p.RampStart))
}

// CellColor returns the fill color of c.
func (p Palette) CellColor(c calendar.Cell, d Domain) drawing.Color {
	switch Classify(c) {
	case FillOutOfYear:
		return p.OutOfYear
	case FillZero:
		return p.Zero
	}
	return p.ValueColor(c.Value, d)
}
