package colorscale

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Ramp is a continuous color ramp sampled at evenly spaced stops.
type Ramp []drawing.Color

func rampFromHex(stops ...string) Ramp {
	r := make(Ramp, len(stops))
	for i, s := range stops {
		r[i] = drawing.ColorFromHex(s)
	}
	return r
}

var (
	// Blues runs from near-white to dark blue.
	Blues = rampFromHex("f7fbff", "deebf7", "c6dbef", "9ecae1", "6baed6", "4292c6", "2171b5", "08519c", "08306b")

	// Viridis runs from dark purple through teal to yellow.
	Viridis = rampFromHex("440154", "482878", "3e4989", "31688e", "26828e", "1f9e89", "35b779", "6ece58", "b5de2b", "fde725")
)

// At returns the color at t in [0,1], linearly interpolated between neighbouring stops.
func (r Ramp) At(t float64) drawing.Color {
	switch len(r) {
	case 0:
		return drawing.ColorBlack
	case 1:
		return r[0]
	}
	t = clamp01(t)
	pos := t * float64(len(r)-1)
	i := int(math.Floor(pos))
	if i >= len(r)-1 {
		return r[len(r)-1]
	}
	frac := pos - float64(i)
	a, b := r[i], r[i+1]
	return drawing.Color{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
		A: 255,
	}
}

// Index returns the color for item i of n, spread over the whole ramp.
func (r Ramp) Index(i, n int) drawing.Color {
	if n <= 1 {
		return r.At(0)
	}
	return r.At(float64(i) / float64(n-1))
}

// Hex formats c as #rrggbb.
func Hex(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func clamp01(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
