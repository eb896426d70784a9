package colorscale

import "math"

// TickStep returns a 1, 2 or 5 times power-of-ten step that splits [0, max] into
// roughly count intervals.
func TickStep(max float64, count int) float64 {
	if max <= 0 || count <= 0 {
		return 1
	}
	raw := max / float64(count)
	power := math.Floor(math.Log10(raw))
	base := math.Pow(10, power)
	ratio := raw / base

	factor := 1.0
	switch {
	case ratio >= math.Sqrt(50):
		factor = 10
	case ratio >= math.Sqrt(10):
		factor = 5
	case ratio >= math.Sqrt(2):
		factor = 2
	}
	return factor * base
}

// Ticks returns evenly spaced tick values from 0 up to the domain maximum.
func Ticks(d Domain, count int) []float64 {
	step := TickStep(d.Max, count)
	var out []float64
	// the tolerance keeps a tick that lands on Max despite float error
	for i := 0; float64(i)*step <= d.Max+step*1e-9; i++ {
		out = append(out, roundTo(float64(i)*step, step))
	}
	return out
}

// NiceMax extends max to the next multiple of its tick step.
func NiceMax(max float64, count int) float64 {
	if max <= 0 {
		return FallbackMax
	}
	step := TickStep(max, count)
	return math.Ceil(max/step-1e-9) * step
}

func roundTo(v, step float64) float64 {
	digits := math.Max(0, -math.Floor(math.Log10(step)))
	p := math.Pow(10, digits)
	return math.Round(v*p) / p
}
