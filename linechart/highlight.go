package linechart

// Highlight is the line chart's selection state: either nothing or one year stands out.
// The zero value is NoHighlight.
type Highlight struct {
	year   int
	active bool
}

// NoHighlight shows every year at full strength.
func NoHighlight() Highlight {
	return Highlight{}
}

// Highlighted emphasises year and dims the others.
func Highlighted(year int) Highlight {
	return Highlight{year: year, active: true}
}

// Year returns the highlighted year, if any.
func (h Highlight) Year() (int, bool) {
	return h.year, h.active
}

// Toggle returns the state after clicking year: clicking the highlighted year clears
// the highlight, clicking any other year moves it there.
func (h Highlight) Toggle(year int) Highlight {
	if h.active && h.year == year {
		return NoHighlight()
	}
	return Highlighted(year)
}

// Dims reports whether year is drawn faded.
func (h Highlight) Dims(year int) bool {
	return h.active && h.year != year
}

func (h Highlight) String() string {
	if !h.active {
		return "none"
	}
	return "highlighted"
}
