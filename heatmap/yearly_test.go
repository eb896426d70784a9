package heatmap

import (
	"errors"
	"strings"
	"testing"

	"github.com/stsysd/milecal/calendar"
	"github.com/stsysd/milecal/colorscale"
	"github.com/stsysd/milecal/model"
)

func layoutYears(t *testing.T, js string, years ...int) []*calendar.Grid {
	t.Helper()
	ds, err := model.ParseDataset("test.json", strings.NewReader(js))
	if err != nil {
		t.Fatalf("Failed to parse dataset: %v", err)
	}
	grids := make([]*calendar.Grid, 0, len(years))
	for _, y := range years {
		g, err := calendar.Layout(ds, y)
		if err != nil {
			t.Fatalf("Layout(%d) failed: %v", y, err)
		}
		grids = append(grids, g)
	}
	return grids
}

func TestGenerateYearlyHeatmapSVG_EmptyGrids(t *testing.T) {
	svg := GenerateYearlyHeatmapSVG(nil, colorscale.BuildDomain(nil), nil)

	if svg != "" {
		t.Errorf("Expected empty string for no grids, got: %s", svg)
	}

	err := RenderYears(&strings.Builder{}, nil, colorscale.BuildDomain(nil), nil)
	if !errors.Is(err, model.ErrEmptyData) {
		t.Errorf("Expected ErrEmptyData, got %v", err)
	}
}

func TestGenerateYearlyHeatmapSVG_WithData(t *testing.T) {
	grids := layoutYears(t, `{"2024-01-03": {"distance_miles": 2}, "2023-12-31": {"distance_miles": 4}}`, 2024)

	svg := GenerateYearlyHeatmapSVG(grids, colorscale.Domain{Max: 4}, nil)

	// SVGの基本構造を確認
	if !strings.Contains(svg, "<svg") || !strings.Contains(svg, "</svg>") {
		t.Fatal("Expected SVG document")
	}

	// 年ラベル
	if !strings.Contains(svg, ">2024</text>") {
		t.Error("Expected year label")
	}

	// 年内のセル
	if !strings.Contains(svg, `data-date="2024-01-03" data-value="2" data-fill="ramp"`) {
		t.Error("Expected ramp cell for 2024-01-03")
	}
	if !strings.Contains(svg, `data-date="2024-01-02" data-value="0" data-fill="zero"`) {
		t.Error("Expected zero cell for 2024-01-02")
	}

	// 前年のパディングセルは値があっても中立色
	if !strings.Contains(svg, `fill="#f8f9fa" stroke="#f0f0f0" stroke-width="0.5" data-date="2023-12-31" data-value="4" data-fill="out-of-year"`) {
		t.Error("Expected neutral padding cell for 2023-12-31")
	}

	// ツールチップ
	if !strings.Contains(svg, "<title>Wed Jan 03 2024: 2.00 miles</title>") {
		t.Error("Expected tooltip for 2024-01-03")
	}

	// 月と曜日のラベル
	for _, label := range []string{">Jan</text>", ">Dec</text>", ">Sun</text>", ">Sat</text>"} {
		if !strings.Contains(svg, label) {
			t.Errorf("Expected label %s", label)
		}
	}
}

func TestGenerateYearlyHeatmapSVG_CellCount(t *testing.T) {
	grids := layoutYears(t, `{}`, 2026, 2025)

	svg := GenerateYearlyHeatmapSVG(grids, colorscale.BuildDomain(nil), nil)

	want := len(grids[0].Cells) + len(grids[1].Cells)
	if got := strings.Count(svg, "data-date="); got != want {
		t.Errorf("Expected %d cells, got %d", want, got)
	}
	if strings.Count(svg, `class="year"`) != 2 {
		t.Error("Expected one block per year")
	}
	if strings.Index(svg, ">2026</text>") > strings.Index(svg, ">2025</text>") {
		t.Error("Expected blocks in the given order")
	}
}

func TestGenerateYearlyHeatmapSVG_Legend(t *testing.T) {
	grids := layoutYears(t, `{"2024-06-01": {"distance_miles": 13.1}}`, 2024)

	svg := GenerateYearlyHeatmapSVG(grids, colorscale.Domain{Max: 13.1}, nil)

	if !strings.Contains(svg, "Miles Run") {
		t.Error("Expected legend title")
	}
	if !strings.Contains(svg, `fill="url(#milecal-gradient-`) {
		t.Error("Expected gradient legend bar")
	}
	if strings.Count(svg, "<stop ") != gradientStops {
		t.Errorf("Expected %d gradient stops", gradientStops)
	}
	if !strings.Contains(svg, `>12</text>`) {
		t.Error("Expected legend tick 12")
	}
}

func TestGenerateYearlyHeatmapSVG_UniqueGradientIDs(t *testing.T) {
	grids := layoutYears(t, `{}`, 2024)
	domain := colorscale.BuildDomain(nil)

	a := GenerateYearlyHeatmapSVG(grids, domain, nil)
	b := GenerateYearlyHeatmapSVG(grids, domain, nil)

	idOf := func(s string) string {
		i := strings.Index(s, "milecal-gradient-")
		return s[i : i+len("milecal-gradient-")+36]
	}
	if idOf(a) == idOf(b) {
		t.Error("Expected distinct gradient ids per render")
	}
}

func TestOptions_CellSize(t *testing.T) {
	opts := DefaultOptions()
	if got := opts.cellSize(); got != 14 {
		t.Errorf("Derived cell size = %d, want 14", got)
	}

	opts.MaxWidth = 100
	if got := opts.cellSize(); got != opts.MinCellSize {
		t.Errorf("Derived cell size = %d, want min %d", got, opts.MinCellSize)
	}

	opts.CellSize = 12
	if got := opts.cellSize(); got != 12 {
		t.Errorf("Explicit cell size = %d, want 12", got)
	}
}
