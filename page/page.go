// Package page is the host integration: it runs the cumulative and heatmap pipelines,
// turns failures into per-chart fallback messages and writes the HTML page.
package page

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/stsysd/milecal/bucket"
	"github.com/stsysd/milecal/calendar"
	"github.com/stsysd/milecal/colorscale"
	"github.com/stsysd/milecal/heatmap"
	"github.com/stsysd/milecal/linechart"
	"github.com/stsysd/milecal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// DatasetLoader fetches the running log. *source.Loader satisfies it.
type DatasetLoader interface {
	Load(ctx context.Context, location string) (*model.Dataset, error)
}

// Options selects what the page shows.
type Options struct {
	Location    string // data file path or URL
	Years       int    // trailing years in the heatmap
	CurrentYear int
	Highlight   linechart.Highlight
	Title       string
}

// Section is one chart area of the page: either an SVG or a fallback message.
type Section struct {
	ID      string
	Title   string
	File    string
	SVG     []byte
	Err     error
	Message string
}

// OK reports whether the chart rendered.
func (s Section) OK() bool {
	return s.Err == nil
}

// Inline returns the SVG for embedding in HTML, without the XML prolog.
func (s Section) Inline() template.HTML {
	svg := string(s.SVG)
	if i := strings.Index(svg, "<svg"); i > 0 {
		svg = svg[i:]
	}
	return template.HTML(svg)
}

// LegendEntry is one year of the cumulative chart legend.
type LegendEntry struct {
	Year        int
	Color       string
	Highlighted bool
	Dimmed      bool
}

// Page is the assembled result of both pipelines.
type Page struct {
	Title      string
	Cumulative Section
	Heatmap    Section
	Legend     []LegendEntry
}

// Builder runs the chart pipelines.
type Builder struct {
	loader DatasetLoader
}

// NewBuilder creates a builder fetching data through loader.
func NewBuilder(loader DatasetLoader) *Builder {
	return &Builder{loader: loader}
}

// Build runs both pipelines concurrently. A failing chart never affects the other;
// its section carries the error and a message for the reader instead of an SVG.
func (b *Builder) Build(ctx context.Context, opts Options) *Page {
	p := &Page{Title: opts.Title}
	if p.Title == "" {
		p.Title = "Running"
	}

	var g errgroup.Group
	g.Go(func() error {
		p.Cumulative, p.Legend = b.buildCumulative(ctx, opts)
		return nil
	})
	g.Go(func() error {
		p.Heatmap = b.buildHeatmap(ctx, opts)
		return nil
	})
	_ = g.Wait()

	return p
}

func (b *Builder) buildCumulative(ctx context.Context, opts Options) (Section, []LegendEntry) {
	sec := Section{ID: "cumulative-miles", Title: "Cumulative Miles", File: "cumulative.svg"}

	ds, err := b.loader.Load(ctx, opts.Location)
	if err != nil {
		return fail(sec, err), nil
	}

	series, err := bucket.Bucket(ds, opts.CurrentYear)
	if err != nil {
		return fail(sec, err), nil
	}

	var buf bytes.Buffer
	if err := linechart.Render(&buf, series, opts.Highlight, nil); err != nil {
		return fail(sec, err), nil
	}
	sec.SVG = buf.Bytes()

	colors := linechart.LegendColors(series, colorscale.Viridis)
	hlYear, hlActive := opts.Highlight.Year()
	legend := make([]LegendEntry, 0, len(series))
	for _, y := range bucket.NewestFirst(series) {
		legend = append(legend, LegendEntry{
			Year:        y,
			Color:       colorscale.Hex(colors[y]),
			Highlighted: hlActive && hlYear == y,
			Dimmed:      opts.Highlight.Dims(y),
		})
	}

	log.Debug().Int("years", len(series)).Msg("Rendered cumulative chart")
	return sec, legend
}

func (b *Builder) buildHeatmap(ctx context.Context, opts Options) Section {
	sec := Section{ID: "running-heatmap", Title: "Daily Miles", File: "heatmap.svg"}

	ds, err := b.loader.Load(ctx, opts.Location)
	if err != nil {
		return fail(sec, err)
	}

	years := model.TrailingYears(opts.CurrentYear, opts.Years)
	// one domain for every year, fixed before any grid is colored
	domain := colorscale.DomainForYears(ds, years)

	grids := make([]*calendar.Grid, 0, len(years))
	for _, y := range years {
		grid, err := calendar.Layout(ds, y)
		if err != nil {
			return fail(sec, fmt.Errorf("layout %d: %w", y, err))
		}
		grids = append(grids, grid)
	}

	var buf bytes.Buffer
	if err := heatmap.RenderYears(&buf, grids, domain, nil); err != nil {
		return fail(sec, err)
	}
	sec.SVG = buf.Bytes()

	log.Debug().Ints("years", years).Float64("max", domain.Max).Msg("Rendered heatmap")
	return sec
}

func fail(sec Section, err error) Section {
	sec.Err = err
	sec.Message = FallbackMessage(err)
	log.Warn().Err(err).Str("chart", sec.ID).Msg("Chart not rendered")
	return sec
}

// FallbackMessage is the text shown in place of a chart that could not be drawn.
func FallbackMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrEmptyData):
		return "No running data yet."
	case model.IsFetchError(err):
		return "Error loading running data. Please check the log for details."
	case model.IsDataError(err):
		return "The running data is malformed: " + err.Error()
	}
	return "This chart could not be rendered."
}

// WriteHTML renders the page.
func (p *Page) WriteHTML(w io.Writer) error {
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// WriteFiles writes index.html and the SVG of every rendered chart into dir and
// returns the written paths.
func (p *Page) WriteFiles(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for _, sec := range []Section{p.Cumulative, p.Heatmap} {
		if !sec.OK() {
			continue
		}
		path := filepath.Join(dir, sec.File)
		if err := os.WriteFile(path, sec.SVG, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", sec.File, err)
		}
		written = append(written, path)
	}

	var buf bytes.Buffer
	if err := p.WriteHTML(&buf); err != nil {
		return written, err
	}
	index := filepath.Join(dir, "index.html")
	if err := os.WriteFile(index, buf.Bytes(), 0644); err != nil {
		return written, fmt.Errorf("failed to write index.html: %w", err)
	}
	return append(written, index), nil
}
