// Package render draws the calendar heatmap as an HTML page with one inline
// SVG per year.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/couchcryptid/severity-calendar/internal/domain"
)

// Grid geometry in pixels.
const (
	CellSize   = 18
	OffsetLeft = 25
	OffsetTop  = 25
	Width      = OffsetLeft*2 + CellSize*53 + 2
	Height     = OffsetTop + CellSize*7 + 2
)

//go:embed page.gohtml
var pageTemplate string

var tmpl = template.Must(template.New("page").Parse(pageTemplate))

// Captions are the page's fixed strings in one locale.
type Captions struct {
	Title    string
	Source   string
	City     string
	Show     string
	Accessed string
	NoData   string
	Skipped  string
}

var captionsByLocale = map[string]Captions{
	domain.LocaleRussian: {
		Title:    "Календарь неблагоприятных условий",
		Source:   "Источник",
		City:     "Город",
		Show:     "Показать",
		Accessed: "Последнее обращение",
		NoData:   "Нет данных",
		Skipped:  "Пропущено некорректных записей",
	},
	domain.LocaleEnglish: {
		Title:    "Severity calendar",
		Source:   "Source",
		City:     "City",
		Show:     "Show",
		Accessed: "Last accessed",
		NoData:   "No data",
		Skipped:  "Malformed records skipped",
	},
}

// Page is the view model the template renders.
type Page struct {
	Locale  string
	Text    Captions
	Sources []SourceOption
	Cities  []Option
	Years   []YearView
	HasData bool
	Skipped int

	Width      int
	Height     int
	OffsetLeft int
	OffsetTop  int
	CellSize   int
	CaptionY   float64
}

// Option is one entry of a selector.
type Option struct {
	Index    int
	Name     string
	Selected bool
}

// SourceOption is a source selector entry plus its attribution line.
type SourceOption struct {
	Option
	URL        string
	AccessedAt string
}

// YearView is one year's SVG.
type YearView struct {
	Year   int
	Months []MonthView
	Cells  []CellView
}

// MonthView is a month caption and outline.
type MonthView struct {
	Label  string
	LabelX float64
	Path   string
}

// CellView is a day square. Covered days carry a fill, tooltip and link.
type CellView struct {
	X, Y  int
	Fill  string
	Title string
	URL   string
}

// Renderer turns snapshots into pages.
type Renderer struct {
	palette *domain.Palette
	locale  string
	tz      *time.Location
}

// New creates a Renderer. tz is used for the sources' last access times.
func New(palette *domain.Palette, locale string, tz *time.Location) *Renderer {
	if tz == nil {
		tz = time.UTC
	}
	return &Renderer{palette: palette, locale: locale, tz: tz}
}

// Render writes the page for sel. snap may be nil when the selected source
// has no cities.
func (r *Renderer) Render(w io.Writer, sources []domain.Source, sel domain.Selection, snap *domain.Snapshot) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r.Page(sources, sel, snap)); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Page builds the view model. Years are listed newest first.
func (r *Renderer) Page(sources []domain.Source, sel domain.Selection, snap *domain.Snapshot) Page {
	text, ok := captionsByLocale[r.locale]
	if !ok {
		text = captionsByLocale[domain.DefaultLocale]
	}

	p := Page{
		Locale:     r.locale,
		Text:       text,
		Width:      Width,
		Height:     Height,
		OffsetLeft: OffsetLeft,
		OffsetTop:  OffsetTop,
		CellSize:   CellSize,
		CaptionY:   CellSize * 3.5,
	}

	for i, src := range sources {
		p.Sources = append(p.Sources, SourceOption{
			Option:     Option{Index: i, Name: src.Name.In(r.locale), Selected: i == sel.Source},
			URL:        src.URL.Root.In(r.locale),
			AccessedAt: domain.FormatTimestamp(src.AccessedAt.Time, r.tz, r.locale),
		})
	}
	if sel.Source >= 0 && sel.Source < len(sources) {
		for j, city := range sources[sel.Source].Cities {
			p.Cities = append(p.Cities, Option{Index: j, Name: city.Name.In(r.locale), Selected: j == sel.City})
		}
	}

	if snap == nil {
		return p
	}
	p.HasData = snap.HasData
	p.Skipped = len(snap.Skipped)
	for i := len(snap.Years) - 1; i >= 0; i-- {
		p.Years = append(p.Years, r.year(snap, snap.Years[i]))
	}
	return p
}

func (r *Renderer) year(snap *domain.Snapshot, g domain.YearGrid) YearView {
	yv := YearView{
		Year:   g.Year,
		Months: make([]MonthView, 0, len(g.Months)),
		Cells:  make([]CellView, 0, len(g.Cells)),
	}
	for _, m := range g.Months {
		yv.Months = append(yv.Months, MonthView{
			Label:  domain.MonthShort(m.Month, r.locale),
			LabelX: m.LabelX(CellSize),
			Path:   m.Path(CellSize),
		})
	}
	for _, c := range g.Cells {
		cv := CellView{X: c.Column * CellSize, Y: c.Row * CellSize}
		if dv, ok := snap.Days[c.Date]; ok {
			cv.Fill = r.palette.ColorFor(snap.Source.Type, dv.Level)
			cv.Title = r.palette.LabelFor(snap.Source.Type, c.Date, dv.Level, r.locale)
			cv.URL = dv.URL
		}
		yv.Cells = append(yv.Cells, cv)
	}
	return yv
}
