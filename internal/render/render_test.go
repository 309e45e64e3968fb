package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/severity-calendar/internal/domain"
)

func testSources() []domain.Source {
	return []domain.Source{
		{
			Name: domain.Localized{"ru": "Омский ЦГМС", "en": "Omsk hydromet"},
			URL:  domain.SourceURL{Root: domain.Localized{"ru": "http://omsk.example/"}, Domain: "awc"},
			Type: domain.TypeAdvisory,
			Cities: []domain.City{
				{Name: domain.Localized{"ru": "Исилькуль"}, Path: "isilkul"},
				{Name: domain.Localized{"ru": "Омск"}, Path: "omsk"},
			},
			AccessedAt: domain.AccessTime{Time: time.Date(2021, 3, 5, 8, 7, 9, 0, time.UTC)},
		},
		{
			Name: domain.Localized{"ru": "Радиация"},
			URL:  domain.SourceURL{Domain: "br"},
			Type: domain.TypeRadiation,
		},
	}
}

func testSnapshot(t *testing.T) *domain.Snapshot {
	t.Helper()
	sources := testSources()
	records := []domain.IntervalRecord{
		{DateRange: []domain.Date{domain.NewDate(2019, 12, 31), domain.NewDate(2020, 1, 2)}, Level: 3, Path: "a"},
	}
	res := domain.Resolve(records, sources[0].URL.Root.In(domain.LocaleRussian))
	span, ok := res.Span()
	require.True(t, ok)

	return &domain.Snapshot{
		Selection: domain.Selection{Source: 0, City: 1},
		Source:    sources[0],
		City:      sources[0].Cities[1],
		Days:      res.Days,
		Span:      span,
		HasData:   true,
		WeekStart: domain.WeekStartMonday,
		Years:     domain.Layout(span, ok, domain.WeekStartMonday),
	}
}

func TestRender_Snapshot(t *testing.T) {
	omsk := time.FixedZone("OMST", 6*60*60)
	r := New(domain.NewPalette(), domain.LocaleRussian, omsk)
	snap := testSnapshot(t)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, testSources(), snap.Selection, snap))
	out := buf.String()

	assert.Equal(t, 2, strings.Count(out, "<svg"))
	assert.Less(t, strings.Index(out, `data-year="2020"`), strings.Index(out, `data-year="2019"`), "newest year first")
	assert.Equal(t, 365+366, strings.Count(out, "<rect"))
	assert.Equal(t, 3, strings.Count(out, "<title>")-1, "one tooltip per covered day")

	assert.Contains(t, out, `<title>02.01.2020: НМУ 3 степени опасности</title>`)
	assert.Contains(t, out, `fill="#F44336"`)
	assert.Contains(t, out, `href="http://omsk.example/a"`)
	assert.Contains(t, out, `<path d="M90,90H72V126H144V108H162V0H90Z"></path>`)
	assert.Contains(t, out, `>февр.</text>`)
	assert.Contains(t, out, `width="1006" height="153"`)
	assert.Contains(t, out, `(Последнее обращение: 05.03.2021, 14:07:09)`)
	assert.Contains(t, out, `<option value="1" selected>Омск</option>`)
	assert.Contains(t, out, `<option value="0" selected>Омский ЦГМС</option>`)
	assert.NotContains(t, out, "Нет данных")
}

func TestPage_ViewModel(t *testing.T) {
	r := New(domain.NewPalette(), domain.LocaleRussian, nil)
	snap := testSnapshot(t)

	p := r.Page(testSources(), snap.Selection, snap)
	require.Len(t, p.Years, 2)
	assert.Equal(t, 2020, p.Years[0].Year)
	require.Len(t, p.Years[0].Months, 12)
	assert.Equal(t, "янв.", p.Years[0].Months[0].Label)
	assert.InDelta(t, 126, p.Years[0].Months[1].LabelX, 0)

	// 2020-01-01 is a Wednesday: column 0, row 2 with Monday weeks.
	first := p.Years[0].Cells[0]
	assert.Equal(t, CellView{X: 0, Y: 36, Fill: "#F44336", Title: "01.01.2020: НМУ 3 степени опасности", URL: "http://omsk.example/a"}, first)
	assert.Empty(t, p.Years[0].Cells[3].Fill)

	assert.Equal(t, "—", p.Sources[1].AccessedAt)
	assert.Len(t, p.Cities, 2)
	assert.InDelta(t, 63, p.CaptionY, 0)
}

func TestRender_NoSnapshot(t *testing.T) {
	r := New(domain.NewPalette(), domain.LocaleEnglish, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, testSources(), domain.Selection{Source: 1}, nil))
	out := buf.String()

	assert.NotContains(t, out, "<svg")
	assert.Contains(t, out, "No data")
	assert.Contains(t, out, `<option value="1" selected>Радиация</option>`)
	assert.Contains(t, out, `<a href="http://omsk.example/" target="_blank">Omsk hydromet</a>`)
	assert.Contains(t, out, "(Last accessed: 2021-03-05 08:07:09)")
}
