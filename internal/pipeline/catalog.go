package pipeline

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/couchcryptid/severity-calendar/internal/domain"
)

var (
	// ErrUnknownSelection is returned when a source or city index is out of range.
	ErrUnknownSelection = errors.New("unknown selection")

	// ErrStaleSelection is returned when a newer selection superseded the
	// one being built. The result was discarded.
	ErrStaleSelection = errors.New("selection superseded")
)

// Catalog is the decoded sources.json with cities sorted for display.
type Catalog struct {
	Sources []domain.Source `json:"sources"`
}

// Lookup resolves a selection to its source and city.
func (c Catalog) Lookup(sel domain.Selection) (domain.Source, domain.City, error) {
	if sel.Source < 0 || sel.Source >= len(c.Sources) {
		return domain.Source{}, domain.City{}, fmt.Errorf("source %d: %w", sel.Source, ErrUnknownSelection)
	}
	src := c.Sources[sel.Source]
	if sel.City < 0 || sel.City >= len(src.Cities) {
		return domain.Source{}, domain.City{}, fmt.Errorf("source %d city %d: %w", sel.Source, sel.City, ErrUnknownSelection)
	}
	return src, src.Cities[sel.City], nil
}

// Selections lists every (source, city) pair in catalog order.
func (c Catalog) Selections() []domain.Selection {
	var out []domain.Selection
	for i, src := range c.Sources {
		for j := range src.Cities {
			out = append(out, domain.Selection{Source: i, City: j})
		}
	}
	return out
}

// sortCities orders each source's cities by their localized name using the
// locale's collation rules rather than code point order.
func sortCities(sources []domain.Source, locale string) {
	tag := language.Russian
	if locale == domain.LocaleEnglish {
		tag = language.English
	}
	col := collate.New(tag)
	for i := range sources {
		slices.SortStableFunc(sources[i].Cities, func(a, b domain.City) int {
			return col.CompareString(a.Name.In(locale), b.Name.In(locale))
		})
	}
}
