package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SourceType selects the color scale and tooltip wording for a source.
type SourceType string

const (
	TypeAdvisory  SourceType = "awc" // adverse weather conditions advisory levels
	TypeRadiation SourceType = "br"  // background radiation readings
	TypeDefault   SourceType = ""
)

// Localized holds a display string per language tag ("ru", "en").
type Localized map[string]string

// In returns the text for locale, falling back to Russian and then to any
// available translation.
func (l Localized) In(locale string) string {
	if s, ok := l[locale]; ok && s != "" {
		return s
	}
	if s, ok := l[DefaultLocale]; ok && s != "" {
		return s
	}
	for _, s := range l {
		if s != "" {
			return s
		}
	}
	return ""
}

// SourceURL locates a source's public site and its dataset directory.
type SourceURL struct {
	Root   Localized `json:"root"`
	Domain string    `json:"domain"`
}

// Source is a data publisher listed in sources.json.
type Source struct {
	Name       Localized  `json:"name"`
	URL        SourceURL  `json:"url"`
	Type       SourceType `json:"type,omitempty"`
	Cities     []City     `json:"cities"`
	AccessedAt AccessTime `json:"atime"`
}

// City is a location a source publishes a dataset for.
type City struct {
	Name Localized `json:"name"`
	Path string    `json:"path"`
}

// AccessTime is the last time a source was scraped. The documents carry
// either an RFC 3339 string or epoch milliseconds.
type AccessTime struct {
	time.Time
}

func (a AccessTime) MarshalJSON() ([]byte, error) {
	if a.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(a.UTC().Format(time.RFC3339))
}

func (a *AccessTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = AccessTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s == "" {
			*a = AccessTime{}
			return nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parse atime %q: %w", s, err)
		}
		a.Time = t
		return nil
	}
	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("parse atime %s: %w", b, err)
	}
	a.Time = time.UnixMilli(ms).UTC()
	return nil
}

// IntervalRecord is one entry of a city dataset: a severity level that held
// over an inclusive range of days.
type IntervalRecord struct {
	DateRange []Date `json:"daterange"`
	Level     int    `json:"level"`
	Path      string `json:"path"`

	// dateErr holds the first range bound that failed to parse.
	dateErr error
}

// UnmarshalJSON decodes a record whose range bounds may be unparseable. A
// bad bound is left zero and reported by ValidateRecord, so one broken
// record never rejects the whole dataset.
func (r *IntervalRecord) UnmarshalJSON(b []byte) error {
	var raw struct {
		DateRange json.RawMessage `json:"daterange"`
		Level     int             `json:"level"`
		Path      string          `json:"path"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = IntervalRecord{Level: raw.Level, Path: raw.Path}
	if len(raw.DateRange) == 0 || string(raw.DateRange) == "null" {
		return nil
	}

	var bounds []json.RawMessage
	if err := json.Unmarshal(raw.DateRange, &bounds); err != nil {
		r.dateErr = fmt.Errorf("%w: daterange %s", ErrInvalidDate, raw.DateRange)
		return nil
	}
	r.DateRange = make([]Date, len(bounds))
	for i, bound := range bounds {
		if string(bound) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(bound, &s); err != nil {
			r.setDateErr(fmt.Errorf("%w: %s", ErrInvalidDate, bound))
			continue
		}
		d, err := ParseDate(s)
		if err != nil {
			r.setDateErr(fmt.Errorf("%w: %w", ErrInvalidDate, err))
			continue
		}
		r.DateRange[i] = d
	}
	return nil
}

func (r *IntervalRecord) setDateErr(err error) {
	if r.dateErr == nil {
		r.dateErr = err
	}
}

// Start returns the first day of the range, or the zero Date when missing.
func (r IntervalRecord) Start() Date {
	if len(r.DateRange) < 1 {
		return Date{}
	}
	return r.DateRange[0]
}

// End returns the last day of the range, or the zero Date when missing.
func (r IntervalRecord) End() Date {
	if len(r.DateRange) < 2 {
		return Date{}
	}
	return r.DateRange[1]
}

// DayValue is the resolved severity of a single day.
type DayValue struct {
	Date  Date   `json:"date"`
	Level int    `json:"level"`
	URL   string `json:"url"`
}

// DayValues maps each covered day to its resolved value.
type DayValues map[Date]DayValue

// Sorted returns the values in date order.
func (v DayValues) Sorted() []DayValue {
	out := make([]DayValue, 0, len(v))
	for _, dv := range v {
		out = append(out, dv)
	}
	slices.SortFunc(out, func(a, b DayValue) int { return a.Date.Compare(b.Date) })
	return out
}

// Span is an inclusive range of days.
type Span struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Selection addresses a city of a source by catalog position.
type Selection struct {
	Source int `json:"source"`
	City   int `json:"city"`
}

// Snapshot is the immutable output of one selection change.
type Snapshot struct {
	ID        uuid.UUID     `json:"id"`
	Selection Selection     `json:"selection"`
	Source    Source        `json:"source"`
	City      City          `json:"city"`
	Days      DayValues     `json:"-"`
	Span      Span          `json:"span"`
	HasData   bool          `json:"has_data"`
	WeekStart WeekStart     `json:"week_start"`
	Years     []YearGrid    `json:"years"`
	Skipped   []RecordIssue `json:"skipped,omitempty"`
	BuiltAt   time.Time     `json:"built_at"`
}

// SortedDays returns the snapshot's day values in date order.
func (s *Snapshot) SortedDays() []DayValue {
	return s.Days.Sorted()
}
