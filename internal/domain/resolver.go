package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingDateRange marks a record without both range bounds.
	ErrMissingDateRange = errors.New("missing date range")

	// ErrInvertedDateRange marks a record whose end precedes its start.
	ErrInvertedDateRange = errors.New("date range ends before it starts")

	// ErrInvalidDate marks a record with a range bound that is not a date.
	ErrInvalidDate = errors.New("invalid date")
)

// RecordIssue describes an input record the resolver skipped.
type RecordIssue struct {
	Index int
	Err   error
}

func (i RecordIssue) Error() string {
	return fmt.Sprintf("record %d: %v", i.Index, i.Err)
}

func (i RecordIssue) Unwrap() error { return i.Err }

func (i RecordIssue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index  int    `json:"index"`
		Reason string `json:"reason"`
	}{Index: i.Index, Reason: i.Err.Error()})
}

// Resolution is the outcome of resolving a dataset.
type Resolution struct {
	Days    DayValues
	Skipped []RecordIssue

	span   Span
	hasAny bool
}

// Span returns the first start and last end over all well-formed records.
// ok is false when no record was usable.
func (r Resolution) Span() (Span, bool) {
	return r.span, r.hasAny
}

// ValidateRecord reports why a record cannot be expanded, or nil.
func ValidateRecord(rec IntervalRecord) error {
	if rec.dateErr != nil {
		return rec.dateErr
	}
	if len(rec.DateRange) < 2 || rec.Start().IsZero() || rec.End().IsZero() {
		return ErrMissingDateRange
	}
	if rec.End().Before(rec.Start()) {
		return fmt.Errorf("%w: %s..%s", ErrInvertedDateRange, rec.Start(), rec.End())
	}
	return nil
}

// Resolve expands interval records into one value per covered day. Where
// records overlap the highest level wins; among equal levels the record that
// comes later in the input wins. Malformed records are skipped and reported.
// detailRoot is prefixed to each record's path to build the day's detail URL.
//
// Resolve keeps no state between calls and never modifies records.
func Resolve(records []IntervalRecord, detailRoot string) Resolution {
	res := Resolution{Days: make(DayValues)}

	for i, rec := range records {
		if err := ValidateRecord(rec); err != nil {
			res.Skipped = append(res.Skipped, RecordIssue{Index: i, Err: err})
			continue
		}

		start, end := rec.Start(), rec.End()
		res.extendSpan(start, end)

		url := detailRoot + rec.Path
		for d := start; !d.After(end); d = d.AddDays(1) {
			if cur, ok := res.Days[d]; ok && cur.Level > rec.Level {
				continue
			}
			res.Days[d] = DayValue{Date: d, Level: rec.Level, URL: url}
		}
	}

	return res
}

func (r *Resolution) extendSpan(start, end Date) {
	if !r.hasAny {
		r.span = Span{Start: start, End: end}
		r.hasAny = true
		return
	}
	if start.Before(r.span.Start) {
		r.span.Start = start
	}
	if end.After(r.span.End) {
		r.span.End = end
	}
}

// SpanOf returns the first start and last end over the well-formed records
// without expanding them. ok is false when none is usable.
func SpanOf(records []IntervalRecord) (Span, bool) {
	var r Resolution
	for _, rec := range records {
		if ValidateRecord(rec) == nil {
			r.extendSpan(rec.Start(), rec.End())
		}
	}
	return r.Span()
}
