// Package domain turns published severity intervals into calendar heatmaps.
//
// # Data Sources
//
// A catalog document (sources.json) lists publishers. Each publisher carries
// a type tag, a public site root, a dataset domain and the cities it covers:
//
//	{"name": {"ru": "..."}, "url": {"root": {"ru": "https://..."}, "domain": "meteo"},
//	 "type": "awc", "cities": [{"name": {"ru": "..."}, "path": "omsk"}], "atime": "..."}
//
// The records of one city live at "<domain>/<path>.json":
//
//	[{"daterange": ["2020-01-01", "2020-01-03"], "level": 1, "path": "/news/123"}, ...]
//
// Records arrive in no particular order and may overlap.
//
// # Source Types
//
//	awc  adverse weather conditions (НМУ) advisory levels 0-3
//	br   background radiation readings, 0-100 µR/h
//
// Any other tag is drawn as present/absent.
//
// # Resolution
//
// [Resolve] expands each record into the days it covers, inclusive of both
// ends. Overlapping days keep the highest level; for equal levels the record
// listed later wins. Records with a missing or inverted range are skipped and
// reported rather than failing the whole dataset.
//
// # Layout
//
// A year grid has one column per week and one row per weekday. [WeekIndex]
// counts week start days after January 1 up to and including the day, so
// the grid opens a new column on every week start. The week start is
// configurable; Monday is the default for the deployment.
package domain
