// Command genmock generates a deterministic mock data directory: a
// sources.json catalog plus one interval dataset per city. It resolves every
// generated dataset through the domain package so the printed statistics
// match what the service will render.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -years 2
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/severity-calendar/internal/domain"
	"github.com/jonboulle/clockwork"
)

var baseDate = time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

type cityDef struct {
	path string
	ru   string
	en   string
}

type sourceDef struct {
	domain string
	ru     string
	en     string
	typ    domain.SourceType
	levels int // exclusive upper bound of generated levels
	cities []cityDef
}

var defs = []sourceDef{
	{
		domain: "omsk-meteo",
		ru:     "Омский ЦГМС",
		en:     "Omsk hydromet",
		typ:    domain.TypeAdvisory,
		levels: 4,
		cities: []cityDef{
			{path: "omsk", ru: "Омск", en: "Omsk"},
			{path: "tara", ru: "Тара", en: "Tara"},
			{path: "isilkul", ru: "Исилькуль", en: "Isilkul"},
			{path: "yoltsovka", ru: "Ёлцовка", en: "Yoltsovka"},
		},
	},
	{
		domain: "rad-monitor",
		ru:     "Радиационный мониторинг",
		en:     "Radiation monitoring",
		typ:    domain.TypeRadiation,
		levels: 101,
		cities: []cityDef{
			{path: "omsk", ru: "Омск", en: "Omsk"},
			{path: "regions/kalachinsk", ru: "Калачинск", en: "Kalachinsk"},
		},
	},
	{
		domain: "misc",
		ru:     "Прочие наблюдения",
		en:     "Other observations",
		typ:    domain.TypeDefault,
		levels: 2,
		cities: []cityDef{
			{path: "omsk", ru: "Омск", en: "Omsk"},
		},
	},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output data directory")
	years := flag.Int("years", 2, "number of years of data per city, ending at the base date")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" || *years < 1 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -years >= 1")
	}

	// Set a fixed clock for reproducible access timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.January, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	start := domain.DateOf(baseDate).AddDays(-365*(*years) + 1)
	end := domain.DateOf(baseDate)

	sources := make([]domain.Source, 0, len(defs))
	for _, d := range defs {
		src := domain.Source{
			Name: domain.Localized{"ru": d.ru, "en": d.en},
			URL: domain.SourceURL{
				Root:   domain.Localized{"ru": "https://" + d.domain + ".example/"},
				Domain: d.domain,
			},
			Type:       d.typ,
			AccessedAt: domain.AccessTime{Time: domain.Now().UTC()},
		}

		for _, c := range d.cities {
			city := domain.City{Name: domain.Localized{"ru": c.ru, "en": c.en}, Path: c.path}
			src.Cities = append(src.Cities, city)

			records := generate(rng, start, end, d.levels)
			path := filepath.Join(*out, filepath.FromSlash(domain.DatasetDocument(src, city)))
			if err := writeJSON(path, records); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			printStats(d.domain+"/"+c.path, records)
		}
		sources = append(sources, src)
	}

	catalogPath := filepath.Join(*out, domain.SourcesDocument)
	if err := writeJSON(catalogPath, sources); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	log.Printf("wrote catalog: %s (%d sources)", catalogPath, len(sources))
	return nil
}

// generate emits non-overlapping quiet stretches interleaved with episodes
// of elevated level, plus an occasional overlapping record so the resolver's
// tie-breaking is exercised.
func generate(rng *rand.Rand, start, end domain.Date, levels int) []domain.IntervalRecord {
	var records []domain.IntervalRecord
	day := start
	for !day.After(end) {
		length := 1 + rng.IntN(5)
		last := day.AddDays(length - 1)
		if last.After(end) {
			last = end
		}

		level := 0
		if rng.IntN(3) == 0 {
			level = 1 + rng.IntN(levels-1)
		}
		records = append(records, record(day, last, level))

		if level > 0 && rng.IntN(10) == 0 {
			records = append(records, record(day, day, 1+rng.IntN(levels-1)))
		}
		day = last.AddDays(1 + rng.IntN(3))
	}
	return records
}

func record(start, end domain.Date, level int) domain.IntervalRecord {
	return domain.IntervalRecord{
		DateRange: []domain.Date{start, end},
		Level:     level,
		Path:      fmt.Sprintf("%s.html", start),
	}
}

func printStats(name string, records []domain.IntervalRecord) {
	res := domain.Resolve(records, "")
	span, _ := res.Span()

	nonZero := 0
	maxLevel := 0
	for _, dv := range res.Days {
		if dv.Level > 0 {
			nonZero++
		}
		maxLevel = max(maxLevel, dv.Level)
	}
	log.Printf("%s: %d records, %d days (%d elevated, max %d), %s..%s",
		name, len(records), len(res.Days), nonZero, maxLevel, span.Start, span.End)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
