// Command validate checks a data directory for problems that would make the
// heatmap skip records or fail to load a dataset: catalog integrity, dataset
// presence, record well-formedness, and level ranges per source type.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data/mock
//
// Without -data-dir the documents are read from the configured backend
// (DATA_BACKEND and friends), so remote stores can be validated too.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/couchcryptid/severity-calendar/internal/adapter/docstore"
	"github.com/couchcryptid/severity-calendar/internal/config"
	"github.com/couchcryptid/severity-calendar/internal/domain"
	"github.com/couchcryptid/severity-calendar/internal/observability"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// dataset is a fetched and decoded city document.
type dataset struct {
	source  domain.Source
	city    domain.City
	name    string
	records []domain.IntervalRecord
}

func main() {
	dataDir := flag.String("data-dir", "", "data directory to validate (default: configured backend)")
	timeout := flag.Duration("timeout", time.Minute, "overall time limit")
	flag.Parse()

	store, err := openStore(*dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if code := run(ctx, store, os.Stdout); code != 0 {
		cancel()
		os.Exit(code)
	}
}

func openStore(dataDir string) (domain.DocumentStore, error) {
	metrics := observability.NewMetricsForTesting()
	if dataDir != "" {
		return docstore.NewFileStore(dataDir, metrics), nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return docstore.New(cfg, metrics, observability.NewLogger(cfg))
}

func run(ctx context.Context, store domain.DocumentStore, out io.Writer) int {
	fmt.Fprintln(out, "=== Severity Data Validation ===")
	fmt.Fprintln(out)

	// ── Load catalog ──
	data, err := store.Fetch(ctx, domain.SourcesDocument)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load catalog: %v\n", err)
		return 1
	}
	sources, err := domain.DecodeSources(data)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	// ── Run validation phases ──
	datasets, loadPhase := loadDatasets(ctx, store, sources)
	phases := []*phase{
		validateCatalog(sources),
		loadPhase,
		validateRecords(datasets),
		validateLevels(domain.NewPalette(), datasets),
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Documents: %d sources, %d datasets, %d records\n",
		len(sources), len(datasets), countRecords(datasets))

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateCatalog(sources []domain.Source) *phase {
	p := &phase{name: "Catalog integrity"}
	domains := make(map[string]int)

	for i, src := range sources {
		if src.Name.In(domain.LocaleRussian) == "" {
			p.errorf("source %d: missing name", i)
		}
		if src.URL.Domain == "" {
			p.errorf("source %d: missing url.domain", i)
		} else if prev, ok := domains[src.URL.Domain]; ok {
			p.errorf("source %d: domain %q already used by source %d", i, src.URL.Domain, prev)
		} else {
			domains[src.URL.Domain] = i
		}

		paths := make(map[string]struct{})
		for j, city := range src.Cities {
			if city.Path == "" {
				p.errorf("source %d city %d: missing path", i, j)
				continue
			}
			if _, dup := paths[city.Path]; dup {
				p.errorf("source %d: duplicate city path %q", i, city.Path)
			}
			paths[city.Path] = struct{}{}
			if city.Name.In(domain.LocaleRussian) == "" {
				p.errorf("source %d city %q: missing name", i, city.Path)
			}
		}
	}
	return p
}

func loadDatasets(ctx context.Context, store domain.DocumentStore, sources []domain.Source) ([]dataset, *phase) {
	p := &phase{name: "Datasets present and decodable"}
	var out []dataset

	for _, src := range sources {
		for _, city := range src.Cities {
			name := domain.DatasetDocument(src, city)
			data, err := store.Fetch(ctx, name)
			if errors.Is(err, domain.ErrDocumentNotFound) {
				p.errorf("%s: not found", name)
				continue
			}
			if err != nil {
				p.errorf("%s: %v", name, err)
				continue
			}
			records, err := domain.DecodeRecords(data)
			if err != nil {
				p.errorf("%s: %v", name, err)
				continue
			}
			out = append(out, dataset{source: src, city: city, name: name, records: records})
		}
	}
	return out, p
}

func validateRecords(datasets []dataset) *phase {
	p := &phase{name: "Records well-formed"}
	for _, ds := range datasets {
		for i, rec := range ds.records {
			if err := domain.ValidateRecord(rec); err != nil {
				p.errorf("%s: record %d: %v", ds.name, i, err)
			}
		}
	}
	return p
}

// validateLevels flags levels outside the color scale of the source type.
// Those still render, clamped to the nearest bucket.
func validateLevels(palette *domain.Palette, datasets []dataset) *phase {
	p := &phase{name: "Levels within scale"}
	for _, ds := range datasets {
		scale := palette.For(ds.source.Type).Scale
		for i, rec := range ds.records {
			v := float64(rec.Level)
			if v < scale.Min || v > scale.Max {
				p.errorf("%s: record %d: level %d outside [%g, %g] for type %q",
					ds.name, i, rec.Level, scale.Min, scale.Max, ds.source.Type)
			}
		}
	}
	return p
}

func countRecords(datasets []dataset) int {
	n := 0
	for _, ds := range datasets {
		n += len(ds.records)
	}
	return n
}
