package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/severity-calendar/internal/domain"
	"github.com/couchcryptid/severity-calendar/internal/observability"
)

// Document kinds used as the fetch metrics label.
const (
	kindCatalog = "catalog"
	kindDataset = "dataset"
)

// Builder turns a selection into a snapshot: fetch the city dataset, resolve
// the day values and lay out the year grids.
type Builder struct {
	store     domain.DocumentStore
	weekStart domain.WeekStart
	locale    string
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// NewBuilder creates a Builder reading documents from store.
func NewBuilder(store domain.DocumentStore, weekStart domain.WeekStart, locale string, logger *slog.Logger, metrics *observability.Metrics) *Builder {
	return &Builder{
		store:     store,
		weekStart: weekStart,
		locale:    locale,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once the catalog has been loaded at least once.
func (b *Builder) CheckReadiness(_ context.Context) error {
	if !b.ready.Load() {
		return errors.New("source catalog has not been loaded yet")
	}
	return nil
}

// LoadCatalog fetches and decodes sources.json.
func (b *Builder) LoadCatalog(ctx context.Context) (Catalog, error) {
	data, err := b.fetch(ctx, kindCatalog, domain.SourcesDocument)
	if err != nil {
		return Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	sources, err := domain.DecodeSources(data)
	if err != nil {
		return Catalog{}, err
	}
	sortCities(sources, b.locale)

	b.metrics.CatalogSources.Set(float64(len(sources)))
	b.ready.Store(true)
	b.logger.Debug("catalog loaded", "sources", len(sources))
	return Catalog{Sources: sources}, nil
}

// Build produces the snapshot for sel. Fetch and decode failures abort the
// build; malformed records are skipped and reported on the snapshot.
func (b *Builder) Build(ctx context.Context, cat Catalog, sel domain.Selection) (*domain.Snapshot, error) {
	src, city, err := cat.Lookup(sel)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	snap, err := b.build(ctx, src, city)
	if err != nil {
		b.metrics.BuildErrors.Inc()
		return nil, fmt.Errorf("build %s/%s: %w", src.URL.Domain, city.Path, err)
	}
	snap.Selection = sel

	b.metrics.SnapshotsBuilt.Inc()
	b.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	b.metrics.ResolvedDays.Observe(float64(len(snap.Days)))
	return snap, nil
}

func (b *Builder) build(ctx context.Context, src domain.Source, city domain.City) (*domain.Snapshot, error) {
	data, err := b.fetch(ctx, kindDataset, domain.DatasetDocument(src, city))
	if err != nil {
		return nil, err
	}
	records, err := domain.DecodeRecords(data)
	if err != nil {
		return nil, err
	}

	res := domain.Resolve(records, src.URL.Root.In(b.locale))
	for _, issue := range res.Skipped {
		b.logger.Warn("skipping malformed record",
			"source", src.URL.Domain,
			"city", city.Path,
			"index", issue.Index,
			"error", issue.Err,
		)
	}
	b.metrics.SkippedRecords.Add(float64(len(res.Skipped)))

	span, ok := res.Span()
	if !ok {
		today := domain.Today()
		span = domain.Span{Start: today, End: today}
	}

	return &domain.Snapshot{
		ID:        uuid.New(),
		Source:    src,
		City:      city,
		Days:      res.Days,
		Span:      span,
		HasData:   ok,
		WeekStart: b.weekStart,
		Years:     domain.Layout(span, ok, b.weekStart),
		Skipped:   res.Skipped,
		BuiltAt:   domain.Now().UTC(),
	}, nil
}

func (b *Builder) fetch(ctx context.Context, kind, name string) ([]byte, error) {
	data, err := b.store.Fetch(ctx, name)
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		b.metrics.DocumentFetches.WithLabelValues(kind, "not_found").Inc()
	case err != nil:
		b.metrics.DocumentFetches.WithLabelValues(kind, "error").Inc()
	default:
		b.metrics.DocumentFetches.WithLabelValues(kind, "success").Inc()
	}
	return data, err
}
