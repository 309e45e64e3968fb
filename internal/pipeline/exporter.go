package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/severity-calendar/internal/domain"
	"github.com/couchcryptid/severity-calendar/internal/observability"
)

// SnapshotLoader writes a snapshot's day values to a destination.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, snap *domain.Snapshot) error
}

// Exporter builds every selection of the catalog and hands each snapshot to
// a loader.
type Exporter struct {
	builder *Builder
	loader  SnapshotLoader
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewExporter creates an Exporter.
func NewExporter(b *Builder, l SnapshotLoader, logger *slog.Logger, metrics *observability.Metrics) *Exporter {
	return &Exporter{
		builder: b,
		loader:  l,
		logger:  logger,
		metrics: metrics,
	}
}

// Run exports all selections and returns how many snapshots were loaded. It
// stops at the first build or load failure.
func (e *Exporter) Run(ctx context.Context) (int, error) {
	cat, err := e.builder.LoadCatalog(ctx)
	if err != nil {
		return 0, err
	}

	exported := 0
	for _, sel := range cat.Selections() {
		if err := ctx.Err(); err != nil {
			return exported, err
		}

		snap, err := e.builder.Build(ctx, cat, sel)
		if err != nil {
			return exported, err
		}
		if err := e.loader.LoadSnapshot(ctx, snap); err != nil {
			return exported, fmt.Errorf("load %s/%s: %w", snap.Source.URL.Domain, snap.City.Path, err)
		}

		e.metrics.DaysExported.Add(float64(len(snap.Days)))
		e.logger.Info("snapshot exported",
			"source", snap.Source.URL.Domain,
			"city", snap.City.Path,
			"days", len(snap.Days),
			"snapshot_id", snap.ID,
		)
		exported++
	}
	return exported, nil
}
