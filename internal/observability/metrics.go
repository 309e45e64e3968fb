package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the heatmap service.
type Metrics struct {
	// Document fetch metrics.
	DocumentFetches *prometheus.CounterVec   // labels: kind={catalog,dataset}, outcome={success,error,not_found}
	FetchDuration   *prometheus.HistogramVec // labels: backend={fs,http,s3}
	DocumentCache   *prometheus.CounterVec   // labels: result={hit,miss,error}

	// Snapshot metrics.
	SnapshotsBuilt  prometheus.Counter
	BuildErrors     prometheus.Counter
	BuildDuration   prometheus.Histogram
	ResolvedDays    prometheus.Histogram
	SkippedRecords  prometheus.Counter
	StaleSelections prometheus.Counter
	CatalogSources  prometheus.Gauge
	DaysExported    prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.DocumentFetches,
		m.FetchDuration,
		m.DocumentCache,
		m.SnapshotsBuilt,
		m.BuildErrors,
		m.BuildDuration,
		m.ResolvedDays,
		m.SkippedRecords,
		m.StaleSelections,
		m.CatalogSources,
		m.DaysExported,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DocumentFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "severity_calendar",
			Name:      "document_fetches_total",
			Help:      "Document fetches by document kind and outcome.",
		}, []string{"kind", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "severity_calendar",
			Name:      "document_fetch_duration_seconds",
			Help:      "Document store request duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"backend"}),
		DocumentCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "severity_calendar",
			Name:      "document_cache_total",
			Help:      "Document cache lookups by result.",
		}, []string{"result"}),
		SnapshotsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "severity_calendar",
			Name:      "snapshots_built_total",
			Help:      "Total heatmap snapshots built.",
		}),
		BuildErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "severity_calendar",
			Name:      "snapshot_build_errors_total",
			Help:      "Total snapshot builds that failed.",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "severity_calendar",
			Name:      "snapshot_build_duration_seconds",
			Help:      "Duration of fetch, resolve and layout for one selection.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		ResolvedDays: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "severity_calendar",
			Name:      "resolved_days",
			Help:      "Number of covered days per built snapshot.",
			Buckets:   []float64{0, 10, 50, 100, 365, 730, 1825, 3650},
		}),
		SkippedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "severity_calendar",
			Name:      "skipped_records_total",
			Help:      "Malformed interval records skipped during resolution.",
		}),
		StaleSelections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "severity_calendar",
			Name:      "stale_selections_total",
			Help:      "Snapshots discarded because a newer selection superseded them.",
		}),
		CatalogSources: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "severity_calendar",
			Name:      "catalog_sources",
			Help:      "Number of sources in the last loaded catalog.",
		}),
		DaysExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "severity_calendar",
			Name:      "days_exported_total",
			Help:      "Day values published to the export topic.",
		}),
	}
}

// CounterValue reads the current value of a counter. Intended for tests.
func CounterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
