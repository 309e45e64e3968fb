package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/severity-calendar/internal/config"
)

func TestNewLogger_SetsDefaultLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "debug", LogFormat: "text"})
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))

	logger = NewLogger(&config.Config{LogLevel: "warn", LogFormat: "json"})
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestCounterValue(t *testing.T) {
	m := NewMetricsForTesting()
	m.SnapshotsBuilt.Add(3)
	m.DocumentCache.WithLabelValues("hit").Inc()

	assert.InDelta(t, 3, CounterValue(m.SnapshotsBuilt), 0)
	assert.InDelta(t, 1, CounterValue(m.DocumentCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 0, CounterValue(m.DocumentCache.WithLabelValues("miss")), 0)
}
