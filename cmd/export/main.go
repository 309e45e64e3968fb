// Command export publishes the resolved day values of every (source, city)
// selection to Kafka, one message per covered day.
//
// Usage:
//
//	KAFKA_BROKERS=localhost:9092 KAFKA_TOPIC=severity-day-values \
//	  go run ./cmd/export
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/severity-calendar/internal/adapter/cache"
	"github.com/couchcryptid/severity-calendar/internal/adapter/docstore"
	kafkaadapter "github.com/couchcryptid/severity-calendar/internal/adapter/kafka"
	"github.com/couchcryptid/severity-calendar/internal/config"
	"github.com/couchcryptid/severity-calendar/internal/domain"
	"github.com/couchcryptid/severity-calendar/internal/observability"
	"github.com/couchcryptid/severity-calendar/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if code := run(cfg); code != 0 {
		os.Exit(code)
	}
}

func run(cfg *config.Config) int {
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	origin, err := docstore.New(cfg, metrics, logger)
	if err != nil {
		logger.Error("failed to create document store", "error", err)
		return 1
	}
	store, closeCache, err := cache.Wrap(cfg, origin, metrics, logger)
	if err != nil {
		logger.Error("failed to create document cache", "error", err)
		return 1
	}
	defer closeCache()

	writer := kafkaadapter.NewWriter(cfg, domain.NewPalette(), logger)
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	builder := pipeline.NewBuilder(store, cfg.WeekStart, cfg.Locale, logger, metrics)
	n, err := pipeline.NewExporter(builder, writer, logger, metrics).Run(ctx)
	if err != nil {
		logger.Error("export failed", "error", err, "exported", n)
		return 1
	}
	logger.Info("export complete", "snapshots", n, "topic", cfg.KafkaTopic)
	return 0
}
