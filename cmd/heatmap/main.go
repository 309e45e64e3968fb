package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/severity-calendar/internal/adapter/cache"
	"github.com/couchcryptid/severity-calendar/internal/adapter/docstore"
	httpadapter "github.com/couchcryptid/severity-calendar/internal/adapter/http"
	"github.com/couchcryptid/severity-calendar/internal/config"
	"github.com/couchcryptid/severity-calendar/internal/domain"
	"github.com/couchcryptid/severity-calendar/internal/observability"
	"github.com/couchcryptid/severity-calendar/internal/pipeline"
	"github.com/couchcryptid/severity-calendar/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	origin, err := docstore.New(cfg, metrics, logger)
	if err != nil {
		logger.Error("failed to create document store", "error", err)
		os.Exit(1)
	}
	store, closeCache, err := cache.Wrap(cfg, origin, metrics, logger)
	if err != nil {
		logger.Error("failed to create document cache", "error", err)
		os.Exit(1)
	}
	logger.Info("document store ready",
		"backend", cfg.DataBackend,
		"cache", cfg.CacheBackend,
		"week_start", cfg.WeekStart,
		"locale", cfg.Locale,
	)

	palette := domain.NewPalette()
	builder := pipeline.NewBuilder(store, cfg.WeekStart, cfg.Locale, logger, metrics)
	renderer := render.New(palette, cfg.Locale, cfg.Timezone)

	srv := httpadapter.NewServer(cfg.HTTPAddr, builder, renderer, palette, cfg.Locale, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load the catalog once so /readyz reports ready as soon as the data
	// directory is reachable.
	go warmCatalog(ctx, builder, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	closeCache()

	logger.Info("shutdown complete")
}

// warmCatalog retries the catalog load with exponential backoff until it
// succeeds or ctx ends.
func warmCatalog(ctx context.Context, b *pipeline.Builder, logger *slog.Logger) {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		cat, err := b.LoadCatalog(ctx)
		if err == nil {
			logger.Info("catalog loaded", "sources", len(cat.Sources))
			return
		}
		if ctx.Err() != nil {
			return
		}
		logger.Warn("catalog load failed, retrying", "error", err, "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			return
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}
