// Command render writes the heatmap page for one selection to a static HTML
// file. With -interactive it keeps reading selection commands from stdin and
// rewrites the file after every committed selection:
//
//	source <i>   switch to source i and its first city
//	city <j>     switch to city j of the current source
//
// Usage:
//
//	DATA_DIR=data go run ./cmd/render -source 0 -city 1 -out heatmap.html
//	DATA_DIR=data go run ./cmd/render -out heatmap.html -interactive
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/couchcryptid/severity-calendar/internal/adapter/cache"
	"github.com/couchcryptid/severity-calendar/internal/adapter/docstore"
	"github.com/couchcryptid/severity-calendar/internal/config"
	"github.com/couchcryptid/severity-calendar/internal/domain"
	"github.com/couchcryptid/severity-calendar/internal/observability"
	"github.com/couchcryptid/severity-calendar/internal/pipeline"
	"github.com/couchcryptid/severity-calendar/internal/render"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	source := flag.Int("source", 0, "source index in the sorted catalog")
	city := flag.Int("city", 0, "city index within the source")
	out := flag.String("out", "heatmap.html", "output HTML file")
	interactive := flag.Bool("interactive", false, "read selection commands from stdin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	origin, err := docstore.New(cfg, metrics, logger)
	if err != nil {
		return err
	}
	store, closeCache, err := cache.Wrap(cfg, origin, metrics, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	builder := pipeline.NewBuilder(store, cfg.WeekStart, cfg.Locale, logger, metrics)
	cat, err := builder.LoadCatalog(ctx)
	if err != nil {
		return err
	}

	w := &pageWriter{
		path:     *out,
		renderer: render.New(domain.NewPalette(), cfg.Locale, cfg.Timezone),
		catalog:  cat,
	}
	ctrl := pipeline.NewController(builder, cat, logger, metrics)

	if _, err := ctrl.SelectSource(ctx, *source); err != nil {
		return err
	}
	if *city != 0 {
		if _, err := ctrl.SelectCity(ctx, *city); err != nil {
			return err
		}
	}
	if err := w.write(ctrl.Selection(), ctrl.Current()); err != nil {
		return err
	}
	logger.Info("page written", "path", *out, "source", *source, "city", *city)

	if !*interactive {
		return nil
	}
	return serveCommands(ctx, os.Stdin, ctrl, w, logger)
}

// serveCommands applies stdin commands as selection changes in input order.
// Only the builds run concurrently, so a slow dataset never blocks a newer
// choice; results overtaken by a newer command are dropped.
func serveCommands(ctx context.Context, in io.Reader, ctrl *pipeline.Controller, w *pageWriter, logger *slog.Logger) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		kind, idx, err := parseCommand(line)
		if err != nil {
			logger.Warn("ignoring command", "line", line, "error", err)
			continue
		}

		var pending *pipeline.Pending
		if kind == "source" {
			pending, err = ctrl.BeginSource(ctx, idx)
		} else {
			pending, err = ctrl.BeginCity(ctx, idx)
		}
		if err != nil {
			logger.Error("selection failed", "command", line, "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := pending.Run()
			switch {
			case errors.Is(err, pipeline.ErrStaleSelection), errors.Is(err, context.Canceled):
				return
			case err != nil:
				logger.Error("selection failed", "command", line, "error", err)
				return
			}
			if err := w.writeCurrent(ctrl); err != nil {
				logger.Error("write page", "error", err)
				return
			}
			logger.Info("page written", "path", w.path, "source", snap.Selection.Source, "city", snap.Selection.City)
		}()
	}
	return scanner.Err()
}

func parseCommand(line string) (string, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return "", 0, fmt.Errorf("want \"source <i>\" or \"city <j>\"")
	}
	kind := strings.ToLower(fields[0])
	if kind != "source" && kind != "city" {
		return "", 0, fmt.Errorf("unknown command %q", fields[0])
	}
	idx, err := strconv.Atoi(fields[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid index %q", fields[1])
	}
	return kind, idx, nil
}

// pageWriter replaces the output file atomically so a browser reload never
// sees a half-written page.
type pageWriter struct {
	mu       sync.Mutex
	path     string
	renderer *render.Renderer
	catalog  pipeline.Catalog
}

// writeCurrent renders the controller's committed snapshot. Reading it under
// the writer's lock keeps an older commit from overwriting a newer page.
func (p *pageWriter) writeCurrent(ctrl *pipeline.Controller) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := ctrl.Current()
	return p.writeLocked(snap.Selection, snap)
}

func (p *pageWriter) write(sel domain.Selection, snap *domain.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writeLocked(sel, snap)
}

func (p *pageWriter) writeLocked(sel domain.Selection, snap *domain.Snapshot) error {
	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".heatmap-*.html")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := p.renderer.Render(tmp, p.catalog.Sources, sel, snap); err != nil {
		tmp.Close()
		return fmt.Errorf("render page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), p.path)
}
