package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/severity-calendar/internal/domain"
	"github.com/couchcryptid/severity-calendar/internal/pipeline"
	"github.com/couchcryptid/severity-calendar/internal/render"
)

// Server exposes the heatmap page, its JSON API, and the health, readiness
// and metrics endpoints.
type Server struct {
	httpServer *http.Server
	builder    *pipeline.Builder
	renderer   *render.Renderer
	palette    *domain.Palette
	locale     string
	logger     *slog.Logger
}

// NewServer creates an HTTP server. Every request reads the catalog and the
// selected dataset through the builder; no selection state is kept between
// requests.
func NewServer(addr string, b *pipeline.Builder, r *render.Renderer, p *domain.Palette, locale string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		builder:  b,
		renderer: r,
		palette:  p,
		locale:   locale,
		logger:   logger,
	}

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/sources", s.handleSources)
	mux.HandleFunc("GET /api/heatmap", s.handleHeatmap)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(b))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type dayView struct {
	Date  domain.Date `json:"date"`
	Level int         `json:"level"`
	URL   string      `json:"url"`
	Color string      `json:"color"`
	Label string      `json:"label"`
}

type heatmapResponse struct {
	*domain.Snapshot
	Days []dayView `json:"days"`
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	cat, err := s.builder.LoadCatalog(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, cat)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	cat, err := s.builder.LoadCatalog(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.builder.Build(r.Context(), cat, sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := heatmapResponse{Snapshot: snap, Days: make([]dayView, 0, len(snap.Days))}
	for _, dv := range snap.SortedDays() {
		resp.Days = append(resp.Days, dayView{
			Date:  dv.Date,
			Level: dv.Level,
			URL:   dv.URL,
			Color: s.palette.ColorFor(snap.Source.Type, dv.Level),
			Label: s.palette.LabelFor(snap.Source.Type, dv.Date, dv.Level, s.locale),
		})
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	cat, err := s.builder.LoadCatalog(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var snap *domain.Snapshot
	if sel.Source < 0 || sel.Source >= len(cat.Sources) {
		s.writeError(w, r, pipeline.ErrUnknownSelection)
		return
	}
	// A source without cities still renders its selectors.
	if len(cat.Sources[sel.Source].Cities) > 0 {
		snap, err = s.builder.Build(r.Context(), cat, sel)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, cat.Sources, sel, snap); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, pipeline.ErrUnknownSelection) {
		status = http.StatusNotFound
	} else {
		s.logger.Warn("request failed", "path", r.URL.Path, "query", r.URL.RawQuery, "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}

func parseSelection(r *http.Request) (domain.Selection, error) {
	var sel domain.Selection
	var err error
	if sel.Source, err = queryIndex(r, "source"); err != nil {
		return sel, err
	}
	if sel.City, err = queryIndex(r, "city"); err != nil {
		return sel, err
	}
	return sel, nil
}

func queryIndex(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s index %q", key, v)
	}
	return n, nil
}
