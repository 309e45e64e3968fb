package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/couchcryptid/severity-calendar/internal/domain"
	"github.com/couchcryptid/severity-calendar/internal/observability"
)

// Controller tracks the current (source, city) selection and commits the
// snapshot built for it. Every selection change starts a new generation and
// cancels the build of the previous one; a build that finishes after its
// generation was superseded is discarded.
type Controller struct {
	builder *Builder
	catalog Catalog
	logger  *slog.Logger
	metrics *observability.Metrics

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	selection  domain.Selection
	current    *domain.Snapshot
}

// NewController creates a controller over a loaded catalog.
func NewController(b *Builder, cat Catalog, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	return &Controller{
		builder: b,
		catalog: cat,
		logger:  logger,
		metrics: metrics,
	}
}

// Catalog returns the catalog the controller selects from.
func (c *Controller) Catalog() Catalog {
	return c.catalog
}

// SelectSource switches to source i and its first city.
func (c *Controller) SelectSource(ctx context.Context, i int) (*domain.Snapshot, error) {
	p, err := c.BeginSource(ctx, i)
	if err != nil {
		return nil, err
	}
	return p.Run()
}

// SelectCity switches to city j of the currently selected source.
func (c *Controller) SelectCity(ctx context.Context, j int) (*domain.Snapshot, error) {
	p, err := c.BeginCity(ctx, j)
	if err != nil {
		return nil, err
	}
	return p.Run()
}

// BeginSource records a switch to source i and its first city and claims a
// new generation. The build happens in Run.
func (c *Controller) BeginSource(ctx context.Context, i int) (*Pending, error) {
	return c.begin(ctx, func(domain.Selection) domain.Selection {
		return domain.Selection{Source: i, City: 0}
	})
}

// BeginCity records a switch to city j of the source selected at the time
// of the call and claims a new generation. The build happens in Run.
func (c *Controller) BeginCity(ctx context.Context, j int) (*Pending, error) {
	return c.begin(ctx, func(cur domain.Selection) domain.Selection {
		return domain.Selection{Source: cur.Source, City: j}
	})
}

// Selection returns the most recently requested selection.
func (c *Controller) Selection() domain.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Current returns the last committed snapshot, or nil before the first
// successful selection.
func (c *Controller) Current() *domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Pending is a selection change that owns a generation but has not been
// built yet.
type Pending struct {
	c      *Controller
	ctx    context.Context
	cancel context.CancelFunc
	sel    domain.Selection
	gen    uint64
}

// Selection returns the selection this change builds.
func (p *Pending) Selection() domain.Selection {
	return p.sel
}

// begin resolves the next selection against the current one and starts its
// generation in a single critical section, so changes apply in call order.
func (c *Controller) begin(ctx context.Context, next func(cur domain.Selection) domain.Selection) (*Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sel := next(c.selection)
	if _, _, err := c.catalog.Lookup(sel); err != nil {
		return nil, err
	}

	buildCtx, cancel := context.WithCancel(ctx)
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	c.cancel = cancel
	c.selection = sel

	return &Pending{c: c, ctx: buildCtx, cancel: cancel, sel: sel, gen: c.generation}, nil
}

// Run builds the pending selection and commits the snapshot unless a newer
// change started meanwhile, in which case it returns ErrStaleSelection.
func (p *Pending) Run() (*domain.Snapshot, error) {
	defer p.cancel()
	c := p.c

	snap, err := c.builder.Build(p.ctx, c.catalog, p.sel)

	c.mu.Lock()
	defer c.mu.Unlock()
	if p.gen != c.generation {
		c.metrics.StaleSelections.Inc()
		c.logger.Debug("discarding stale selection",
			"source", p.sel.Source,
			"city", p.sel.City,
			"generation", p.gen,
		)
		return nil, ErrStaleSelection
	}
	c.cancel = nil
	if err != nil {
		return nil, err
	}
	c.current = snap
	return snap, nil
}
