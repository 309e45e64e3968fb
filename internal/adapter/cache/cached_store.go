// Package cache decorates document stores with an in-process or shared cache.
package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valkey-io/valkey-go"

	"github.com/couchcryptid/severity-calendar/internal/config"
	"github.com/couchcryptid/severity-calendar/internal/domain"
	"github.com/couchcryptid/severity-calendar/internal/observability"
)

// Cache stores raw documents by name.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// CachedStore wraps a DocumentStore with a Cache. Cache failures fall back to
// the inner store and are never returned to the caller.
type CachedStore struct {
	inner   domain.DocumentStore
	cache   Cache
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedStore creates a cache decorator around a document store.
func NewCachedStore(inner domain.DocumentStore, c Cache, metrics *observability.Metrics, logger *slog.Logger) *CachedStore {
	return &CachedStore{
		inner:   inner,
		cache:   c,
		metrics: metrics,
		logger:  logger.With("component", "cache"),
	}
}

func (s *CachedStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	data, ok, err := s.cache.Get(ctx, name)
	switch {
	case err != nil:
		s.metrics.DocumentCache.WithLabelValues("error").Inc()
		s.logger.Warn("cache read failed, fetching directly", "document", name, "error", err)
	case ok:
		s.metrics.DocumentCache.WithLabelValues("hit").Inc()
		return data, nil
	default:
		s.metrics.DocumentCache.WithLabelValues("miss").Inc()
	}

	data, err = s.inner.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, name, data); err != nil {
		s.metrics.DocumentCache.WithLabelValues("error").Inc()
		s.logger.Warn("cache write failed", "document", name, "error", err)
	}
	return data, nil
}

// Wrap applies the cache selected by CACHE_BACKEND to inner. The returned
// close function releases any client connection.
func Wrap(cfg *config.Config, inner domain.DocumentStore, metrics *observability.Metrics, logger *slog.Logger) (domain.DocumentStore, func(), error) {
	switch cfg.CacheBackend {
	case config.CacheNone:
		return inner, func() {}, nil
	case config.CacheMemory:
		return NewCachedStore(inner, NewLRU(cfg.CacheSize, cfg.CacheTTL), metrics, logger), func() {}, nil
	case config.CacheValkey:
		client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{cfg.ValkeyAddr}})
		if err != nil {
			return nil, nil, fmt.Errorf("connect valkey %s: %w", cfg.ValkeyAddr, err)
		}
		c := NewValkey(client, "", cfg.CacheTTL)
		return NewCachedStore(inner, c, metrics, logger), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
