// Package docstore provides domain.DocumentStore implementations backed by a
// local directory, an HTTP origin, or an S3-compatible bucket.
package docstore

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/severity-calendar/internal/config"
	"github.com/couchcryptid/severity-calendar/internal/domain"
	"github.com/couchcryptid/severity-calendar/internal/observability"
)

// Backend names used as the metrics label.
const (
	BackendFS   = config.BackendFS
	BackendHTTP = config.BackendHTTP
	BackendS3   = config.BackendS3
)

// New builds the store selected by DATA_BACKEND.
func New(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (domain.DocumentStore, error) {
	switch cfg.DataBackend {
	case BackendFS:
		return NewFileStore(cfg.DataDir, metrics), nil
	case BackendHTTP:
		return NewHTTPStore(cfg.DataBaseURL, cfg.FetchTimeout, metrics, logger), nil
	case BackendS3:
		store, err := NewS3Store(S3Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Prefix:    cfg.S3Prefix,
		}, metrics, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}
