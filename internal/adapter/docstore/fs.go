package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/severity-calendar/internal/domain"
	"github.com/couchcryptid/severity-calendar/internal/observability"
)

// FileStore reads documents from a local data directory.
type FileStore struct {
	root    string
	metrics *observability.Metrics
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string, metrics *observability.Metrics) *FileStore {
	return &FileStore{root: dir, metrics: metrics}
}

// Fetch reads the named document. Names must stay inside the data directory.
func (s *FileStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return nil, fmt.Errorf("document %q escapes data directory", name)
	}

	start := time.Now()
	data, err := os.ReadFile(filepath.Join(s.root, local))
	s.metrics.FetchDuration.WithLabelValues(BackendFS).Observe(time.Since(start).Seconds())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", name, domain.ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
