package docstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/couchcryptid/severity-calendar/internal/domain"
	"github.com/couchcryptid/severity-calendar/internal/observability"
)

// S3Store reads documents from an S3-compatible bucket.
type S3Store struct {
	client  *minio.Client
	bucket  string
	prefix  string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// S3Options locates the bucket holding the data directory.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
}

// NewS3Store constructs the store. The endpoint may carry a scheme; https
// enables TLS.
func NewS3Store(opts S3Options, metrics *observability.Metrics, logger *slog.Logger) (*S3Store, error) {
	client, err := minio.New(sanitizeEndpoint(opts.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure:       strings.HasPrefix(strings.ToLower(opts.Endpoint), "https"),
		Region:       opts.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{
		client:  client,
		bucket:  opts.Bucket,
		prefix:  strings.Trim(opts.Prefix, "/"),
		metrics: metrics,
		logger:  logger.With("component", "docstore.s3"),
	}, nil
}

// Fetch downloads the named object.
func (s *S3Store) Fetch(ctx context.Context, name string) ([]byte, error) {
	key := s.objectKey(name)

	start := time.Now()
	data, err := s.get(ctx, key)
	s.metrics.FetchDuration.WithLabelValues(BackendS3).Observe(time.Since(start).Seconds())
	if err != nil {
		if code := minio.ToErrorResponse(err).Code; code == "NoSuchKey" || code == "NoSuchBucket" {
			return nil, fmt.Errorf("get %s: %w", key, domain.ErrDocumentNotFound)
		}
		s.logger.Debug("object request failed", "bucket", s.bucket, "key", key, "error", err)
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

// Ping checks that the bucket is reachable.
func (s *S3Store) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}

func (s *S3Store) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(io.LimitReader(obj, maxDocumentSize))
}

func (s *S3Store) objectKey(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.IndexByte(raw, '/'); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
