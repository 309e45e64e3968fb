package docstore

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/severity-calendar/internal/config"
	"github.com/couchcryptid/severity-calendar/internal/domain"
	"github.com/couchcryptid/severity-calendar/internal/observability"
)

const sourcesBody = `[{"name":{"ru":"Омск"},"url":{"domain":"omsk"},"cities":[]}]`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func TestFileStore_Fetch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, domain.SourcesDocument, sourcesBody)
	writeFile(t, dir, "omsk/regions/tara.json", `[]`)

	s := NewFileStore(dir, observability.NewMetricsForTesting())

	data, err := s.Fetch(context.Background(), domain.SourcesDocument)
	require.NoError(t, err)
	assert.JSONEq(t, sourcesBody, string(data))

	data, err = s.Fetch(context.Background(), "omsk/regions/tara.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFileStore_NotFound(t *testing.T) {
	s := NewFileStore(t.TempDir(), observability.NewMetricsForTesting())

	_, err := s.Fetch(context.Background(), "missing.json")
	require.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestFileStore_RejectsEscape(t *testing.T) {
	s := NewFileStore(t.TempDir(), observability.NewMetricsForTesting())

	for _, name := range []string{"../secret.json", "/etc/passwd", "a/../../b.json"} {
		_, err := s.Fetch(context.Background(), name)
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "escapes", name)
	}
}

func TestFileStore_CanceledContext(t *testing.T) {
	s := NewFileStore(t.TempDir(), observability.NewMetricsForTesting())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Fetch(ctx, domain.SourcesDocument)
	require.ErrorIs(t, err, context.Canceled)
}

func testHTTPStore(baseURL string) *HTTPStore {
	return NewHTTPStore(baseURL, 5*time.Second, observability.NewMetricsForTesting(), testLogger())
}

func TestHTTPStore_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/omsk/omsk.json", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`[{"daterange":["2020-01-01","2020-01-02"],"level":2,"path":"a"}]`))
	}))
	defer srv.Close()

	s := testHTTPStore(srv.URL + "/data/")
	data, err := s.Fetch(context.Background(), "omsk/omsk.json")
	require.NoError(t, err)

	records, err := domain.DecodeRecords(data)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].Level)
}

func TestHTTPStore_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := testHTTPStore(srv.URL).Fetch(context.Background(), "nope.json")
	require.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestHTTPStore_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 4*maxErrorExcerpt)))
	}))
	defer srv.Close()

	_, err := testHTTPStore(srv.URL).Fetch(context.Background(), domain.SourcesDocument)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDocumentNotFound)
	assert.Contains(t, err.Error(), "status 502")
	assert.Less(t, len(err.Error()), 2*maxErrorExcerpt, "error body is truncated")
}

func TestHTTPStore_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, 50*time.Millisecond, observability.NewMetricsForTesting(), testLogger())
	_, err := s.Fetch(context.Background(), domain.SourcesDocument)
	require.Error(t, err)
}

func TestS3Store_ObjectKey(t *testing.T) {
	s := &S3Store{prefix: "heatmaps"}
	assert.Equal(t, "heatmaps/omsk/omsk.json", s.objectKey("omsk/omsk.json"))

	s = &S3Store{}
	assert.Equal(t, domain.SourcesDocument, s.objectKey(domain.SourcesDocument))
}

func TestSanitizeEndpoint(t *testing.T) {
	assert.Equal(t, "minio.example:9000", sanitizeEndpoint("https://minio.example:9000/bucket/path"))
	assert.Equal(t, "localhost:9000", sanitizeEndpoint(" http://localhost:9000 "))
	assert.Equal(t, "s3.example", sanitizeEndpoint("s3.example"))
}

func TestNew_SelectsBackend(t *testing.T) {
	metrics := observability.NewMetricsForTesting()

	store, err := New(&config.Config{DataBackend: config.BackendFS, DataDir: t.TempDir()}, metrics, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = New(&config.Config{DataBackend: config.BackendHTTP, DataBaseURL: "http://example"}, metrics, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &HTTPStore{}, store)

	store, err = New(&config.Config{DataBackend: config.BackendS3, S3Endpoint: "http://localhost:9000", S3Bucket: "b"}, metrics, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, store)

	_, err = New(&config.Config{DataBackend: "ftp"}, metrics, testLogger())
	require.Error(t, err)
}
