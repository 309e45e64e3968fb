package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/severity-calendar/internal/adapter/docstore"
	"github.com/couchcryptid/severity-calendar/internal/observability"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func runOn(t *testing.T, dir string) (int, string) {
	t.Helper()
	var out bytes.Buffer
	store := docstore.NewFileStore(dir, observability.NewMetricsForTesting())
	code := run(context.Background(), store, &out)
	return code, out.String()
}

func TestRun_Valid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sources.json", `[
		{"name": {"ru": "НМУ"}, "url": {"root": {"ru": ""}, "domain": "awc"}, "type": "awc",
		 "cities": [{"name": {"ru": "Омск"}, "path": "omsk"}]}
	]`)
	writeFile(t, dir, "awc/omsk.json", `[{"daterange": ["2020-01-01", "2020-01-03"], "level": 3, "path": "a"}]`)

	code, out := runOn(t, dir)
	assert.Equal(t, 0, code, out)
	assert.Contains(t, out, "All validations passed.")
	assert.Contains(t, out, "1 sources, 1 datasets, 1 records")
}

func TestRun_ReportsProblems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sources.json", `[
		{"name": {"ru": "НМУ"}, "url": {"root": {"ru": ""}, "domain": "awc"}, "type": "awc",
		 "cities": [
			{"name": {"ru": "Омск"}, "path": "omsk"},
			{"name": {"ru": "Омск 2"}, "path": "omsk"},
			{"name": {"ru": "Тара"}, "path": "tara"}
		 ]}
	]`)
	writeFile(t, dir, "awc/omsk.json", `[
		{"daterange": ["2020-01-03", "2020-01-01"], "level": 1, "path": "a"},
		{"daterange": ["2020-01-05"], "level": 1, "path": "b"},
		{"daterange": ["2020-01-07", "2020-01-07"], "level": 9, "path": "c"},
		{"daterange": ["2020-02-30", "2020-03-01"], "level": 1, "path": "d"}
	]`)

	code, out := runOn(t, dir)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Validation FAILED.")
	assert.Contains(t, out, `duplicate city path "omsk"`)
	assert.Contains(t, out, "awc/tara.json: not found")
	assert.Contains(t, out, "record 0: date range ends before it starts")
	assert.Contains(t, out, "record 1: missing date range")
	assert.Contains(t, out, "record 2: level 9 outside [0, 3]")
	assert.Contains(t, out, `record 3: invalid date: parse date "2020-02-30"`)
}

func TestRun_MissingCatalog(t *testing.T) {
	code, out := runOn(t, t.TempDir())
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "FATAL: load catalog")
}

func TestValidateCatalog(t *testing.T) {
	p := validateCatalog(nil)
	assert.True(t, p.passed())
	assert.Equal(t, "Catalog integrity", p.name)
}
