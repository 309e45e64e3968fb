package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
)

// SourcesDocument is the catalog document name relative to the data root.
const SourcesDocument = "sources.json"

// ErrDocumentNotFound is returned by stores when a document does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore fetches raw JSON documents by slash-separated name relative
// to the data root.
type DocumentStore interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// DatasetDocument is the name of a city's interval records for a source.
func DatasetDocument(src Source, city City) string {
	return path.Join(src.URL.Domain, city.Path) + ".json"
}

// DecodeSources parses a sources.json document.
func DecodeSources(data []byte) ([]Source, error) {
	var sources []Source
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	return sources, nil
}

// DecodeRecords parses a city dataset document.
func DecodeRecords(data []byte) ([]IntervalRecord, error) {
	var records []IntervalRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}
