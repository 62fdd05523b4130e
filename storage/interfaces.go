package storage

import (
	"context"
	"errors"

	"listings-pipeline/models"
)

// ErrNotFound is returned by ObjectStore.Get when the key does not exist.
var ErrNotFound = errors.New("storage: object not found")

const (
	ContentTypeHTML = "text/html"
	ContentTypeCSV  = "text/csv"
)

// ObjectStore is the artifact store both pipeline stages write through.
// Put overwrites an existing key.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// RecordWriter is the interface for an optional secondary sink of extracted rows.
type RecordWriter interface {
	WriteRecords(ctx context.Context, records []models.Record) error
	Close() error
}
