package core

import (
	"context"

	"github.com/docuchat-ai/docuchat/internal/models"
)

// ObjectClient defines what the pipeline needs from object storage.
// It's abstract so AWS can be swapped for MinIO, GCP, or a fake in
// tests. Uploads happen upstream of this service; the pipeline only
// ever downloads.
type ObjectClient interface {
	// Download fetches the full object for a file key.
	Download(ctx context.Context, fileKey string) ([]byte, error)

	// URL returns the public URL for a stored object.
	URL(fileKey string) string
}

// VectorIndex is the namespaced vector store the pipeline writes to.
//
// Namespaces scope all records belonging to one source document;
// scoping is by exact string match. Upsert is last-write-wins per
// record id within a namespace.
type VectorIndex interface {
	// Upsert writes the whole batch into the namespace. Records with
	// an existing id are overwritten.
	Upsert(ctx context.Context, namespace string, records []models.VectorRecord) error

	// Query returns up to topK matches for the vector, closest first,
	// restricted to the namespace.
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]models.SearchMatch, error)

	Close() error
}
