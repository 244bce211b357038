package core

import "errors"

// Sentinel errors for the ingestion pipeline. Callers branch on these
// with errors.Is; the wrapped cause stays reachable through the chain.
var (
	// ErrSourceUnavailable is returned when the storage fetch yields
	// nothing for a file key.
	ErrSourceUnavailable = errors.New("source document unavailable")

	// ErrExtractionFailed is returned when the PDF cannot be parsed
	// into pages.
	ErrExtractionFailed = errors.New("page extraction failed")

	// ErrEmbeddingFailed is returned when the embedding model call
	// fails for a chunk. It is fatal to the whole ingestion run.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrUpsertFailed is returned when the vector index batch write
	// fails. The batch is all-or-nothing from the caller's view.
	ErrUpsertFailed = errors.New("vector upsert failed")
)
