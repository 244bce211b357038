package core

import "context"

// EmbeddingProvider turns text into a fixed-dimension vector via an
// external model. Implementations must fail loudly: an error on every
// failed call, never a silent empty vector. Retry/backoff is the
// caller's concern.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}
