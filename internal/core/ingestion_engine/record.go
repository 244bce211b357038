package ingestion_engine

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/docuchat-ai/docuchat/internal/core"
	"github.com/docuchat-ai/docuchat/internal/models"
)

// RecordBuilder binds a chunk to its embedding vector and a stable,
// content-derived id.
type RecordBuilder struct {
	embedder core.EmbeddingProvider
}

func NewRecordBuilder(embedder core.EmbeddingProvider) *RecordBuilder {
	return &RecordBuilder{embedder: embedder}
}

// Build embeds the chunk text and assembles the vector record. The id
// is a pure function of the chunk text, so identical content in the
// same namespace overwrites on upsert instead of duplicating. If the
// embedding call fails, no record is produced at all.
func (b *RecordBuilder) Build(ctx context.Context, chunk models.Chunk) (models.VectorRecord, error) {
	values, err := b.embedder.EmbedText(ctx, chunk.Text)
	if err != nil {
		return models.VectorRecord{}, fmt.Errorf("%w: %w", core.ErrEmbeddingFailed, err)
	}
	return models.VectorRecord{
		ID:       ChunkID(chunk.Text),
		Values:   values,
		Metadata: chunk.Metadata,
	}, nil
}

// ChunkID is the deterministic content hash used as a record id.
func ChunkID(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
