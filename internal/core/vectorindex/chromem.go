package vectorindex

import (
	"context"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/docuchat-ai/docuchat/internal/core"
	"github.com/docuchat-ai/docuchat/internal/models"
)

var _ core.VectorIndex = (*ChromemIndex)(nil)

// ChromemIndex is an embedded vector index backed by chromem-go, used
// for local development and tests where a Postgres instance is
// overkill. One chromem collection per namespace.
type ChromemIndex struct {
	db     *chromem.DB
	logger *zap.Logger
}

// NewChromemIndex opens a persistent index at path, or a purely
// in-memory one when path is empty.
func NewChromemIndex(path string, logger *zap.Logger) (*ChromemIndex, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		db  *chromem.DB
		err error
	)
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	}

	logger.Info("chromem vector index ready", zap.String("path", path))
	return &ChromemIndex{db: db, logger: logger}, nil
}

func (c *ChromemIndex) Close() error {
	return nil
}

// noEmbed satisfies chromem's collection signature. All records arrive
// with precomputed vectors and queries pass vectors directly, so this
// must never run.
func noEmbed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("chromem index received a text without an embedding")
}

func (c *ChromemIndex) collection(namespace string) (*chromem.Collection, error) {
	return c.db.GetOrCreateCollection(namespace, nil, noEmbed)
}

// Upsert adds the batch to the namespace's collection. chromem keys
// documents by id, so an existing id is overwritten in place.
func (c *ChromemIndex) Upsert(ctx context.Context, namespace string, records []models.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	col, err := c.collection(namespace)
	if err != nil {
		return fmt.Errorf("chromem collection %q: %w", namespace, err)
	}

	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		docs[i] = chromem.Document{
			ID:        rec.ID,
			Content:   rec.Metadata.Text,
			Embedding: rec.Values,
			Metadata: map[string]string{
				"pageNumber": strconv.Itoa(rec.Metadata.PageNumber),
			},
		}
	}
	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("chromem add documents: %w", err)
	}
	return nil
}

// Query searches the namespace's collection by vector. chromem rejects
// asking for more results than the collection holds, so topK is clamped
// to the document count.
func (c *ChromemIndex) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]models.SearchMatch, error) {
	col, err := c.collection(namespace)
	if err != nil {
		return nil, fmt.Errorf("chromem collection %q: %w", namespace, err)
	}

	if n := col.Count(); topK > n {
		topK = n
	}
	if topK <= 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]models.SearchMatch, 0, len(results))
	for _, res := range results {
		page, _ := strconv.Atoi(res.Metadata["pageNumber"])
		out = append(out, models.SearchMatch{
			ID:    res.ID,
			Score: res.Similarity,
			Metadata: models.ChunkMetadata{
				Text:       res.Content,
				PageNumber: page,
			},
		})
	}
	return out, nil
}
