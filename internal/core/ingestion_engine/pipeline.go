package ingestion_engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/docuchat-ai/docuchat/internal/core"
	"github.com/docuchat-ai/docuchat/internal/models"
)

// Ingestor is the entry point the request layer calls after a file has
// been uploaded to object storage.
type Ingestor interface {
	Ingest(ctx context.Context, fileKey string) (*models.Document, error)
}

// Pipeline drives a full ingestion run: download, extract, prepare,
// embed, upsert. Stages run strictly in sequence; within the prepare
// and embed stages the work fans out across pages and chunks.
//
// storage:   object storage holding the uploaded PDF.
// extractor: PDF to ordered pages.
// builder:   chunk to vector record (embedding + content id).
// index:     namespaced vector store.
type Pipeline struct {
	storage   core.ObjectClient
	extractor core.PageExtractor
	builder   *RecordBuilder
	index     core.VectorIndex
	cfg       *IngestConfig
	logger    *zap.Logger
}

func NewPipeline(storage core.ObjectClient, extractor core.PageExtractor, embedder core.EmbeddingProvider, index core.VectorIndex, cfg *IngestConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		storage:   storage,
		extractor: extractor,
		builder:   NewRecordBuilder(embedder),
		index:     index,
		cfg:       cfg.withDefaults(),
		logger:    logger,
	}
}

// Ingest runs the pipeline for one file key and returns a
// representative document for the caller to use as a preview.
//
// Each stage must fully resolve before the next starts; a failure
// anywhere aborts the run and nothing is upserted. Record ids are
// content-derived, so re-running the same key is idempotent: the batch
// overwrites itself instead of duplicating.
func (p *Pipeline) Ingest(ctx context.Context, fileKey string) (*models.Document, error) {
	runID := uuid.NewString()
	log := p.logger.With(zap.String("run_id", runID), zap.String("file_key", fileKey))

	log.Info("downloading source from object storage")
	data, err := p.storage.Download(ctx, fileKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrSourceUnavailable, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty object for key %q", core.ErrSourceUnavailable, fileKey)
	}

	log.Info("extracting pages", zap.Int("bytes", len(data)))
	pages, err := p.extractor.ExtractPages(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrExtractionFailed, err)
	}

	chunks, err := p.prepareAll(ctx, pages)
	if err != nil {
		return nil, err
	}
	log.Info("prepared chunks", zap.Int("pages", len(pages)), zap.Int("chunks", len(chunks)))

	records, err := p.buildAll(ctx, chunks)
	if err != nil {
		return nil, err
	}

	namespace := NamespaceForKey(fileKey)
	if len(records) > 0 {
		log.Info("upserting records", zap.String("namespace", namespace), zap.Int("records", len(records)))
		if err := p.index.Upsert(ctx, namespace, records); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrUpsertFailed, err)
		}
	} else {
		log.Warn("no chunks produced, skipping upsert", zap.String("namespace", namespace))
	}

	doc := &models.Document{
		FileKey:    fileKey,
		Namespace:  namespace,
		PageCount:  len(pages),
		ChunkCount: len(chunks),
	}
	if len(chunks) > 0 {
		first := chunks[0]
		doc.Preview = &first
	}
	return doc, nil
}

// prepareAll runs PrepareDocument over every page in parallel and
// flattens the per-page results in page order. Results land in an
// indexed slice, so output order never depends on completion order.
func (p *Pipeline) prepareAll(ctx context.Context, pages []models.Page) ([]models.Chunk, error) {
	splitter := NewSplitter(p.cfg.ChunkBytes, p.cfg.ChunkOverlapBytes)

	perPage := make([][]models.Chunk, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.PageWorkers)
	for i, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perPage[i] = PrepareDocument(page, splitter, p.cfg.MetadataTextBytes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for _, pc := range perPage {
		chunks = append(chunks, pc...)
	}
	return chunks, nil
}

// buildAll embeds every chunk in parallel. Each vector is written back
// at its chunk's index, re-associating result and origin by position
// rather than completion order. The first embedding failure cancels the
// rest of the group and fails the run.
func (p *Pipeline) buildAll(ctx context.Context, chunks []models.Chunk) ([]models.VectorRecord, error) {
	records := make([]models.VectorRecord, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.EmbedWorkers)
	for i, chunk := range chunks {
		g.Go(func() error {
			rec, err := p.builder.Build(gctx, chunk)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
