package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/docuchat-ai/docuchat/internal/config"
	"github.com/docuchat-ai/docuchat/internal/core"
	"github.com/docuchat-ai/docuchat/internal/core/extractor"
	"github.com/docuchat-ai/docuchat/internal/core/ingestion_engine"
	"github.com/docuchat-ai/docuchat/internal/core/llm"
	objectclient "github.com/docuchat-ai/docuchat/internal/core/object-client"
	"github.com/docuchat-ai/docuchat/internal/core/vectorindex"
)

// App owns the wired service graph: every collaborator is constructed
// here and injected explicitly, nothing is process-global.
type App struct {
	ObjectClient core.ObjectClient
	VectorIndex  core.VectorIndex
	Embedder     *llm.GeminiEmbedder
	Pipeline     *ingestion_engine.Pipeline
	Server       *Server

	logger *zap.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	objClient, err := objectclient.NewS3Client(appCtx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("object client: %w", err)
	}

	index, err := vectorindex.New(appCtx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("vector index: %w", err)
	}
	logger.Info("vector index initialized", zap.String("provider", cfg.IndexProvider))

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel, cfg.EmbedDim)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}

	pageExtractor := extractor.NewDocconvExtractor()

	pipeline := ingestion_engine.NewPipeline(
		objClient,
		pageExtractor,
		embedder,
		index,
		ingestion_engine.DefaultIngestConfig(),
		logger,
	)

	server := NewServer(cfg, objClient, pipeline, embedder, index, logger)

	return &App{
		ObjectClient: objClient,
		VectorIndex:  index,
		Embedder:     embedder,
		Pipeline:     pipeline,
		Server:       server,
		logger:       logger,
	}, nil
}

func (a *App) Close() {
	if a.VectorIndex != nil {
		_ = a.VectorIndex.Close()
	}
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
}
