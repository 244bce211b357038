package vectorindex

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/docuchat-ai/docuchat/internal/config"
	"github.com/docuchat-ai/docuchat/internal/core"
)

// New picks the index backend from configuration: "postgres" for the
// shared pgvector deployment, "chromem" for an embedded local index.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (core.VectorIndex, error) {
	switch cfg.IndexProvider {
	case "postgres":
		return NewPostgresIndex(ctx, cfg.DatabaseURL, cfg.EmbedDim, logger)
	case "chromem":
		return NewChromemIndex(cfg.ChromemPath, logger)
	default:
		return nil, fmt.Errorf("unknown index provider %q", cfg.IndexProvider)
	}
}
