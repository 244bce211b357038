package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/docuchat-ai/docuchat/internal/core"
)

var _ core.EmbeddingProvider = (*GeminiEmbedder)(nil)

// GeminiEmbedder produces embedding vectors via the Gemini API.
//
// wantDim, when non-zero, is the dimensionality the deployment expects;
// a response of any other size is an error rather than a silent
// mismatch with the index schema.
type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
	wantDim   int
}

func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string, wantDim int) (*GeminiEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	return &GeminiEmbedder{client: cl, modelName: modelName, wantDim: wantDim}, nil
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// EmbedText embeds a single text. Newlines are normalized to spaces
// first; the model is line-structure-insensitive and newline artifacts
// degrade embedding quality. Failures are never swallowed and an empty
// vector is treated as a failure, so callers can abort rather than
// index inconsistent data. No caching: every call hits the model.
func (g *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	text = strings.ReplaceAll(text, "\n", " ")

	em := g.client.EmbeddingModel(g.modelName)
	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini embed: model returned no vector")
	}
	if g.wantDim > 0 && len(resp.Embedding.Values) != g.wantDim {
		return nil, fmt.Errorf("gemini embed: got %d dimensions, want %d", len(resp.Embedding.Values), g.wantDim)
	}
	return resp.Embedding.Values, nil
}
