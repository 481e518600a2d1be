package llm

import (
	"context"

	"github.com/sandevgo/scoutbot/internal/config"
	"github.com/sandevgo/scoutbot/pkg/log"
)

// NewProvider builds the generator/embedder pair from configuration.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) *OpenAI {
	log.FromCtx(ctx).Info().
		Str("base_url", cfg.BaseURL).
		Str("model", cfg.Model).
		Str("embedding_model", cfg.EmbeddingModel).
		Msg("starting llm provider")

	return NewOpenAI(OpenAIConfig{
		BaseURL:             cfg.BaseURL,
		APIKey:              cfg.APIKey,
		Model:               cfg.Model,
		EmbeddingModel:      cfg.EmbeddingModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})
}
