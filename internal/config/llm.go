package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/scoutbot/pkg/log"
)

// LLMConfig targets any OpenAI-compatible endpoint. The default is Gemini's
// compatibility layer.
type LLMConfig struct {
	APIKey  string `env:"LLM_API_KEY,required,notEmpty"`
	BaseURL string `env:"LLM_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	Model   string `env:"LLM_MODEL" envDefault:"gemini-2.5-flash-lite"`

	EmbeddingModel      string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-004"`
	EmbeddingDimensions int    `env:"EMBEDDING_DIMENSIONS" envDefault:"768"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
