package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/scoutbot/pkg/log"
)

// RetrievalConfig holds the ranking policy. The decay curve and the floors
// are tunables, not a contract.
type RetrievalConfig struct {
	RelevanceFloor  float64 `env:"RETRIEVAL_RELEVANCE_FLOOR" envDefault:"0.30"`
	DecayCurve      string  `env:"RETRIEVAL_DECAY_CURVE" envDefault:"hyperbolic"`
	DecayScaleHours float64 `env:"RETRIEVAL_DECAY_SCALE_HOURS" envDefault:"24"`
	DecayFloor      float64 `env:"RETRIEVAL_DECAY_FLOOR" envDefault:"0.1"`
	ContextCap      int     `env:"RETRIEVAL_CONTEXT_CAP" envDefault:"15"`
	CitationCap     int     `env:"RETRIEVAL_CITATION_CAP" envDefault:"3"`
	NewsK           int     `env:"RETRIEVAL_NEWS_K" envDefault:"30"`

	// Sync barrier before retrieval
	SyncMinDelta     int           `env:"SYNC_MIN_DELTA" envDefault:"3"`
	SyncTimeout      time.Duration `env:"SYNC_TIMEOUT" envDefault:"60s"`
	IndexSettleDelay time.Duration `env:"INDEX_SETTLE_DELAY" envDefault:"3s"`

	// Oracle (memory + news) query
	OracleMemoryK       int     `env:"ORACLE_MEMORY_K" envDefault:"3"`
	OracleNewsK         int     `env:"ORACLE_NEWS_K" envDefault:"5"`
	OracleMemoryMaxDist float64 `env:"ORACLE_MEMORY_MAX_DIST" envDefault:"0.6"`

	MaxContextTokens int `env:"MAX_CONTEXT_TOKENS" envDefault:"6000"`
}

func NewRetrievalConfig(ctx context.Context) *RetrievalConfig {
	c := &RetrievalConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Retrieval config")
	}
	return c
}
