package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/scoutbot/pkg/log"
)

const (
	IndexDriverSQLite = "sqlite"
	IndexDriverQdrant = "qdrant"
	IndexDriverMemory = "memory"
)

type IndexConfig struct {
	Driver string `env:"INDEX_DRIVER" envDefault:"sqlite"`

	QdrantHost string `env:"QDRANT_HOST" envDefault:"localhost"`
	QdrantPort string `env:"QDRANT_PORT" envDefault:"6334"`
	// Collection names are prefixed so several deployments can share one qdrant.
	QdrantPrefix string `env:"QDRANT_COLLECTION_PREFIX" envDefault:"scout"`
}

func NewIndexConfig(ctx context.Context) *IndexConfig {
	c := &IndexConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Index config")
	}
	return c
}
