package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/scoutbot/pkg/log"
)

type APIConfig struct {
	Addr           string        `env:"API_ADDR" envDefault:"127.0.0.1:8080"`
	RequestTimeout time.Duration `env:"API_REQUEST_TIMEOUT" envDefault:"3m"`
	MCPAddr        string        `env:"MCP_ADDR" envDefault:"127.0.0.1:8090"`
}

func NewAPIConfig(ctx context.Context) *APIConfig {
	c := &APIConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse API config")
	}
	return c
}
