package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/scoutbot/pkg/log"
)

type NewsConfig struct {
	PollInterval  time.Duration `env:"NEWS_POLL_INTERVAL" envDefault:"60s"`
	LedgerCap     int           `env:"NEWS_LEDGER_CAP" envDefault:"1000"`
	DefaultTopics []string      `env:"NEWS_DEFAULT_TOPICS" envDefault:"Top Highlights" envSeparator:";"`
	FallbackTopic string        `env:"NEWS_FALLBACK_TOPIC" envDefault:"Latest News"`

	// Source settings (Google News RSS)
	BaseURL        string        `env:"NEWS_BASE_URL" envDefault:"https://news.google.com"`
	Language       string        `env:"NEWS_LANGUAGE" envDefault:"en"`
	Country        string        `env:"NEWS_COUNTRY" envDefault:"US"`
	MaxResults     int           `env:"NEWS_MAX_RESULTS" envDefault:"20"`
	RequestTimeout time.Duration `env:"NEWS_REQUEST_TIMEOUT" envDefault:"15s"`
	RatePerMinute  int           `env:"NEWS_RATE_PER_MINUTE" envDefault:"30"`
}

func NewNewsConfig(ctx context.Context) *NewsConfig {
	c := &NewsConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse News config")
	}
	return c
}
