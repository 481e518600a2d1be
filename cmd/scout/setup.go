package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/scoutbot/internal/config"
	"github.com/sandevgo/scoutbot/internal/core"
	"github.com/sandevgo/scoutbot/internal/heartbeat"
	"github.com/sandevgo/scoutbot/internal/ingest/memory"
	"github.com/sandevgo/scoutbot/internal/ingest/news"
	"github.com/sandevgo/scoutbot/internal/providers/llm"
	newsprovider "github.com/sandevgo/scoutbot/internal/providers/news"
	"github.com/sandevgo/scoutbot/internal/retrieval"
	"github.com/sandevgo/scoutbot/internal/service/analyst"
	"github.com/sandevgo/scoutbot/internal/service/command"
	"github.com/sandevgo/scoutbot/internal/storage/inmemory"
	"github.com/sandevgo/scoutbot/internal/storage/qdrant"
	"github.com/sandevgo/scoutbot/internal/storage/sqlite"
	"github.com/sandevgo/scoutbot/internal/transport/api"
	"github.com/sandevgo/scoutbot/internal/transport/cli"
	"github.com/sandevgo/scoutbot/internal/transport/mcp"
	"github.com/sandevgo/scoutbot/internal/transport/telegram"
	"github.com/sandevgo/scoutbot/pkg/log"
	"github.com/sandevgo/scoutbot/pkg/srv"
)

// App holds the wired components shared by the subcommands.
type App struct {
	AppCfg *config.AppConfig
	APICfg *config.APIConfig

	Store     core.IndexStore
	Heartbeat *heartbeat.Log
	News      *news.Connector
	Memory    *memory.Connector
	Analyst   *analyst.Service
	Router    *command.Router
}

// Services returns the background workers. Transports are added separately.
func (a *App) Services() []srv.Service {
	return []srv.Service{
		srv.NewCleanup(a.Store.Close),
		a.News,
		a.Memory,
	}
}

func NewApp(ctx context.Context) *App {
	logger := log.FromCtx(ctx)

	// init env
	err := initEnv(ctx, config.GetRuntimePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	newsCfg := config.NewNewsConfig(ctx)
	memCfg := config.NewMemoryConfig(ctx)
	retrievalCfg := config.NewRetrievalConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	indexCfg := config.NewIndexConfig(ctx)
	apiCfg := config.NewAPIConfig(ctx)

	// 2. LLM Provider (generation + embeddings)
	provider := llm.NewProvider(ctx, llmCfg)

	// 3. Index
	store, err := initStore(ctx, appCfg, indexCfg, provider)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize index")
	}
	newsIdx := store.Collection(core.CollectionNews)
	memoryIdx := store.Collection(core.CollectionMemory)

	// 4. Connectors
	hb := heartbeat.New(appCfg.HeartbeatBudget)
	newsConn := news.NewConnector(newsCfg, newsprovider.NewGoogle(newsCfg, nil), newsIdx, hb)
	memConn := memory.NewConnector(memCfg, memoryIdx)

	// 5. Analyst
	scorer, err := retrieval.NewScorerFromConfig(retrievalCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid retrieval config")
	}
	svc := analyst.New(retrievalCfg, scorer, provider, newsIdx, memoryIdx, newsConn, memConn)

	return &App{
		AppCfg:    appCfg,
		APICfg:    apiCfg,
		Store:     store,
		Heartbeat: hb,
		News:      newsConn,
		Memory:    memConn,
		Analyst:   svc,
		Router:    command.NewRouter(svc, newsConn, hb),
	}
}

func initStore(ctx context.Context, appCfg *config.AppConfig, cfg *config.IndexConfig, provider *llm.OpenAI) (core.IndexStore, error) {
	logger := log.FromCtx(ctx)
	logger.Info().Str("driver", cfg.Driver).Msg("initializing index")

	switch cfg.Driver {
	case config.IndexDriverSQLite:
		db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(db, provider, provider.Dimensions()), nil
	case config.IndexDriverQdrant:
		store, err := qdrant.NewStore(ctx, cfg, provider, provider.Dimensions())
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.IndexDriverMemory:
		return inmemory.NewStore(provider), nil
	default:
		return nil, fmt.Errorf("unknown index driver %q", cfg.Driver)
	}
}

func initTransports(ctx context.Context, app *App) ([]srv.Service, error) {
	var services []srv.Service
	cfg := app.AppCfg

	// HTTP API
	if cfg.EnableAPI {
		services = append(services, api.NewServer(ctx, app.APICfg, app.Analyst, app.News, app.Memory, app.Heartbeat))
	}

	// MCP over streamable HTTP
	if cfg.EnableMCP {
		services = append(services, mcp.NewServer(app.APICfg, app.Analyst, app.Heartbeat))
	}

	// Telegram Bot
	if cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, app.Router)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	// Interactive console
	if cfg.EnableCLI {
		rl, err := cli.NewReadLine(app.Router, cfg)
		if err != nil {
			return nil, err
		}
		services = append(services, rl)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
