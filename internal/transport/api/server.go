// Package api exposes the scout over a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sandevgo/scoutbot/internal/config"
	"github.com/sandevgo/scoutbot/internal/core"
	"github.com/sandevgo/scoutbot/internal/heartbeat"
	"github.com/sandevgo/scoutbot/internal/ingest/news"
	"github.com/sandevgo/scoutbot/internal/service/analyst"
	"github.com/sandevgo/scoutbot/pkg/log"
)

type Analyst interface {
	Analyze(ctx context.Context, prompt string) analyst.Report
	Ask(ctx context.Context, question string) analyst.Report
	Inject(title, content, category string) (string, string)
}

type Topics interface {
	Reconfigure(raw []string) news.TopicSet
	Topics() news.TopicSet
	IngestionCount() int64
}

type MemoryInjector interface {
	Inject(payload core.Payload) string
	Pending() int
}

type Server struct {
	echo      *echo.Echo
	addr      string
	timeout   time.Duration
	analyst   Analyst
	topics    Topics
	memory    MemoryInjector
	heartbeat *heartbeat.Log
}

func NewServer(
	ctx context.Context,
	cfg *config.APIConfig,
	a Analyst,
	topics Topics,
	memory MemoryInjector,
	hb *heartbeat.Log,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		addr:      cfg.Addr,
		timeout:   cfg.RequestTimeout,
		analyst:   a,
		topics:    topics,
		memory:    memory,
		heartbeat: hb,
	}

	logger := log.Component(ctx, "api")
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context())))
			return next(c)
		}
	})

	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/healthz", s.handleHealth)

	v1 := s.echo.Group("/v1")
	v1.POST("/analyze", s.handleAnalyze)
	v1.POST("/ask", s.handleAsk)
	v1.POST("/inject", s.handleInject)
	v1.GET("/topics", s.handleGetTopics)
	v1.PUT("/topics", s.handlePutTopics)
	v1.GET("/heartbeat", s.handleHeartbeat)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.addr).Msg("starting http api")
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(c.Request().Context())
	}
	return context.WithTimeout(c.Request().Context(), s.timeout)
}
