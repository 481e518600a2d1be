// Package mcp publishes the scout as Model Context Protocol tools over
// streamable HTTP.
package mcp

import (
	"context"
	"errors"
	"net/http"
	"time"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/scoutbot/internal/config"
	"github.com/sandevgo/scoutbot/internal/core"
	"github.com/sandevgo/scoutbot/internal/heartbeat"
	"github.com/sandevgo/scoutbot/internal/service/analyst"
	"github.com/sandevgo/scoutbot/pkg/log"
)

type Analyst interface {
	Analyze(ctx context.Context, prompt string) analyst.Report
	Ask(ctx context.Context, question string) analyst.Report
	Inject(title, content, category string) (string, string)
}

type Server struct {
	tools     *server.MCPServer
	http      *server.StreamableHTTPServer
	addr      string
	analyst   Analyst
	heartbeat *heartbeat.Log
}

func NewServer(cfg *config.APIConfig, a Analyst, hb *heartbeat.Log) *Server {
	s := &Server{
		tools:     server.NewMCPServer(core.ScoutName, core.ScoutVersion, server.WithToolCapabilities(false), server.WithRecovery()),
		addr:      cfg.MCPAddr,
		analyst:   a,
		heartbeat: hb,
	}
	s.registerTools()
	s.http = server.NewStreamableHTTPServer(s.tools)
	return s
}

func (s *Server) registerTools() {
	s.tools.AddTool(mcpproto.NewTool("analyze",
		mcpproto.WithDescription("Retarget the live news stream at a topic, wait for fresh articles and return an intelligence report with sentiment, hot points and sources."),
		mcpproto.WithString("prompt", mcpproto.Required(), mcpproto.Description("Topic or question to analyze")),
	), s.handleAnalyze)

	s.tools.AddTool(mcpproto.NewTool("ask",
		mcpproto.WithDescription("Answer a question from the user's memory notes and recently indexed news."),
		mcpproto.WithString("question", mcpproto.Required(), mcpproto.Description("The question")),
	), s.handleAsk)

	s.tools.AddTool(mcpproto.NewTool("inject_memory",
		mcpproto.WithDescription("Store a note in the user's memory index."),
		mcpproto.WithString("title", mcpproto.Required()),
		mcpproto.WithString("content", mcpproto.Required()),
		mcpproto.WithString("category", mcpproto.Description("Defaults to general")),
	), s.handleInject)

	s.tools.AddTool(mcpproto.NewTool("heartbeat",
		mcpproto.WithDescription("Show the recent ingestion log."),
	), s.handleHeartbeat)
}

// Handler exposes the streamable HTTP endpoint.
func (s *Server) Handler() http.Handler {
	return s.http
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.addr).Msg("starting mcp server")
	if err := s.http.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func reportResult(r analyst.Report) *mcpproto.CallToolResult {
	if r.Status == analyst.StatusFailed {
		return mcpproto.NewToolResultError(r.Markdown())
	}
	return mcpproto.NewToolResultText(r.Markdown())
}

func (s *Server) handleAnalyze(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	return reportResult(s.analyst.Analyze(ctx, prompt)), nil
}

func (s *Server) handleAsk(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	return reportResult(s.analyst.Ask(ctx, question)), nil
}

func (s *Server) handleInject(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	category := req.GetString("category", "general")

	_, msg := s.analyst.Inject(title, content, category)
	return mcpproto.NewToolResultText(msg), nil
}

func (s *Server) handleHeartbeat(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	return mcpproto.NewToolResultText(s.heartbeat.String()), nil
}
