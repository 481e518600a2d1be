package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sandevgo/scoutbot/internal/core"
	"github.com/sandevgo/scoutbot/internal/service/analyst"
)

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type injectRequest struct {
	Title    string       `json:"title"`
	Content  string       `json:"content"`
	Category string       `json:"category"`
	Payload  core.Payload `json:"payload,omitempty"`
}

type injectResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type topicsRequest struct {
	Topics []string `json:"topics"`
}

type topicsResponse struct {
	Topics         []string `json:"topics"`
	IngestionCount int64    `json:"ingestion_count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// reportStatus maps a report outcome to an HTTP status. A data gap is a
// successful answer that happens to be empty.
func reportStatus(r analyst.Report) int {
	if r.Status == analyst.StatusFailed {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// POST /v1/analyze
func (s *Server) handleAnalyze(c echo.Context) error {
	var req promptRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return badRequest(c, "prompt is required")
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	r := s.analyst.Analyze(ctx, req.Prompt)
	return c.JSON(reportStatus(r), r)
}

// POST /v1/ask
func (s *Server) handleAsk(c echo.Context) error {
	var req promptRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return badRequest(c, "prompt is required")
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	r := s.analyst.Ask(ctx, req.Prompt)
	return c.JSON(reportStatus(r), r)
}

// POST /v1/inject accepts either a titled note or a raw JSON payload.
func (s *Server) handleInject(c echo.Context) error {
	var req injectRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if len(req.Payload) > 0 {
		id := s.memory.Inject(req.Payload)
		return c.JSON(http.StatusAccepted, injectResponse{ID: id, Message: "Success: payload injected."})
	}

	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return badRequest(c, "title and content are required")
	}
	if req.Category == "" {
		req.Category = "general"
	}

	id, msg := s.analyst.Inject(req.Title, req.Content, req.Category)
	return c.JSON(http.StatusAccepted, injectResponse{ID: id, Message: msg})
}

// GET /v1/topics
func (s *Server) handleGetTopics(c echo.Context) error {
	return c.JSON(http.StatusOK, topicsResponse{
		Topics:         s.topics.Topics(),
		IngestionCount: s.topics.IngestionCount(),
	})
}

// PUT /v1/topics
func (s *Server) handlePutTopics(c echo.Context) error {
	var req topicsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	return c.JSON(http.StatusOK, topicsResponse{
		Topics:         s.topics.Reconfigure(req.Topics),
		IngestionCount: s.topics.IngestionCount(),
	})
}

// GET /v1/heartbeat
func (s *Server) handleHeartbeat(c echo.Context) error {
	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return c.JSON(http.StatusOK, map[string]any{
			"log":            s.heartbeat.String(),
			"pending_memory": s.memory.Pending(),
		})
	}
	return c.String(http.StatusOK, s.heartbeat.String())
}
