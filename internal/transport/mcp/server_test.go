package mcp

import (
	"context"
	"testing"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/sandevgo/scoutbot/internal/config"
	"github.com/sandevgo/scoutbot/internal/heartbeat"
	"github.com/sandevgo/scoutbot/internal/service/analyst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyst struct {
	status   analyst.Status
	injected []string
}

func (f *fakeAnalyst) Analyze(_ context.Context, prompt string) analyst.Report {
	return analyst.Report{Status: f.status, Query: prompt, Text: "report: " + prompt, Error: "boom"}
}

func (f *fakeAnalyst) Ask(_ context.Context, q string) analyst.Report {
	return analyst.Report{Status: f.status, Query: q, Text: "answer: " + q, Error: "boom"}
}

func (f *fakeAnalyst) Inject(title, content, category string) (string, string) {
	f.injected = append(f.injected, title+"|"+content+"|"+category)
	return "mem_1", "Success: '" + title + "' injected."
}

func call(name string, args map[string]any) mcpproto.CallToolRequest {
	req := mcpproto.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcpproto.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := mcpproto.AsTextContent(res.Content[0])
	require.True(t, ok)
	return tc.Text
}

func newTestServer(status analyst.Status) (*Server, *fakeAnalyst) {
	a := &fakeAnalyst{status: status}
	hb := heartbeat.New(0)
	hb.Append("Ingested: Oil slides...")
	return NewServer(&config.APIConfig{MCPAddr: "127.0.0.1:0"}, a, hb), a
}

func TestServer_Analyze(t *testing.T) {
	s, _ := newTestServer(analyst.StatusOK)

	res, err := s.handleAnalyze(context.Background(), call("analyze", map[string]any{"prompt": "oil"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "report: oil", text(t, res))

	res, err = s.handleAnalyze(context.Background(), call("analyze", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_AskFailureIsToolError(t *testing.T) {
	s, _ := newTestServer(analyst.StatusFailed)

	res, err := s.handleAsk(context.Background(), call("ask", map[string]any{"question": "why?"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "System Error: boom", text(t, res))
}

func TestServer_Inject(t *testing.T) {
	s, a := newTestServer(analyst.StatusOK)

	res, err := s.handleInject(context.Background(), call("inject_memory", map[string]any{
		"title":   "Trip",
		"content": "Lisbon in May",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Success: 'Trip' injected.", text(t, res))
	assert.Equal(t, []string{"Trip|Lisbon in May|general"}, a.injected)

	res, err = s.handleInject(context.Background(), call("inject_memory", map[string]any{"title": "Trip"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_Heartbeat(t *testing.T) {
	s, _ := newTestServer(analyst.StatusOK)

	res, err := s.handleHeartbeat(context.Background(), call("heartbeat", nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "Ingested: Oil slides...")
}

func TestServer_ToolsRegistered(t *testing.T) {
	s, _ := newTestServer(analyst.StatusOK)

	names := make([]string, 0)
	for name := range s.tools.ListTools() {
		names = append(names, name)
	}
	assert.ElementsMatch(t, []string{"analyze", "ask", "inject_memory", "heartbeat"}, names)
}
