package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/scoutbot/internal/config"
	"github.com/sandevgo/scoutbot/internal/core"
	"github.com/sandevgo/scoutbot/internal/heartbeat"
	"github.com/sandevgo/scoutbot/internal/ingest/news"
	"github.com/sandevgo/scoutbot/internal/service/analyst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyst struct {
	report   analyst.Report
	injected []string
	deadline bool
}

func (f *fakeAnalyst) Analyze(ctx context.Context, prompt string) analyst.Report {
	_, f.deadline = ctx.Deadline()
	r := f.report
	r.Query = prompt
	return r
}

func (f *fakeAnalyst) Ask(ctx context.Context, q string) analyst.Report {
	r := f.report
	r.Query = q
	return r
}

func (f *fakeAnalyst) Inject(title, content, category string) (string, string) {
	f.injected = append(f.injected, title+"/"+content+"/"+category)
	return "mem_1", "Success: '" + title + "' injected."
}

type fakeTopics struct {
	mu     sync.Mutex
	topics news.TopicSet
}

func (f *fakeTopics) Reconfigure(raw []string) news.TopicSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = news.TopicSet(news.Sanitize(raw))
	if len(f.topics) == 0 {
		f.topics = news.TopicSet{news.FallbackTopic}
	}
	return f.topics
}

func (f *fakeTopics) Topics() news.TopicSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.topics
}

func (f *fakeTopics) IngestionCount() int64 { return 12 }

type fakeMemory struct {
	payloads []core.Payload
}

func (f *fakeMemory) Inject(p core.Payload) string {
	f.payloads = append(f.payloads, p)
	return "mem_raw"
}

func (f *fakeMemory) Pending() int { return len(f.payloads) }

type fixture struct {
	srv     *Server
	analyst *fakeAnalyst
	topics  *fakeTopics
	memory  *fakeMemory
}

func newFixture() *fixture {
	f := &fixture{
		analyst: &fakeAnalyst{report: analyst.Report{Status: analyst.StatusOK, Text: "Bullish", Sources: []string{"https://e.com"}}},
		topics:  &fakeTopics{topics: news.TopicSet{news.DefaultTopic}},
		memory:  &fakeMemory{},
	}
	hb := heartbeat.New(0)
	hb.Append("Ingested: Markets open...")
	f.srv = NewServer(context.Background(), &config.APIConfig{Addr: "127.0.0.1:0", RequestTimeout: time.Minute},
		f.analyst, f.topics, f.memory, hb)
	return f
}

func (f *fixture) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Analyze(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		status     analyst.Status
		wantCode   int
		wantStatus string
	}{
		{"ok", `{"prompt":"chip exports"}`, analyst.StatusOK, http.StatusOK, "ok"},
		{"data gap is still 200", `{"prompt":"nothing"}`, analyst.StatusDataGap, http.StatusOK, "data_gap"},
		{"failure maps to 502", `{"prompt":"x"}`, analyst.StatusFailed, http.StatusBadGateway, "failed"},
		{"missing prompt", `{}`, analyst.StatusOK, http.StatusBadRequest, ""},
		{"bad json", `{"prompt":`, analyst.StatusOK, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.analyst.report.Status = tt.status

			rec := f.do(http.MethodPost, "/v1/analyze", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantStatus != "" {
				var r analyst.Report
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
				assert.Equal(t, tt.wantStatus, string(r.Status))
				assert.True(t, f.analyst.deadline, "request context carries the configured timeout")
			}
		})
	}
}

func TestServer_Ask(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodPost, "/v1/ask", `{"prompt":"what did I plan?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var r analyst.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, "what did I plan?", r.Query)
	assert.Equal(t, "Bullish", r.Text)
}

func TestServer_Inject(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPost, "/v1/inject", `{"title":"Plan","content":"Ship"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"Plan/Ship/general"}, f.analyst.injected)
	assert.Contains(t, rec.Body.String(), `"id":"mem_1"`)

	rec = f.do(http.MethodPost, "/v1/inject", `{"payload":{"note":"raw","priority":2}}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, f.memory.payloads, 1)
	assert.Equal(t, "raw", f.memory.payloads[0]["note"])
	assert.Contains(t, rec.Body.String(), `"id":"mem_raw"`)

	rec = f.do(http.MethodPost, "/v1/inject", `{"title":"only title"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Topics(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPut, "/v1/topics", `{"topics":["AI chips!!", "x", "Fed   rates"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp topicsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"AI chips", "Fed rates"}, resp.Topics)
	assert.Equal(t, int64(12), resp.IngestionCount)

	rec = f.do(http.MethodPut, "/v1/topics", `{"topics":["!!"]}`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{news.FallbackTopic}, resp.Topics)

	rec = f.do(http.MethodGet, "/v1/topics", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{news.FallbackTopic}, resp.Topics)
}

func TestServer_Heartbeat(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/v1/heartbeat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Intelligence Engine Initializing...")
	assert.Contains(t, rec.Body.String(), "Ingested: Markets open...")

	rec = f.do(http.MethodGet, "/v1/heartbeat", "", "Accept", "application/json")
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["log"], "Ingested: Markets open...")
	assert.EqualValues(t, 0, body["pending_memory"])
}

func TestServer_Health(t *testing.T) {
	rec := newFixture().do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
