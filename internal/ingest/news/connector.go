package news

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/sandevgo/scoutbot/internal/config"
	"github.com/sandevgo/scoutbot/internal/core"
	"github.com/sandevgo/scoutbot/internal/heartbeat"
	"github.com/sandevgo/scoutbot/pkg/log"
)

const (
	DefaultPollInterval = 60 * time.Second
	DefaultLedgerCap    = 1000
	DefaultTopic        = "Top Highlights"
	FallbackTopic       = "Latest News"

	// TopHeadlines labels the always-included top stories query in outcomes.
	TopHeadlines = "top headlines"

	heartbeatTitleLen = 55
)

// TopicSet is an ordered, non-empty list of sanitized queries. A TopicSet is
// replaced wholesale and never modified after it is installed.
type TopicSet []string

type QueryStatus string

const (
	StatusOK     QueryStatus = "ok"
	StatusEmpty  QueryStatus = "empty"
	StatusFailed QueryStatus = "failed"
)

// QueryOutcome records what happened to one query of a round.
type QueryOutcome struct {
	Topic   string
	Status  QueryStatus
	Results int
	Emitted int
	Err     error
}

type RoundReport struct {
	Outcomes      []QueryOutcome
	Emitted       int
	LedgerCleared bool
}

// Connector polls a news source for the active topics plus top headlines and
// emits unseen articles into the sink.
type Connector struct {
	source    core.NewsSource
	sink      core.Sink
	heartbeat *heartbeat.Log

	interval time.Duration
	fallback string

	// topics is guarded by mu. The lock is only held to swap or copy.
	mu     sync.Mutex
	topics TopicSet

	// roundMu serializes rounds; the ledger belongs to whoever holds it.
	roundMu sync.Mutex
	ledger  *Ledger

	count atomic.Int64

	notifyMu sync.Mutex
	notify   chan struct{}

	now func() time.Time
}

func NewConnector(cfg *config.NewsConfig, source core.NewsSource, sink core.Sink, hb *heartbeat.Log) *Connector {
	c := &Connector{
		source:    source,
		sink:      sink,
		heartbeat: hb,
		interval:  DefaultPollInterval,
		fallback:  FallbackTopic,
		topics:    TopicSet{DefaultTopic},
		ledger:    NewLedger(DefaultLedgerCap),
		notify:    make(chan struct{}),
		now:       time.Now,
	}

	if cfg != nil {
		if cfg.PollInterval > 0 {
			c.interval = cfg.PollInterval
		}
		if cfg.LedgerCap > 0 {
			c.ledger = NewLedger(cfg.LedgerCap)
		}
		if cfg.FallbackTopic != "" {
			c.fallback = cfg.FallbackTopic
		}
		if defaults := Sanitize(cfg.DefaultTopics); len(defaults) > 0 {
			c.topics = defaults
		}
	}

	return c
}

func (c *Connector) Start(ctx context.Context) error {
	logger := log.Component(ctx, "news_connector")
	logger.Info().Dur("interval", c.interval).Msg("starting news connector")

	for {
		c.RunRound(logger.WithContext(ctx))

		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down news connector")
			return nil
		case <-time.After(c.interval):
		}
	}
}

func (c *Connector) Shutdown(ctx context.Context) error {
	return nil
}

// Reconfigure installs a new topic list. Inputs that do not survive
// sanitization are dropped; an empty result falls back to a single default
// topic. It never fails and never waits on a running round.
func (c *Connector) Reconfigure(raw []string) TopicSet {
	next := TopicSet(Sanitize(raw))
	if len(next) == 0 {
		next = TopicSet{c.fallback}
	}

	c.mu.Lock()
	c.topics = next
	c.mu.Unlock()

	if c.heartbeat != nil {
		c.heartbeat.Append(fmt.Sprintf("\n[SYSTEM]: Tracking %d refined streams...", len(next)))
	}

	return clone(next)
}

// Topics returns a copy of the active topic set.
func (c *Connector) Topics() TopicSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.topics)
}

// IngestionCount is the number of articles emitted since start.
func (c *Connector) IngestionCount() int64 {
	return c.count.Load()
}

// RunRound performs one ingestion round: top headlines first, then each
// active topic in order. A failing query never aborts the round.
func (c *Connector) RunRound(ctx context.Context) RoundReport {
	c.roundMu.Lock()
	defer c.roundMu.Unlock()

	logger := log.FromCtx(ctx)
	topics := c.Topics()

	var report RoundReport

	outcome := c.ingest(ctx, TopHeadlines, c.source.TopNews)
	report.Outcomes = append(report.Outcomes, outcome)
	report.Emitted += outcome.Emitted

	for _, topic := range topics {
		if ctx.Err() != nil {
			break
		}
		outcome := c.ingest(ctx, topic, func(ctx context.Context) ([]core.Article, error) {
			return c.source.Search(ctx, topic)
		})
		report.Outcomes = append(report.Outcomes, outcome)
		report.Emitted += outcome.Emitted
	}

	if c.ledger.ClearIfFull() {
		report.LedgerCleared = true
		logger.Debug().Int("epoch", c.ledger.Epoch()).Msg("dedup ledger cleared")
	}

	logger.Debug().
		Int("queries", len(report.Outcomes)).
		Int("emitted", report.Emitted).
		Int64("total", c.IngestionCount()).
		Msg("news round finished")

	return report
}

func (c *Connector) ingest(ctx context.Context, topic string, fetch func(context.Context) ([]core.Article, error)) QueryOutcome {
	logger := log.FromCtx(ctx)
	outcome := QueryOutcome{Topic: topic}

	articles, err := fetch(ctx)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		logger.Warn().Err(err).Str("topic", topic).Msg("news query failed")
		return outcome
	}

	outcome.Results = len(articles)
	if len(articles) == 0 {
		outcome.Status = StatusEmpty
		return outcome
	}
	outcome.Status = StatusOK

	for _, a := range articles {
		if a.URL == "" || c.ledger.Seen(a.URL) {
			continue
		}
		if err := c.emit(ctx, a); err != nil {
			logger.Warn().Err(err).Str("url", a.URL).Msg("failed to emit article")
			continue
		}
		outcome.Emitted++
	}

	return outcome
}

func (c *Connector) emit(ctx context.Context, a core.Article) error {
	now := c.now()
	rec := core.IngestedRecord{
		Text:       fmt.Sprintf("NEWS: %s | SUMMARY: %s", a.Title, a.Description),
		SourceKey:  a.URL,
		IngestedAt: now,
		Metadata: core.Metadata{
			URL:        a.URL,
			IngestedAt: now,
			Source:     a.Publisher,
		},
	}

	if err := c.sink.Ingest(ctx, rec); err != nil {
		return err
	}

	c.ledger.Add(a.URL)
	c.count.Add(1)
	if c.heartbeat != nil {
		c.heartbeat.Append(fmt.Sprintf("Ingested: %s...", truncate(a.Title, heartbeatTitleLen)))
	}
	c.signal()

	log.FromCtx(ctx).Debug().Str("url", a.URL).Msg("article ingested")
	return nil
}

// WaitForIngestProgress blocks until the ingestion counter reaches
// baseline+minDelta or the timeout elapses. A timeout is not an error; it
// only reports false. Cancellation of ctx returns false and ctx.Err().
func (c *Connector) WaitForIngestProgress(ctx context.Context, baseline, minDelta int64, timeout time.Duration) (bool, error) {
	target := baseline + minDelta

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		// Take the channel before reading the counter so an emission
		// between the two cannot be missed.
		ch := c.progress()
		if c.count.Load() >= target {
			return true, nil
		}

		select {
		case <-ch:
		case <-timer.C:
			return c.count.Load() >= target, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

func (c *Connector) progress() <-chan struct{} {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	return c.notify
}

func (c *Connector) signal() {
	c.notifyMu.Lock()
	close(c.notify)
	c.notify = make(chan struct{})
	c.notifyMu.Unlock()
}

func clone(t TopicSet) TopicSet {
	out := make(TopicSet, len(t))
	copy(out, t)
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
