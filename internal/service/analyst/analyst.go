// Package analyst answers prompts from the live news and memory indices.
package analyst

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/scoutbot/internal/config"
	"github.com/sandevgo/scoutbot/internal/core"
	"github.com/sandevgo/scoutbot/internal/ingest/news"
	"github.com/sandevgo/scoutbot/internal/retrieval"
	"github.com/sandevgo/scoutbot/pkg/log"
	"golang.org/x/sync/errgroup"
)

const (
	keywordPrompt  = "Generate 5 precise news keywords for: %s. Return ONLY a valid JSON list of strings."
	analysisPrompt = "Context:\n%s\n\nAnalyze '%s' with Sentiment, 3 hotpoints and a brief Summary."
	answerPrompt   = "Answer based on:\n%s\n\nQ: %s"

	dataGapMessage = "DATA GAP: No relevant news found for '%s'."
	noMatchMessage = "No matching information found."
)

// NewsStream is the part of the news connector the analyst steers.
type NewsStream interface {
	Reconfigure(raw []string) news.TopicSet
	IngestionCount() int64
	WaitForIngestProgress(ctx context.Context, baseline, minDelta int64, timeout time.Duration) (bool, error)
}

type MemoryInjector interface {
	Inject(payload core.Payload) string
}

type Service struct {
	cfg      *config.RetrievalConfig
	scorer   *retrieval.Scorer
	gen      core.Generator
	news     core.Retriever
	memory   core.Retriever
	stream   NewsStream
	injector MemoryInjector

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(
	cfg *config.RetrievalConfig,
	scorer *retrieval.Scorer,
	gen core.Generator,
	newsIdx core.Retriever,
	memoryIdx core.Retriever,
	stream NewsStream,
	injector MemoryInjector,
) *Service {
	return &Service{
		cfg:      cfg,
		scorer:   scorer,
		gen:      gen,
		news:     newsIdx,
		memory:   memoryIdx,
		stream:   stream,
		injector: injector,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Analyze steers the news stream towards the prompt, waits for fresh
// articles, then writes a report from the ranked evidence.
func (s *Service) Analyze(ctx context.Context, prompt string) Report {
	logger := log.Component(ctx, "analyst")
	ctx = logger.WithContext(ctx)

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return failed(prompt, errors.New("empty prompt"))
	}

	keywords := s.keywords(ctx, prompt)

	baseline := s.stream.IngestionCount()
	topics := s.stream.Reconfigure(keywords)
	logger.Info().Strs("topics", topics).Int64("baseline", baseline).Msg("synchronizing intelligence streams")

	synced, err := s.stream.WaitForIngestProgress(ctx, baseline, int64(s.cfg.SyncMinDelta), s.cfg.SyncTimeout)
	if err != nil {
		return failed(prompt, fmt.Errorf("sync barrier: %w", err))
	}
	if !synced {
		logger.Warn().Dur("timeout", s.cfg.SyncTimeout).Msg("sync barrier timed out, using what is indexed")
	}

	if err := s.sleep(ctx, s.cfg.IndexSettleDelay); err != nil {
		return failed(prompt, err)
	}

	// An unreachable index reads as no data; only the log tells them apart.
	hits, err := s.news.Retrieve(ctx, prompt, s.cfg.NewsK)
	if err != nil {
		logger.Warn().Err(err).Msg("news retrieval failed, treating as empty")
		hits = nil
	}

	report := Report{Query: prompt, Keywords: keywords, Synced: synced}

	evidence, err := s.scorer.Score(hits, s.now())
	if errors.Is(err, retrieval.ErrNoEvidence) {
		report.Status = StatusDataGap
		report.Text = fmt.Sprintf(dataGapMessage, prompt)
		logger.Info().Int("hits", len(hits)).Msg("data gap")
		return report
	}
	if err != nil {
		return failed(prompt, err)
	}

	contextText, tokens := fitTokens(evidence.ContextText, s.cfg.MaxContextTokens)
	logger.Debug().
		Int("hits", len(hits)).
		Int("ranked", len(evidence.Hits)).
		Int("tokens", tokens).
		Msg("evidence selected")

	text, err := s.gen.Generate(ctx, fmt.Sprintf(analysisPrompt, contextText, prompt))
	if err != nil {
		logger.Error().Err(err).Msg("report generation failed")
		return failed(prompt, fmt.Errorf("generate report: %w", err))
	}

	report.Status = StatusOK
	report.Text = strings.TrimSpace(text)
	report.Sources = evidence.Citations
	return report
}

func (s *Service) keywords(ctx context.Context, prompt string) []string {
	raw, err := s.gen.Generate(ctx, fmt.Sprintf(keywordPrompt, prompt))
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("keyword generation failed, using prompt")
		return []string{prompt}
	}

	keywords := parseKeywords(raw)
	if len(keywords) == 0 {
		log.FromCtx(ctx).Warn().Str("raw", raw).Msg("malformed keyword list, using prompt")
		return []string{prompt}
	}
	return keywords
}

// Ask answers a question from user memory and recent news. Either index may
// fail without failing the answer.
func (s *Service) Ask(ctx context.Context, question string) Report {
	logger := log.Component(ctx, "oracle")
	ctx = logger.WithContext(ctx)

	question = strings.TrimSpace(question)
	if question == "" {
		return failed(question, errors.New("empty question"))
	}

	var memoryTexts, newsTexts []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := s.memory.Retrieve(gctx, question, s.cfg.OracleMemoryK)
		if err != nil {
			logger.Warn().Err(err).Msg("memory retrieval failed")
			return nil
		}
		for _, h := range hits {
			if h.Distance < s.cfg.OracleMemoryMaxDist {
				memoryTexts = append(memoryTexts, h.Text)
			}
		}
		return nil
	})
	g.Go(func() error {
		hits, err := s.news.Retrieve(gctx, question, s.cfg.OracleNewsK)
		if err != nil {
			logger.Warn().Err(err).Msg("news retrieval failed")
			return nil
		}
		for _, h := range hits {
			newsTexts = append(newsTexts, h.Text)
		}
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return failed(question, err)
	}

	if len(memoryTexts) == 0 && len(newsTexts) == 0 {
		return Report{Status: StatusDataGap, Query: question, Text: noMatchMessage}
	}

	var b strings.Builder
	if len(memoryTexts) > 0 {
		b.WriteString("--- MEMORY ---\n")
		b.WriteString(strings.Join(memoryTexts, "\n"))
		b.WriteString("\n")
	}
	if len(newsTexts) > 0 {
		b.WriteString("--- NEWS ---\n")
		b.WriteString(strings.Join(newsTexts, "\n"))
	}

	contextText, _ := fitTokens(strings.TrimSpace(b.String()), s.cfg.MaxContextTokens)
	text, err := s.gen.Generate(ctx, fmt.Sprintf(answerPrompt, contextText, question))
	if err != nil {
		logger.Error().Err(err).Msg("answer generation failed")
		return failed(question, fmt.Errorf("generate answer: %w", err))
	}

	return Report{Status: StatusOK, Query: question, Text: strings.TrimSpace(text)}
}

// Inject queues a memory note and returns its id with a confirmation line.
func (s *Service) Inject(title, content, category string) (string, string) {
	id := s.injector.Inject(core.Payload{
		"title":    title,
		"content":  content,
		"category": category,
		"time":     s.now().Format(time.ANSIC),
	})
	return id, fmt.Sprintf("Success: '%s' injected.", title)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
