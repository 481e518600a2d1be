// Package retrieval ranks raw index hits by relevance blended with recency.
package retrieval

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sandevgo/scoutbot/internal/config"
	"github.com/sandevgo/scoutbot/internal/core"
)

const (
	DefaultRelevanceFloor = 0.30
	DefaultContextCap     = 15
	DefaultCitationCap    = 3
)

// ErrNoEvidence reports that nothing survived scoring. It is an expected
// outcome ("data gap"), not a failure, and must not be retried.
var ErrNoEvidence = errors.New("no evidence")

type ScoredHit struct {
	core.RetrievalHit
	Similarity float64
	Multiplier float64
	FinalScore float64
}

type Evidence struct {
	ContextText string
	Citations   []string
	Hits        []ScoredHit
}

// Scorer filters hits below a relevance floor, applies recency decay and
// selects a bounded evidence set. The ranking key is similarity times the
// decay multiplier.
type Scorer struct {
	relevanceFloor float64
	decay          DecayPolicy
	decayFloor     float64
	contextCap     int
	citationCap    int
}

type Option func(*Scorer)

func WithRelevanceFloor(f float64) Option { return func(s *Scorer) { s.relevanceFloor = f } }
func WithDecay(d DecayPolicy) Option      { return func(s *Scorer) { s.decay = d } }
func WithDecayFloor(f float64) Option     { return func(s *Scorer) { s.decayFloor = f } }
func WithContextCap(n int) Option         { return func(s *Scorer) { s.contextCap = n } }
func WithCitationCap(n int) Option        { return func(s *Scorer) { s.citationCap = n } }

func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		relevanceFloor: DefaultRelevanceFloor,
		decay:          Hyperbolic(DefaultDecayScaleHours),
		decayFloor:     DefaultDecayFloor,
		contextCap:     DefaultContextCap,
		citationCap:    DefaultCitationCap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func NewScorerFromConfig(cfg *config.RetrievalConfig) (*Scorer, error) {
	if cfg.DecayFloor <= 0 || cfg.DecayFloor > 1 {
		return nil, fmt.Errorf("decay floor %v out of range (0,1]", cfg.DecayFloor)
	}
	decay, err := NewDecayPolicy(cfg)
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithRelevanceFloor(cfg.RelevanceFloor),
		WithDecay(decay),
		WithDecayFloor(cfg.DecayFloor),
	}
	if cfg.ContextCap > 0 {
		opts = append(opts, WithContextCap(cfg.ContextCap))
	}
	if cfg.CitationCap > 0 {
		opts = append(opts, WithCitationCap(cfg.CitationCap))
	}
	return NewScorer(opts...), nil
}

// Rank scores every hit that clears the relevance floor and returns them
// ordered by final score, ties kept in retrieval order.
func (s *Scorer) Rank(hits []core.RetrievalHit, now time.Time) []ScoredHit {
	scored := make([]ScoredHit, 0, len(hits))

	for _, h := range hits {
		similarity := 1 - clamp(h.Distance, 0, 1)
		if similarity < s.relevanceFloor {
			continue
		}

		ingestedAt := h.Metadata.IngestedAt
		if ingestedAt.IsZero() {
			ingestedAt = now
		}
		ageHours := now.Sub(ingestedAt).Hours()
		if ageHours < 0 {
			ageHours = 0
		}

		multiplier := clamp(s.decay.Multiplier(ageHours), s.decayFloor, 1.0)
		scored = append(scored, ScoredHit{
			RetrievalHit: h,
			Similarity:   similarity,
			Multiplier:   multiplier,
			FinalScore:   similarity * multiplier,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})
	return scored
}

// Score ranks the hits and builds the evidence set: the top contextCap texts
// as context and up to citationCap distinct URLs in rank order. An empty
// ranking yields ErrNoEvidence.
func (s *Scorer) Score(hits []core.RetrievalHit, now time.Time) (Evidence, error) {
	ranked := s.Rank(hits, now)
	if len(ranked) == 0 {
		return Evidence{}, ErrNoEvidence
	}

	top := ranked
	if len(top) > s.contextCap {
		top = top[:s.contextCap]
	}
	texts := make([]string, len(top))
	for i, h := range top {
		texts[i] = h.Text
	}

	return Evidence{
		ContextText: strings.Join(texts, "\n"),
		Citations:   s.citations(ranked),
		Hits:        ranked,
	}, nil
}

func (s *Scorer) citations(ranked []ScoredHit) []string {
	seen := make(map[string]struct{}, s.citationCap)
	out := make([]string, 0, s.citationCap)

	for _, h := range ranked {
		if len(out) >= s.citationCap {
			break
		}
		url := h.Metadata.URL
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}
	return out
}
