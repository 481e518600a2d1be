package retrieval

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sandevgo/scoutbot/internal/config"
	"github.com/sandevgo/scoutbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func hit(text string, dist float64, url string, age time.Duration) core.RetrievalHit {
	return core.RetrievalHit{
		Text:     text,
		Distance: dist,
		Metadata: core.Metadata{URL: url, IngestedAt: now.Add(-age)},
	}
}

func TestScorer_RelevanceFloor(t *testing.T) {
	s := NewScorer()

	_, err := s.Score([]core.RetrievalHit{hit("far", 0.9, "u1", 0)}, now)
	assert.ErrorIs(t, err, ErrNoEvidence)

	ev, err := s.Score([]core.RetrievalHit{hit("edge", 0.7, "u1", 0)}, now)
	require.NoError(t, err, "similarity exactly at the floor is kept")
	assert.Len(t, ev.Hits, 1)
}

func TestScorer_FreshHitKeepsSimilarity(t *testing.T) {
	s := NewScorer()

	ranked := s.Rank([]core.RetrievalHit{hit("fresh", 0.5, "u1", 0)}, now)
	require.Len(t, ranked, 1)
	assert.InDelta(t, 1.0, ranked[0].Multiplier, 1e-9)
	assert.InDelta(t, 0.5, ranked[0].FinalScore, 1e-9)
}

func TestScorer_OldHitDecaysButNeverZero(t *testing.T) {
	s := NewScorer()

	fresh := s.Rank([]core.RetrievalHit{hit("fresh", 0.5, "u1", 0)}, now)[0]
	old := s.Rank([]core.RetrievalHit{hit("old", 0.5, "u2", 30*24*time.Hour)}, now)[0]

	assert.Less(t, old.FinalScore, fresh.FinalScore)
	assert.Greater(t, old.FinalScore, 0.0)
	assert.InDelta(t, DefaultDecayFloor, old.Multiplier, 1e-9, "30 days old hits the decay floor")
}

func TestScorer_MissingMetadataDefaults(t *testing.T) {
	s := NewScorer()

	ranked := s.Rank([]core.RetrievalHit{{Text: "no time", Distance: 0.2}}, now)
	require.Len(t, ranked, 1)
	assert.InDelta(t, 0.8, ranked[0].FinalScore, 1e-9, "missing ingestedAt means no age penalty")

	ranked = s.Rank([]core.RetrievalHit{{Text: "no dist", Distance: 1.0}}, now)
	assert.Empty(t, ranked)
}

func TestScorer_OutOfRangeDistanceClamped(t *testing.T) {
	s := NewScorer(WithRelevanceFloor(0))

	ranked := s.Rank([]core.RetrievalHit{
		hit("negative", -0.5, "u1", 0),
		hit("over", 1.7, "u2", 0),
	}, now)
	require.Len(t, ranked, 2)
	assert.InDelta(t, 1.0, ranked[0].Similarity, 1e-9)
	assert.InDelta(t, 0.0, ranked[1].Similarity, 1e-9)
}

func TestScorer_Ordering(t *testing.T) {
	s := NewScorer()

	hits := []core.RetrievalHit{
		hit("old but close", 0.05, "old", 72*time.Hour),  // 0.95 * 0.25
		hit("fresh and decent", 0.4, "fresh", time.Hour), // 0.6 * 0.96
		hit("tie a", 0.5, "tie-a", 0),
		hit("tie b", 0.5, "tie-b", 0),
	}

	ranked := s.Rank(hits, now)
	require.Len(t, ranked, 4)

	texts := make([]string, len(ranked))
	for i, r := range ranked {
		texts[i] = r.Text
	}
	assert.Equal(t, []string{"fresh and decent", "tie a", "tie b", "old but close"}, texts)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].FinalScore, ranked[i].FinalScore)
	}
}

func TestScorer_RelevantOldBeatsIrrelevantNew(t *testing.T) {
	s := NewScorer()

	ranked := s.Rank([]core.RetrievalHit{
		hit("irrelevant new", 0.68, "new", 0),       // 0.32 * 1.0
		hit("relevant old", 0.0, "old", 24*time.Hour), // 1.0 * 0.5
	}, now)
	require.Len(t, ranked, 2)
	assert.Equal(t, "relevant old", ranked[0].Text)
}

func TestScorer_Citations(t *testing.T) {
	tests := []struct {
		name string
		hits []core.RetrievalHit
		want []string
	}{
		{
			name: "dedup keeps first occurrence in rank order",
			hits: []core.RetrievalHit{
				hit("a1", 0.1, "a", 0),
				hit("a2", 0.15, "a", 0),
				hit("b", 0.2, "b", 0),
				hit("a3", 0.25, "a", 0),
			},
			want: []string{"a", "b"},
		},
		{
			name: "capped at three",
			hits: []core.RetrievalHit{
				hit("1", 0.1, "u1", 0),
				hit("2", 0.1, "u2", 0),
				hit("3", 0.1, "u3", 0),
				hit("4", 0.1, "u4", 0),
			},
			want: []string{"u1", "u2", "u3"},
		},
		{
			name: "hits without url are not cited",
			hits: []core.RetrievalHit{
				hit("memo", 0.1, "", 0),
				hit("news", 0.2, "u1", 0),
			},
			want: []string{"u1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewScorer().Score(tt.hits, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev.Citations)
			assert.LessOrEqual(t, len(ev.Citations), DefaultCitationCap)
		})
	}
}

func TestScorer_ContextCap(t *testing.T) {
	hits := make([]core.RetrievalHit, 20)
	for i := range hits {
		hits[i] = hit(fmt.Sprintf("text-%02d", i), 0.1+float64(i)*0.01, fmt.Sprintf("u%d", i), 0)
	}

	ev, err := NewScorer().Score(hits, now)
	require.NoError(t, err)

	lines := strings.Split(ev.ContextText, "\n")
	assert.Len(t, lines, DefaultContextCap)
	assert.Equal(t, "text-00", lines[0])
	assert.Equal(t, "text-14", lines[len(lines)-1])
	assert.Len(t, ev.Hits, 20)
}

func TestScorer_EmptyInput(t *testing.T) {
	ev, err := NewScorer().Score(nil, now)
	assert.ErrorIs(t, err, ErrNoEvidence)
	assert.Empty(t, ev.ContextText)
}

func TestNewScorerFromConfig(t *testing.T) {
	cfg := &config.RetrievalConfig{
		RelevanceFloor:  0.5,
		DecayCurve:      CurveExponential,
		DecayScaleHours: 12,
		DecayFloor:      0.2,
		ContextCap:      2,
		CitationCap:     1,
	}
	s, err := NewScorerFromConfig(cfg)
	require.NoError(t, err)

	ranked := s.Rank([]core.RetrievalHit{hit("half-life", 0.0, "u", 12*time.Hour)}, now)
	require.Len(t, ranked, 1)
	assert.InDelta(t, 0.5, ranked[0].Multiplier, 1e-9)

	_, err = NewScorerFromConfig(&config.RetrievalConfig{DecayCurve: "cubic", DecayFloor: 0.1})
	assert.Error(t, err)
}

func TestNewScorerFromConfig_DecayFloorRange(t *testing.T) {
	for _, floor := range []float64{0, -0.1, 1.5} {
		_, err := NewScorerFromConfig(&config.RetrievalConfig{DecayCurve: CurveHyperbolic, DecayFloor: floor})
		assert.Error(t, err, "floor %v", floor)
	}

	_, err := NewScorerFromConfig(&config.RetrievalConfig{DecayCurve: CurveHyperbolic, DecayScaleHours: 24, DecayFloor: 1})
	assert.NoError(t, err)
}
