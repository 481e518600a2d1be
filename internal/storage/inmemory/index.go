// Package inmemory is a brute-force cosine index for tests and ephemeral runs.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/scoutbot/internal/core"
)

type entry struct {
	rec    core.IngestedRecord
	vector []float32
}

type Store struct {
	embedder core.Embedder

	mu          sync.Mutex
	collections map[string]*Collection
}

var _ core.IndexStore = (*Store)(nil)

func NewStore(embedder core.Embedder) *Store {
	return &Store{
		embedder:    embedder,
		collections: make(map[string]*Collection),
	}
}

func (s *Store) Collection(name string) core.Index {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &Collection{embedder: s.embedder, byKey: make(map[string]int)}
		s.collections[name] = c
	}
	return c
}

func (s *Store) Close() error { return nil }

// Collection keeps records in insertion order; re-ingesting a key replaces
// the record in place.
type Collection struct {
	embedder core.Embedder

	mu      sync.RWMutex
	entries []entry
	byKey   map[string]int
}

func (c *Collection) Ingest(ctx context.Context, rec core.IngestedRecord) error {
	if rec.Text == "" {
		return errors.New("empty record text")
	}
	vec, err := c.embedder.Embed(ctx, rec.Text)
	if err != nil {
		return fmt.Errorf("embed record: %w", err)
	}

	if rec.SourceKey == "" {
		rec.SourceKey = uuid.NewString()
	}
	if rec.IngestedAt.IsZero() {
		rec.IngestedAt = time.Now()
	}
	if rec.Metadata.IngestedAt.IsZero() {
		rec.Metadata.IngestedAt = rec.IngestedAt
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.byKey[rec.SourceKey]; ok {
		c.entries[i] = entry{rec: rec, vector: vec}
		return nil
	}
	c.byKey[rec.SourceKey] = len(c.entries)
	c.entries = append(c.entries, entry{rec: rec, vector: vec})
	return nil
}

func (c *Collection) Retrieve(ctx context.Context, query string, k int) ([]core.RetrievalHit, error) {
	if k <= 0 {
		return nil, nil
	}
	qvec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	c.mu.RLock()
	hits := make([]core.RetrievalHit, 0, len(c.entries))
	for _, e := range c.entries {
		hits = append(hits, core.RetrievalHit{
			Text:     e.rec.Text,
			Distance: CosineDistance(qvec, e.vector),
			Metadata: e.rec.Metadata,
		})
	}
	c.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CosineDistance returns 1-cos(a,b) clamped to [0,1]. Mismatched or zero
// vectors are maximally distant.
func CosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	d := 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
	return math.Max(0, math.Min(1, d))
}
