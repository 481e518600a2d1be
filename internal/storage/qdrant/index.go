// Package qdrant stores records in a Qdrant server over gRPC.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/sandevgo/scoutbot/internal/config"
	"github.com/sandevgo/scoutbot/internal/core"
	"github.com/sandevgo/scoutbot/pkg/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const (
	fieldText       = "text"
	fieldSourceKey  = "source_key"
	fieldURL        = "url"
	fieldSource     = "source"
	fieldID         = "id"
	fieldIngestedAt = "ingested_at"
)

type Store struct {
	conn        *grpc.ClientConn
	collections qdrant.CollectionsClient
	points      qdrant.PointsClient
	embedder    core.Embedder
	dimensions  int
	prefix      string

	mu    sync.Mutex
	cache map[string]*Collection
}

var _ core.IndexStore = (*Store)(nil)

func NewStore(ctx context.Context, cfg *config.IndexConfig, embedder core.Embedder, dimensions int) (*Store, error) {
	addr := net.JoinHostPort(cfg.QdrantHost, cfg.QdrantPort)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant at %s: %w", addr, err)
	}

	log.FromCtx(ctx).Info().Str("addr", addr).Msg("qdrant index configured")

	return &Store{
		conn:        conn,
		collections: qdrant.NewCollectionsClient(conn),
		points:      qdrant.NewPointsClient(conn),
		embedder:    embedder,
		dimensions:  dimensions,
		prefix:      cfg.QdrantPrefix,
		cache:       make(map[string]*Collection),
	}, nil
}

func (s *Store) Collection(name string) core.Index {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cache[name]
	if !ok {
		full := name
		if s.prefix != "" {
			full = s.prefix + "_" + name
		}
		c = &Collection{store: s, name: name, remote: full}
		s.cache[name] = c
	}
	return c
}

func (s *Store) Close() error {
	return s.conn.Close()
}

type Collection struct {
	store  *Store
	name   string
	remote string

	mu    sync.Mutex
	ready bool
}

// ensure creates the remote collection on first use. A failed attempt is
// retried on the next call.
func (c *Collection) ensure(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return nil
	}

	_, err := c.store.collections.Get(ctx, &qdrant.GetCollectionInfoRequest{CollectionName: c.remote})
	if err != nil {
		st, ok := status.FromError(err)
		if !ok || st.Code() != codes.NotFound {
			return fmt.Errorf("failed to check collection %s: %w", c.remote, err)
		}

		log.FromCtx(ctx).Info().Str("collection", c.remote).Msg("creating qdrant collection")
		_, err = c.store.collections.Create(ctx, &qdrant.CreateCollection{
			CollectionName: c.remote,
			VectorsConfig: &qdrant.VectorsConfig{
				Config: &qdrant.VectorsConfig_Params{
					Params: &qdrant.VectorParams{
						Size:     uint64(c.store.dimensions),
						Distance: qdrant.Distance_Cosine,
					},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create collection %s: %w", c.remote, err)
		}
	}

	c.ready = true
	return nil
}

func (c *Collection) Ingest(ctx context.Context, rec core.IngestedRecord) error {
	if rec.Text == "" {
		return errors.New("empty record text")
	}
	if err := c.ensure(ctx); err != nil {
		return err
	}

	vec, err := c.store.embedder.Embed(ctx, rec.Text)
	if err != nil {
		return fmt.Errorf("embed record: %w", err)
	}

	if rec.SourceKey == "" {
		rec.SourceKey = uuid.NewString()
	}
	if rec.Metadata.IngestedAt.IsZero() {
		rec.Metadata.IngestedAt = rec.IngestedAt
	}
	if rec.Metadata.IngestedAt.IsZero() {
		rec.Metadata.IngestedAt = time.Now()
	}

	wait := true
	_, err = c.store.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.remote,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{{
			Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: pointID(c.name, rec.SourceKey)}},
			Payload: toPayload(rec),
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: vec}}},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

func (c *Collection) Retrieve(ctx context.Context, query string, k int) ([]core.RetrievalHit, error) {
	if k <= 0 {
		return nil, nil
	}
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}

	vec, err := c.store.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	resp, err := c.store.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: c.remote,
		Vector:         vec,
		Limit:          uint64(k),
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	hits := make([]core.RetrievalHit, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		hits = append(hits, fromScored(p))
	}
	return hits, nil
}

// pointID derives a stable UUID from the collection and source key so that
// re-ingesting a key overwrites the same point.
func pointID(collection, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(collection+"/"+key)).String()
}

func toPayload(rec core.IngestedRecord) map[string]*qdrant.Value {
	str := func(s string) *qdrant.Value {
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
	}
	return map[string]*qdrant.Value{
		fieldText:       str(rec.Text),
		fieldSourceKey:  str(rec.SourceKey),
		fieldURL:        str(rec.Metadata.URL),
		fieldSource:     str(rec.Metadata.Source),
		fieldID:         str(rec.Metadata.ID),
		fieldIngestedAt: {Kind: &qdrant.Value_IntegerValue{IntegerValue: rec.Metadata.IngestedAt.UnixMilli()}},
	}
}

// fromScored converts a cosine similarity score into a distance in [0,1].
// A missing payload timestamp stays zero so the scorer treats it as fresh.
func fromScored(p *qdrant.ScoredPoint) core.RetrievalHit {
	payload := p.GetPayload()
	h := core.RetrievalHit{
		Text:     payload[fieldText].GetStringValue(),
		Distance: clampDistance(1 - float64(p.GetScore())),
		Metadata: core.Metadata{
			URL:    payload[fieldURL].GetStringValue(),
			Source: payload[fieldSource].GetStringValue(),
			ID:     payload[fieldID].GetStringValue(),
		},
	}
	if ms := payload[fieldIngestedAt].GetIntegerValue(); ms > 0 {
		h.Metadata.IngestedAt = time.UnixMilli(ms)
	}
	return h
}

func clampDistance(d float64) float64 {
	switch {
	case math.IsNaN(d):
		return 1
	case d < 0:
		return 0
	case d > 1:
		return 1
	}
	return d
}
