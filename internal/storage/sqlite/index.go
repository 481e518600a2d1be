package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/scoutbot/internal/core"
	"github.com/sandevgo/scoutbot/pkg/log"
)

var collectionName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Store keeps every record in the shared records table and one vec0 table
// per collection, joined on records.id = rowid.
type Store struct {
	db         *sql.DB
	embedder   core.Embedder
	dimensions int

	mu          sync.Mutex
	collections map[string]*Collection
}

var _ core.IndexStore = (*Store)(nil)

func NewStore(db *sql.DB, embedder core.Embedder, dimensions int) *Store {
	return &Store{
		db:          db,
		embedder:    embedder,
		dimensions:  dimensions,
		collections: make(map[string]*Collection),
	}
}

func (s *Store) Collection(name string) core.Index {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &Collection{store: s, name: name, vecTable: "vec_" + name}
		s.collections[name] = c
	}
	return c
}

func (s *Store) Close() error {
	return s.db.Close()
}

type Collection struct {
	store    *Store
	name     string
	vecTable string

	once    sync.Once
	initErr error
}

func (c *Collection) ensureTable(ctx context.Context) error {
	c.once.Do(func() {
		if !collectionName.MatchString(c.name) {
			c.initErr = fmt.Errorf("invalid collection name: %q", c.name)
			return
		}
		if c.store.dimensions <= 0 {
			c.initErr = errors.New("embedding dimensions must be positive")
			return
		}
		query := fmt.Sprintf(
			`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(embedding float[%d] distance_metric=cosine)`,
			c.vecTable, c.store.dimensions,
		)
		if _, err := c.store.db.ExecContext(ctx, query); err != nil {
			c.initErr = fmt.Errorf("failed to create vector table %s: %w", c.vecTable, err)
		}
	})
	return c.initErr
}

// Ingest upserts the record by (collection, source key). vec0 has no UPDATE,
// so an existing vector is deleted and reinserted under the same rowid.
func (c *Collection) Ingest(ctx context.Context, rec core.IngestedRecord) error {
	if err := c.ensureTable(ctx); err != nil {
		return err
	}
	if rec.Text == "" {
		return errors.New("empty record text")
	}

	vec, err := c.store.embedder.Embed(ctx, rec.Text)
	if err != nil {
		return fmt.Errorf("embed record: %w", err)
	}
	if len(vec) != c.store.dimensions {
		return fmt.Errorf("embedding has %d dimensions, index expects %d", len(vec), c.store.dimensions)
	}

	if rec.SourceKey == "" {
		rec.SourceKey = uuid.NewString()
	}
	ingestedAt := rec.Metadata.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = rec.IngestedAt
	}
	if ingestedAt.IsZero() {
		ingestedAt = time.Now()
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO records (collection, source_key, text, url, source, record_id, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (collection, source_key) DO UPDATE SET
			text = excluded.text,
			url = excluded.url,
			source = excluded.source,
			record_id = excluded.record_id,
			ingested_at = excluded.ingested_at
		RETURNING id`,
		c.name, rec.SourceKey, rec.Text, rec.Metadata.URL, rec.Metadata.Source, rec.Metadata.ID,
		ingestedAt.UnixMilli(),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE rowid = ?`, c.vecTable), id); err != nil {
		return fmt.Errorf("failed to delete old vector: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (rowid, embedding) VALUES (?, ?)`, c.vecTable),
		id, serializeVector(vec),
	); err != nil {
		return fmt.Errorf("failed to insert vector: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.FromCtx(ctx).Debug().
		Str("collection", c.name).
		Str("key", rec.SourceKey).
		Int64("id", id).
		Msg("record indexed")
	return nil
}

func (c *Collection) Retrieve(ctx context.Context, query string, k int) ([]core.RetrievalHit, error) {
	if k <= 0 {
		return nil, nil
	}
	if err := c.ensureTable(ctx); err != nil {
		return nil, err
	}

	vec, err := c.store.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := c.store.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT r.text, r.url, r.source, r.record_id, r.ingested_at, v.distance
		FROM %s v
		JOIN records r ON r.id = v.rowid
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance`, c.vecTable),
		serializeVector(vec), k,
	)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var hits []core.RetrievalHit
	for rows.Next() {
		var (
			h          core.RetrievalHit
			ingestedMs int64
			dist       sql.NullFloat64
		)
		if err := rows.Scan(&h.Text, &h.Metadata.URL, &h.Metadata.Source, &h.Metadata.ID, &ingestedMs, &dist); err != nil {
			return nil, fmt.Errorf("failed to scan hit: %w", err)
		}
		h.Distance = 1
		if dist.Valid {
			h.Distance = normalizeDistance(dist.Float64)
		}
		if ingestedMs > 0 {
			h.Metadata.IngestedAt = time.UnixMilli(ingestedMs)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}

func (c *Collection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = ?`, c.name,
	).Scan(&n)
	return n, err
}
