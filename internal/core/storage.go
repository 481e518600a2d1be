package core

import "context"

// Sink receives records emitted by a connector. Primary key uniqueness is
// enforced by the sink, keyed on SourceKey.
type Sink interface {
	Ingest(ctx context.Context, rec IngestedRecord) error
}

// Retriever answers similarity queries against one collection.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]RetrievalHit, error)
}

// Index is a single queryable collection.
type Index interface {
	Sink
	Retriever
}

// IndexStore hands out per-collection indices backed by the same storage.
type IndexStore interface {
	Collection(name string) Index
	Close() error
}
