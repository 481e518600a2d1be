package core

import "time"

const (
	ScoutName      = "ScoutBot"
	ScoutUserAgent = "ScoutBot-Agent/0.1"
	ScoutVersion   = "0.1.0"
)

// Collections served by the index.
const (
	CollectionNews   = "news"
	CollectionMemory = "memory"
)

// SourceUserJSON tags records that came from injected memory notes.
const SourceUserJSON = "User_JSON"

// IngestedRecord is what a connector hands to the index. It is never mutated
// after emission.
type IngestedRecord struct {
	Text       string
	SourceKey  string
	IngestedAt time.Time
	Metadata   Metadata
}

// Metadata travels with a record into the index and comes back with every hit.
type Metadata struct {
	URL        string    `json:"url,omitempty"`
	IngestedAt time.Time `json:"ingested_at,omitempty"`
	Source     string    `json:"source,omitempty"`
	ID         string    `json:"id,omitempty"`
}

// RetrievalHit is one similarity-ranked match returned by the index.
// Distance is in [0,1], lower is more similar.
type RetrievalHit struct {
	Text     string   `json:"text"`
	Distance float64  `json:"dist"`
	Metadata Metadata `json:"metadata"`
}

// Article is a single item returned by a news search.
type Article struct {
	Title       string
	Description string
	URL         string
	Publisher   string
	PublishedAt time.Time
}

// Payload is a user-supplied memory note.
type Payload map[string]any
