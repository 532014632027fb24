package models

import "time"

// SourceType identifies where an item's content came from.
type SourceType string

const (
	SourceNote SourceType = "note"
	SourceURL  SourceType = "url"
)

// Item is one ingested unit of content. Items are immutable after creation.
type Item struct {
	ID         string
	Content    string
	SourceType SourceType
	SourceURL  string
	CreatedAt  time.Time
}

// Chunk is a contiguous, possibly overlapping substring of an item's content,
// the unit of embedding and retrieval. ChunkIndex values for a given item form
// a contiguous 0..N-1 sequence matching chunk order in the source text.
type Chunk struct {
	ID         string
	ItemID     string
	Content    string
	Embedding  []float32
	ChunkIndex int
}

// ChunkVector is the scoring view of a chunk.
type ChunkVector struct {
	ID        string
	Content   string
	Embedding []float32
}

// ScoredChunk pairs a chunk with its cosine similarity to a query vector.
// Produced only during query processing, never persisted.
type ScoredChunk struct {
	ChunkVector
	Similarity float64
}

// Source is one entry of a query result's provenance list.
type Source struct {
	Preview    string  `json:"preview"`
	Similarity float64 `json:"similarity"`
}

// QueryResult is the answer to a question plus the ranked sources it was
// derived from.
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// ItemSummary is the listing view of an item, with content truncated to a
// short preview.
type ItemSummary struct {
	ID         string
	SourceType SourceType
	SourceURL  string
	Preview    string
	CreatedAt  time.Time
}
