// Package store defines the persistence contract consumed by the retrieval
// pipeline. Implementations live in subpackages; the pipeline itself never
// depends on a concrete storage engine.
package store

import (
	"context"
	"errors"

	"knowledge-inbox/internal/models"
)

var ErrNotFound = errors.New("not found")

type Store interface {
	PutItem(ctx context.Context, item *models.Item) error
	PutChunk(ctx context.Context, chunk *models.Chunk) error

	// GetAllChunkVectors returns every persisted chunk for exhaustive
	// query-time scoring. No index is assumed.
	GetAllChunkVectors(ctx context.Context) ([]models.ChunkVector, error)

	GetItem(ctx context.Context, id string) (*models.Item, error)
	GetChunksForItem(ctx context.Context, itemID string) ([]models.Chunk, error)

	// ListItems returns item summaries, newest first.
	ListItems(ctx context.Context) ([]models.ItemSummary, error)
}
