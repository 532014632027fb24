// Package memory provides an in-memory Store used by tests and the -memory
// flag. Chunks keep their insertion order, which makes query-time scoring
// deterministic.
package memory

import (
	"context"
	"sort"
	"sync"

	"knowledge-inbox/internal/models"
	"knowledge-inbox/internal/store"
)

const previewLen = 200

var _ store.Store = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	items  []models.Item
	chunks []models.Chunk
}

func NewStore() *Store { return &Store{} }

func (s *Store) PutItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, *item)
	return nil
}

func (s *Store) PutChunk(_ context.Context, chunk *models.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *chunk
	c.Embedding = append([]float32(nil), chunk.Embedding...)
	s.chunks = append(s.chunks, c)
	return nil
}

func (s *Store) GetAllChunkVectors(_ context.Context) ([]models.ChunkVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vectors := make([]models.ChunkVector, 0, len(s.chunks))
	for _, c := range s.chunks {
		vectors = append(vectors, models.ChunkVector{ID: c.ID, Content: c.Content, Embedding: c.Embedding})
	}
	return vectors, nil
}

func (s *Store) GetItem(_ context.Context, id string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			found := item
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetChunksForItem(_ context.Context, itemID string) ([]models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chunks []models.Chunk
	for _, c := range s.chunks {
		if c.ItemID == itemID {
			chunks = append(chunks, c)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ChunkIndex < chunks[j].ChunkIndex })
	return chunks, nil
}

func (s *Store) ListItems(_ context.Context) ([]models.ItemSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]models.ItemSummary, 0, len(s.items))
	for _, item := range s.items {
		summaries = append(summaries, models.ItemSummary{
			ID:         item.ID,
			SourceType: item.SourceType,
			SourceURL:  item.SourceURL,
			Preview:    preview(item.Content),
			CreatedAt:  item.CreatedAt,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool { return summaries[i].CreatedAt.After(summaries[j].CreatedAt) })
	return summaries, nil
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLen {
		return content
	}
	return string(runes[:previewLen])
}
