// Package rag coordinates the retrieval pipeline: ingestion chunks and embeds
// content into the store, querying scores every stored chunk against the
// question and composes an answer from the best matches.
package rag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"knowledge-inbox/internal/chunker"
	"knowledge-inbox/internal/composer"
	"knowledge-inbox/internal/embedding"
	"knowledge-inbox/internal/models"
	"knowledge-inbox/internal/store"
)

const (
	DefaultTopK = 5

	// Chunks scoring at or below this are near-orthogonal noise.
	similarityFloor = 0.03

	sourcePreviewLen = 150

	noContentAnswer = "I don't have any content yet. Please add some notes or URLs first."
	noMatchAnswer   = "I couldn't find relevant information in your notes. Try rephrasing the question or adding more content."
)

// ErrNoChunks signals that chunking produced nothing from the ingested
// content. The item row is already persisted when this is returned; callers
// should report the ingestion as failed and either retry or delete the
// orphaned item.
var ErrNoChunks = errors.New("no chunks generated from content")

type Service struct {
	store    store.Store
	chunker  *chunker.Chunker
	embedder *embedding.Embedder
	composer composer.Composer
	local    *composer.Local
}

// NewService wires the pipeline. A nil comp selects local-only answer
// generation; a non-nil one is still backed by the local composer as a
// fallback.
func NewService(st store.Store, ch *chunker.Chunker, em *embedding.Embedder, comp composer.Composer) *Service {
	local := composer.NewLocal()
	if comp == nil {
		comp = local
	}
	return &Service{store: st, chunker: ch, embedder: em, composer: comp, local: local}
}

type IngestResult struct {
	ItemID        string
	ChunksCreated int
}

// Ingest persists the item, then chunks and embeds its content. Chunk rows
// are written sequentially so chunk_index matches source order; concurrent
// Ingest calls for different items need no coordination beyond the store's.
func (s *Service) Ingest(ctx context.Context, content string, sourceType models.SourceType, sourceURL string) (*IngestResult, error) {
	itemID := uuid.NewString()
	item := &models.Item{
		ID:         itemID,
		Content:    content,
		SourceType: sourceType,
		SourceURL:  sourceURL,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.PutItem(ctx, item); err != nil {
		return nil, fmt.Errorf("persist item: %w", err)
	}

	chunks := s.chunker.Chunk(content)
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	log.Info().Str("item_id", itemID).Int("chunks", len(chunks)).Msg("generating embeddings")

	for i, text := range chunks {
		chunk := &models.Chunk{
			ID:         uuid.NewString(),
			ItemID:     itemID,
			Content:    text,
			Embedding:  s.embedder.Embed(text),
			ChunkIndex: i,
		}
		if err := s.store.PutChunk(ctx, chunk); err != nil {
			return nil, fmt.Errorf("persist chunk %d: %w", i, err)
		}
	}

	return &IngestResult{ItemID: itemID, ChunksCreated: len(chunks)}, nil
}

// Query answers question from stored content. An empty store and an empty
// result set are valid outcomes, not errors; only storage failures propagate.
func (s *Service) Query(ctx context.Context, question string, topK int) (*models.QueryResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	log.Info().Str("question", question).Msg("processing query")

	questionVec := s.embedder.Embed(question)

	all, err := s.store.GetAllChunkVectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chunk vectors: %w", err)
	}
	if len(all) == 0 {
		return &models.QueryResult{Answer: noContentAnswer, Sources: []models.Source{}}, nil
	}

	ranked := make([]models.ScoredChunk, 0, len(all))
	for _, cv := range all {
		sim := embedding.Cosine(questionVec, cv.Embedding)
		if sim > similarityFloor {
			ranked = append(ranked, models.ScoredChunk{ChunkVector: cv, Similarity: sim})
		}
	}
	// Stable: ties keep original fetch order.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Similarity > ranked[j].Similarity })
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	if len(ranked) == 0 {
		return &models.QueryResult{Answer: noMatchAnswer, Sources: []models.Source{}}, nil
	}

	contextText := buildContext(ranked)

	answer, err := s.composer.Compose(ctx, question, contextText, ranked)
	if err != nil {
		log.Warn().Err(err).Msg("external answer generation failed, using local answer")
		answer, _ = s.local.Compose(ctx, question, contextText, ranked)
	}

	sources := make([]models.Source, len(ranked))
	for i, sc := range ranked {
		sources[i] = models.Source{
			Preview:    truncateRunes(sc.Content, sourcePreviewLen) + "...",
			Similarity: math.Round(sc.Similarity*1000) / 1000,
		}
	}

	return &models.QueryResult{Answer: answer, Sources: sources}, nil
}

// buildContext labels each chunk with its 1-based rank so the external model
// can cite sources by number.
func buildContext(ranked []models.ScoredChunk) string {
	var b strings.Builder
	for i, sc := range ranked {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s", i+1, sc.Content)
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
