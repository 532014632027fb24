// Package composer turns ranked chunks into a human-readable answer. Two
// variants exist behind one interface: ExternalModel delegates phrasing to an
// OpenAI-compatible endpoint, Local builds a deterministic extractive answer
// with no external calls. The variant is chosen at construction time.
package composer

import (
	"context"

	"knowledge-inbox/internal/models"
)

type Composer interface {
	// Compose produces answer text for question given the labeled context
	// string and the ranked chunks it was built from.
	Compose(ctx context.Context, question, contextText string, ranked []models.ScoredChunk) (string, error)
}
