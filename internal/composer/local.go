package composer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"knowledge-inbox/internal/models"
)

const (
	// Chunks below this similarity are too weak to quote from.
	localFloor = 0.05

	maxLocalChunks     = 3
	minSentenceRunes   = 15
	fallbackPreviewLen = 120

	notFoundAnswer = "I couldn't find relevant information in your notes. Try adding more content."
)

var sentenceSplitter = regexp.MustCompile(`[.!?]+`)

// Local builds an extractive answer by quoting the first substantial sentence
// of each of the top chunks.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (l *Local) Compose(_ context.Context, _ string, _ string, ranked []models.ScoredChunk) (string, error) {
	if len(ranked) == 0 || ranked[0].Similarity < localFloor {
		return notFoundAnswer, nil
	}

	var b strings.Builder
	b.WriteString("Based on your saved content:\n\n")

	limit := len(ranked)
	if limit > maxLocalChunks {
		limit = maxLocalChunks
	}
	for _, chunk := range ranked[:limit] {
		if chunk.Similarity <= localFloor {
			continue
		}
		if sentence := firstSentence(chunk.Content); sentence != "" {
			fmt.Fprintf(&b, "• %s.\n", sentence)
		} else {
			fmt.Fprintf(&b, "• %s...\n", truncateRunes(chunk.Content, fallbackPreviewLen))
		}
	}

	b.WriteString("\n(Note: Using local answer generation.)")
	return strings.TrimSpace(b.String()), nil
}

// firstSentence returns the first sentence longer than minSentenceRunes after
// trimming, or "" when no sentence qualifies.
func firstSentence(content string) string {
	for _, part := range sentenceSplitter.Split(content, -1) {
		trimmed := strings.TrimSpace(part)
		if len([]rune(trimmed)) > minSentenceRunes {
			return trimmed
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
