package chunker

import (
	"errors"
	"strings"
)

// Reference defaults, in characters.
const (
	DefaultChunkSize = 500
	DefaultOverlap   = 100
)

var ErrOverlapTooLarge = errors.New("chunk overlap must be smaller than chunk size")

// Chunker splits raw text into fixed-size character windows with overlap.
// Boundaries may fall mid-word; the overlap preserves context across
// boundaries for retrieval, not the semantic integrity of any single chunk.
type Chunker struct {
	chunkSize int
	overlap   int
}

func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, ErrOverlapTooLarge
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Chunk walks text in a sliding window of chunkSize characters, advancing the
// window start by chunkSize-overlap each step. Windows are trimmed and empty
// results skipped; the final chunk may be shorter than chunkSize. Empty or
// whitespace-only text yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	step := c.chunkSize - c.overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
