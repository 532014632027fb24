package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 200},
		{"zero size", 0, 0},
		{"negative overlap", 100, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.chunkSize, tt.overlap)
			assert.ErrorIs(t, err, ErrOverlapTooLarge)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(DefaultChunkSize, DefaultOverlap)
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestChunk_EmptyInput(t *testing.T) {
	c, err := New(500, 100)
	require.NoError(t, err)

	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk("   \n\t  "))
}

func TestChunk_ShortText(t *testing.T) {
	c, err := New(500, 100)
	require.NoError(t, err)

	chunks := c.Chunk("  hello world  ")
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

// A 1200-character text with size 500 and overlap 100 advances the window by
// 400 each step, so chunks start at offsets 0, 400 and 800.
func TestChunk_WindowOffsets(t *testing.T) {
	text := make([]byte, 1200)
	for i := range text {
		text[i] = byte('a' + i%26)
	}

	c, err := New(500, 100)
	require.NoError(t, err)

	chunks := c.Chunk(string(text))
	require.Len(t, chunks, 3)
	assert.Equal(t, string(text[0:500]), chunks[0])
	assert.Equal(t, string(text[400:900]), chunks[1])
	assert.Equal(t, string(text[800:1200]), chunks[2])
}

// Consecutive chunks share exactly the configured overlap, so the chunk
// sequence covers the text with no gaps.
func TestChunk_Coverage(t *testing.T) {
	text := strings.Repeat("abcdefghij", 73) // 730 chars, no whitespace

	c, err := New(200, 50)
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)

	step := 200 - 50
	for i, chunk := range chunks {
		start := i * step
		end := start + 200
		if end > len(text) {
			end = len(text)
		}
		assert.Equal(t, text[start:end], chunk, "chunk %d", i)
	}
	// Final chunk reaches the end of the text.
	assert.True(t, strings.HasSuffix(text, chunks[len(chunks)-1]))
}

func TestChunk_TrimsWindows(t *testing.T) {
	c, err := New(10, 2)
	require.NoError(t, err)

	chunks := c.Chunk("abc       def")
	for _, chunk := range chunks {
		assert.Equal(t, strings.TrimSpace(chunk), chunk)
		assert.NotEmpty(t, chunk)
	}
}
