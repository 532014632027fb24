// Package embedding implements a deterministic hashing-based text embedder.
// It needs no model files and no network access, so ingestion and querying
// work offline and a stored embedding can always be recomputed identically.
package embedding

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Dimension of every vector produced by this package.
const Dimension = 384

// Tokens this short carry almost no signal and are discarded.
const minTokenRunes = 3

type Embedder struct{}

func New() *Embedder { return &Embedder{} }

func (e *Embedder) Dimension() int { return Dimension }

// Embed maps text to an L2-normalized vector. Each token spreads its weight
// across 3 hash slots spaced 127 apart, scaled by 1/sqrt(position+1) so early
// tokens weigh more. Token bigrams contribute a fixed 0.5 to one slot, which
// keeps some local word-order signal a plain bag of words would lose. Text
// with no qualifying tokens yields the zero vector.
func (e *Embedder) Embed(text string) []float32 {
	tokens := tokenize(text)
	vec := make([]float32, Dimension)

	for i, tok := range tokens {
		h := hash(tok)
		w := float32(1.0 / math.Sqrt(float64(i+1)))
		for k := 0; k < 3; k++ {
			vec[(int(h)+k*127)%Dimension] += w
		}
		if i > 0 {
			bh := hash(tokens[i-1] + tok)
			vec[int(bh)%Dimension] += 0.5
		}
	}

	normalize(vec)
	return vec
}

// Cosine returns the cosine similarity of two equal-length vectors. Norms are
// recomputed here rather than assumed, so the result is correct for vectors
// that were not pre-normalized. A zero vector on either side yields 0.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// tokenize lowercases and splits on whitespace. Punctuation at token edges is
// trimmed so "France." and "France?" hash to the same slot as "france".
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if utf8.RuneCountInString(f) >= minTokenRunes {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// hash is a rolling 31-multiplier string hash. Any stable deterministic
// string hash would do; what matters is consistency within one deployment,
// since stored embeddings are compared against freshly computed ones.
func hash(s string) uint32 {
	var h uint32
	for _, r := range s {
		h = h*31 + uint32(r)
	}
	return h
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}
