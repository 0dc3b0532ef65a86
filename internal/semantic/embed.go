package semantic

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when the lengths differ or either vector has zero norm.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// EmbeddingScorer scores similarity as the cosine of two embeddings.
// Vectors are cached per text; the benchmark answer of a scenario is
// embedded once no matter how many rounds are played.
type EmbeddingScorer struct {
	embedder Embedder

	mu    sync.Mutex
	cache map[string][]float32
	limit int
}

// NewEmbeddingScorer wraps an embedder. limit caps the cache size; once full,
// new texts are embedded but not cached. limit <= 0 means 1024.
func NewEmbeddingScorer(e Embedder, limit int) *EmbeddingScorer {
	if limit <= 0 {
		limit = 1024
	}
	return &EmbeddingScorer{embedder: e, cache: make(map[string][]float32), limit: limit}
}

func (s *EmbeddingScorer) vector(ctx context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	v, ok := s.cache[text]
	s.mu.Unlock()
	if ok {
		return v, nil
	}

	v, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if len(s.cache) < s.limit {
		s.cache[text] = v
	}
	s.mu.Unlock()
	return v, nil
}

// Similarity implements gameplay.SemanticScorer.
func (s *EmbeddingScorer) Similarity(ctx context.Context, a, b string) (float64, error) {
	va, err := s.vector(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("embed answer: %w", err)
	}
	vb, err := s.vector(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("embed benchmark: %w", err)
	}
	return CosineSimilarity(va, vb), nil
}
