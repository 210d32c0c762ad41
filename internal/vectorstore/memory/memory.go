package memory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	"wikiqa/internal/domain"
)

// Storage is an in-memory vector store using exhaustive cosine similarity.
// Chunk order is preserved and used to break score ties.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	chunks    []domain.Chunk
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.chunks = nil
	return nil
}

func (s *Storage) Upsert(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("vector %d: dimension %d, want %d", i, len(v), s.dimension)
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns at most topK results by descending cosine similarity.
// topK is clamped to the number of stored vectors; topK <= 0 yields no results.
func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query dimension %d, want %d", len(vector), s.dimension)
	}
	if topK > len(s.vectors) {
		topK = len(s.vectors)
	}
	if topK <= 0 {
		return []domain.SearchResult{}, nil
	}
	qnorm := floats.Norm(vector, 2)
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = cosine(s.vectors[i], vector, qnorm)
	}
	idxs := make([]int, len(scores))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })

	results := make([]domain.SearchResult, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.SearchResult{Chunk: s.chunks[j], Index: j, Score: scores[j]})
	}
	return results, nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.chunks = nil
	return nil
}

// cosine treats zero vectors as orthogonal to everything.
func cosine(v, q []float64, qnorm float64) float64 {
	vnorm := floats.Norm(v, 2)
	if vnorm == 0 || qnorm == 0 {
		return 0
	}
	return floats.Dot(v, q) / (vnorm * qnorm)
}
