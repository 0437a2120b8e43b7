// Package memory is a brute-force in-memory vector store.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"docinsight/internal/domain"
	"docinsight/internal/embedding"
	"docinsight/internal/vectorstore"
)

type entry struct {
	passage domain.Passage
	vector  []float64
}

// Storage keeps one vector per passage index and scores by cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	entries   []entry
	byIndex   map[int]int
}

var _ vectorstore.Storage = (*Storage)(nil)

func NewStorage() *Storage { return &Storage{byIndex: make(map[int]int)} }

// Init sets the vector dimension and drops stored entries.
func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("init vector store: dimension %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.reset()
	return nil
}

// Upsert stores vectors[i] for passages[i]. A passage whose index is already
// stored replaces the earlier entry in place.
func (s *Storage) Upsert(passages []domain.Passage, vectors [][]float64) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("upsert: %d passages, %d vectors", len(passages), len(vectors))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("upsert passage %d: dimension %d, want %d", passages[i].Index, len(v), s.dimension)
		}
	}
	for i, p := range passages {
		e := entry{passage: p, vector: vectors[i]}
		if pos, ok := s.byIndex[p.Index]; ok {
			s.entries[pos] = e
			continue
		}
		s.byIndex[p.Index] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return nil
}

// Search returns the topK passages by cosine similarity. Equal scores keep
// insertion order. topK <= 0 returns every stored passage.
func (s *Storage) Search(vector []float64, topK int) ([]domain.RankedPassage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("search: query dimension %d, want %d", len(vector), s.dimension)
	}
	results := make([]domain.RankedPassage, len(s.entries))
	for i, e := range s.entries {
		results[i] = domain.RankedPassage{Passage: e.passage, Score: embedding.Cosine(e.vector, vector)}
	}
	sort.SliceStable(results, func(a, b int) bool { return results[a].Score > results[b].Score })
	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	for i := range results {
		results[i].Rank = i
	}
	return results, nil
}

// Len reports the number of stored passages.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func (s *Storage) reset() {
	s.entries = nil
	s.byIndex = make(map[int]int)
}
