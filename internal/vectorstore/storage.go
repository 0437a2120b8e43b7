// Package vectorstore holds passage vectors for dense similarity search.
package vectorstore

import "docinsight/internal/domain"

// Storage persists passage vectors and supports similarity search.
type Storage interface {
	Init(dimension int) error
	Upsert(passages []domain.Passage, vectors [][]float64) error
	Search(vector []float64, topK int) ([]domain.RankedPassage, error)
	Clear() error
}
