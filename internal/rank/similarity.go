package rank

import (
	"context"
	"errors"
	"fmt"

	"docinsight/internal/domain"
	"docinsight/internal/embedding/tfidf"
	"docinsight/internal/tokenize"
)

// Similarity scores a query against every passage. Implementations decide
// which scores are strong enough to count as relevant.
type Similarity interface {
	Name() string
	Scores(ctx context.Context, query string, passages []domain.Passage) ([]float64, error)
	Accepts(score float64) bool
}

// Default similarity floors.
const (
	DefaultMinSharedWords = 2
	DefaultTFIDFFloor     = 0.05
	DefaultEmbeddingFloor = 0.1
)

// Lexical counts distinct non-stopword tokens shared by query and passage.
type Lexical struct {
	MinShared int
}

var _ Similarity = Lexical{}

// NewLexical returns a lexical backend requiring minShared common words.
func NewLexical(minShared int) Lexical {
	if minShared <= 0 {
		minShared = DefaultMinSharedWords
	}
	return Lexical{MinShared: minShared}
}

func (Lexical) Name() string { return "lexical" }

func (Lexical) Scores(_ context.Context, query string, passages []domain.Passage) ([]float64, error) {
	q := tokenize.Set(query)
	out := make([]float64, len(passages))
	for i, p := range passages {
		out[i] = float64(tokenize.Overlap(q, tokenize.Set(p.Text)))
	}
	return out, nil
}

func (l Lexical) Accepts(score float64) bool { return score >= float64(l.MinShared) }

// TFIDF fits a fresh vector space over the query and passages on every call
// and scores passages by cosine similarity to the query.
type TFIDF struct {
	Floor float64
}

var _ Similarity = TFIDF{}

// NewTFIDF returns a TF-IDF backend with the given cosine floor.
func NewTFIDF(floor float64) TFIDF {
	if floor <= 0 {
		floor = DefaultTFIDFFloor
	}
	return TFIDF{Floor: floor}
}

func (TFIDF) Name() string { return "tfidf" }

func (TFIDF) Scores(ctx context.Context, query string, passages []domain.Passage) ([]float64, error) {
	out := make([]float64, len(passages))
	if len(passages) == 0 {
		return out, nil
	}
	corpus := make([]string, 0, len(passages)+1)
	corpus = append(corpus, query)
	for _, p := range passages {
		corpus = append(corpus, p.Text)
	}
	e := tfidf.NewEmbedder()
	if err := e.Prepare(ctx, corpus); err != nil {
		if errors.Is(err, domain.ErrEmptyCorpus) {
			// nothing to match on; every passage scores zero
			return out, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	qv, err := e.Vector(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	for i, p := range passages {
		pv, err := e.Vector(p.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
		}
		out[i] = dot(qv, pv)
	}
	return out, nil
}

func (t TFIDF) Accepts(score float64) bool { return score > t.Floor }

// dot of two L2-normalized vectors is their cosine similarity.
func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
