package rank

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"docinsight/internal/domain"
	"docinsight/internal/embedding"
	"docinsight/internal/vectorstore"
	"docinsight/internal/vectorstore/memory"
)

// BreakerSettings controls when the embedding backend stops calling a failing embedder.
type BreakerSettings struct {
	MaxFailures uint32
	OpenFor     time.Duration
}

// Embedding scores passages by cosine similarity of dense vectors produced
// by an Embedder. Calls run under a timeout behind a circuit breaker.
type Embedding struct {
	// the embedder is refitted on every call
	mu          sync.Mutex
	embedder    embedding.Embedder
	breaker     *gobreaker.CircuitBreaker
	timeout     time.Duration
	concurrency int
	Floor       float64
}

var _ Similarity = (*Embedding)(nil)

// NewEmbedding wraps embedder. timeout bounds one Scores call; concurrency
// bounds parallel Embed calls.
func NewEmbedding(embedder embedding.Embedder, floor float64, timeout time.Duration, concurrency int, bs BreakerSettings) *Embedding {
	if floor <= 0 {
		floor = DefaultEmbeddingFloor
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	if bs.MaxFailures == 0 {
		bs.MaxFailures = 3
	}
	if bs.OpenFor <= 0 {
		bs.OpenFor = time.Minute
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "embedding:" + embedder.Name(),
		MaxRequests: 1,
		Timeout:     bs.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.MaxFailures
		},
	})
	return &Embedding{
		embedder:    embedder,
		breaker:     cb,
		timeout:     timeout,
		concurrency: concurrency,
		Floor:       floor,
	}
}

func (e *Embedding) Name() string { return "embedding" }

func (e *Embedding) Accepts(score float64) bool { return score > e.Floor }

func (e *Embedding) Scores(ctx context.Context, query string, passages []domain.Passage) ([]float64, error) {
	if len(passages) == 0 {
		return []float64{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	res, err := e.breaker.Execute(func() (interface{}, error) {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.scores(ctx, query, passages)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	return res.([]float64), nil
}

func (e *Embedding) scores(ctx context.Context, query string, passages []domain.Passage) ([]float64, error) {
	texts := make([]string, 0, len(passages)+1)
	texts = append(texts, query)
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	if err := e.embedder.Prepare(ctx, texts); err != nil {
		if errors.Is(err, domain.ErrEmptyCorpus) {
			return make([]float64, len(passages)), nil
		}
		return nil, fmt.Errorf("prepare %s: %w", e.embedder.Name(), err)
	}

	vectors := make([][]float64, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			v, err := e.embedder.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("embed text %d: %w", i, err)
			}
			vectors[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, errors.New("empty query embedding")
	}
	// positions stand in for indices so scores map back to input order
	positional := make([]domain.Passage, len(passages))
	for i, p := range passages {
		positional[i] = domain.Passage{Index: i, Text: p.Text}
	}
	var store vectorstore.Storage = memory.NewStorage()
	if err := store.Init(dim); err != nil {
		return nil, err
	}
	if err := store.Upsert(positional, vectors[1:]); err != nil {
		return nil, err
	}
	hits, err := store.Search(vectors[0], 0)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(passages))
	for _, h := range hits {
		out[h.Passage.Index] = h.Score
	}
	return out, nil
}
