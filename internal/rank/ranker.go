// Package rank selects the passages of a document most relevant to a query.
package rank

import (
	"context"
	"sort"

	"docinsight/internal/domain"
	"docinsight/internal/logger"
	"docinsight/internal/metrics"
	"docinsight/internal/tokenize"
)

// DefaultTopK is the number of passages returned per query.
const DefaultTopK = 3

// Ranker orders passages with a primary Similarity and falls back to lexical
// overlap when the primary backend fails.
type Ranker struct {
	primary  Similarity
	fallback Similarity
	topK     int
	log      *logger.Logger
	metrics  *metrics.Metrics
}

var _ domain.Ranker = (*Ranker)(nil)

type Option func(*Ranker)

func WithTopK(k int) Option {
	return func(r *Ranker) {
		if k > 0 {
			r.topK = k
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(r *Ranker) { r.log = logger.OrNop(l) }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Ranker) { r.metrics = m }
}

// WithFallback replaces the lexical backend used after a primary failure.
func WithFallback(s Similarity) Option {
	return func(r *Ranker) {
		if s != nil {
			r.fallback = s
		}
	}
}

// New returns a Ranker over primary. A nil primary ranks lexically.
func New(primary Similarity, opts ...Option) *Ranker {
	r := &Ranker{
		primary:  primary,
		fallback: NewLexical(DefaultMinSharedWords),
		topK:     DefaultTopK,
		log:      logger.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.primary == nil {
		r.primary = r.fallback
	}
	return r
}

// Backend reports the name of the primary similarity backend.
func (r *Ranker) Backend() string { return r.primary.Name() }

// Rank returns up to topK passages whose score clears the backend floor,
// best first, with ties kept in document order. When nothing clears the
// floor a single passage holding the first fallbackChars characters of
// fallbackText is returned instead.
func (r *Ranker) Rank(ctx context.Context, query string, passages []domain.Passage, fallbackText string, fallbackChars int) []domain.RankedPassage {
	sim := r.primary
	scores, err := sim.Scores(ctx, query, passages)
	if err != nil || len(scores) != len(passages) {
		r.log.Warn("similarity backend failed, using lexical overlap",
			"backend", sim.Name(), "passages", len(passages), "error", err)
		r.metrics.RecordDegradation(sim.Name())
		sim = r.fallback
		scores, err = sim.Scores(ctx, query, passages)
		if err != nil || len(scores) != len(passages) {
			r.log.Error("lexical fallback failed", "error", err)
			scores = make([]float64, len(passages))
		}
	}
	r.metrics.RecordRank(sim.Name())

	ranked := make([]domain.RankedPassage, 0, len(passages))
	for i, p := range passages {
		if sim.Accepts(scores[i]) {
			ranked = append(ranked, domain.RankedPassage{Passage: p, Score: scores[i]})
		}
	}
	if len(ranked) == 0 {
		r.metrics.RecordFallbackPassage()
		r.log.Debug("no passage cleared the similarity floor", "backend", sim.Name())
		return []domain.RankedPassage{{
			Passage: domain.Passage{Index: domain.FallbackIndex, Text: tokenize.Head(fallbackText, fallbackChars)},
		}}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Score > ranked[b].Score })
	if len(ranked) > r.topK {
		ranked = ranked[:r.topK]
	}
	for i := range ranked {
		ranked[i].Rank = i
	}
	return ranked
}

// Passages numbers paragraphs in document order.
func Passages(paragraphs []string) []domain.Passage {
	out := make([]domain.Passage, len(paragraphs))
	for i, p := range paragraphs {
		out[i] = domain.Passage{Index: i, Text: p}
	}
	return out
}

// Texts joins the text of ranked passages in rank order.
func Texts(ranked []domain.RankedPassage) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Passage.Text
	}
	return out
}
