// Package tfidf implements a TF-IDF vectorizer fitted over a small corpus.
package tfidf

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"docinsight/internal/domain"
	"docinsight/internal/embedding"
	"docinsight/internal/tokenize"
)

var errNotPrepared = errors.New("tfidf embedder not prepared")

// Embedder maps text onto a vocabulary fitted by Prepare. Vectors use
// relative term frequency, smoothed IDF and L2 normalization.
type Embedder struct {
	index map[string]int // term -> dimension
	terms []string       // dimension -> term, sorted
	idf   []float64
}

var _ embedding.Embedder = (*Embedder)(nil)

func NewEmbedder() *Embedder { return &Embedder{} }

func (e *Embedder) Name() string { return "tfidf" }

// Prepare fits the vocabulary over corpus, replacing any earlier fit.
// A corpus without content words fails with domain.ErrEmptyCorpus.
func (e *Embedder) Prepare(_ context.Context, corpus []string) error {
	df := documentFrequencies(corpus)
	if len(df) == 0 {
		return fmt.Errorf("tfidf prepare: %d texts, no content words: %w", len(corpus), domain.ErrEmptyCorpus)
	}
	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	e.index = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	for i, t := range terms {
		e.index[t] = i
		e.idf[i] = 1 + math.Log((1+n)/(1+float64(df[t])))
	}
	e.terms = terms
	return nil
}

// documentFrequencies counts, per content word, the texts containing it.
func documentFrequencies(corpus []string) map[string]int {
	df := make(map[string]int)
	for _, text := range corpus {
		for t := range tokenize.Set(text) {
			df[t]++
		}
	}
	return df
}

func (e *Embedder) Dimension() int { return len(e.terms) }

// Embed returns the vector of text. Out-of-vocabulary words are ignored; text
// with none in the vocabulary yields the zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	return e.Vector(text)
}

// Vector is Embed without a context; TF-IDF never blocks.
func (e *Embedder) Vector(text string) ([]float64, error) {
	if e.index == nil {
		return nil, errNotPrepared
	}
	vec := make([]float64, len(e.terms))
	counts := make(map[int]int)
	total := 0
	for _, t := range tokenize.Content(text) {
		if i, ok := e.index[t]; ok {
			counts[i]++
			total++
		}
	}
	if total == 0 {
		return vec, nil
	}
	for i, c := range counts {
		vec[i] = float64(c) / float64(total) * e.idf[i]
	}
	normalize(vec)
	return vec, nil
}

func normalize(vec []float64) {
	var sq float64
	for _, x := range vec {
		sq += x * x
	}
	if sq == 0 {
		return
	}
	l := math.Sqrt(sq)
	for i := range vec {
		vec[i] /= l
	}
}

// TermWeight pairs a vocabulary term with an aggregated TF-IDF weight.
type TermWeight struct {
	Term   string
	Weight float64
}

// TopTerms sums the TF-IDF vectors of texts and returns the n heaviest terms.
// Ties keep alphabetical vocabulary order.
func (e *Embedder) TopTerms(texts []string, n int) ([]TermWeight, error) {
	if e.index == nil {
		return nil, errNotPrepared
	}
	sum := make([]float64, len(e.terms))
	for _, t := range texts {
		v, err := e.Vector(t)
		if err != nil {
			return nil, err
		}
		for i, x := range v {
			sum[i] += x
		}
	}
	out := make([]TermWeight, 0, len(sum))
	for i, w := range sum {
		if w > 0 {
			out = append(out, TermWeight{Term: e.terms[i], Weight: w})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
