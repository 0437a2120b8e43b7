// Package concept mines salient terms from a document for question generation.
package concept

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"docinsight/internal/domain"
	"docinsight/internal/embedding/tfidf"
	"docinsight/internal/segment"
	"docinsight/internal/tokenize"
)

// MaxConcepts caps the number of concepts returned by Extract.
const MaxConcepts = 10

// FallbackTerms stand in for a document that yields no concepts.
var FallbackTerms = []string{"topic", "information", "content"}

var genericTerms = map[string]struct{}{
	"document":    {},
	"information": {},
	"content":     {},
	"text":        {},
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// signal weights; TF-IDF weight is added on top and orders equal signal sets
const (
	capitalizedWeight = 1.0
	frequentWeight    = 1.0
)

// Extractor unions capitalized-term, frequent-term and TF-IDF signals.
type Extractor struct {
	limit int
}

// NewExtractor returns an Extractor returning at most limit concepts.
func NewExtractor(limit int) *Extractor {
	if limit <= 0 || limit > MaxConcepts {
		limit = MaxConcepts
	}
	return &Extractor{limit: limit}
}

type candidate struct {
	term  string
	score float64
	first int
}

// Extract returns concepts ordered by salience, highest first. Ties keep the
// order in which terms first appear.
func (e *Extractor) Extract(text string) []domain.Concept {
	text = tokenize.Normalize(text)
	cands := map[string]*candidate{}
	order := 0
	add := func(term string, weight float64) {
		key := strings.ToLower(term)
		if excluded(key) {
			return
		}
		c, ok := cands[key]
		if !ok {
			c = &candidate{term: term, first: order}
			order++
			cands[key] = c
		}
		c.score += weight
	}

	for _, term := range capitalized(text) {
		add(term, capitalizedWeight)
	}
	for _, term := range frequent(text) {
		add(term, frequentWeight)
	}
	for _, tw := range topTerms(text, e.limit) {
		if utf8.RuneCountInString(tw.Term) > 3 {
			add(tw.Term, tw.Weight)
		}
	}

	if len(cands) == 0 {
		return Fallback()
	}
	list := make([]*candidate, 0, len(cands))
	for _, c := range cands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return list[i].first < list[j].first
	})
	if len(list) > e.limit {
		list = list[:e.limit]
	}
	out := make([]domain.Concept, len(list))
	for i, c := range list {
		out[i] = domain.Concept{Term: c.term, Score: c.score}
	}
	return out
}

// Fallback returns the fixed concept set used when extraction finds nothing.
func Fallback() []domain.Concept {
	out := make([]domain.Concept, len(FallbackTerms))
	for i, t := range FallbackTerms {
		out[i] = domain.Concept{Term: t}
	}
	return out
}

// IsFallback reports whether concepts is the fixed fallback set.
func IsFallback(concepts []domain.Concept) bool {
	if len(concepts) != len(FallbackTerms) {
		return false
	}
	for i, c := range concepts {
		if c.Term != FallbackTerms[i] || c.Score != 0 {
			return false
		}
	}
	return true
}

// Terms returns the terms of concepts in order.
func Terms(concepts []domain.Concept) []string {
	out := make([]string, len(concepts))
	for i, c := range concepts {
		out[i] = c.Term
	}
	return out
}

func excluded(key string) bool {
	if _, ok := genericTerms[key]; ok {
		return true
	}
	return tokenize.IsStopword(key)
}

// capitalized finds words that start uppercase without following a sentence end.
func capitalized(text string) []string {
	words := strings.Fields(text)
	var out []string
	for i := 1; i < len(words); i++ {
		r, _ := utf8.DecodeRuneInString(words[i])
		if !unicode.IsUpper(r) {
			continue
		}
		prev := strings.TrimRight(words[i-1], `"')]’”`)
		if strings.HasSuffix(prev, ".") || strings.HasSuffix(prev, "!") || strings.HasSuffix(prev, "?") {
			continue
		}
		clean := nonWord.ReplaceAllString(words[i], "")
		if utf8.RuneCountInString(clean) > 3 {
			out = append(out, clean)
		}
	}
	return out
}

// frequent returns tokens longer than four letters seen more than twice, in first-seen order.
func frequent(text string) []string {
	counts := map[string]int{}
	var order []string
	for _, w := range tokenize.Words(text) {
		if utf8.RuneCountInString(w) <= 4 {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	var out []string
	for _, w := range order {
		if counts[w] > 2 {
			out = append(out, w)
		}
	}
	return out
}

func topTerms(text string, n int) []tfidf.TermWeight {
	paragraphs := segment.Paragraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}
	e := tfidf.NewEmbedder()
	if err := e.Prepare(context.Background(), paragraphs); err != nil {
		return nil
	}
	terms, err := e.TopTerms(paragraphs, n)
	if err != nil {
		return nil
	}
	return terms
}
