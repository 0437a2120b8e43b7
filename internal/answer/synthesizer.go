// Package answer builds extractive answers from ranked passages.
package answer

import (
	"fmt"
	"strings"

	"docinsight/internal/domain"
)

// Fixed responses.
const (
	InsufficientAnswer        = "The document does not contain enough information to answer this question."
	InsufficientJustification = "No section of the document contains information that supports an answer to this question."
	singleSourceJustification = "This answer is based on the most relevant section of the document that matches your question."
	multiSourceJustification  = "This answer is supported by %d relevant sections of the document that contain information related to your question."
)

// DefaultHistoryWindow is the number of recent turns folded into a ranking query.
const DefaultHistoryWindow = 3

// Synthesizer selects answer sentences from ranked passages.
type Synthesizer struct {
	rules     []Rule
	segmenter domain.Segmenter
}

// NewSynthesizer uses DefaultRules when rules is empty.
func NewSynthesizer(segmenter domain.Segmenter, rules []Rule) *Synthesizer {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Synthesizer{rules: rules, segmenter: segmenter}
}

// Synthesize answers question from ranked, best passage first. History does
// not affect classification; it reaches the answer only through ranking.
func (s *Synthesizer) Synthesize(question string, ranked []domain.RankedPassage) (answer, justification string) {
	texts := make([]string, 0, len(ranked))
	for _, r := range ranked {
		if t := strings.TrimSpace(r.Passage.Text); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		return InsufficientAnswer, InsufficientJustification
	}
	sentences := s.segmenter.Segment(strings.Join(texts, "\n\n")).Sentences
	if len(sentences) == 0 {
		return InsufficientAnswer, InsufficientJustification
	}

	rule := Classify(s.rules, question)
	n := rule.Sentences
	if n <= 0 {
		n = 1
	}
	var picked []string
	for _, sent := range sentences {
		if rule.matchesCue(sent) {
			picked = append(picked, sent)
			if len(picked) == n {
				break
			}
		}
	}
	if len(picked) > 0 {
		answer = fmt.Sprintf(rule.Template, strings.Join(picked, " "))
	} else {
		answer = fmt.Sprintf(rule.FallbackTemplate, sentences[0])
	}
	return answer, Justify(len(texts))
}

// Justify describes how many passages support an answer.
func Justify(sources int) string {
	if sources <= 1 {
		return singleSourceJustification
	}
	return fmt.Sprintf(multiSourceJustification, sources)
}

// Query appends the last window turns of history to question for ranking.
func Query(question string, history []domain.ConversationTurn, window int) string {
	if window <= 0 || len(history) == 0 {
		return question
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}
	parts := make([]string, 0, 2*len(history)+1)
	parts = append(parts, question)
	for _, t := range history {
		parts = append(parts, t.Question, t.Answer)
	}
	return strings.Join(parts, " ")
}
