// Package segment splits document text into paragraphs and sentences.
package segment

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"

	"docinsight/internal/domain"
	"docinsight/internal/logger"
	"docinsight/internal/tokenize"
)

// sentenceTokenizer is the subset of the Punkt tokenizer the segmenter needs.
type sentenceTokenizer interface {
	Tokenize(text string) []*sentences.Sentence
}

// Segmenter splits text on blank lines into paragraphs and runs Punkt sentence
// tokenization inside each paragraph. When the Punkt model cannot be loaded it
// falls back to a rule-based splitter.
type Segmenter struct {
	mu        sync.Mutex
	tokenizer sentenceTokenizer
}

var _ domain.Segmenter = (*Segmenter)(nil)

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// New creates a segmenter backed by the English Punkt model.
func New(log *logger.Logger) *Segmenter {
	log = logger.OrNop(log)
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("punkt tokenizer unavailable, using rule-based sentence splitter", "error", err)
		return &Segmenter{}
	}
	return &Segmenter{tokenizer: tok}
}

// NewRuleBased creates a segmenter that never uses the Punkt model.
func NewRuleBased() *Segmenter { return &Segmenter{} }

// Segment is deterministic: equal text always yields equal segmentation.
func (s *Segmenter) Segment(text string) domain.Segmentation {
	paragraphs := Paragraphs(text)
	var sents []string
	for _, p := range paragraphs {
		sents = append(sents, s.Sentences(p)...)
	}
	return domain.Segmentation{Paragraphs: paragraphs, Sentences: sents}
}

// Sentences splits a single block of text into trimmed, non-empty sentences.
func (s *Segmenter) Sentences(text string) []string {
	text = strings.TrimSpace(tokenize.Normalize(text))
	if text == "" {
		return nil
	}
	var raw []string
	if s.tokenizer != nil {
		// Punkt calls are serialized
		s.mu.Lock()
		for _, sent := range s.tokenizer.Tokenize(text) {
			raw = append(raw, sent.Text)
		}
		s.mu.Unlock()
	} else {
		raw = splitRuleBased(text)
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		out = []string{text}
	}
	return out
}

// Paragraphs splits text on blank-line boundaries, trimming each paragraph and
// dropping empty ones.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(tokenize.Normalize(text), "\r\n", "\n")
	parts := paragraphBreak.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var abbreviations = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "sr": {}, "jr": {}, "st": {},
	"vs": {}, "etc": {}, "inc": {}, "ltd": {}, "co": {}, "corp": {}, "fig": {}, "no": {},
	"e.g": {}, "i.e": {}, "u.s": {}, "approx": {}, "jan": {}, "feb": {}, "aug": {}, "sept": {}, "oct": {}, "nov": {}, "dec": {},
}

// splitRuleBased splits at runs of . ! ? followed by whitespace, unless the
// terminator is a period ending a known abbreviation or a single initial.
// Decimals never split because the period is not followed by whitespace.
func splitRuleBased(text string) []string {
	var out []string
	start := 0
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isTerminator(r) {
			i += size
			continue
		}
		end := i + size
		for end < len(text) {
			r2, s2 := utf8.DecodeRuneInString(text[end:])
			if !isTerminator(r2) && r2 != '"' && r2 != '\'' && r2 != ')' && r2 != '”' && r2 != '’' {
				break
			}
			end += s2
		}
		if end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(next) {
				i = end
				continue
			}
		}
		if r == '.' && end-i == size && isAbbreviation(text[start:i]) {
			i = end
			continue
		}
		out = append(out, text[start:end])
		start = end
		i = end
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isAbbreviation(before string) bool {
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(strings.TrimLeft(fields[len(fields)-1], `"'(“‘`))
	if utf8.RuneCountInString(last) == 1 {
		r, _ := utf8.DecodeRuneInString(last)
		return unicode.IsLetter(r)
	}
	_, ok := abbreviations[last]
	return ok
}
