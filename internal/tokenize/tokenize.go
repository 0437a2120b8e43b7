// Package tokenize holds the word tokenizer and stopword list shared by the
// ranking, extraction and scoring stages.
package tokenize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"do", "does", "did", "has", "have", "had", "its", "it's", "i", "you", "he", "she", "we", "they", "them", "his", "her", "their", "our", "your", "my", "me", "not", "no", "which", "who", "whom",
		"what", "when", "where", "why", "how", "there", "here", "also", "would", "could", "may", "might", "must", "all", "any", "each", "both", "more", "most", "other", "some", "only", "nor",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// Normalize returns text in Unicode NFC so that visually equal words compare equal.
func Normalize(text string) string {
	return norm.NFC.String(text)
}

// Words returns all lowercase word tokens of text in order, punctuation stripped.
func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(Normalize(text)), -1)
}

// Content returns the lowercase tokens of text with stopwords removed, in order.
func Content(text string) []string {
	raw := Words(text)
	out := raw[:0]
	for _, t := range raw {
		if IsStopword(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Set returns the distinct non-stopword tokens of text.
func Set(text string) map[string]struct{} {
	tokens := Content(text)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// Overlap counts the tokens present in both sets.
func Overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}

// IsStopword reports whether a lowercase token carries no topical meaning.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// WordCount counts whitespace-separated words, the unit used for length budgets.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Head returns at most n runes from the start of text, trimmed.
func Head(text string, n int) string {
	text = strings.TrimSpace(text)
	if n <= 0 {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return strings.TrimSpace(text[:pos])
		}
		i++
	}
	return text
}

// ContainsPhrase reports whether phrase occurs in text as whole words.
// Both sides are compared as lowercase token sequences.
func ContainsPhrase(text, phrase string) bool {
	want := Words(phrase)
	if len(want) == 0 {
		return false
	}
	have := Words(text)
	for i := 0; i+len(want) <= len(have); i++ {
		match := true
		for j, w := range want {
			if have[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
