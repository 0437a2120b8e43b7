package summarizer

import (
	"math"
	"sort"
	"strings"

	"docinsight/internal/domain"
	"docinsight/internal/tokenize"
)

// DefaultMaxWords is the summary word budget.
const DefaultMaxWords = 150

const ellipsis = "..."

// position bonuses for the opening and closing sentence
const (
	firstSentenceBonus = 2.0
	lastSentenceBonus  = 1.0
)

// FrequencySummarizer ranks sentences by normalized word frequency (stopwords
// filtered) plus a position bonus, and keeps the best ones within a word budget.
type FrequencySummarizer struct {
	segmenter domain.Segmenter
}

var _ domain.Summarizer = (*FrequencySummarizer)(nil)

// NewFrequencySummarizer creates a frequency-based sentence ranker summarizer.
func NewFrequencySummarizer(segmenter domain.Segmenter) *FrequencySummarizer {
	return &FrequencySummarizer{segmenter: segmenter}
}

// Summarize returns at most maxWords words of text. Selected sentences keep
// document order; a sentence cut by the budget ends in an ellipsis.
func (s *FrequencySummarizer) Summarize(text string, maxWords int) string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	sentences := s.segmenter.Segment(text).Sentences
	if len(sentences) == 0 {
		return ""
	}
	if len(sentences) <= 3 {
		return capWords(strings.Join(sentences, " "), maxWords)
	}

	// Compute word frequencies
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range tokenize.Content(sent) {
			freq[tok]++
		}
	}
	// Normalize frequencies
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		toks := tokenize.Content(sent)
		sscore := 0.0
		for _, tok := range toks {
			sscore += freq[tok]
		}
		// Normalize by sentence length to avoid bias
		if l := float64(len(toks)); l > 0 {
			sscore /= math.Sqrt(l)
		}
		switch i {
		case 0:
			sscore += firstSentenceBonus
		case len(sentences) - 1:
			sscore += lastSentenceBonus
		}
		scores[i] = pair{i, sscore}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	selected := map[int]string{}
	used := 0
	for _, p := range scores {
		n := tokenize.WordCount(sentences[p.idx])
		if used+n <= maxWords {
			selected[p.idx] = sentences[p.idx]
			used += n
			continue
		}
		if left := maxWords - used; left > 0 {
			selected[p.idx] = strings.Join(strings.Fields(sentences[p.idx])[:left], " ") + ellipsis
		}
		break
	}
	idxs := make([]int, 0, len(selected))
	for idx := range selected {
		idxs = append(idxs, idx)
	}
	// Keep original order among selected
	sort.Ints(idxs)
	out := make([]string, len(idxs))
	for i, idx := range idxs {
		out[i] = selected[idx]
	}
	return strings.Join(out, " ")
}

func capWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + ellipsis
}
