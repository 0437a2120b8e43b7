// Package scoring grades free-text answers to challenge questions.
package scoring

import (
	"context"
	"sort"
	"strings"

	"docinsight/internal/domain"
	"docinsight/internal/metrics"
	"docinsight/internal/rank"
	"docinsight/internal/tokenize"
)

const (
	MinScore = 0
	MaxScore = 10
)

const (
	feedbackExcellent = "Excellent answer! You demonstrated strong understanding and provided comprehensive details from the document."
	feedbackGood      = "Good answer! You showed understanding of the key concepts. Consider adding more specific details or examples."
	feedbackFair      = "Fair answer. You touched on relevant points but could provide more comprehensive information from the document."
	feedbackWeak      = "Your answer could be improved. Try to include more specific information from the document and elaborate on key points."

	Justification = "This evaluation is based on how well your answer addresses the question using information from the document, considering relevance, completeness, and specificity."
)

// Tier awards Points when a measured count is strictly greater than Above.
type Tier struct {
	Above  int `yaml:"above"`
	Points int `yaml:"points"`
}

// Config holds the scoring rubric.
type Config struct {
	// LengthTiers are banded: only the highest tier cleared counts.
	LengthTiers []Tier
	// OverlapTiers are additive: every tier cleared counts.
	OverlapTiers     []Tier
	DiscourseMarkers []string
	StructureMarkers []string
	FallbackChars    int
	MaxDocumentChars int
}

func DefaultConfig() Config {
	return Config{
		LengthTiers:      []Tier{{Above: 10, Points: 2}, {Above: 5, Points: 1}},
		OverlapTiers:     []Tier{{Above: 2, Points: 2}, {Above: 5, Points: 2}, {Above: 10, Points: 2}},
		DiscourseMarkers: []string{"because", "therefore", "however", "additionally", "furthermore"},
		StructureMarkers: []string{"first", "second", "finally", "in conclusion"},
		FallbackChars:    1000,
		MaxDocumentChars: 100000,
	}
}

// Scorer grades answers against the passages most relevant to the question.
type Scorer struct {
	cfg       Config
	ranker    domain.Ranker
	segmenter domain.Segmenter
	metrics   *metrics.Metrics
}

// NewScorer fills zero fields of cfg from DefaultConfig. m may be nil.
func NewScorer(cfg Config, ranker domain.Ranker, segmenter domain.Segmenter, m *metrics.Metrics) *Scorer {
	def := DefaultConfig()
	if len(cfg.LengthTiers) == 0 {
		cfg.LengthTiers = def.LengthTiers
	}
	if len(cfg.OverlapTiers) == 0 {
		cfg.OverlapTiers = def.OverlapTiers
	}
	if cfg.DiscourseMarkers == nil {
		cfg.DiscourseMarkers = def.DiscourseMarkers
	}
	if cfg.StructureMarkers == nil {
		cfg.StructureMarkers = def.StructureMarkers
	}
	if cfg.FallbackChars <= 0 {
		cfg.FallbackChars = def.FallbackChars
	}
	if cfg.MaxDocumentChars <= 0 {
		cfg.MaxDocumentChars = def.MaxDocumentChars
	}
	lengths := append([]Tier(nil), cfg.LengthTiers...)
	sort.SliceStable(lengths, func(i, j int) bool { return lengths[i].Above > lengths[j].Above })
	cfg.LengthTiers = lengths
	return &Scorer{cfg: cfg, ranker: ranker, segmenter: segmenter, metrics: m}
}

// Score grades userAnswer for question against text. The result is always
// within [MinScore, MaxScore]; an empty answer scores MinScore.
func (s *Scorer) Score(ctx context.Context, question, userAnswer, text string) domain.Evaluation {
	if strings.TrimSpace(userAnswer) == "" {
		return s.evaluation(MinScore)
	}
	text = tokenize.Head(text, s.cfg.MaxDocumentChars)

	score := s.lengthPoints(tokenize.WordCount(userAnswer))

	passages := rank.Passages(s.segmenter.Segment(text).Paragraphs)
	ranked := s.ranker.Rank(ctx, question, passages, text, s.cfg.FallbackChars)
	docWords := map[string]struct{}{}
	for _, r := range ranked {
		for w := range tokenize.Set(r.Passage.Text) {
			docWords[w] = struct{}{}
		}
	}
	score += s.overlapPoints(tokenize.Overlap(tokenize.Set(userAnswer), docWords))

	if containsAny(userAnswer, s.cfg.DiscourseMarkers) {
		score++
	}
	if containsAny(userAnswer, s.cfg.StructureMarkers) {
		score++
	}
	return s.evaluation(clamp(score))
}

func (s *Scorer) evaluation(score int) domain.Evaluation {
	s.metrics.RecordEvaluation(score)
	return domain.Evaluation{Score: score, Feedback: Feedback(score), Justification: Justification}
}

func (s *Scorer) lengthPoints(words int) int {
	for _, t := range s.cfg.LengthTiers {
		if words > t.Above {
			return t.Points
		}
	}
	return 0
}

func (s *Scorer) overlapPoints(shared int) int {
	points := 0
	for _, t := range s.cfg.OverlapTiers {
		if shared > t.Above {
			points += t.Points
		}
	}
	return points
}

// Feedback returns the fixed message for the band score falls in.
func Feedback(score int) string {
	switch {
	case score >= 8:
		return feedbackExcellent
	case score >= 6:
		return feedbackGood
	case score >= 4:
		return feedbackFair
	default:
		return feedbackWeak
	}
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if tokenize.ContainsPhrase(text, p) {
			return true
		}
	}
	return false
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
