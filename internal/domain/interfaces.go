package domain

import "context"

// Document is a single uploaded text. Text is never mutated after creation.
type Document struct {
	ID   string
	Name string
	Text string
}

// Segmentation is the derived paragraph and sentence split of a document.
type Segmentation struct {
	Paragraphs []string
	Sentences  []string
}

// FallbackIndex marks a synthetic passage cut from the head of the document.
const FallbackIndex = -1

// Passage is a paragraph of a document, identified by its position.
type Passage struct {
	Index int
	Text  string
}

// IsFallback reports whether the passage was synthesized from the document head.
func (p Passage) IsFallback() bool { return p.Index == FallbackIndex }

// RankedPassage is a passage with a relevance score and its rank (0 = best).
type RankedPassage struct {
	Passage Passage
	Score   float64
	Rank    int
}

// ConversationTurn is one question/answer exchange in Ask mode.
type ConversationTurn struct {
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	Justification string `json:"justification"`
}

// Evaluation is the scored result of a user's challenge answer.
type Evaluation struct {
	Score         int    `json:"score"`
	Feedback      string `json:"feedback"`
	Justification string `json:"justification"`
}

// Concept is a salient term mined from a document.
type Concept struct {
	Term  string
	Score float64
}

// Segmenter splits raw text into paragraphs and sentences.
type Segmenter interface {
	Segment(text string) Segmentation
}

// Ranker orders passages by relevance to a query.
// It must always return at least one passage for non-empty fallbackText.
type Ranker interface {
	Rank(ctx context.Context, query string, passages []Passage, fallbackText string, fallbackChars int) []RankedPassage
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxWords int) string
}

// Engine defines the operations exposed by the document understanding core.
type Engine interface {
	Summarize(text string) string
	Answer(ctx context.Context, question, text string, history []ConversationTurn) (answer, justification string)
	GenerateChallengeQuestions(text string) []string
	Evaluate(ctx context.Context, question, userAnswer, text string) Evaluation
}
