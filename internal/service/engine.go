package service

import (
	"context"
	"strings"

	"docinsight/internal/answer"
	"docinsight/internal/challenge"
	"docinsight/internal/domain"
	"docinsight/internal/logger"
	"docinsight/internal/rank"
	"docinsight/internal/scoring"
	"docinsight/internal/tokenize"
)

// EngineConfig tunes the document engine.
type EngineConfig struct {
	HistoryWindow       int
	AnswerFallbackChars int
	MaxDocumentChars    int
	SummaryMaxWords     int
}

// Components are the stages the engine is assembled from.
type Components struct {
	Segmenter   domain.Segmenter
	Ranker      domain.Ranker
	Summarizer  domain.Summarizer
	Synthesizer *answer.Synthesizer
	Generator   *challenge.Generator
	Scorer      *scoring.Scorer
}

// EngineImpl is the stateless document understanding core. Every operation
// returns a usable value for any input, including empty text.
type EngineImpl struct {
	c   Components
	cfg EngineConfig
	log *logger.Logger
}

var _ domain.Engine = (*EngineImpl)(nil)

func NewEngine(c Components, cfg EngineConfig, log *logger.Logger) *EngineImpl {
	if cfg.HistoryWindow < 0 {
		cfg.HistoryWindow = 0
	}
	if cfg.AnswerFallbackChars <= 0 {
		cfg.AnswerFallbackChars = 500
	}
	if cfg.MaxDocumentChars <= 0 {
		cfg.MaxDocumentChars = 100000
	}
	return &EngineImpl{c: c, cfg: cfg, log: logger.OrNop(log)}
}

func (e *EngineImpl) Summarize(text string) string {
	return e.c.Summarizer.Summarize(e.clip(text), e.cfg.SummaryMaxWords)
}

// Answer ranks the document's paragraphs against the question plus recent
// history and extracts an answer from the best ones.
func (e *EngineImpl) Answer(ctx context.Context, question, text string, history []domain.ConversationTurn) (string, string) {
	text = e.clip(text)
	if strings.TrimSpace(text) == "" {
		return answer.InsufficientAnswer, answer.InsufficientJustification
	}
	passages := rank.Passages(e.c.Segmenter.Segment(text).Paragraphs)
	query := answer.Query(question, history, e.cfg.HistoryWindow)
	ranked := e.c.Ranker.Rank(ctx, query, passages, text, e.cfg.AnswerFallbackChars)
	e.log.Debug("ranked passages", "question", question, "passages", len(passages), "selected", len(ranked),
		"fallback", len(ranked) == 1 && ranked[0].Passage.IsFallback())
	return e.c.Synthesizer.Synthesize(question, ranked)
}

func (e *EngineImpl) GenerateChallengeQuestions(text string) []string {
	return e.c.Generator.Generate(e.clip(text))
}

func (e *EngineImpl) Evaluate(ctx context.Context, question, userAnswer, text string) domain.Evaluation {
	ev := e.c.Scorer.Score(ctx, question, userAnswer, e.clip(text))
	e.log.Debug("evaluated answer", "question", question, "score", ev.Score)
	return ev
}

func (e *EngineImpl) clip(text string) string {
	return tokenize.Head(text, e.cfg.MaxDocumentChars)
}
