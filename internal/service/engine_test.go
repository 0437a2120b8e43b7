package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docinsight/internal/answer"
	"docinsight/internal/config"
	"docinsight/internal/domain"
	"docinsight/internal/logger"
)

const parisDoc = "The capital of France is Paris. It is known for the Eiffel Tower."

func newTestEngine(t *testing.T, mutate func(*config.AppConfig)) *EngineImpl {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	e, err := NewEngineFromConfig(cfg, logger.Nop(), nil)
	require.NoError(t, err)
	return e
}

func TestEngine_ParisScenario(t *testing.T) {
	for _, backend := range []string{"lexical", "tfidf", "embedding"} {
		t.Run(backend, func(t *testing.T) {
			e := newTestEngine(t, func(c *config.AppConfig) { c.Ranker.Backend = backend })
			ans, just := e.Answer(context.Background(), "What is the capital of France?", parisDoc, nil)
			assert.Equal(t, "According to the document, The capital of France is Paris.", ans)
			assert.Equal(t, answer.Justify(1), just)
		})
	}
}

func TestEngine_EmptyDocument(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	assert.Equal(t, "", e.Summarize(""))

	ans, just := e.Answer(ctx, "What is this?", "", nil)
	assert.Equal(t, answer.InsufficientAnswer, ans)
	assert.Equal(t, answer.InsufficientJustification, just)

	qs := e.GenerateChallengeQuestions("")
	assert.Len(t, qs, 3)

	ev := e.Evaluate(ctx, "What is this?", "First, it matters because of the many small details written right here.", "")
	// length 2, discourse 1, structure 1; no document words to overlap
	assert.Equal(t, 4, ev.Score)
}

func TestEngine_HistoryReachesRanking(t *testing.T) {
	e := newTestEngine(t, nil)
	doc := "Paris is the capital of France.\n\nBerlin is the capital of Germany."
	q := "Which country is that city in?"

	ans, _ := e.Answer(context.Background(), q, doc, nil)
	assert.Equal(t, "Based on the document: Paris is the capital of France.", ans)

	history := []domain.ConversationTurn{{Question: "Tell me about Berlin", Answer: "Berlin is large."}}
	ans, _ = e.Answer(context.Background(), q, doc, history)
	assert.Equal(t, "Based on the document: Berlin is the capital of Germany.", ans)

	noHistory := newTestEngine(t, func(c *config.AppConfig) {
		none := 0
		c.Engine.HistoryWindow = &none
	})
	ans, _ = noHistory.Answer(context.Background(), q, doc, history)
	assert.Equal(t, "Based on the document: Paris is the capital of France.", ans)
}

func TestEngine_SummaryBudget(t *testing.T) {
	e := newTestEngine(t, func(c *config.AppConfig) { c.Engine.SummaryMaxWords = 20 })
	doc := strings.Repeat("Gardens need water and light every single day of the year. ", 30)
	got := e.Summarize(doc)
	assert.LessOrEqual(t, len(strings.Fields(got)), 20)
	assert.NotEmpty(t, got)
}

func TestEngine_MaxDocumentChars(t *testing.T) {
	e := newTestEngine(t, func(c *config.AppConfig) {
		c.Engine.MaxDocumentChars = len(parisDoc)
		c.Ranker.Backend = "lexical"
	})
	doc := parisDoc + "\n\nThe capital of Spain is Madrid, a capital city."
	ans, _ := e.Answer(context.Background(), "What is the capital of Spain?", doc, nil)
	assert.NotContains(t, ans, "Madrid", "text beyond the cap is never read")
}

func TestNewRanker_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Ranker.Backend = "neural"
	_, err := NewRanker(cfg, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewRanker_EmbedderUnavailableDegrades(t *testing.T) {
	t.Setenv("DOCINSIGHT_MISSING_KEY", "")
	cfg := config.Default()
	cfg.Ranker.Backend = "embedding"
	cfg.Embedder.Type = "openai"
	cfg.Embedder.OpenAI = &config.OpenAIEmbedderConfig{APIKeyEnv: "DOCINSIGHT_MISSING_KEY"}
	r, err := NewRanker(cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "lexical", r.Backend())
}
