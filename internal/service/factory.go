package service

import (
	"fmt"
	"time"

	"docinsight/internal/answer"
	"docinsight/internal/challenge"
	"docinsight/internal/concept"
	"docinsight/internal/config"
	"docinsight/internal/domain"
	"docinsight/internal/embedding"
	"docinsight/internal/embedding/openai"
	"docinsight/internal/embedding/tfidf"
	"docinsight/internal/logger"
	"docinsight/internal/metrics"
	"docinsight/internal/rank"
	"docinsight/internal/scoring"
	"docinsight/internal/segment"
	"docinsight/internal/session"
	"docinsight/internal/session/memory"
	"docinsight/internal/session/sqlite"
	"docinsight/internal/summarizer"
)

// NewEngineFromConfig assembles the engine described by cfg.
func NewEngineFromConfig(cfg *config.AppConfig, log *logger.Logger, m *metrics.Metrics) (*EngineImpl, error) {
	log = logger.OrNop(log)
	seg, err := segment.NewCached(segment.New(log), cfg.Engine.SegmentCacheSize)
	if err != nil {
		return nil, fmt.Errorf("segment cache: %w", err)
	}
	ranker, err := NewRanker(cfg, log, m)
	if err != nil {
		return nil, err
	}
	scorer := scoring.NewScorer(scoring.Config{
		LengthTiers:      cfg.Scoring.LengthTiers,
		OverlapTiers:     cfg.Scoring.OverlapTiers,
		DiscourseMarkers: cfg.Scoring.DiscourseMarkers,
		StructureMarkers: cfg.Scoring.StructureMarkers,
		FallbackChars:    cfg.Engine.EvaluateFallbackChars,
		MaxDocumentChars: cfg.Engine.MaxDocumentChars,
	}, ranker, seg, m)

	return NewEngine(Components{
		Segmenter:   seg,
		Ranker:      ranker,
		Summarizer:  summarizer.NewFrequencySummarizer(seg),
		Synthesizer: answer.NewSynthesizer(seg, answer.DefaultRules),
		Generator:   challenge.NewGenerator(concept.NewExtractor(concept.MaxConcepts)),
		Scorer:      scorer,
	}, EngineConfig{
		HistoryWindow:       cfg.Engine.Window(),
		AnswerFallbackChars: cfg.Engine.AnswerFallbackChars,
		MaxDocumentChars:    cfg.Engine.MaxDocumentChars,
		SummaryMaxWords:     cfg.Engine.SummaryMaxWords,
	}, log), nil
}

// NewRanker builds the ranker for cfg.Ranker.Backend. An embedding backend
// whose embedder cannot be created degrades to lexical ranking.
func NewRanker(cfg *config.AppConfig, log *logger.Logger, m *metrics.Metrics) (*rank.Ranker, error) {
	log = logger.OrNop(log)
	lexical := rank.NewLexical(cfg.Ranker.MinSharedWords)
	opts := []rank.Option{
		rank.WithTopK(cfg.Ranker.TopK),
		rank.WithLogger(log),
		rank.WithMetrics(m),
		rank.WithFallback(lexical),
	}

	var sim rank.Similarity
	switch cfg.Ranker.Backend {
	case "lexical":
		sim = lexical
	case "tfidf", "":
		sim = rank.NewTFIDF(cfg.Ranker.TFIDFFloor)
	case "embedding":
		emb, err := NewEmbedder(cfg)
		if err != nil {
			log.Warn("embedder unavailable, ranking lexically", "type", cfg.Embedder.Type, "error", err)
			m.RecordDegradation("embedding")
			sim = lexical
			break
		}
		timeout := 30 * time.Second
		concurrency := 4
		if o := cfg.Embedder.OpenAI; o != nil {
			timeout = time.Duration(o.TimeoutSecs) * time.Second
			concurrency = o.Concurrency
		}
		sim = rank.NewEmbedding(emb, cfg.Ranker.EmbeddingFloor, timeout, concurrency, rank.BreakerSettings{
			MaxFailures: cfg.Embedder.Breaker.MaxFailures,
			OpenFor:     time.Duration(cfg.Embedder.Breaker.OpenSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown ranker backend %q: %w", cfg.Ranker.Backend, domain.ErrInvalidInput)
	}
	return rank.New(sim, opts...), nil
}

// NewEmbedder builds the embedder for cfg.Embedder.Type.
func NewEmbedder(cfg *config.AppConfig) (embedding.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai", "ollama":
		o := cfg.Embedder.OpenAI
		if o == nil {
			return nil, fmt.Errorf("%s embedder config missing: %w", cfg.Embedder.Type, domain.ErrInvalidInput)
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:    o.BaseURL,
			APIKeyEnv:  o.APIKeyEnv,
			Model:      o.Model,
			Timeout:    time.Duration(o.TimeoutSecs) * time.Second,
			MaxRetries: o.MaxRetries,
			AllowNoKey: cfg.Embedder.Type == "ollama",
		})
		if err != nil {
			return nil, fmt.Errorf("%s embedder: %w", cfg.Embedder.Type, err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder %q: %w", cfg.Embedder.Type, domain.ErrInvalidInput)
	}
}

// NewStore opens the session store selected by cfg.Session.Store.
func NewStore(cfg *config.AppConfig) (session.Store, error) {
	switch cfg.Session.Store {
	case "memory", "":
		return memory.NewStore(), nil
	case "sqlite":
		st, err := sqlite.NewStore(cfg.Session.DataDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown session store %q: %w", cfg.Session.Store, domain.ErrInvalidInput)
	}
}
