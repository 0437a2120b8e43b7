package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"docinsight/internal/scoring"
)

// RankerConfig selects the similarity backend and its floors.
type RankerConfig struct {
	Backend        string  `yaml:"backend"`
	TopK           int     `yaml:"top_k"`
	MinSharedWords int     `yaml:"min_shared_words"`
	TFIDFFloor     float64 `yaml:"tfidf_floor"`
	EmbeddingFloor float64 `yaml:"embedding_floor"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
	Concurrency int    `yaml:"concurrency"`
}

// BreakerConfig configures the circuit breaker around the embedder.
type BreakerConfig struct {
	MaxFailures uint32 `yaml:"max_failures"`
	OpenSecs    int    `yaml:"open_secs"`
}

// EmbedderConfig selects and configures the text embedder used by the embedding backend.
type EmbedderConfig struct {
	Type    string                `yaml:"type"`
	OpenAI  *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	Breaker BreakerConfig         `yaml:"breaker"`
}

// EngineConfig tunes the document engine. A nil HistoryWindow takes the
// default; an explicit 0 disables conversation context.
type EngineConfig struct {
	HistoryWindow         *int `yaml:"history_window"`
	AnswerFallbackChars   int  `yaml:"answer_fallback_chars"`
	EvaluateFallbackChars int  `yaml:"evaluate_fallback_chars"`
	MaxDocumentChars      int  `yaml:"max_document_chars"`
	SummaryMaxWords       int  `yaml:"summary_max_words"`
	SegmentCacheSize      int  `yaml:"segment_cache_size"`
}

// Window returns the history window, MaxHistoryWindow when unset.
func (e EngineConfig) Window() int {
	if e.HistoryWindow == nil {
		return MaxHistoryWindow
	}
	return *e.HistoryWindow
}

// ScoringConfig is the answer grading rubric.
type ScoringConfig struct {
	LengthTiers      []scoring.Tier `yaml:"length_tiers"`
	OverlapTiers     []scoring.Tier `yaml:"overlap_tiers"`
	DiscourseMarkers []string       `yaml:"discourse_markers"`
	StructureMarkers []string       `yaml:"structure_markers"`
}

// SessionConfig selects where sessions are kept.
type SessionConfig struct {
	Store   string `yaml:"store"`
	DataDir string `yaml:"data_dir"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Mode    string `yaml:"mode"`
	Verbose bool   `yaml:"verbose"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Ranker   RankerConfig   `yaml:"ranker"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Engine   EngineConfig   `yaml:"engine"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./docinsight.yaml first, then ~/.config/docinsight/config.yaml.
// If neither exists, it writes defaults to ~/.config/docinsight/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "docinsight.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Bounds on the ranker output and the conversation context.
const (
	MaxTopK          = 3
	MaxHistoryWindow = 3
)

// Validate rejects unknown backend, embedder and store names and out-of-range
// top_k and history_window values.
func (c *AppConfig) Validate() error {
	switch c.Ranker.Backend {
	case "lexical", "tfidf", "embedding":
	default:
		return fmt.Errorf("unknown ranker backend %q", c.Ranker.Backend)
	}
	if c.Ranker.TopK < 1 || c.Ranker.TopK > MaxTopK {
		return fmt.Errorf("ranker.top_k %d outside 1..%d", c.Ranker.TopK, MaxTopK)
	}
	if w := c.Engine.HistoryWindow; w != nil && (*w < 0 || *w > MaxHistoryWindow) {
		return fmt.Errorf("engine.history_window %d outside 0..%d", *w, MaxHistoryWindow)
	}
	switch c.Embedder.Type {
	case "tfidf", "openai", "ollama":
	default:
		return fmt.Errorf("unknown embedder type %q", c.Embedder.Type)
	}
	switch c.Session.Store {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docinsight", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	cfg.Ranker.Backend = strings.ToLower(cfg.Ranker.Backend)
	if cfg.Ranker.Backend == "" {
		cfg.Ranker.Backend = "tfidf"
	}
	if cfg.Ranker.TopK == 0 {
		cfg.Ranker.TopK = MaxTopK
	}
	if cfg.Ranker.MinSharedWords == 0 {
		cfg.Ranker.MinSharedWords = 2
	}
	if cfg.Ranker.TFIDFFloor == 0 {
		cfg.Ranker.TFIDFFloor = 0.05
	}
	if cfg.Ranker.EmbeddingFloor == 0 {
		cfg.Ranker.EmbeddingFloor = 0.1
	}

	cfg.Embedder.Type = strings.ToLower(cfg.Embedder.Type)
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Embedder.Type == "openai" || cfg.Embedder.Type == "ollama" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		o := cfg.Embedder.OpenAI
		if o.BaseURL == "" {
			if cfg.Embedder.Type == "ollama" {
				o.BaseURL = "http://localhost:11434/api"
			} else {
				o.BaseURL = "https://api.openai.com/v1"
			}
		}
		if o.APIKeyEnv == "" && cfg.Embedder.Type == "openai" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			if cfg.Embedder.Type == "ollama" {
				o.Model = "nomic-embed-text"
			} else {
				o.Model = "text-embedding-3-small"
			}
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
		if o.MaxRetries == 0 {
			o.MaxRetries = 2
		}
		if o.Concurrency == 0 {
			o.Concurrency = 4
		}
	}
	if cfg.Embedder.Breaker.MaxFailures == 0 {
		cfg.Embedder.Breaker.MaxFailures = 3
	}
	if cfg.Embedder.Breaker.OpenSecs == 0 {
		cfg.Embedder.Breaker.OpenSecs = 60
	}

	e := &cfg.Engine
	if e.HistoryWindow == nil {
		window := MaxHistoryWindow
		e.HistoryWindow = &window
	}
	if e.AnswerFallbackChars == 0 {
		e.AnswerFallbackChars = 500
	}
	if e.EvaluateFallbackChars == 0 {
		e.EvaluateFallbackChars = 1000
	}
	if e.MaxDocumentChars == 0 {
		e.MaxDocumentChars = 100000
	}
	if e.SummaryMaxWords == 0 {
		e.SummaryMaxWords = 150
	}
	if e.SegmentCacheSize == 0 {
		e.SegmentCacheSize = 64
	}

	def := scoring.DefaultConfig()
	if len(cfg.Scoring.LengthTiers) == 0 {
		cfg.Scoring.LengthTiers = def.LengthTiers
	}
	if len(cfg.Scoring.OverlapTiers) == 0 {
		cfg.Scoring.OverlapTiers = def.OverlapTiers
	}
	if cfg.Scoring.DiscourseMarkers == nil {
		cfg.Scoring.DiscourseMarkers = def.DiscourseMarkers
	}
	if cfg.Scoring.StructureMarkers == nil {
		cfg.Scoring.StructureMarkers = def.StructureMarkers
	}

	cfg.Session.Store = strings.ToLower(cfg.Session.Store)
	if cfg.Session.Store == "" {
		cfg.Session.Store = "memory"
	}
	if cfg.Log.Mode == "" {
		cfg.Log.Mode = "development"
	}
}
