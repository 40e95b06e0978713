// Package config loads startup configuration from the environment and
// an optional TOML file. Environment values come first (a .env file is
// honoured when present); the TOML file only overrides policy tuning.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
)

// Default locations, relative to the working directory.
const (
	DefaultCorpusDir  = "./data"
	DefaultDataDir    = "./vector_db"
	DefaultFeedsFile  = "./data/feeds/rss_sources.csv"
	DefaultConfigFile = "./lore.toml"
)

// Config is the resolved startup configuration.
type Config struct {
	// OpenAIKey is the model-provider credential. Required: absence
	// is a fatal startup error, never a silent no-op.
	OpenAIKey string

	// ForceRebuild maps LORE_FORCE_REBUILD to the index manager's
	// force parameter.
	ForceRebuild bool

	// TracingKey enables request tracing when set. Absence disables
	// tracing only; it is never fatal.
	TracingKey string

	// CorpusDir is the static document corpus location.
	CorpusDir string

	// DataDir holds the vector store and its version marker.
	DataDir string

	// FeedsFile is the feed source registry table.
	FeedsFile string

	// EmbeddingModel and CompletionModel select the provider models.
	EmbeddingModel  string
	CompletionModel string

	// Policy holds the retrieval tuning constants.
	Policy domain.Policy
}

// fileConfig is the optional TOML overlay. Only policy tuning lives
// here; credentials stay in the environment.
type fileConfig struct {
	Policy struct {
		ChunkSize        int     `toml:"chunk_size"`
		ChunkOverlap     int     `toml:"chunk_overlap"`
		EmbedBatchSize   int     `toml:"embed_batch_size"`
		TopK             int     `toml:"top_k"`
		CacheTTLHours    int     `toml:"cache_ttl_hours"`
		FetchTimeoutSecs int     `toml:"fetch_timeout_secs"`
		IndexWeight      float64 `toml:"index_weight"`
		FeedWeight       float64 `toml:"feed_weight"`
	} `toml:"policy"`
}

// Load resolves configuration. configFile may be empty to use the
// default path; a missing file is not an error.
func Load(configFile string) (*Config, error) {
	// .env is a developer convenience; absence is normal.
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		ForceRebuild:    envBool("LORE_FORCE_REBUILD"),
		TracingKey:      os.Getenv("LANGSMITH_API_KEY"),
		CorpusDir:       envOr("LORE_CORPUS_DIR", DefaultCorpusDir),
		DataDir:         envOr("LORE_DATA_DIR", DefaultDataDir),
		FeedsFile:       envOr("LORE_FEEDS_FILE", DefaultFeedsFile),
		EmbeddingModel:  envOr("LORE_EMBEDDING_MODEL", "text-embedding-3-small"),
		CompletionModel: envOr("LORE_COMPLETION_MODEL", "gpt-4o-mini"),
		Policy:          domain.DefaultPolicy(),
	}

	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", domain.ErrConfigMissing)
	}

	if configFile == "" {
		configFile = DefaultConfigFile
	}
	if err := cfg.applyFile(configFile); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFile overlays policy values from the TOML file when it exists.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	p := fc.Policy
	if p.ChunkSize > 0 {
		c.Policy.ChunkSize = p.ChunkSize
	}
	if p.ChunkOverlap > 0 {
		c.Policy.ChunkOverlap = p.ChunkOverlap
	}
	if p.EmbedBatchSize > 0 {
		c.Policy.EmbedBatchSize = p.EmbedBatchSize
	}
	if p.TopK > 0 {
		c.Policy.TopK = p.TopK
	}
	if p.CacheTTLHours > 0 {
		c.Policy.CacheTTL = time.Duration(p.CacheTTLHours) * time.Hour
	}
	if p.FetchTimeoutSecs > 0 {
		c.Policy.FetchTimeout = time.Duration(p.FetchTimeoutSecs) * time.Second
	}
	if p.IndexWeight > 0 {
		c.Policy.IndexWeight = p.IndexWeight
	}
	if p.FeedWeight > 0 {
		c.Policy.FeedWeight = p.FeedWeight
	}

	return nil
}

// TracingEnabled reports whether the optional tracing credential is
// present.
func (c *Config) TracingEnabled() bool {
	return c.TracingKey != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	return strings.EqualFold(os.Getenv(key), "true")
}
