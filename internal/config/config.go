package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for fdescout.
type Config struct {
	Scrape    ScrapeConfig
	Sources   []SourceConfig
	RateLimit RateLimitConfig
	AI        AIConfig
	Store     StoreConfig
	Watch     WatchConfig
}

// ScrapeConfig controls one aggregation run.
type ScrapeConfig struct {
	Query        string
	Location     string
	Recency      time.Duration // how far back a posting may be
	MaxPerSource int
	Concurrency  int // concurrent source searches
	BatchSize    int // records per SaveBatch call
}

// SourceConfig describes a single configured source.
type SourceConfig struct {
	Name       string `yaml:"name"`    // display name, defaults to type
	Type       string `yaml:"type"`    // "greenhouse", "lever", "rss"
	BoardToken string `yaml:"board_token"`
	Company    string `yaml:"company"`
	FeedURL    string `yaml:"feed_url"`
	Enabled    bool   `yaml:"enabled"`
}

// RateLimitConfig controls the randomized gap between consecutive
// requests to the same source.
type RateLimitConfig struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// AIConfig controls the LLM extraction path. When Enabled is false the
// engine falls back to the taxonomy matcher.
type AIConfig struct {
	Enabled   bool
	Timeout   time.Duration // per provider call
	CacheSize int           // extraction cache capacity (entries)
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
}

// OpenAIConfig configures the primary provider.
type OpenAIConfig struct {
	BaseURL string
	Model   string
	APIKey  string
}

// GeminiConfig configures the secondary (fallback) provider. An empty
// APIKey disables the fallback.
type GeminiConfig struct {
	Model  string
	APIKey string
}

// StoreConfig locates the sqlite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// WatchConfig controls daemon mode.
type WatchConfig struct {
	Interval time.Duration
}

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultGeminiModel   = "gemini-2.0-flash"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and
// durations as strings).
type rawConfig struct {
	Scrape    rawScrapeConfig    `yaml:"scrape"`
	Sources   []SourceConfig     `yaml:"sources"`
	RateLimit rawRateLimitConfig `yaml:"rate_limit"`
	AI        rawAIConfig        `yaml:"ai"`
	Store     StoreConfig        `yaml:"store"`
	Watch     rawWatchConfig     `yaml:"watch"`
}

type rawScrapeConfig struct {
	Query        string `yaml:"query"`
	Location     string `yaml:"location"`
	RecencyDays  int    `yaml:"recency_days"`
	MaxPerSource int    `yaml:"max_per_source"`
	Concurrency  int    `yaml:"concurrency"`
	BatchSize    int    `yaml:"batch_size"`
}

type rawRateLimitConfig struct {
	MinDelay string `yaml:"min_delay"`
	MaxDelay string `yaml:"max_delay"`
}

type rawAIConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Timeout   string `yaml:"timeout"`
	CacheSize int    `yaml:"cache_size"`
	OpenAI    struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"openai"`
	Gemini struct {
		Model  string `yaml:"model"`
		APIKey string `yaml:"api_key"`
	} `yaml:"gemini"`
}

type rawWatchConfig struct {
	Interval string `yaml:"interval"`
}

// Load reads and parses the YAML config file at path, applies defaults,
// validates it, and returns Config. Configuration errors are the only
// fatal startup errors in the system.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables so secrets stay out of the file.
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		Scrape: ScrapeConfig{
			Query:        raw.Scrape.Query,
			Location:     raw.Scrape.Location,
			Recency:      time.Duration(raw.Scrape.RecencyDays) * 24 * time.Hour,
			MaxPerSource: raw.Scrape.MaxPerSource,
			Concurrency:  raw.Scrape.Concurrency,
			BatchSize:    raw.Scrape.BatchSize,
		},
		Sources: raw.Sources,
		Store:   raw.Store,
	}

	if cfg.Scrape.Query == "" {
		cfg.Scrape.Query = "forward deployed engineer"
	}
	if raw.Scrape.RecencyDays == 0 {
		cfg.Scrape.Recency = 30 * 24 * time.Hour
	}
	if cfg.Scrape.MaxPerSource == 0 {
		cfg.Scrape.MaxPerSource = 50
	}
	if cfg.Scrape.Concurrency == 0 {
		cfg.Scrape.Concurrency = 3
	}
	if cfg.Scrape.BatchSize == 0 {
		cfg.Scrape.BatchSize = 10
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "fdescout.db"
	}

	for i := range cfg.Sources {
		if cfg.Sources[i].Name == "" {
			cfg.Sources[i].Name = cfg.Sources[i].Type
		}
	}

	cfg.RateLimit.MinDelay = 2 * time.Second
	if raw.RateLimit.MinDelay != "" {
		cfg.RateLimit.MinDelay, err = time.ParseDuration(raw.RateLimit.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.min_delay %q: %w", raw.RateLimit.MinDelay, err)
		}
	}
	cfg.RateLimit.MaxDelay = 5 * time.Second
	if raw.RateLimit.MaxDelay != "" {
		cfg.RateLimit.MaxDelay, err = time.ParseDuration(raw.RateLimit.MaxDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.max_delay %q: %w", raw.RateLimit.MaxDelay, err)
		}
	}

	cfg.AI = AIConfig{
		Enabled:   raw.AI.Enabled,
		Timeout:   30 * time.Second,
		CacheSize: raw.AI.CacheSize,
		OpenAI: OpenAIConfig{
			BaseURL: raw.AI.OpenAI.BaseURL,
			Model:   raw.AI.OpenAI.Model,
			APIKey:  raw.AI.OpenAI.APIKey,
		},
		Gemini: GeminiConfig{
			Model:  raw.AI.Gemini.Model,
			APIKey: raw.AI.Gemini.APIKey,
		},
	}
	if raw.AI.Timeout != "" {
		cfg.AI.Timeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}
	if cfg.AI.CacheSize == 0 {
		cfg.AI.CacheSize = 500
	}
	if cfg.AI.OpenAI.BaseURL == "" {
		cfg.AI.OpenAI.BaseURL = defaultOpenAIBaseURL
	}
	if cfg.AI.OpenAI.Model == "" {
		cfg.AI.OpenAI.Model = defaultOpenAIModel
	}
	if cfg.AI.Gemini.Model == "" {
		cfg.AI.Gemini.Model = defaultGeminiModel
	}

	cfg.Watch.Interval = 6 * time.Hour
	if raw.Watch.Interval != "" {
		cfg.Watch.Interval, err = time.ParseDuration(raw.Watch.Interval)
		if err != nil {
			return nil, fmt.Errorf("parse watch.interval %q: %w", raw.Watch.Interval, err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	enabled := 0
	for _, s := range cfg.Sources {
		if !s.Enabled {
			continue
		}
		enabled++
		switch s.Type {
		case "greenhouse", "lever":
			if s.BoardToken == "" {
				return fmt.Errorf("source %q: board_token is required for type %q", s.Name, s.Type)
			}
		case "rss":
			if s.FeedURL == "" {
				return fmt.Errorf("source %q: feed_url is required for type \"rss\"", s.Name)
			}
		default:
			return fmt.Errorf("source %q: unsupported type %q", s.Name, s.Type)
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	if cfg.RateLimit.MaxDelay < cfg.RateLimit.MinDelay {
		return fmt.Errorf("rate_limit.max_delay must be >= min_delay, got %v < %v",
			cfg.RateLimit.MaxDelay, cfg.RateLimit.MinDelay)
	}

	if cfg.Scrape.Concurrency < 1 {
		return fmt.Errorf("scrape.concurrency must be positive, got %d", cfg.Scrape.Concurrency)
	}

	if cfg.AI.Enabled && cfg.AI.OpenAI.APIKey == "" && cfg.AI.Gemini.APIKey == "" {
		return fmt.Errorf("ai.enabled is true but no provider api_key is set")
	}

	if cfg.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive, got %v", cfg.Watch.Interval)
	}

	return nil
}
