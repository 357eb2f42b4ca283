package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fdescout/internal/ai"
	"fdescout/internal/config"
	"fdescout/internal/extract"
	"fdescout/internal/model"
	"fdescout/internal/ratelimit"
	"fdescout/internal/retry"
	"fdescout/internal/source"
	"fdescout/internal/taxonomy"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "fdescout",
	Short: "Forward-deployed engineer job scout",
	Long:  "fdescout aggregates FDE job postings from job boards, extracts skills, and scores relevance.",
	// Default to `run` so that `fdescout` with no args does one scrape.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: FDESCOUT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > FDESCOUT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("FDESCOUT_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// buildSources creates one adapter per enabled source, each wrapped
// with shared rate limiting and retries.
func buildSources(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []model.Source {
	limiter := ratelimit.NewSourceLimiter(cfg.RateLimit.MinDelay, cfg.RateLimit.MaxDelay)

	var sources []model.Source
	for _, sc := range cfg.Sources {
		if !sc.Enabled {
			continue
		}

		var src model.Source
		switch sc.Type {
		case "greenhouse":
			src = source.NewGreenhouseSource(sc.Name, sc.BoardToken, sc.Company, httpClient)
		case "lever":
			src = source.NewLeverSource(sc.Name, sc.BoardToken, sc.Company, httpClient)
		case "rss":
			src = source.NewRSSSource(sc.Name, sc.FeedURL, httpClient)
		default:
			// validate() already rejects unknown types.
			logger.Warn("unsupported source type, skipping", "name", sc.Name, "type", sc.Type)
			continue
		}

		src = ratelimit.WrapSource(src, limiter)
		src = retry.WrapSource(src, 2, 5*time.Second, logger)
		sources = append(sources, src)
		logger.Info("registered source", "name", sc.Name, "type", sc.Type)
	}
	return sources
}

// buildEngine wires the extraction engine: LLM providers when AI is
// enabled and at least one key is present, the dictionary matcher
// otherwise.
func buildEngine(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) *extract.Engine {
	matcher := taxonomy.NewMatcher()

	if !cfg.AI.Enabled {
		logger.Info("ai extraction disabled, using dictionary matcher")
		return extract.NewEngine(nil, matcher, logger)
	}

	var providers []ai.Provider
	if cfg.AI.OpenAI.APIKey != "" {
		providers = append(providers, ai.NewOpenAIProvider(
			cfg.AI.OpenAI.BaseURL, cfg.AI.OpenAI.APIKey, cfg.AI.OpenAI.Model, httpClient))
	}
	if cfg.AI.Gemini.APIKey != "" {
		gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.Gemini.APIKey, cfg.AI.Gemini.Model)
		if err != nil {
			logger.Warn("gemini provider unavailable", "error", err)
		} else {
			providers = append(providers, gemini)
		}
	}

	if len(providers) == 0 {
		logger.Warn("ai enabled but no provider could be built, using dictionary matcher")
		return extract.NewEngine(nil, matcher, logger)
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	logger.Info("ai extraction enabled", "providers", names)

	extractor := ai.NewExtractor(providers, ai.NewCache(cfg.AI.CacheSize), cfg.AI.Timeout, logger)
	return extract.NewEngine(extractor, matcher, logger)
}

func searchQuery(cfg *config.Config) model.SearchQuery {
	return model.SearchQuery{
		Query:      cfg.Scrape.Query,
		Location:   cfg.Scrape.Location,
		Recency:    cfg.Scrape.Recency,
		MaxResults: cfg.Scrape.MaxPerSource,
	}
}

// logSummary reports the run outcome per source.
func logSummary(logger *slog.Logger, summary *model.RunSummary) {
	logger.Info("run summary",
		"run_id", summary.RunID,
		"found", summary.TotalFound,
		"unique", summary.Unique,
		"saved", summary.Saved,
		"skipped", summary.Skipped,
	)
	for name, stats := range summary.Sources {
		logger.Info("source summary",
			"source", name,
			"found", stats.Found,
			"added", stats.Added,
			"errors", len(stats.Errors),
		)
		for _, e := range stats.Errors {
			logger.Warn("source error", "source", name, "error", e)
		}
	}
}
