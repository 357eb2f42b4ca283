package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fdescout/internal/aggregator"
	"fdescout/internal/model"
	"fdescout/internal/progress"
	"fdescout/internal/section"
	"fdescout/internal/store"
	"fdescout/internal/taxonomy"
)

var (
	plain  bool
	dryRun bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one aggregation",
	Long:  "Search every configured source once, enrich new postings, and save them.",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&plain, "plain", false, "log progress instead of rendering the TUI")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "run without persisting anything")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"query", cfg.Scrape.Query,
		"sources", len(cfg.Sources),
		"recency", cfg.Scrape.Recency.String(),
		"ai", cfg.AI.Enabled,
	)

	var st model.Store
	if dryRun {
		logger.Info("dry-run mode enabled, nothing will be persisted")
		st = store.NewNopStore()
	} else {
		sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		st = sqlStore
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	sources := buildSources(cfg, httpClient, logger)
	if len(sources) == 0 {
		logger.Error("no sources enabled")
		os.Exit(1)
	}
	engine := buildEngine(ctx, cfg, httpClient, logger)

	tracker := progress.NewTracker()
	agg := aggregator.New(
		sources, st, section.NewSegmenter(), engine, taxonomy.NewMatcher(),
		cfg.Scrape.Concurrency, cfg.Scrape.BatchSize, tracker.Update, logger,
	)
	q := searchQuery(cfg)

	var summary *model.RunSummary
	if plain {
		summary, err = agg.Run(ctx, q)
	} else {
		summary, err = runWithTUI(ctx, agg, q, tracker)
	}
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	logSummary(logger, summary)
	return nil
}
