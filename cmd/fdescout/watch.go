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
	"fdescout/internal/scheduler"
	"fdescout/internal/section"
	"fdescout/internal/store"
	"fdescout/internal/taxonomy"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the aggregation daemon",
	Long:  "Run an aggregation on the configured interval; blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"query", cfg.Scrape.Query,
		"interval", cfg.Watch.Interval.String(),
		"sources", len(cfg.Sources),
	)

	sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	sources := buildSources(cfg, httpClient, logger)
	if len(sources) == 0 {
		logger.Error("no sources enabled")
		os.Exit(1)
	}
	engine := buildEngine(ctx, cfg, httpClient, logger)

	agg := aggregator.New(
		sources, sqlStore, section.NewSegmenter(), engine, taxonomy.NewMatcher(),
		cfg.Scrape.Concurrency, cfg.Scrape.BatchSize, nil, logger,
	)

	sched := scheduler.NewScheduler(agg, searchQuery(cfg), cfg.Watch.Interval, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("watch loop error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
