package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fdescout/internal/store"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent run history",
	Long:  "Print the most recent per-source run results from the store.",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 20, "number of run rows to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	logs, err := sqlStore.RecentRuns(statusLimit)
	if err != nil {
		logger.Error("failed to query run history", "error", err)
		os.Exit(1)
	}
	if len(logs) == 0 {
		fmt.Println("no runs recorded yet")
		return nil
	}

	fmt.Printf("%-20s  %-12s  %-36s  %6s  %6s  %s\n", "TIME", "SOURCE", "RUN", "FOUND", "ADDED", "ERRORS")
	for _, rl := range logs {
		fmt.Printf("%-20s  %-12s  %-36s  %6d  %6d  %d\n",
			rl.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			rl.Source, rl.RunID, rl.Found, rl.Added, len(rl.Errors),
		)
	}
	return nil
}
