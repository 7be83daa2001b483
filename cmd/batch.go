package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sustainly/esg-cli/internal/predict"
)

var (
	batchIndustry    string
	batchConcurrency int
	batchRunID       string
)

var batchCmd = &cobra.Command{
	Use:   "batch-alerts",
	Short: "Generate alerts for every user with score history",
	Long:  "Runs alert generation across all users concurrently. Per-user failures are checkpointed and skipped. Pass --run-id to resume an interrupted run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		calendar, err := loadCalendar(ctx)
		if err != nil {
			return err
		}

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrentUsers
		}

		gen := predict.NewGenerator(st, calendar)
		runner := predict.NewBatchRunner(st, gen, batchIndustry, concurrency)

		summary, runErr := runner.Run(ctx, batchRunID)
		if summary != nil {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(summary)
		}
		return runErr
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchIndustry, "industry", "retail", "industry for the regulatory calendar")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent users (default from config)")
	batchCmd.Flags().StringVar(&batchRunID, "run-id", "", "resume an existing run")
	rootCmd.AddCommand(batchCmd)
}
