package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sustainly/esg-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "esg-cli",
	Short: "ESG scoring, benchmarking, and predictive alert engine",
	Long:  "Scores ESG questionnaires for retail SMBs, benchmarks them against industry peers, tracks score trends, and generates predictive compliance alerts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
