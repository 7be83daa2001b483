package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sustainly/esg-cli/internal/benchmark"
	"github.com/sustainly/esg-cli/internal/fetcher"
)

var (
	benchURL       string
	benchIndustry  string
	benchDimension string
)

var benchmarksCmd = &cobra.Command{
	Use:   "benchmarks",
	Short: "Manage industry benchmark reference data",
}

var benchmarksSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh benchmarks from the CSV feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		url := benchURL
		if url == "" {
			url = cfg.Benchmark.FeedURL
		}
		if url == "" {
			return eris.New("no feed url: pass --url or set ESG_BENCHMARK_FEED_URL")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		syncer := benchmark.NewSyncer(fetcher.New(), st)
		upserted, err := syncer.Sync(ctx, url)
		if err != nil {
			return err
		}
		fmt.Printf("synced %d benchmark rows\n", upserted)
		return nil
	},
}

var benchmarksShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a stored benchmark row",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		b, err := st.GetBenchmark(ctx, benchmark.Key(benchIndustry), benchDimension)
		if err != nil {
			return err
		}
		if b == nil {
			return eris.Errorf("no benchmark for %s/%s", benchIndustry, benchDimension)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	},
}

func init() {
	benchmarksSyncCmd.Flags().StringVar(&benchURL, "url", "", "feed url (default from config)")
	benchmarksShowCmd.Flags().StringVar(&benchIndustry, "industry", "retail", "industry")
	benchmarksShowCmd.Flags().StringVar(&benchDimension, "dimension", "overall", "scoring dimension")

	benchmarksCmd.AddCommand(benchmarksSyncCmd, benchmarksShowCmd)
	rootCmd.AddCommand(benchmarksCmd)
}
