package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	historyUser   string
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a user's score history, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		entries, err := st.ReadHistory(ctx, historyUser, historyLimit)
		if err != nil {
			return err
		}

		if historyFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		if len(entries) == 0 {
			fmt.Println("no score history")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  overall=%.1f  badge=%s  level=%d  trend=%s\n",
				e.Result.CalculatedAt.Format("2006-01-02 15:04"),
				e.Result.OverallScore,
				e.Result.Badge,
				e.Result.Level,
				e.Result.Trend,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyUser, "user", "", "user id (required)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "maximum entries to show")
	historyCmd.Flags().StringVar(&historyFormat, "format", "table", "output format: table or json")
	_ = historyCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(historyCmd)
}
