package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sustainly/esg-cli/internal/importer"
	"github.com/sustainly/esg-cli/internal/model"
	"github.com/sustainly/esg-cli/internal/scoring"
)

var (
	scoreUser     string
	scoreIndustry string
	scoreAnswers  string
	scoreSave     bool
	scoreSuggest  bool
	scoreFormat   string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score an ESG questionnaire",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		answers, err := importer.Load(scoreAnswers)
		if err != nil {
			return err
		}

		if scoreSuggest {
			chain, err := newSuggestChain()
			if err != nil {
				return err
			}
			suggested, err := chain.Suggest(ctx, scoreIndustry, unanswered(cat.Questions(), answers))
			if err != nil {
				zap.L().Warn("answer suggestion failed, scoring provided answers only", zap.Error(err))
			} else {
				answers = append(answers, suggested...)
			}
		}

		engine := newEngine(st, cat)
		result, warnings, err := engine.Compute(ctx, scoreUser, scoreIndustry, answers, scoreSave)
		if err != nil {
			var incomplete *scoring.IncompleteAssessmentError
			if errors.As(err, &incomplete) {
				return eris.Wrap(err, "assessment incomplete")
			}
			return err
		}

		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}

		if scoreFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result.Flatten())
		}
		printScoreTable(result)
		return nil
	},
}

// unanswered returns the catalog questions with no provided answer.
func unanswered(questions []model.QuestionSpec, answers []model.Answer) []model.QuestionSpec {
	got := make(map[string]bool, len(answers))
	for _, a := range answers {
		got[a.QuestionID] = true
	}
	var missing []model.QuestionSpec
	for _, q := range questions {
		if !got[q.ID] {
			missing = append(missing, q)
		}
	}
	return missing
}

func printScoreTable(result *model.ScoreResult) {
	fmt.Printf("Overall score: %.1f  (%s, level %d)\n", result.OverallScore, result.Badge, result.Level)
	if result.IndustryPercentile != nil {
		fmt.Printf("Industry percentile: %.1f\n", *result.IndustryPercentile)
	}
	fmt.Printf("Trend: %s\n\n", result.Trend)

	cats := make([]string, 0, len(result.CategoryScores))
	for c := range result.CategoryScores {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Printf("%-14s %.1f\n", c, result.CategoryScores[model.Category(c)])
	}

	subs := make([]string, 0, len(result.SubcategoryScores))
	for s := range result.SubcategoryScores {
		subs = append(subs, s)
	}
	sort.Strings(subs)
	fmt.Println()
	for _, s := range subs {
		fmt.Printf("  %-14s %.1f\n", s, result.SubcategoryScores[s])
	}

	if len(result.Strengths) > 0 {
		fmt.Printf("\nStrengths: %v\n", result.Strengths)
	}
	if len(result.ImprovementAreas) > 0 {
		fmt.Printf("Improvement areas: %v\n", result.ImprovementAreas)
	}
	for _, q := range result.QuickWins {
		fmt.Printf("Quick win: %s\n", q)
	}
	for _, g := range result.LongTermGoals {
		fmt.Printf("Long-term goal: %s\n", g)
	}
}

func init() {
	scoreCmd.Flags().StringVar(&scoreUser, "user", "", "user id (required)")
	scoreCmd.Flags().StringVar(&scoreIndustry, "industry", "retail", "industry for benchmarking")
	scoreCmd.Flags().StringVar(&scoreAnswers, "answers", "", "answers file (.yaml, .csv, or .xlsx) (required)")
	scoreCmd.Flags().BoolVar(&scoreSave, "save", false, "append the result to score history")
	scoreCmd.Flags().BoolVar(&scoreSuggest, "suggest", false, "fill unanswered questions via the suggestion chain")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "table", "output format: table or json")
	_ = scoreCmd.MarkFlagRequired("user")
	_ = scoreCmd.MarkFlagRequired("answers")
	rootCmd.AddCommand(scoreCmd)
}
