// Package trend classifies score direction across recent history.
package trend

import "github.com/sustainly/esg-cli/internal/model"

const (
	// window is how many prior entries feed the comparison baseline.
	window = 3
	// threshold is the minimum absolute delta that counts as movement.
	threshold = 2.0
)

// Classify compares the latest overall score against the mean of up to the
// last three prior entries. History must be ordered most-recent-first, as
// the store returns it. Fewer than 2 prior entries is a valid terminal
// classification, not an error.
func Classify(latest float64, history []model.ScoreHistoryEntry) model.Trend {
	if len(history) < 2 {
		return model.TrendInsufficientData
	}

	n := len(history)
	if n > window {
		n = window
	}
	sum := 0.0
	for _, e := range history[:n] {
		sum += e.Result.OverallScore
	}
	delta := latest - sum/float64(n)

	switch {
	case delta >= threshold:
		return model.TrendImproving
	case delta <= -threshold:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

// Delta returns the raw score movement used by Classify, for alert
// descriptions. Zero when history is too short.
func Delta(latest float64, history []model.ScoreHistoryEntry) float64 {
	if len(history) < 2 {
		return 0
	}
	n := len(history)
	if n > window {
		n = window
	}
	sum := 0.0
	for _, e := range history[:n] {
		sum += e.Result.OverallScore
	}
	return latest - sum/float64(n)
}
