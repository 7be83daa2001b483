// Package predict evaluates forward-looking compliance risk rules and
// produces predictive alerts.
package predict

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sustainly/esg-cli/internal/benchmark"
	"github.com/sustainly/esg-cli/internal/model"
)

const (
	complianceGapFloor    = 50.0
	complianceGapCritical = 35.0
	complianceGapDays     = 60

	trendDeclineDays     = 45
	trendDeclineHighDrop = -5.0
)

// Input is everything one rule evaluation needs. Evaluate is pure: same
// input, same alerts, including ids.
type Input struct {
	UserID   string
	Industry string

	Result model.ScoreResult
	// History holds the entries prior to Result, most recent first.
	History []model.ScoreHistoryEntry

	Trend      model.Trend
	TrendDelta float64
	// PrevTrend is the trend recorded by the previous generation run,
	// empty when no run has happened yet.
	PrevTrend model.Trend

	// Completeness is the fraction of scoring dimensions with data.
	Completeness float64

	Calendar []model.RegulatoryCalendarEntry
	Now      time.Time
}

// Evaluate runs every rule independently and returns the fired alerts.
// Multiple rules may fire at once; none firing returns an empty slice.
func Evaluate(in Input) []model.PredictiveAlert {
	var alerts []model.PredictiveAlert
	alerts = append(alerts, complianceGaps(in)...)
	alerts = append(alerts, regulatoryDeadlines(in)...)
	alerts = append(alerts, trendDeclines(in)...)
	return alerts
}

// complianceGaps fires per category scoring below the compliance floor
// while the trend is not improving.
func complianceGaps(in Input) []model.PredictiveAlert {
	if in.Trend == model.TrendImproving {
		return nil
	}

	var alerts []model.PredictiveAlert
	for _, cat := range model.Categories() {
		score, ok := in.Result.CategoryScores[cat]
		if !ok || score >= complianceGapFloor {
			continue
		}

		risk := model.RiskHigh
		if score < complianceGapCritical {
			risk = model.RiskCritical
		}

		// Confidence grows with data completeness and with how settled
		// the downward signal is.
		stability := 0.4
		switch in.Trend {
		case model.TrendDeclining:
			stability = 1.0
		case model.TrendStable:
			stability = 0.7
		}
		confidence := clamp01(0.3 + 0.5*in.Completeness + 0.2*stability)

		alerts = append(alerts, model.PredictiveAlert{
			ID:        model.AlertID(in.UserID, model.AlertComplianceGap, string(cat)),
			UserID:    in.UserID,
			Type:      model.AlertComplianceGap,
			RiskLevel: risk,
			Title:     fmt.Sprintf("Compliance gap: %s", cat),
			Description: fmt.Sprintf("%s score %.1f is below the %.0f-point compliance floor and the trend is %s",
				titleCase(string(cat)), score, complianceGapFloor, in.Trend),
			PredictedImpact:    fmt.Sprintf("Sustained low %s performance increases the likelihood of compliance findings and remediation costs", cat),
			RecommendedActions: gapActions[cat],
			TimelineDays:       complianceGapDays,
			ConfidenceScore:    confidence,
			DataSources:        []string{"esg_scoring", "trend_analysis"},
			CreatedAt:          in.Now,
			ExpiresAt:          in.Now.AddDate(0, 0, complianceGapDays),
		})
	}
	return alerts
}

// regulatoryDeadlines fires for calendar entries whose deadline falls
// inside the entry's warning window while readiness is under threshold.
func regulatoryDeadlines(in Input) []model.PredictiveAlert {
	var alerts []model.PredictiveAlert
	for _, entry := range in.Calendar {
		if entry.Industry != "" && benchmark.Key(entry.Industry) != benchmark.Key(in.Industry) {
			continue
		}
		daysUntil := int(math.Ceil(entry.Deadline.Sub(in.Now).Hours() / 24))
		if daysUntil < 0 || daysUntil > entry.TimelineDays {
			continue
		}

		readiness := readinessFor(entry, in.Result)
		if entry.ReadinessThreshold <= 0 || readiness >= entry.ReadinessThreshold {
			continue
		}

		gapRatio := (entry.ReadinessThreshold - readiness) / entry.ReadinessThreshold
		risk := model.RiskMedium
		switch {
		case gapRatio >= 0.5:
			risk = model.RiskCritical
		case gapRatio >= 0.25:
			risk = model.RiskHigh
		}

		windowKey := entry.ID + "|" + entry.Deadline.Format("2006-01-02")
		description := fmt.Sprintf("%s deadline in %d days with readiness %.0f%% against a %.0f%% threshold",
			entry.Name, daysUntil, readiness, entry.ReadinessThreshold)
		impact := entry.TypicalPenalty
		if impact == "" {
			impact = "Missing the deadline may trigger fines or corrective action mandates"
		}

		alerts = append(alerts, model.PredictiveAlert{
			ID:              model.AlertID(in.UserID, model.AlertRegulatoryDeadline, windowKey),
			UserID:          in.UserID,
			Type:            model.AlertRegulatoryDeadline,
			RiskLevel:       risk,
			Title:           fmt.Sprintf("Regulatory deadline: %s in %d days", entry.Name, daysUntil),
			Description:     description,
			PredictedImpact: impact,
			RecommendedActions: []string{
				fmt.Sprintf("Assign an owner for %s", strings.ToLower(entry.Name)),
				"Prepare required documentation and evidence",
				"Schedule an internal review within 7 days",
			},
			TimelineDays:    daysUntil,
			ConfidenceScore: clamp01(0.4 + 0.4*gapRatio + 0.2*in.Completeness),
			DataSources:     []string{"esg_scoring", "regulatory_calendar"},
			CreatedAt:       in.Now,
			ExpiresAt:       entry.Deadline,
		})
	}
	return alerts
}

// trendDeclines fires after two consecutive declining generation runs.
func trendDeclines(in Input) []model.PredictiveAlert {
	if in.Trend != model.TrendDeclining || in.PrevTrend != model.TrendDeclining {
		return nil
	}

	risk := model.RiskMedium
	if in.TrendDelta <= trendDeclineHighDrop {
		risk = model.RiskHigh
	}

	return []model.PredictiveAlert{{
		ID:        model.AlertID(in.UserID, model.AlertTrendDecline, in.Result.CalculatedAt.Format("2006-01-02")),
		UserID:    in.UserID,
		Type:      model.AlertTrendDecline,
		RiskLevel: risk,
		Title:     "Sustained ESG score decline",
		Description: fmt.Sprintf("Overall score dropped %.1f points against the recent baseline, declining for the second consecutive evaluation",
			math.Abs(in.TrendDelta)),
		PredictedImpact: "Continued decline erodes badge standing and raises compliance gap exposure",
		RecommendedActions: []string{
			"Review the most recent answer changes for regressions",
			"Prioritize the lowest-scoring subcategories",
			"Re-assess within 30 days to confirm the direction",
		},
		TimelineDays:    trendDeclineDays,
		ConfidenceScore: clamp01(0.5 + 0.5*in.Completeness),
		DataSources:     []string{"esg_scoring", "trend_analysis"},
		CreatedAt:       in.Now,
		ExpiresAt:       in.Now.AddDate(0, 0, trendDeclineDays),
	}}
}

// readinessFor blends the calendar entry's referenced scores into a single
// readiness value. Keys name categories or subcategories; missing
// references drop out with weights renormalized. No usable reference
// falls back to the overall score.
func readinessFor(entry model.RegulatoryCalendarEntry, result model.ScoreResult) float64 {
	if len(entry.ReadinessWeights) == 0 {
		return result.OverallScore
	}

	weighted, weight := 0.0, 0.0
	for key, w := range entry.ReadinessWeights {
		if w <= 0 {
			continue
		}
		if key == "overall" {
			weighted += w * result.OverallScore
			weight += w
			continue
		}
		if v, ok := result.CategoryScores[model.Category(key)]; ok {
			weighted += w * v
			weight += w
			continue
		}
		if v, ok := result.SubcategoryScores[key]; ok {
			weighted += w * v
			weight += w
		}
	}
	if weight == 0 {
		return result.OverallScore
	}
	return weighted / weight
}

var gapActions = map[model.Category][]string{
	model.CategoryEnvironmental: {
		"Audit energy use and emissions hotspots",
		"Set a quarterly reduction target",
		"Switch the worst-performing sites to renewable tariffs",
	},
	model.CategorySocial: {
		"Run an employee satisfaction survey",
		"Publish a diversity and inclusion policy",
		"Set hiring targets for underrepresented groups",
	},
	model.CategoryGovernance: {
		"Roll out ethics training to all staff",
		"Adopt a supplier code of conduct",
		"Start publishing an annual ESG report",
	},
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
