package model

import "time"

// Trend classifies score direction across recent history.
type Trend string

const (
	TrendImproving        Trend = "improving"
	TrendDeclining        Trend = "declining"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

// Badge tier labels, assigned by a step function over the overall score.
const (
	BadgeBeginner    = "ESG Beginner"
	BadgeStarter     = "ESG Starter"
	BadgeEcoImprover = "Eco Improver"
	BadgeStar        = "Sustainability Star"
	BadgeGreenLeader = "Green Leader"
	BadgeChampion    = "ESG Champion"
)

// ScoreResult is the single artifact persisted to history and returned to
// callers. Category and subcategory entries are nil when no question in
// that bucket was answered, never silently zero. All scores are 0-100.
type ScoreResult struct {
	OverallScore      float64              `json:"overall_score"`
	CategoryScores    map[Category]float64 `json:"category_scores"`
	SubcategoryScores map[string]float64   `json:"subcategory_scores"`
	Badge             string               `json:"badge"`
	Level             int                  `json:"level"`

	IndustryPercentile *float64 `json:"industry_percentile,omitempty"`
	Trend              Trend    `json:"trend,omitempty"`

	ImprovementAreas []string `json:"improvement_areas"`
	Strengths        []string `json:"strengths"`

	CalculatedAt time.Time `json:"calculated_at"`

	// QuickWins and LongTermGoals are advisory text, filled from catalog
	// templates and optionally replaced by LLM suggestions. Excluded from
	// the determinism guarantee.
	QuickWins     []string `json:"quick_wins,omitempty"`
	LongTermGoals []string `json:"long_term_goals,omitempty"`
}

// CategoryScore returns the score for a category and whether it was computed.
func (r *ScoreResult) CategoryScore(c Category) (float64, bool) {
	v, ok := r.CategoryScores[c]
	return v, ok
}

// FlatScore is the flattened wire shape: one field per canonical category
// and subcategory, nil when the bucket had no answers.
type FlatScore struct {
	OverallScore float64 `json:"overall_score"`

	EnvironmentalScore *float64 `json:"environmental_score"`
	SocialScore        *float64 `json:"social_score"`
	GovernanceScore    *float64 `json:"governance_score"`

	EmissionsScore    *float64 `json:"emissions_score"`
	EnergyScore       *float64 `json:"energy_score"`
	WasteScore        *float64 `json:"waste_score"`
	DiversityScore    *float64 `json:"diversity_score"`
	EmployeeScore     *float64 `json:"employee_score"`
	CommunityScore    *float64 `json:"community_score"`
	EthicsScore       *float64 `json:"ethics_score"`
	TransparencyScore *float64 `json:"transparency_score"`

	Badge              string    `json:"badge"`
	Level              int       `json:"level"`
	ImprovementAreas   []string  `json:"improvement_areas"`
	Strengths          []string  `json:"strengths"`
	IndustryPercentile *float64  `json:"industry_percentile,omitempty"`
	Trend              Trend     `json:"trend,omitempty"`
	CalculatedAt       time.Time `json:"calculated_at"`
	QuickWins          []string  `json:"quick_wins,omitempty"`
	LongTermGoals      []string  `json:"long_term_goals,omitempty"`
}

// Flatten maps the generic score maps onto the canonical flat response shape.
func (r *ScoreResult) Flatten() FlatScore {
	cat := func(c Category) *float64 {
		if v, ok := r.CategoryScores[c]; ok {
			return &v
		}
		return nil
	}
	sub := func(s string) *float64 {
		if v, ok := r.SubcategoryScores[s]; ok {
			return &v
		}
		return nil
	}
	return FlatScore{
		OverallScore:       r.OverallScore,
		EnvironmentalScore: cat(CategoryEnvironmental),
		SocialScore:        cat(CategorySocial),
		GovernanceScore:    cat(CategoryGovernance),
		EmissionsScore:     sub("emissions"),
		EnergyScore:        sub("energy"),
		WasteScore:         sub("waste"),
		DiversityScore:     sub("diversity"),
		EmployeeScore:      sub("employee"),
		CommunityScore:     sub("community"),
		EthicsScore:        sub("ethics"),
		TransparencyScore:  sub("transparency"),
		Badge:              r.Badge,
		Level:              r.Level,
		ImprovementAreas:   r.ImprovementAreas,
		Strengths:          r.Strengths,
		IndustryPercentile: r.IndustryPercentile,
		Trend:              r.Trend,
		CalculatedAt:       r.CalculatedAt,
		QuickWins:          r.QuickWins,
		LongTermGoals:      r.LongTermGoals,
	}
}
