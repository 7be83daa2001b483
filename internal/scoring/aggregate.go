package scoring

import (
	"math"
	"sort"

	"github.com/sustainly/esg-cli/internal/model"
)

// categoryWeights are the fixed overall-score weights, renormalized over
// whichever categories are present.
var categoryWeights = map[model.Category]float64{
	model.CategoryEnvironmental: 0.40,
	model.CategorySocial:        0.30,
	model.CategoryGovernance:    0.30,
}

const maxListed = 5

// Overall combines category scores into the overall score. Absent
// categories are excluded and the remaining weights renormalized; a fully
// empty breakdown yields 0.
func Overall(categories map[model.Category]float64) float64 {
	weighted, weight := 0.0, 0.0
	for _, c := range model.Categories() {
		v, ok := categories[c]
		if !ok {
			continue
		}
		w := categoryWeights[c]
		weighted += w * v
		weight += w
	}
	if weight == 0 {
		return 0
	}
	return round1(weighted / weight)
}

// BadgeFor assigns the badge tier. Monotonic step function of the score.
func BadgeFor(score float64) string {
	switch {
	case score >= 90:
		return model.BadgeChampion
	case score >= 80:
		return model.BadgeGreenLeader
	case score >= 70:
		return model.BadgeStar
	case score >= 60:
		return model.BadgeEcoImprover
	case score >= 50:
		return model.BadgeStarter
	default:
		return model.BadgeBeginner
	}
}

// LevelFor maps the overall score to the 1-10 level progression.
func LevelFor(score float64) int {
	level := int(math.Floor(score/10)) + 1
	if level > 10 {
		return 10
	}
	return level
}

// ImprovementAreas lists subcategories scoring below the threshold, worst
// first, capped at 5. Ties break by name so results are deterministic.
func ImprovementAreas(subs map[string]float64, threshold float64) []string {
	return rankSubcategories(subs, func(v float64) bool { return v < threshold }, true)
}

// Strengths lists subcategories at or above the threshold, best first,
// capped at 5.
func Strengths(subs map[string]float64, threshold float64) []string {
	return rankSubcategories(subs, func(v float64) bool { return v >= threshold }, false)
}

func rankSubcategories(subs map[string]float64, keep func(float64) bool, ascending bool) []string {
	type entry struct {
		name  string
		score float64
	}
	var entries []entry
	for name, v := range subs {
		if keep(v) {
			entries = append(entries, entry{name, v})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			if ascending {
				return entries[i].score < entries[j].score
			}
			return entries[i].score > entries[j].score
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > maxListed {
		entries = entries[:maxListed]
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// round1 rounds to one decimal place, matching the persisted score
// precision everywhere.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
