package scoring

import "github.com/sustainly/esg-cli/internal/model"

// Deterministic recommendation templates per lagging category. Quick wins
// target low-cost fixes (category < 60); long-term goals target strategic
// initiatives (category < 70). The suggest chain may replace these with
// richer text downstream.
var quickWinTemplates = map[model.Category][]string{
	model.CategoryEnvironmental: {
		"Switch to LED lighting",
		"Implement basic recycling program",
		"Set up energy monitoring",
	},
	model.CategorySocial: {
		"Conduct employee satisfaction survey",
		"Create diversity and inclusion policy",
		"Organize team building activities",
	},
	model.CategoryGovernance: {
		"Develop code of conduct",
		"Implement basic data privacy measures",
		"Create supplier guidelines",
	},
}

var longTermTemplates = map[model.Category][]string{
	model.CategoryEnvironmental: {
		"Achieve carbon neutrality",
		"Implement circular economy practices",
		"Install renewable energy systems",
	},
	model.CategorySocial: {
		"Establish comprehensive DEI program",
		"Create employee development pathways",
		"Launch community investment initiative",
	},
	model.CategoryGovernance: {
		"Obtain ESG certification",
		"Implement comprehensive ESG reporting",
		"Establish ESG governance committee",
	},
}

// Recommendations fills quick wins and long-term goals from the
// category-keyed templates, capped at five each.
func Recommendations(categories map[model.Category]float64) (quickWins, longTermGoals []string) {
	for _, c := range model.Categories() {
		v, ok := categories[c]
		if !ok {
			continue
		}
		if v < 60 {
			quickWins = append(quickWins, quickWinTemplates[c]...)
		}
		if v < 70 {
			longTermGoals = append(longTermGoals, longTermTemplates[c]...)
		}
	}
	if len(quickWins) > maxListed {
		quickWins = quickWins[:maxListed]
	}
	if len(longTermGoals) > maxListed {
		longTermGoals = longTermGoals[:maxListed]
	}
	return quickWins, longTermGoals
}
