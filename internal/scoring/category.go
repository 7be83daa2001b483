package scoring

import (
	"github.com/sustainly/esg-cli/internal/catalog"
	"github.com/sustainly/esg-cli/internal/model"
)

// Breakdown holds per-subcategory and per-category scores on the 0-100
// scale. Buckets with no answered questions are absent, not zero.
type Breakdown struct {
	Subcategories map[string]float64
	Categories    map[model.Category]float64
}

// ScoreCategories rolls normalized metrics up into subcategory and
// category scores. Subcategory = weighted mean over answered questions
// with weights renormalized; category = weighted mean over present
// subcategories with the fixed rollup weights renormalized.
func ScoreCategories(metrics []Metric, cat *catalog.Catalog) Breakdown {
	type acc struct {
		weighted float64
		weight   float64
	}
	subAcc := make(map[string]*acc)
	for _, m := range metrics {
		a, ok := subAcc[m.Subcategory]
		if !ok {
			a = &acc{}
			subAcc[m.Subcategory] = a
		}
		a.weighted += m.Weight * m.Value
		a.weight += m.Weight
	}

	subs := make(map[string]float64, len(subAcc))
	for name, a := range subAcc {
		if a.weight == 0 {
			continue
		}
		subs[name] = round1(a.weighted / a.weight * 100)
	}

	cats := make(map[model.Category]float64)
	for _, c := range model.Categories() {
		weighted, weight := 0.0, 0.0
		for _, sub := range cat.Subcategories(c) {
			v, ok := subs[sub]
			if !ok {
				continue
			}
			w := cat.SubcategoryWeight(c, sub)
			weighted += w * v
			weight += w
		}
		if weight == 0 {
			continue
		}
		cats[c] = round1(weighted / weight)
	}

	return Breakdown{Subcategories: subs, Categories: cats}
}
