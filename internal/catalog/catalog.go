package catalog

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sustainly/esg-cli/internal/model"
)

// subcategoryWeights are the fixed category-internal weights used when
// rolling subcategories up into category scores. Per category they sum
// to 1.0, validated in New.
var subcategoryWeights = map[model.Category]map[string]float64{
	model.CategoryEnvironmental: {
		"emissions": 0.4,
		"energy":    0.3,
		"waste":     0.3,
	},
	model.CategorySocial: {
		"diversity": 0.4,
		"employee":  0.4,
		"community": 0.2,
	},
	model.CategoryGovernance: {
		"ethics":       0.5,
		"transparency": 0.5,
	},
}

const weightTolerance = 1e-9

// Catalog is the validated, immutable question catalog for one industry.
type Catalog struct {
	questions []model.QuestionSpec
	byID      map[string]model.QuestionSpec
}

// New validates the question set and builds a catalog. Validation failures
// are fatal: a catalog with bad weights would silently skew every score.
func New(questions []model.QuestionSpec) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, eris.New("catalog: no questions")
	}

	byID := make(map[string]model.QuestionSpec, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			return nil, eris.New("catalog: question with empty id")
		}
		if _, dup := byID[q.ID]; dup {
			return nil, eris.Errorf("catalog: duplicate question id %q", q.ID)
		}
		if !q.Category.Valid() {
			return nil, eris.Errorf("catalog: question %q: unknown category %q", q.ID, q.Category)
		}
		if _, ok := subcategoryWeights[q.Category][q.Subcategory]; !ok {
			return nil, eris.Errorf("catalog: question %q: subcategory %q not in category %q", q.ID, q.Subcategory, q.Category)
		}
		if !q.ValueType.Valid() {
			return nil, eris.Errorf("catalog: question %q: unknown value type %q", q.ID, q.ValueType)
		}
		if q.Weight <= 0 {
			return nil, eris.Errorf("catalog: question %q: non-positive weight %g", q.ID, q.Weight)
		}
		if q.ValueType == model.ValueNumeric && q.ValidRange.Max <= q.ValidRange.Min {
			return nil, eris.Errorf("catalog: question %q: invalid range [%g, %g]", q.ID, q.ValidRange.Min, q.ValidRange.Max)
		}
		byID[q.ID] = q
	}

	for cat, subs := range subcategoryWeights {
		sum := 0.0
		for _, w := range subs {
			sum += w
		}
		if math.Abs(sum-1.0) > weightTolerance {
			return nil, eris.Errorf("catalog: subcategory weights for %q sum to %g, want 1.0", cat, sum)
		}
	}

	return &Catalog{questions: questions, byID: byID}, nil
}

// Default returns the built-in retail catalog. Panics only if the built-in
// data is inconsistent, which is a programming error caught by tests.
func Default() *Catalog {
	c, err := New(DefaultRetail())
	if err != nil {
		panic(err)
	}
	return c
}

// Question looks up a catalog entry by id.
func (c *Catalog) Question(id string) (model.QuestionSpec, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// Questions returns all catalog entries in declaration order.
func (c *Catalog) Questions() []model.QuestionSpec {
	return c.questions
}

// Len returns the number of questions in the catalog.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// SubcategoryWeight returns the fixed rollup weight of a subcategory
// within its category.
func (c *Catalog) SubcategoryWeight(cat model.Category, sub string) float64 {
	return subcategoryWeights[cat][sub]
}

// Subcategories lists a category's subcategories in stable sorted order.
func (c *Catalog) Subcategories(cat model.Category) []string {
	subs := make([]string, 0, len(subcategoryWeights[cat]))
	for s := range subcategoryWeights[cat] {
		subs = append(subs, s)
	}
	sort.Strings(subs)
	return subs
}

// AllSubcategories lists every canonical subcategory across categories,
// sorted for determinism.
func AllSubcategories() []string {
	var subs []string
	for _, m := range subcategoryWeights {
		for s := range m {
			subs = append(subs, s)
		}
	}
	sort.Strings(subs)
	return subs
}

// CategoryOf returns the category a subcategory belongs to.
func CategoryOf(sub string) (model.Category, bool) {
	for cat, subs := range subcategoryWeights {
		if _, ok := subs[sub]; ok {
			return cat, true
		}
	}
	return "", false
}
