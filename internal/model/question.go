package model

// Category is a top-level ESG scoring category.
type Category string

const (
	CategoryEnvironmental Category = "environmental"
	CategorySocial        Category = "social"
	CategoryGovernance    Category = "governance"
)

// Categories lists the top-level categories in canonical order.
func Categories() []Category {
	return []Category{CategoryEnvironmental, CategorySocial, CategoryGovernance}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryEnvironmental, CategorySocial, CategoryGovernance:
		return true
	}
	return false
}

// Range bounds the expected raw values for a numeric question. Values
// outside the range are clamped during normalization, not rejected.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// QuestionSpec is a static catalog entry for one questionnaire question.
// Catalog data is immutable reference data; subcategory weights within a
// category sum to 1.0, validated at load time.
type QuestionSpec struct {
	ID              string    `json:"id" yaml:"id"`
	Category        Category  `json:"category" yaml:"category"`
	Subcategory     string    `json:"subcategory" yaml:"subcategory"`
	Question        string    `json:"question" yaml:"question"`
	ValueType       ValueType `json:"value_type" yaml:"value_type"`
	Unit            string    `json:"unit,omitempty" yaml:"unit,omitempty"`
	Weight          float64   `json:"weight" yaml:"weight"`
	ValidRange      Range     `json:"valid_range" yaml:"valid_range"`
	IndustryDefault float64   `json:"industry_default,omitempty" yaml:"industry_default,omitempty"`
	// LowerIsBetter inverts numeric scaling (e.g. CO2 emissions).
	LowerIsBetter bool   `json:"lower_is_better,omitempty" yaml:"lower_is_better,omitempty"`
	HelpText      string `json:"help_text,omitempty" yaml:"help_text,omitempty"`
}
