package scoring

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/sustainly/esg-cli/internal/catalog"
	"github.com/sustainly/esg-cli/internal/model"
)

// Metric is one normalized answer: a value in [0,1] bound to its catalog
// question.
type Metric struct {
	QuestionID  string
	Category    model.Category
	Subcategory string
	Weight      float64
	Value       float64
	Provenance  model.Provenance
}

// Normalize validates raw answers against the catalog and converts them to
// bounded metrics. Malformed answers are dropped with a warning, never
// failing the whole submission. Duplicate answers for one question are
// resolved by provenance: user input beats imports, imports beat LLM
// suggestions.
func Normalize(answers []model.Answer, cat *catalog.Catalog) ([]Metric, []string) {
	var warnings []string

	chosen := make(map[string]model.Answer, len(answers))
	for _, a := range answers {
		prev, ok := chosen[a.QuestionID]
		if !ok || a.Provenance.Beats(prev.Provenance) {
			chosen[a.QuestionID] = a
		}
	}

	ids := make([]string, 0, len(chosen))
	for id := range chosen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	metrics := make([]Metric, 0, len(ids))
	for _, id := range ids {
		a := chosen[id]

		spec, ok := cat.Question(id)
		if !ok {
			err := &UnknownQuestionError{QuestionID: id}
			zap.L().Warn("scoring: dropping answer", zap.Error(err))
			warnings = append(warnings, err.Error())
			continue
		}
		if a.ValueType != "" && a.ValueType != spec.ValueType {
			warnings = append(warnings, fmt.Sprintf("question %q: value type %q does not match catalog type %q, answer dropped",
				id, a.ValueType, spec.ValueType))
			continue
		}

		value, warn := normalizeValue(a.Value, spec)
		if warn != "" {
			warnings = append(warnings, warn)
		}

		metrics = append(metrics, Metric{
			QuestionID:  id,
			Category:    spec.Category,
			Subcategory: spec.Subcategory,
			Weight:      spec.Weight,
			Value:       value,
			Provenance:  a.Provenance,
		})
	}

	return metrics, warnings
}

// normalizeValue maps a raw value to [0,1] per the question's value type.
// Out-of-range values clamp with a warning rather than failing.
func normalizeValue(raw float64, spec model.QuestionSpec) (float64, string) {
	switch spec.ValueType {
	case model.ValueBoolean:
		if raw != 0 {
			return 1.0, ""
		}
		return 0.0, ""

	case model.ValuePercentage:
		v := raw / 100
		if v < 0 || v > 1 {
			return clamp01(v), fmt.Sprintf("question %q: percentage %g outside [0,100], clamped", spec.ID, raw)
		}
		return v, ""

	case model.ValueNumeric:
		var warn string
		v := raw
		if v < spec.ValidRange.Min || v > spec.ValidRange.Max {
			warn = fmt.Sprintf("question %q: value %g outside [%g, %g], clamped",
				spec.ID, raw, spec.ValidRange.Min, spec.ValidRange.Max)
			if v < spec.ValidRange.Min {
				v = spec.ValidRange.Min
			} else {
				v = spec.ValidRange.Max
			}
		}
		frac := (v - spec.ValidRange.Min) / (spec.ValidRange.Max - spec.ValidRange.Min)
		if spec.LowerIsBetter {
			frac = 1 - frac
		}
		return frac, warn
	}

	// Unreachable for validated catalogs.
	return 0, fmt.Sprintf("question %q: unknown value type %q", spec.ID, spec.ValueType)
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
