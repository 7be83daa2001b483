package suggest

import (
	"context"

	"github.com/sustainly/esg-cli/internal/model"
)

// DefaultsProvider answers every question with its catalog industry
// default. It never fails, so it belongs last in a chain.
type DefaultsProvider struct{}

// NewDefaultsProvider builds the fallback provider.
func NewDefaultsProvider() *DefaultsProvider { return &DefaultsProvider{} }

// Name implements Provider.
func (p *DefaultsProvider) Name() string { return "defaults" }

// SuggestAnswers returns each question's IndustryDefault.
func (p *DefaultsProvider) SuggestAnswers(_ context.Context, _ string, unanswered []model.QuestionSpec) ([]model.Answer, error) {
	answers := make([]model.Answer, 0, len(unanswered))
	for _, q := range unanswered {
		answers = append(answers, model.Answer{
			QuestionID: q.ID,
			Value:      q.IndustryDefault,
			ValueType:  q.ValueType,
			Provenance: model.ProvenanceLLM,
		})
	}
	return answers, nil
}
