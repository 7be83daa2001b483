package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sustainly/esg-cli/internal/model"
	"github.com/sustainly/esg-cli/pkg/anthropic"
)

const suggestSystemPrompt = `You estimate ESG assessment answers for small retail businesses.
Given an industry and a list of unanswered questions, respond with a JSON
object of the form {"answers": [{"question_id": "...", "value": <number>}]}.
Use typical values for a business of that industry and size. For boolean
questions answer 0 or 1, for percentage questions answer 0-100, and keep
numeric answers inside the stated valid range. Respond with JSON only.`

// AnthropicProvider suggests answers via the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider builds a provider over the given client and model.
func NewAnthropicProvider(client anthropic.Client, model string) *AnthropicProvider {
	return &AnthropicProvider{client: client, model: model}
}

// Name implements Provider.
func (p *AnthropicProvider) Name() string { return "anthropic" }

type suggestedAnswer struct {
	QuestionID string  `json:"question_id"`
	Value      float64 `json:"value"`
}

type suggestResponse struct {
	Answers []suggestedAnswer `json:"answers"`
}

// SuggestAnswers asks the model for one value per unanswered question.
// Answers for question ids that were not asked are dropped with a
// warning.
func (p *AnthropicProvider) SuggestAnswers(ctx context.Context, industry string, unanswered []model.QuestionSpec) ([]model.Answer, error) {
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: 1024,
		System:    suggestSystemPrompt,
		Prompt:    buildPrompt(industry, unanswered),
	})
	if err != nil {
		return nil, eris.Wrap(err, "suggest: anthropic request")
	}
	resp.Usage.LogCost(p.model, "suggest")

	if resp.Text == "" {
		return nil, eris.New("suggest: empty model response")
	}

	// The model may wrap the JSON in prose; take the outermost object.
	start := strings.Index(resp.Text, "{")
	end := strings.LastIndex(resp.Text, "}")
	if start < 0 || end <= start {
		return nil, eris.Errorf("suggest: no JSON in response: %s", resp.Text)
	}

	var parsed suggestResponse
	if err := json.Unmarshal([]byte(resp.Text[start:end+1]), &parsed); err != nil {
		return nil, eris.Wrap(err, "suggest: parse response JSON")
	}

	byID := make(map[string]model.QuestionSpec, len(unanswered))
	for _, q := range unanswered {
		byID[q.ID] = q
	}

	answers := make([]model.Answer, 0, len(parsed.Answers))
	for _, a := range parsed.Answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			zap.L().Warn("suggest: model answered a question that was not asked",
				zap.String("question_id", a.QuestionID))
			continue
		}
		answers = append(answers, model.Answer{
			QuestionID: q.ID,
			Value:      a.Value,
			ValueType:  q.ValueType,
			Provenance: model.ProvenanceLLM,
		})
	}
	return answers, nil
}

func buildPrompt(industry string, unanswered []model.QuestionSpec) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Industry: %s\n\nUnanswered questions:\n", industry)
	for _, q := range unanswered {
		fmt.Fprintf(&sb, "- id=%s type=%s range=[%g,%g]", q.ID, q.ValueType, q.ValidRange.Min, q.ValidRange.Max)
		if q.Unit != "" {
			fmt.Fprintf(&sb, " unit=%s", q.Unit)
		}
		fmt.Fprintf(&sb, " question=%q\n", q.Question)
	}
	return sb.String()
}
