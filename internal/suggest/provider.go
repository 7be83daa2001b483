// Package suggest fills unanswered catalog questions with estimated
// values, either from an LLM or from industry defaults.
package suggest

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sustainly/esg-cli/internal/model"
	"github.com/sustainly/esg-cli/internal/resilience"
)

// Provider proposes answers for unanswered questions. Returned answers
// carry the llm_suggested provenance and are validated by the caller
// during normalization.
type Provider interface {
	Name() string
	SuggestAnswers(ctx context.Context, industry string, unanswered []model.QuestionSpec) ([]model.Answer, error)
}

// Chain tries providers in order until one succeeds. Each provider sits
// behind a circuit breaker and transient-error retry, and all calls
// share one rate limiter.
type Chain struct {
	providers []Provider
	breakers  *resilience.Breakers
	limiter   *rate.Limiter
}

// NewChain builds a chain over the given providers. ratePerSec throttles
// provider calls; values <= 0 default to 1/s.
func NewChain(providers []Provider, ratePerSec float64) *Chain {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Chain{
		providers: providers,
		breakers:  resilience.NewBreakers(resilience.BreakerConfig{}),
		limiter:   rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

// Suggest returns answers from the first provider that succeeds. An
// open breaker skips its provider. All providers failing is an error.
func (c *Chain) Suggest(ctx context.Context, industry string, unanswered []model.QuestionSpec) ([]model.Answer, error) {
	if len(unanswered) == 0 {
		return nil, nil
	}
	if len(c.providers) == 0 {
		return nil, eris.New("suggest: no providers configured")
	}

	var lastErr error
	for _, p := range c.providers {
		var answers []model.Answer
		err := c.breakers.Get(p.Name()).Execute(ctx, func(ctx context.Context) error {
			var err error
			answers, err = resilience.Retry(ctx, resilience.RetryConfig{}, "suggest "+p.Name(),
				func(ctx context.Context) ([]model.Answer, error) {
					if err := c.limiter.Wait(ctx); err != nil {
						return nil, eris.Wrap(err, "suggest: rate limiter wait")
					}
					return p.SuggestAnswers(ctx, industry, unanswered)
				})
			return err
		})
		if errors.Is(err, resilience.ErrCircuitOpen) {
			zap.L().Warn("suggest: circuit open, skipping provider", zap.String("provider", p.Name()))
			continue
		}
		if err != nil {
			lastErr = err
			zap.L().Warn("suggest: provider failed",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			continue
		}

		zap.L().Info("suggest: answers suggested",
			zap.String("provider", p.Name()),
			zap.String("industry", industry),
			zap.Int("requested", len(unanswered)),
			zap.Int("suggested", len(answers)),
		)
		return answers, nil
	}

	if lastErr == nil {
		return nil, eris.New("suggest: all providers unavailable")
	}
	return nil, eris.Wrap(lastErr, "suggest: all providers failed")
}
