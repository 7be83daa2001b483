package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCost(t *testing.T) {
	t.Parallel()

	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}
	assert.InDelta(t, 0.80+2.00, u.EstimateCost("claude-haiku-4-5-20251001"), 1e-9)
	assert.InDelta(t, 3.00+7.50, u.EstimateCost("claude-sonnet-4-5-20250929"), 1e-9)

	// Unknown models cost nothing rather than guessing.
	assert.Zero(t, u.EstimateCost("some-future-model"))
	assert.Zero(t, TokenUsage{}.EstimateCost("claude-haiku-4-5-20251001"))
}
