// Package resilience provides the circuit breaker and retry plumbing used
// by the suggestion chain and feed fetchers.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// ErrCircuitOpen is returned when a call is rejected because the breaker
// is open.
var ErrCircuitOpen = eris.New("circuit breaker is open")

// BreakerConfig controls breaker behavior.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before the
	// breaker opens. Default: 5.
	FailureThreshold int
	// ResetTimeout is how long the breaker stays open before allowing a
	// probe. Default: 30s.
	ResetTimeout time.Duration
}

// Breaker is a circuit breaker for a single provider. After
// FailureThreshold consecutive failures it rejects calls until
// ResetTimeout has passed; a successful probe closes it again.
type Breaker struct {
	cfg BreakerConfig

	mu          sync.Mutex
	failures    int
	open        bool
	lastFailure time.Time

	nowFunc func() time.Time
}

// NewBreaker creates a breaker with the given config.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	return &Breaker{cfg: cfg, nowFunc: time.Now}
}

// Allow reports whether a call may proceed right now.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return true
	}
	// Open: allow one probe once the reset window has passed.
	return b.nowFunc().Sub(b.lastFailure) >= b.cfg.ResetTimeout
}

// Record feeds a call outcome back into the breaker.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.failures = 0
		b.open = false
		return
	}
	b.failures++
	b.lastFailure = b.nowFunc()
	if b.failures >= b.cfg.FailureThreshold {
		b.open = true
	}
}

// Execute runs fn through the breaker, returning ErrCircuitOpen when
// rejected.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if !b.Allow() {
		return ErrCircuitOpen
	}
	err := fn(ctx)
	b.Record(err)
	return err
}

// Breakers keys independent breakers by provider name.
type Breakers struct {
	mu  sync.Mutex
	m   map[string]*Breaker
	cfg BreakerConfig
}

// NewBreakers creates a per-provider breaker registry.
func NewBreakers(cfg BreakerConfig) *Breakers {
	return &Breakers{m: make(map[string]*Breaker), cfg: cfg}
}

// Get returns the breaker for the named provider, creating it if needed.
func (bs *Breakers) Get(name string) *Breaker {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	b, ok := bs.m[name]
	if !ok {
		b = NewBreaker(bs.cfg)
		bs.m[name] = b
	}
	return b
}
