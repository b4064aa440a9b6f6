package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"jobpulse/internal/config"
	"jobpulse/internal/llm"
	"jobpulse/internal/logging"
)

// ErrBudgetExhausted is returned once the retry budget (attempts or elapsed
// time) is spent. Callers treat it as a permanent failure for the job.
var ErrBudgetExhausted = errors.New("enrichment call budget exhausted")

// Gate wraps the LLM provider with rate limiting and retry. Rate limiting
// throttles issuance of every call; backoff only spaces retries after a
// failure. Both apply uniformly, never per job.
type Gate struct {
	provider    llm.Provider
	limiter     *rate.Limiter
	maxAttempts int
	maxElapsed  time.Duration
	baseDelay   time.Duration
	maxDelay    time.Duration
	logger      logging.Logger
}

// GateOption overrides gate tuning, used by tests to shrink delays.
type GateOption func(*Gate)

// WithBackoffDelays overrides the retry delay bounds.
func WithBackoffDelays(base, max time.Duration) GateOption {
	return func(g *Gate) {
		g.baseDelay = base
		g.maxDelay = max
	}
}

// NewGate creates a call gate enforcing cfg.LLM.RateLimit calls per rolling
// minute and cfg.LLM.MaxAttempts/MaxElapsed retry budgets.
func NewGate(cfg *config.Config, provider llm.Provider, opts ...GateOption) *Gate {
	// Per-minute budget expressed as a token bucket; burst 1 keeps issuance
	// evenly spaced across the window.
	rps := rate.Limit(float64(cfg.LLM.RateLimit) / 60.0)

	g := &Gate{
		provider:    provider,
		limiter:     rate.NewLimiter(rps, 1),
		maxAttempts: cfg.LLM.MaxAttempts,
		maxElapsed:  cfg.LLM.MaxElapsed,
		baseDelay:   time.Second,
		maxDelay:    60 * time.Second,
		logger:      logging.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Complete issues one logical call through the gate. Transient failures are
// retried with exponential backoff until either maxAttempts or maxElapsed is
// hit, whichever comes first; the last provider error is wrapped in
// ErrBudgetExhausted.
func (g *Gate) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	deadline := time.Now().Add(g.maxElapsed)
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := g.backoffDelay(attempt)
			if time.Now().Add(delay).After(deadline) {
				break
			}
			g.logger.Debug("Retrying enrichment call", map[string]interface{}{
				"attempt": attempt,
				"delay":   delay.String(),
			})
			if err := sleepCtx(ctx, delay); err != nil {
				return "", err
			}
		}

		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait: %w", err)
		}

		attempts++
		out, err := g.provider.Complete(ctx, systemPrompt, userPrompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		g.logger.Warn("Enrichment call failed", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if time.Now().After(deadline) {
			break
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrBudgetExhausted, attempts, lastErr)
}

// backoffDelay doubles from baseDelay per retry, capped at maxDelay.
func (g *Gate) backoffDelay(attempt int) time.Duration {
	delay := g.baseDelay << (attempt - 2)
	if delay > g.maxDelay || delay <= 0 {
		delay = g.maxDelay
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
