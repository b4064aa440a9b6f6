package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobpulse/internal/config"
)

type flakyProvider struct {
	failures int
	calls    int
}

func (p *flakyProvider) Complete(_ context.Context, _, _ string) (string, error) {
	p.calls++
	if p.calls <= p.failures {
		return "", errors.New("upstream timeout")
	}
	return "{}", nil
}

func (p *flakyProvider) IsHealthy(context.Context) error { return nil }
func (p *flakyProvider) GetProviderName() string         { return "flaky" }

func gateConfig(attempts int, elapsed time.Duration) *config.Config {
	cfg := &config.Config{}
	cfg.LLM.RateLimit = 6000 // effectively unthrottled for tests
	cfg.LLM.MaxAttempts = attempts
	cfg.LLM.MaxElapsed = elapsed
	return cfg
}

func TestGateSucceedsAfterRetries(t *testing.T) {
	provider := &flakyProvider{failures: 2}
	gate := NewGate(gateConfig(5, time.Minute), provider, WithBackoffDelays(time.Millisecond, 4*time.Millisecond))

	out, err := gate.Complete(context.Background(), "system", "user")
	require.NoError(t, err)
	require.Equal(t, "{}", out)
	require.Equal(t, 3, provider.calls)
}

func TestGateExhaustsAttemptBudget(t *testing.T) {
	provider := &flakyProvider{failures: 100}
	gate := NewGate(gateConfig(5, time.Minute), provider, WithBackoffDelays(time.Millisecond, 4*time.Millisecond))

	_, err := gate.Complete(context.Background(), "system", "user")
	require.ErrorIs(t, err, ErrBudgetExhausted)
	require.Equal(t, 5, provider.calls)
}

func TestGateExhaustsElapsedBudget(t *testing.T) {
	provider := &flakyProvider{failures: 100}
	// Backoff far larger than the elapsed budget: the second attempt is
	// never issued.
	gate := NewGate(gateConfig(5, 10*time.Millisecond), provider, WithBackoffDelays(time.Second, time.Second))

	_, err := gate.Complete(context.Background(), "system", "user")
	require.ErrorIs(t, err, ErrBudgetExhausted)
	require.Equal(t, 1, provider.calls)
}

func TestGateHonorsContextCancel(t *testing.T) {
	provider := &flakyProvider{failures: 100}
	gate := NewGate(gateConfig(5, time.Minute), provider, WithBackoffDelays(time.Hour, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := gate.Complete(ctx, "system", "user")
	require.ErrorIs(t, err, context.Canceled)
}
