package llm

import "context"

// Provider is the narrow interface over the external enrichment capability.
// One synchronous call, no state assumed between calls.
type Provider interface {
	// Complete sends a system and user prompt and returns the raw text of
	// the model's reply.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// IsHealthy checks if the provider is healthy and available
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the provider
	GetProviderName() string
}
