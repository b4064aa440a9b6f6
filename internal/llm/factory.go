package llm

import (
	"fmt"

	"jobpulse/internal/config"
	"jobpulse/internal/llm/providers"
)

// NewProvider creates the configured LLM provider.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.LLM.Provider {
	case "", "claude":
		return providers.NewClaudeProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}
