package service

import (
	"context"
	"fmt"

	"salon-offers/config"
)

// NewChatCompleter builds the provider client named in cfg. It returns
// ErrAIDisabled when no API key is configured.
func NewChatCompleter(ctx context.Context, cfg config.LLMConfig) (ChatCompleter, error) {
	if cfg.APIKey == "" {
		return nil, ErrAIDisabled
	}

	switch cfg.Provider {
	case config.ProviderGroq, config.ProviderOpenAI:
		return NewOpenAICompleter(cfg.Provider, cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case config.ProviderGemini:
		completer, err := NewGeminiCompleter(ctx, cfg.APIKey, cfg.Model, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return completer, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
