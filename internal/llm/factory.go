package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/cascade/internal/store"
)

// NewProvider builds the configured provider. Each retry attempt is
// recorded separately: caller -> retry -> logging -> base.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *slog.Logger) (Provider, error) {
	base, err := newBase(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	logged := WithLogging(base, cfg.Provider, eventRepo, log)
	return WithRetry(logged, cfg.Retry, log), nil
}

func newBase(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		return NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		return NewMockProvider(), nil
	}
	return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
}
