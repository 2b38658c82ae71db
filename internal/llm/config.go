package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single debrief request including retries.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for OpenAI-compatible APIs
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with defaults. The debrief is short, so
// the timeout is tighter than a generation workload would need.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 20 * time.Second,
	}
}

// envBinding maps a CASCADE_* variable onto a config field.
type envBinding struct {
	name string
	set  func(*Config, string)
}

var envBindings = []envBinding{
	{"CASCADE_LLM_PROVIDER", func(c *Config, v string) { c.Provider = v }},
	{"CASCADE_ANTHROPIC_API_KEY", func(c *Config, v string) { c.Anthropic.APIKey = v }},
	{"CASCADE_ANTHROPIC_MODEL", func(c *Config, v string) { c.Anthropic.Model = v }},
	{"CASCADE_ANTHROPIC_BASE_URL", func(c *Config, v string) { c.Anthropic.BaseURL = v }},
	{"CASCADE_OPENAI_API_KEY", func(c *Config, v string) { c.OpenAI.APIKey = v }},
	{"CASCADE_OPENAI_MODEL", func(c *Config, v string) { c.OpenAI.Model = v }},
	{"CASCADE_OPENAI_BASE_URL", func(c *Config, v string) { c.OpenAI.BaseURL = v }},
	{"CASCADE_GEMINI_API_KEY", func(c *Config, v string) { c.Gemini.APIKey = v }},
	{"CASCADE_GEMINI_MODEL", func(c *Config, v string) { c.Gemini.Model = v }},
	{"CASCADE_GEMINI_BASE_URL", func(c *Config, v string) { c.Gemini.BaseURL = v }},
	{"CASCADE_OPENROUTER_API_KEY", func(c *Config, v string) { c.OpenRouter.APIKey = v }},
	{"CASCADE_OPENROUTER_MODEL", func(c *Config, v string) { c.OpenRouter.Model = v }},
	{"CASCADE_OPENROUTER_BASE_URL", func(c *Config, v string) { c.OpenRouter.BaseURL = v }},
	{"CASCADE_LLM_TIMEOUT", func(c *Config, v string) {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}},
}

// ConfigFromEnv builds a Config from CASCADE_* variables over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for _, b := range envBindings {
		if v := os.Getenv(b.name); v != "" {
			b.set(&cfg, v)
		}
	}
	return cfg
}

// Configured reports whether CASCADE_LLM_PROVIDER is set.
func Configured() bool {
	return os.Getenv("CASCADE_LLM_PROVIDER") != ""
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini, OpenAI, Anthropic, OpenRouter) and returns a Config for the first
// provider whose key is found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	probes := []struct {
		env      string
		provider string
		set      func(string)
	}{
		{"GEMINI_API_KEY", ProviderGemini, func(k string) { cfg.Gemini.APIKey = k }},
		{"OPENAI_API_KEY", ProviderOpenAI, func(k string) { cfg.OpenAI.APIKey = k }},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, func(k string) { cfg.Anthropic.APIKey = k }},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, func(k string) { cfg.OpenRouter.APIKey = k }},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.provider
			p.set(k)
			return cfg, true
		}
	}
	return Config{}, false
}

// Resolve returns the CASCADE_* config when a provider is set explicitly,
// otherwise a discovered one.
func Resolve() (Config, bool) {
	if Configured() {
		return ConfigFromEnv(), true
	}
	return DiscoverConfig()
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	missing := func(env string) error {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	switch c.Provider {
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return missing("CASCADE_ANTHROPIC_API_KEY")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return missing("CASCADE_OPENAI_API_KEY")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return missing("CASCADE_GEMINI_API_KEY")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return missing("CASCADE_OPENROUTER_API_KEY")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
