package coach

import "time"

// Config holds debrief generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
	// Timeout bounds one debrief including provider retries; zero disables it.
	Timeout time.Duration
}

// DefaultConfig returns defaults for debrief generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   400,
		Temperature: 0.4,
		Timeout:     20 * time.Second,
	}
}
