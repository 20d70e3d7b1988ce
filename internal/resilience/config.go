package resilience

import "time"

// Circuit breaker configuration constants
const (
	// Default configuration
	DefaultThreshold         = 5
	DefaultResetTimeout      = 30 * time.Second
	DefaultHalfOpenSuccesses = 3

	// LLM configuration (lenient, rate limits clear on their own)
	LLMThreshold         = 8
	LLMResetTimeout      = 45 * time.Second
	LLMHalfOpenSuccesses = 2

	// Search configuration (aggressive, fail fast and answer without results)
	SearchThreshold         = 3
	SearchResetTimeout      = 15 * time.Second
	SearchHalfOpenSuccesses = 2
)

// Config holds circuit breaker settings.
type Config struct {
	Threshold         int           // failures before opening
	ResetTimeout      time.Duration // wait before half-open attempt
	HalfOpenSuccesses int           // successes needed to close
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() Config {
	return Config{
		Threshold:         DefaultThreshold,
		ResetTimeout:      DefaultResetTimeout,
		HalfOpenSuccesses: DefaultHalfOpenSuccesses,
	}
}

// LLMConfig returns lenient settings for the chat completion path.
func LLMConfig() Config {
	return Config{
		Threshold:         LLMThreshold,
		ResetTimeout:      LLMResetTimeout,
		HalfOpenSuccesses: LLMHalfOpenSuccesses,
	}
}

// SearchConfig returns aggressive settings for the web search path.
func SearchConfig() Config {
	return Config{
		Threshold:         SearchThreshold,
		ResetTimeout:      SearchResetTimeout,
		HalfOpenSuccesses: SearchHalfOpenSuccesses,
	}
}

func (c Config) withDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	if c.ResetTimeout <= 0 {
		c.ResetTimeout = DefaultResetTimeout
	}
	if c.HalfOpenSuccesses <= 0 {
		c.HalfOpenSuccesses = DefaultHalfOpenSuccesses
	}
	return c
}
