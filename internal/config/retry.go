package config

import (
	"strings"
	"time"
)

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// NormalizeRetryBackoff converts arbitrary user input (case-insensitive) into a typed mode, returning empty string for unknown.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RetryBackoffFixed):
		return RetryBackoffFixed
	case string(RetryBackoffLinear):
		return RetryBackoffLinear
	case string(RetryBackoffExponential):
		return RetryBackoffExponential
	default:
		return ""
	}
}

// RetryConfig tunes backoff for background origin fetches. Request-path
// fetches never retry; only scheduled work (cache prewarm) reads this.
type RetryConfig struct {
	Backoff      RetryBackoffMode `yaml:"backoff,omitempty"`       // fixed|linear|exponential
	InitialDelay string           `yaml:"initial_delay,omitempty"` // Base delay, Go duration string
	MaxDelay     string           `yaml:"max_delay,omitempty"`     // Delay growth cap
	MaxRetries   int              `yaml:"max_retries,omitempty"`   // Retries after the first failure
}

// InitialDelayDuration parses the configured base delay. Zero means unset.
func (r *RetryConfig) InitialDelayDuration() time.Duration {
	if r == nil || r.InitialDelay == "" {
		return 0
	}
	d, err := time.ParseDuration(r.InitialDelay)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// MaxDelayDuration parses the configured delay cap. Zero means unset.
func (r *RetryConfig) MaxDelayDuration() time.Duration {
	if r == nil || r.MaxDelay == "" {
		return 0
	}
	d, err := time.ParseDuration(r.MaxDelay)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}
