package config

import (
	"strings"
	"time"
)

// SourceKind enumerates supported content source backends.
type SourceKind string

const (
	SourceHTTP SourceKind = "http"
	SourceGit  SourceKind = "git"
)

// NormalizeSourceKind converts arbitrary user input (case-insensitive) into a typed kind, returning empty string for unknown.
func NormalizeSourceKind(raw string) SourceKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(SourceHTTP):
		return SourceHTTP
	case string(SourceGit):
		return SourceGit
	default:
		return ""
	}
}

// TimeoutDuration parses the configured timeout, falling back to the default
// when unset or malformed. Validation reports malformed values separately.
func (c *HTTPSourceConfig) TimeoutDuration() time.Duration {
	if c == nil || c.Timeout == "" {
		return defaultSourceTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return defaultSourceTimeout
	}
	return d
}

// TTLDuration parses the configured cache TTL.
func (c *CacheConfig) TTLDuration() time.Duration {
	if c == nil || c.TTL == "" {
		return defaultCacheTTL
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return defaultCacheTTL
	}
	return d
}

// SweepDuration parses the configured sweep interval.
func (c *CacheConfig) SweepDuration() time.Duration {
	if c == nil || c.SweepInterval == "" {
		return defaultCacheSweep
	}
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil || d <= 0 {
		return defaultCacheSweep
	}
	return d
}

// PrewarmDuration parses the configured prewarm interval. Zero disables prewarm.
func (c *CacheConfig) PrewarmDuration() time.Duration {
	if c == nil || c.PrewarmInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.PrewarmInterval)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}
