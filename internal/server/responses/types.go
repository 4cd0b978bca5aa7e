// Package responses defines API response types used by docserve HTTP handlers.
package responses

import "time"

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
}

// StatusResponse represents the daemon's operational status.
type StatusResponse struct {
	Status    string           `json:"status"`
	Uptime    float64          `json:"uptime"`
	StartTime time.Time        `json:"start_time"`
	Services  []ServiceSummary `json:"services"`
	Config    ConfigSummary    `json:"config"`
	Timestamp time.Time        `json:"timestamp"`
}

// ServiceSummary represents one managed service in the status response.
type ServiceSummary struct {
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	Healthy      bool       `json:"healthy"`
	Message      string     `json:"message,omitempty"`
	Dependencies []string   `json:"dependencies,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
}

// ConfigSummary represents a sanitized view of the configuration.
// Source URLs are intentionally omitted; they can embed credentials.
type ConfigSummary struct {
	Server ServerSummary `json:"server"`
	Source SourceSummary `json:"source"`
	Cache  CacheSummary  `json:"cache"`
	Events EventsSummary `json:"events"`
}

// ServerSummary represents serving configuration for API responses.
type ServerSummary struct {
	DocsPort  int    `json:"docs_port"`
	AdminPort int    `json:"admin_port"`
	BasePath  string `json:"base_path"`
	Title     string `json:"title,omitempty"`
}

// SourceSummary represents content source configuration for API responses.
type SourceSummary struct {
	Kind    string `json:"kind"`
	TocPath string `json:"toc_path"`
}

// CacheSummary represents cache configuration for API responses.
type CacheSummary struct {
	Enabled         bool   `json:"enabled"`
	TTL             string `json:"ttl,omitempty"`
	PrewarmInterval string `json:"prewarm_interval,omitempty"`
}

// EventsSummary represents event subscription configuration for API responses.
type EventsSummary struct {
	Enabled bool   `json:"enabled"`
	Subject string `json:"subject,omitempty"`
}

// VersionsResponse represents the published version list.
type VersionsResponse struct {
	Status    string           `json:"status"`
	Default   string           `json:"default"`
	Versions  []VersionSummary `json:"versions"`
	Timestamp time.Time        `json:"timestamp"`
}

// VersionSummary represents one selectable manual version.
type VersionSummary struct {
	Name    string `json:"name"`
	Std     string `json:"std,omitempty"`
	Display string `json:"display"`
}

// CacheStatsResponse represents cache occupancy information.
type CacheStatsResponse struct {
	Status    string           `json:"status"`
	Entries   int64            `json:"entries"`
	Bytes     int64            `json:"bytes"`
	ByVersion map[string]int64 `json:"by_version"`
	Timestamp time.Time        `json:"timestamp"`
}

// InvalidateRequest represents a cache invalidation request body.
type InvalidateRequest struct {
	Version string `json:"version"`
	Path    string `json:"path,omitempty"`
}

// InvalidateResponse represents the result of a cache invalidation.
type InvalidateResponse struct {
	Status    string    `json:"status"`
	Scope     string    `json:"scope"`
	Version   string    `json:"version,omitempty"`
	Path      string    `json:"path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
