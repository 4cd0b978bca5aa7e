package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the docserve configuration.
type Config struct {
	Version    string            `yaml:"version"`
	Server     ServerConfig      `yaml:"server"`
	Source     SourceConfig      `yaml:"source"`
	Versions   VersionsConfig    `yaml:"versions"`
	Cache      *CacheConfig      `yaml:"cache,omitempty"`
	Events     *EventsConfig     `yaml:"events,omitempty"`
	Monitoring *MonitoringConfig `yaml:"monitoring,omitempty"`
}

// ServerConfig represents HTTP serving configuration.
type ServerConfig struct {
	HTTP     HTTPConfig `yaml:"http"`
	BasePath string     `yaml:"base_path"`       // Route prefix for manual pages, e.g. "/manual"
	Title    string     `yaml:"title,omitempty"` // Site name shown in the page header
}

// HTTPConfig represents HTTP server port configuration.
type HTTPConfig struct {
	DocsPort  int `yaml:"docs_port"`  // Manual page serving port
	AdminPort int `yaml:"admin_port"` // Admin/status endpoints port
}

// SourceConfig selects and configures the remote content source.
type SourceConfig struct {
	Kind    SourceKind        `yaml:"kind"` // typed: http|git
	HTTP    *HTTPSourceConfig `yaml:"http,omitempty"`
	Git     *GitSourceConfig  `yaml:"git,omitempty"`
	TocPath string            `yaml:"toc_path"` // Per-version ToC document path within the content tree
}

// HTTPSourceConfig configures fetching raw files over HTTP.
type HTTPSourceConfig struct {
	// URLTemplate builds the raw file URL; {version} and {path} are substituted.
	URLTemplate      string `yaml:"url_template"`
	Timeout          string `yaml:"timeout"`            // Request timeout, Go duration string
	MaxResponseBytes int64  `yaml:"max_response_bytes"` // Response size cap
}

// GitSourceConfig configures fetching files from a cloned content repository.
type GitSourceConfig struct {
	URL     string `yaml:"url"`     // Clone URL of the content repository
	Workdir string `yaml:"workdir"` // Directory for per-version clones
	Depth   int    `yaml:"depth"`   // Shallow clone depth
}

// VersionsConfig carries the known version list, ordered newest first.
type VersionsConfig struct {
	Default string         `yaml:"default,omitempty"` // Empty selects the first (newest) entry
	List    []VersionEntry `yaml:"list"`
}

// VersionEntry describes one selectable manual version.
type VersionEntry struct {
	Name    string `yaml:"name"`              // Version identifier, e.g. a release tag
	Std     string `yaml:"std,omitempty"`     // Matching std-library docs version
	Display string `yaml:"display,omitempty"` // Optional display name override
}

// CacheConfig configures the cross-request content cache.
type CacheConfig struct {
	Enabled         bool         `yaml:"enabled"`
	Path            string       `yaml:"path"`                    // SQLite database path
	TTL             string       `yaml:"ttl"`                     // Entry freshness window, Go duration string
	SweepInterval   string       `yaml:"sweep_interval"`          // Expired-row eviction interval
	PrewarmInterval string       `yaml:"prewarm_interval"`        // ToC prewarm interval; empty disables prewarm
	PrewarmRetry    *RetryConfig `yaml:"prewarm_retry,omitempty"` // Backoff for failed prewarm passes
}

// EventsConfig configures the content-invalidation event subscription.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`     // NATS server URL
	Subject string `yaml:"subject"` // Subject carrying content update events
}

// MonitoringConfig represents monitoring and observability configuration.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Health  MonitoringHealth  `yaml:"health"`
	Logging MonitoringLogging `yaml:"logging"`
}

// MonitoringMetrics represents metrics configuration.
type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MonitoringHealth represents health check configuration.
type MonitoringHealth struct {
	Path string `yaml:"path"`
}

// MonitoringLogging represents logging configuration.
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// loadEnvFiles loads environment variables from the first readable env
// file. Variables already present in the process environment win.
func loadEnvFiles() {
	for _, path := range []string{".env", ".env.local"} {
		if err := godotenv.Load(path); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", path)
			return
		}
	}
}

// Load loads a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate version
	if config.Version != "1.0" {
		return nil, fmt.Errorf("unsupported configuration version: %s (expected 1.0)", config.Version)
	}

	// Apply defaults before validation so canonical values drive the checks
	applyDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

const exampleConfig = `# docserve configuration.
version: "1.0"

server:
  http:
    docs_port: 8080   # manual pages
    admin_port: 8081  # health, metrics, management API
  base_path: /manual  # route prefix manual pages are served under
  title: Product Manual

source:
  # kind selects how page markdown is fetched: http or git.
  kind: http
  http:
    # {version} and {path} are substituted per request.
    url_template: "https://git.example.com/product/manual/raw/{version}/{path}"
    timeout: 10s
    max_response_bytes: 5242880
  # git:
  #   url: "https://git.example.com/product/manual.git"
  #   workdir: ./checkouts
  #   depth: 1
  toc_path: index.yml # per-version table of contents document

versions:
  # Newest first. The first entry is the default unless overridden.
  # default: v2.1.0
  list:
    - name: v2.1.0
      std: "2.101.2"
    - name: v2.0.0
      std: "2.100.0"

cache:
  enabled: true
  path: ./docserve-cache.db
  ttl: 15m
  sweep_interval: 10m
  prewarm_interval: 1h # empty disables ToC prewarming
  # prewarm_retry:
  #   backoff: exponential
  #   initial_delay: 500ms
  #   max_retries: 3

events:
  enabled: false
  url: nats://127.0.0.1:4222
  subject: docserve.content.updated

monitoring:
  metrics:
    enabled: true
    path: /metrics
  health:
    path: /health
  logging:
    level: info  # debug|info|warn|error
    format: json # json|text
`

// Init writes a commented example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultVersion returns the configured default version name, falling back to
// the first (newest) list entry.
func (v VersionsConfig) DefaultVersion() string {
	if v.Default != "" {
		return v.Default
	}
	if len(v.List) > 0 {
		return v.List[0].Name
	}
	return ""
}
