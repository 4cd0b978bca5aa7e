package config

import "time"

const (
	defaultDocsPort  = 8080
	defaultAdminPort = 8081
	defaultBasePath  = "/manual"
	defaultTitle     = "Manual"

	defaultTocPath          = "index.yml"
	defaultSourceTimeout    = 10 * time.Second
	defaultMaxResponseBytes = 5 * 1024 * 1024

	defaultCachePath  = "./docserve-cache.db"
	defaultCacheTTL   = 15 * time.Minute
	defaultCacheSweep = 10 * time.Minute

	defaultEventsSubject = "docserve.content.updated"

	defaultMetricsPath = "/metrics"
	defaultHealthPath  = "/health"
)

// applyDefaults applies default values to configuration. Normalization of
// typed enumerations happens here as well so later stages see canonical values.
func applyDefaults(cfg *Config) {
	if cfg.Server.HTTP.DocsPort == 0 {
		cfg.Server.HTTP.DocsPort = defaultDocsPort
	}
	if cfg.Server.HTTP.AdminPort == 0 {
		cfg.Server.HTTP.AdminPort = defaultAdminPort
	}
	if cfg.Server.BasePath == "" {
		cfg.Server.BasePath = defaultBasePath
	}
	if cfg.Server.Title == "" {
		cfg.Server.Title = defaultTitle
	}

	// Source kind default: http. Unknown values fall through to validation.
	if cfg.Source.Kind == "" {
		cfg.Source.Kind = SourceHTTP
	} else if k := NormalizeSourceKind(string(cfg.Source.Kind)); k != "" {
		cfg.Source.Kind = k
	}
	if cfg.Source.TocPath == "" {
		cfg.Source.TocPath = defaultTocPath
	}
	if cfg.Source.HTTP != nil {
		if cfg.Source.HTTP.Timeout == "" {
			cfg.Source.HTTP.Timeout = defaultSourceTimeout.String()
		}
		if cfg.Source.HTTP.MaxResponseBytes <= 0 {
			cfg.Source.HTTP.MaxResponseBytes = defaultMaxResponseBytes
		}
	}
	if cfg.Source.Git != nil {
		if cfg.Source.Git.Workdir == "" {
			cfg.Source.Git.Workdir = "./repositories"
		}
		if cfg.Source.Git.Depth < 0 {
			cfg.Source.Git.Depth = 0
		}
		if cfg.Source.Git.Depth == 0 {
			cfg.Source.Git.Depth = 1
		}
	}

	if cfg.Cache != nil && cfg.Cache.Enabled {
		if cfg.Cache.Path == "" {
			cfg.Cache.Path = defaultCachePath
		}
		if cfg.Cache.TTL == "" {
			cfg.Cache.TTL = defaultCacheTTL.String()
		}
		if cfg.Cache.SweepInterval == "" {
			cfg.Cache.SweepInterval = defaultCacheSweep.String()
		}
	}

	if cfg.Events != nil && cfg.Events.Enabled {
		if cfg.Events.Subject == "" {
			cfg.Events.Subject = defaultEventsSubject
		}
	}

	if cfg.Monitoring == nil {
		cfg.Monitoring = &MonitoringConfig{}
	}
	if cfg.Monitoring.Metrics.Path == "" {
		cfg.Monitoring.Metrics.Path = defaultMetricsPath
	}
	if cfg.Monitoring.Health.Path == "" {
		cfg.Monitoring.Health.Path = defaultHealthPath
	}
	cfg.Monitoring.Logging.Level = NormalizeLogLevel(string(cfg.Monitoring.Logging.Level))
	cfg.Monitoring.Logging.Format = NormalizeLogFormat(string(cfg.Monitoring.Logging.Format))
}
