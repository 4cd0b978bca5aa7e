package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/docserve/internal/util/sets"
)

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

// newConfigurationValidator creates a comprehensive configuration validator.
func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

// validate performs configuration validation using domain-specific methods.
func (cv *configurationValidator) validate() error {
	if err := cv.validateServer(); err != nil {
		return err
	}
	if err := cv.validateSource(); err != nil {
		return err
	}
	if err := cv.validateVersions(); err != nil {
		return err
	}
	if err := cv.validateCache(); err != nil {
		return err
	}
	if err := cv.validateEvents(); err != nil {
		return err
	}
	return nil
}

// validateServer validates the HTTP serving configuration.
func (cv *configurationValidator) validateServer() error {
	srv := cv.config.Server
	if srv.HTTP.DocsPort < 1 || srv.HTTP.DocsPort > 65535 {
		return fmt.Errorf("invalid docs_port: %d", srv.HTTP.DocsPort)
	}
	if srv.HTTP.AdminPort < 1 || srv.HTTP.AdminPort > 65535 {
		return fmt.Errorf("invalid admin_port: %d", srv.HTTP.AdminPort)
	}
	if srv.HTTP.DocsPort == srv.HTTP.AdminPort {
		return errors.New("docs_port and admin_port must differ")
	}
	if !strings.HasPrefix(srv.BasePath, "/") || strings.HasSuffix(srv.BasePath, "/") {
		return fmt.Errorf("base_path must start with '/' and not end with '/': %s", srv.BasePath)
	}
	return nil
}

// validateSource validates the content source configuration.
func (cv *configurationValidator) validateSource() error {
	src := cv.config.Source
	switch src.Kind {
	case SourceHTTP:
		if src.HTTP == nil {
			return errors.New("source kind http requires a source.http block")
		}
		tmpl := src.HTTP.URLTemplate
		if tmpl == "" {
			return errors.New("source.http.url_template is required")
		}
		if !strings.Contains(tmpl, "{version}") || !strings.Contains(tmpl, "{path}") {
			return fmt.Errorf("source.http.url_template must contain {version} and {path}: %s", tmpl)
		}
		if !strings.HasPrefix(tmpl, "http://") && !strings.HasPrefix(tmpl, "https://") {
			return fmt.Errorf("source.http.url_template must be an http(s) URL: %s", tmpl)
		}
		if src.HTTP.Timeout != "" {
			if _, err := time.ParseDuration(src.HTTP.Timeout); err != nil {
				return fmt.Errorf("invalid source.http.timeout: %w", err)
			}
		}
	case SourceGit:
		if src.Git == nil {
			return errors.New("source kind git requires a source.git block")
		}
		if src.Git.URL == "" {
			return errors.New("source.git.url is required")
		}
	default:
		return fmt.Errorf("unknown source kind: %s", src.Kind)
	}

	if src.TocPath == "" {
		return errors.New("source.toc_path is required")
	}
	return nil
}

// validateVersions validates the version list.
func (cv *configurationValidator) validateVersions() error {
	versions := cv.config.Versions
	if len(versions.List) == 0 {
		return errors.New("at least one version must be configured")
	}

	seen := sets.New[string]()
	for _, entry := range versions.List {
		if entry.Name == "" {
			return errors.New("version name cannot be empty")
		}
		if strings.ContainsAny(entry.Name, "/ ") {
			return fmt.Errorf("version name cannot contain '/' or spaces: %s", entry.Name)
		}
		if seen.Has(entry.Name) {
			return fmt.Errorf("duplicate version name: %s", entry.Name)
		}
		seen.Add(entry.Name)
	}

	if versions.Default != "" && !seen.Has(versions.Default) {
		return fmt.Errorf("default version %s not in version list", versions.Default)
	}
	return nil
}

// validateCache validates cache configuration when enabled.
func (cv *configurationValidator) validateCache() error {
	cache := cv.config.Cache
	if cache == nil || !cache.Enabled {
		return nil
	}
	if cache.Path == "" {
		return errors.New("cache.path is required when cache is enabled")
	}
	for field, raw := range map[string]string{
		"cache.ttl":              cache.TTL,
		"cache.sweep_interval":   cache.SweepInterval,
		"cache.prewarm_interval": cache.PrewarmInterval,
	} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", field, err)
		}
	}
	return cv.validatePrewarmRetry(cache.PrewarmRetry)
}

// validatePrewarmRetry validates the optional prewarm backoff block.
func (cv *configurationValidator) validatePrewarmRetry(retry *RetryConfig) error {
	if retry == nil {
		return nil
	}
	if retry.Backoff != "" && NormalizeRetryBackoff(string(retry.Backoff)) == "" {
		return fmt.Errorf("unknown cache.prewarm_retry.backoff: %s", retry.Backoff)
	}
	for field, raw := range map[string]string{
		"cache.prewarm_retry.initial_delay": retry.InitialDelay,
		"cache.prewarm_retry.max_delay":     retry.MaxDelay,
	} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", field, err)
		}
	}
	if retry.MaxRetries < 0 {
		return fmt.Errorf("cache.prewarm_retry.max_retries cannot be negative: %d", retry.MaxRetries)
	}
	return nil
}

// validateEvents validates the event subscription configuration when enabled.
func (cv *configurationValidator) validateEvents() error {
	events := cv.config.Events
	if events == nil || !events.Enabled {
		return nil
	}
	if events.URL == "" {
		return errors.New("events.url is required when events are enabled")
	}
	if events.Subject == "" {
		return errors.New("events.subject is required when events are enabled")
	}
	return nil
}
