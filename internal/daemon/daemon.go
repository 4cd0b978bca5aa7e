// Package daemon assembles the docserve process from configuration and
// drives it through the managed service orchestrator: content source,
// cache, page service, HTTP servers, maintenance scheduler, config
// watcher, and the optional invalidation event subscriber.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/contentcache"
	"git.home.luguber.info/inful/docserve/internal/events"
	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/manifest"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/server/httpserver"
	"git.home.luguber.info/inful/docserve/internal/services"
	"git.home.luguber.info/inful/docserve/internal/source"
)

// Status represents the daemon lifecycle state.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

const (
	serviceStartTimeout = 30 * time.Second
	serviceStopTimeout  = 10 * time.Second
	shutdownTimeout     = 30 * time.Second
)

// Daemon owns the serving stack and its lifecycle.
type Daemon struct {
	config         *config.Config
	configFilePath string
	status         atomic.Value // Status
	startTime      time.Time
	mu             sync.RWMutex

	manifests     *manifest.Manager
	cache         *contentcache.Store
	pages         *services.PageService
	httpServer    *httpserver.Server
	scheduler     *Scheduler
	configWatcher *ConfigWatcher
	subscriber    *events.Subscriber
	orchestrator  *services.ServiceOrchestrator
}

// New wires the serving stack from configuration. The returned daemon is
// stopped; Start or Run brings it up. An empty configFilePath disables
// config hot reload.
func New(cfg *config.Config, configFilePath string) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	set, err := manifest.New(cfg.Versions)
	if err != nil {
		return nil, fmt.Errorf("failed to build version manifest: %w", err)
	}

	d := &Daemon{
		config:         cfg,
		configFilePath: configFilePath,
		manifests:      manifest.NewManager(set),
		orchestrator:   services.NewServiceOrchestrator().WithTimeouts(serviceStartTimeout, serviceStopTimeout),
	}
	d.status.Store(StatusStopped)

	recorder, promHandler := newRecorder(cfg)

	origin, err := source.New(cfg.Source)
	if err != nil {
		return nil, err
	}

	src := origin
	if cfg.Cache != nil && cfg.Cache.Enabled {
		store, err := contentcache.Open(cfg.Cache.Path, cfg.Cache.TTLDuration())
		if err != nil {
			return nil, fmt.Errorf("failed to open content cache: %w", err)
		}
		d.cache = store
		src = source.NewCachingSource(origin, store, recorder)
	}

	d.pages = services.NewPageService(src, d.manifests, cfg.Server, cfg.Source.TocPath, recorder)

	d.httpServer = httpserver.New(cfg, d, d.pages, d.cache, recorder, httpserver.Options{
		PrometheusHandler: promHandler,
	})

	d.scheduler, err = NewScheduler()
	if err != nil {
		return nil, err
	}
	if err := d.scheduleMaintenance(); err != nil {
		return nil, fmt.Errorf("failed to schedule maintenance jobs: %w", err)
	}

	if configFilePath != "" {
		d.configWatcher, err = NewConfigWatcher(configFilePath, d)
		if err != nil {
			return nil, fmt.Errorf("failed to create config watcher: %w", err)
		}
	}

	if cfg.Events != nil && cfg.Events.Enabled {
		d.subscriber = events.NewSubscriber(cfg.Events, invalidator(d.cache), recorder)
	}

	if err := d.registerServices(); err != nil {
		return nil, err
	}

	return d, nil
}

// newRecorder builds the metrics recorder and the /metrics handler, or a
// no-op pair when metrics are disabled.
func newRecorder(cfg *config.Config) (metrics.Recorder, http.Handler) {
	if cfg.Monitoring == nil || !cfg.Monitoring.Metrics.Enabled {
		return metrics.NoopRecorder{}, nil
	}
	reg := prom.NewRegistry()
	reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	return metrics.NewPrometheusRecorder(reg), metrics.HTTPHandler(reg)
}

// invalidator converts the store for the subscriber. A nil *Store must
// become a nil interface, or the subscriber would call through it.
func invalidator(store *contentcache.Store) events.Invalidator {
	if store == nil {
		return nil
	}
	return store
}

// registerServices registers the managed services in dependency order:
// the cache underpins the HTTP server, the scheduler, and the event
// subscriber; the config watcher stands alone.
func (d *Daemon) registerServices() error {
	var cacheDeps []string
	if d.cache != nil {
		if result := d.orchestrator.RegisterService(services.NewCacheService("cache", d.cache)); result.IsErr() {
			return fmt.Errorf("failed to register cache service: %w", result.UnwrapErr())
		}
		cacheDeps = []string{"cache"}
	}

	if result := d.orchestrator.RegisterService(services.NewHTTPServerService("http-server", d.httpServer, cacheDeps...)); result.IsErr() {
		return fmt.Errorf("failed to register HTTP server service: %w", result.UnwrapErr())
	}

	if result := d.orchestrator.RegisterService(services.NewSchedulerService("scheduler", d.scheduler, cacheDeps...)); result.IsErr() {
		return fmt.Errorf("failed to register scheduler service: %w", result.UnwrapErr())
	}

	if d.configWatcher != nil {
		if result := d.orchestrator.RegisterService(services.NewConfigWatcherService("config-watcher", d.configWatcher)); result.IsErr() {
			return fmt.Errorf("failed to register config watcher service: %w", result.UnwrapErr())
		}
	}

	if d.subscriber != nil {
		if result := d.orchestrator.RegisterService(services.NewEventSubscriberService("events", d.subscriber, cacheDeps...)); result.IsErr() {
			return fmt.Errorf("failed to register event subscriber service: %w", result.UnwrapErr())
		}
	}

	return nil
}

// Start brings up all managed services in dependency order. It returns
// once the daemon is running; Run adds blocking and signal handling.
func (d *Daemon) Start(ctx context.Context) error {
	if current := d.currentStatus(); current != StatusStopped {
		return errors.DaemonError("daemon is not stopped").
			WithContext("status", string(current)).
			Build()
	}

	d.mu.Lock()
	d.startTime = time.Now()
	d.mu.Unlock()
	d.status.Store(StatusStarting)

	slog.Info("Starting docserve daemon",
		slog.Int("services", len(d.orchestrator.GetAllServiceInfo())),
		slog.Int("docs_port", d.config.Server.HTTP.DocsPort),
		slog.Int("admin_port", d.config.Server.HTTP.AdminPort))

	if err := d.orchestrator.StartAll(ctx); err != nil {
		d.status.Store(StatusError)
		return err
	}

	d.status.Store(StatusRunning)
	slog.Info("Docserve daemon started", slog.Duration("startup", time.Since(d.GetStartTime())))
	return nil
}

// Stop shuts down all managed services in reverse dependency order.
func (d *Daemon) Stop(ctx context.Context) error {
	current := d.currentStatus()
	if current == StatusStopped || current == StatusStopping {
		return nil
	}
	d.status.Store(StatusStopping)
	slog.Info("Stopping docserve daemon")

	if err := d.orchestrator.StopAll(ctx); err != nil {
		d.status.Store(StatusError)
		return err
	}

	d.status.Store(StatusStopped)
	slog.Info("Docserve daemon stopped", slog.Duration("uptime", time.Since(d.GetStartTime())))
	return nil
}

// Run starts the daemon and blocks until the context is canceled or a
// termination signal arrives, then stops with a bounded timeout.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	// Restore default signal handling; a second signal now kills the
	// process instead of waiting out the graceful stop.
	stop()
	slog.Info("Shutdown signal received")

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return d.Stop(stopCtx)
}

// Reload applies a validated configuration to the running daemon. The
// version manifest swaps atomically and is picked up by in-flight
// request handling; server addresses cannot change without a restart.
func (d *Daemon) Reload(_ context.Context, newConfig *config.Config) error {
	set, err := manifest.New(newConfig.Versions)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "rebuilding version manifest").Build()
	}

	d.mu.Lock()
	oldConfig := d.config
	d.config = newConfig
	d.mu.Unlock()

	d.manifests.Replace(set)

	if oldConfig.Server.HTTP.DocsPort != newConfig.Server.HTTP.DocsPort ||
		oldConfig.Server.HTTP.AdminPort != newConfig.Server.HTTP.AdminPort {
		slog.Warn("HTTP port changes require a restart to take effect")
	}

	slog.Info("Configuration reloaded", slog.Int("versions", set.Len()))
	return nil
}

func (d *Daemon) currentStatus() Status {
	status, ok := d.status.Load().(Status)
	if !ok {
		return StatusError
	}
	return status
}

// GetStatus returns the daemon lifecycle state for status reporting.
func (d *Daemon) GetStatus() string {
	return string(d.currentStatus())
}

// GetStartTime returns when the daemon last started.
func (d *Daemon) GetStartTime() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.startTime
}

// GetServiceInfo returns the state of every managed service.
func (d *Daemon) GetServiceInfo() []services.ServiceInfo {
	return d.orchestrator.GetAllServiceInfo()
}

// GetConfig returns the live configuration.
func (d *Daemon) GetConfig() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}

// HTTPAddrs returns the bound docs and admin listener addresses. With port
// 0 configured these carry the ephemeral ports; meaningful once started.
func (d *Daemon) HTTPAddrs() (docs, admin string) {
	return d.httpServer.DocsAddr(), d.httpServer.AdminAddr()
}

var (
	_ httpserver.Runtime = (*Daemon)(nil)
	_ Reloader           = (*Daemon)(nil)
)
