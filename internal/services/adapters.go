package services

import (
	"context"
)

// HTTPServerService adapts an HTTP server to the ManagedService interface.
type HTTPServerService struct {
	server HTTPServer
	name   string
	deps   []string
}

// HTTPServer defines the interface expected by HTTPServerService.
type HTTPServer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
}

// NewHTTPServerService creates a new HTTP server service adapter.
func NewHTTPServerService(name string, server HTTPServer, deps ...string) *HTTPServerService {
	return &HTTPServerService{
		server: server,
		name:   name,
		deps:   deps,
	}
}

func (h *HTTPServerService) Name() string {
	return h.name
}

func (h *HTTPServerService) Start(ctx context.Context) error {
	return h.server.Start(ctx)
}

func (h *HTTPServerService) Stop(ctx context.Context) error {
	return h.server.Stop(ctx)
}

func (h *HTTPServerService) Health() HealthStatus {
	if h.server.IsRunning() {
		return HealthStatusHealthy()
	}
	return HealthStatusUnhealthy("server not running")
}

func (h *HTTPServerService) Dependencies() []string {
	return h.deps
}

// CacheService adapts the content cache store to the ManagedService
// interface. The store is opened before orchestration because sources need
// it at construction time; Start only verifies it answers.
type CacheService struct {
	cache Cache
	name  string
}

// Cache defines the interface expected by CacheService.
type Cache interface {
	Ping(ctx context.Context) error
	Close() error
}

// NewCacheService creates a new cache service adapter.
func NewCacheService(name string, cache Cache) *CacheService {
	return &CacheService{
		cache: cache,
		name:  name,
	}
}

func (c *CacheService) Name() string {
	return c.name
}

func (c *CacheService) Start(ctx context.Context) error {
	return c.cache.Ping(ctx)
}

func (c *CacheService) Stop(ctx context.Context) error {
	return c.cache.Close()
}

func (c *CacheService) Health() HealthStatus {
	if err := c.cache.Ping(context.Background()); err != nil {
		return HealthStatusUnhealthy(err.Error())
	}
	return HealthStatusHealthy()
}

func (c *CacheService) Dependencies() []string {
	return []string{}
}

// SchedulerService adapts a scheduler to the ManagedService interface.
type SchedulerService struct {
	scheduler Scheduler
	name      string
	deps      []string
}

// Scheduler defines the interface expected by SchedulerService.
type Scheduler interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	IsRunning() bool
}

// NewSchedulerService creates a new scheduler service adapter.
func NewSchedulerService(name string, scheduler Scheduler, deps ...string) *SchedulerService {
	return &SchedulerService{
		scheduler: scheduler,
		name:      name,
		deps:      deps,
	}
}

func (s *SchedulerService) Name() string {
	return s.name
}

func (s *SchedulerService) Start(ctx context.Context) error {
	s.scheduler.Start(ctx)
	return nil
}

func (s *SchedulerService) Stop(ctx context.Context) error {
	return s.scheduler.Stop(ctx)
}

func (s *SchedulerService) Health() HealthStatus {
	if s.scheduler.IsRunning() {
		return HealthStatusHealthy()
	}
	return HealthStatusUnhealthy("scheduler not running")
}

func (s *SchedulerService) Dependencies() []string {
	return s.deps
}

// ConfigWatcherService adapts a config watcher to the ManagedService interface.
type ConfigWatcherService struct {
	watcher ConfigWatcher
	name    string
}

// ConfigWatcher defines the interface expected by ConfigWatcherService.
type ConfigWatcher interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsWatching() bool
}

// NewConfigWatcherService creates a new config watcher service adapter.
func NewConfigWatcherService(name string, watcher ConfigWatcher) *ConfigWatcherService {
	return &ConfigWatcherService{
		watcher: watcher,
		name:    name,
	}
}

func (c *ConfigWatcherService) Name() string {
	return c.name
}

func (c *ConfigWatcherService) Start(ctx context.Context) error {
	return c.watcher.Start(ctx)
}

func (c *ConfigWatcherService) Stop(ctx context.Context) error {
	return c.watcher.Stop(ctx)
}

func (c *ConfigWatcherService) Health() HealthStatus {
	if c.watcher.IsWatching() {
		return HealthStatusHealthy()
	}
	return HealthStatusUnhealthy("not watching config file")
}

func (c *ConfigWatcherService) Dependencies() []string {
	return []string{}
}

// EventSubscriberService adapts the content invalidation subscriber to the
// ManagedService interface.
type EventSubscriberService struct {
	subscriber EventSubscriber
	name       string
	deps       []string
}

// EventSubscriber defines the interface expected by EventSubscriberService.
type EventSubscriber interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsConnected() bool
}

// NewEventSubscriberService creates a new event subscriber service adapter.
func NewEventSubscriberService(name string, subscriber EventSubscriber, deps ...string) *EventSubscriberService {
	return &EventSubscriberService{
		subscriber: subscriber,
		name:       name,
		deps:       deps,
	}
}

func (e *EventSubscriberService) Name() string {
	return e.name
}

func (e *EventSubscriberService) Start(ctx context.Context) error {
	return e.subscriber.Start(ctx)
}

func (e *EventSubscriberService) Stop(ctx context.Context) error {
	return e.subscriber.Stop(ctx)
}

func (e *EventSubscriberService) Health() HealthStatus {
	if e.subscriber.IsConnected() {
		return HealthStatusHealthy()
	}
	return HealthStatusUnhealthy("not connected to event bus")
}

func (e *EventSubscriberService) Dependencies() []string {
	return e.deps
}
