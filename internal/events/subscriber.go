// Package events subscribes to content update notifications and invalidates
// the matching content cache entries, so edits published upstream become
// visible before their TTL expires.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/observability"
)

// applyTimeout bounds each cache invalidation triggered by an event.
const applyTimeout = 5 * time.Second

// UpdateEvent is the payload published when manual content changes. An
// empty path invalidates the whole version; an empty version purges the
// entire cache.
type UpdateEvent struct {
	Version string `json:"version"`
	Path    string `json:"path,omitempty"`
}

// Invalidator is the slice of the content cache the subscriber drives.
type Invalidator interface {
	Invalidate(ctx context.Context, version, path string) error
	InvalidateVersion(ctx context.Context, version string) error
	Purge(ctx context.Context) error
}

// Subscriber consumes update events from NATS. The connection reconnects
// forever in the background; a bus outage degrades event delivery but never
// takes the daemon down.
type Subscriber struct {
	cfg      *config.EventsConfig
	cache    Invalidator
	recorder metrics.Recorder

	mu   sync.Mutex
	conn *nats.Conn
	sub  *nats.Subscription
}

// NewSubscriber creates an event subscriber. The cache may be nil when
// caching is disabled; events are then counted but not applied. A nil
// recorder disables metrics.
func NewSubscriber(cfg *config.EventsConfig, cache Invalidator, recorder metrics.Recorder) *Subscriber {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Subscriber{cfg: cfg, cache: cache, recorder: recorder}
}

// Start connects to the event bus and subscribes to the content subject.
// An unreachable bus is not an error; the connection keeps retrying in the
// background and IsConnected reports the degraded state.
func (s *Subscriber) Start(_ context.Context) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return errors.ConfigError("event subscription is not enabled").Build()
	}

	conn, err := nats.Connect(s.cfg.URL,
		nats.Name("docserve"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			observability.WarnContext(componentCtx(), "event bus disconnected", logfields.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			observability.InfoContext(componentCtx(), "event bus reconnected", logfields.URL(c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "connecting to event bus").
			Retryable().
			WithContext("url", s.cfg.URL).
			Build()
	}

	sub, err := conn.Subscribe(s.cfg.Subject, s.handleMessage)
	if err != nil {
		conn.Close()
		return errors.WrapError(err, errors.CategoryNetwork, "subscribing to content subject").
			WithContext("subject", s.cfg.Subject).
			Build()
	}

	s.mu.Lock()
	s.conn = conn
	s.sub = sub
	s.mu.Unlock()

	observability.InfoContext(componentCtx(), "event subscriber started",
		logfields.URL(s.cfg.URL),
		logfields.Subject(s.cfg.Subject))
	return nil
}

// Stop drains the subscription and closes the connection.
func (s *Subscriber) Stop(_ context.Context) error {
	s.mu.Lock()
	conn, sub := s.conn, s.sub
	s.conn, s.sub = nil, nil
	s.mu.Unlock()

	if sub != nil {
		if err := sub.Drain(); err != nil {
			observability.WarnContext(componentCtx(), "draining event subscription failed", logfields.Error(err))
		}
	}
	if conn != nil {
		conn.Close()
	}

	observability.InfoContext(componentCtx(), "event subscriber stopped")
	return nil
}

// IsConnected reports whether the bus connection is currently up.
func (s *Subscriber) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil && s.conn.IsConnected()
}

// handleMessage applies one update event. Runs on the connection's
// callback goroutine, so all work is bounded by applyTimeout.
func (s *Subscriber) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(componentCtx(), applyTimeout)
	defer cancel()

	var event UpdateEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		s.recorder.IncInvalidationEvent("invalid")
		observability.WarnContext(ctx, "discarding malformed update event", logfields.Error(err))
		return
	}

	if s.cache == nil {
		s.recorder.IncInvalidationEvent("ignored")
		observability.DebugContext(ctx, "update event ignored, cache disabled",
			logfields.Version(event.Version), logfields.Path(event.Path))
		return
	}

	var err error
	switch {
	case event.Version == "":
		err = s.cache.Purge(ctx)
	case event.Path == "":
		err = s.cache.InvalidateVersion(ctx, event.Version)
	default:
		err = s.cache.Invalidate(ctx, event.Version, event.Path)
	}
	if err != nil {
		s.recorder.IncInvalidationEvent("ignored")
		observability.WarnContext(ctx, "applying update event failed",
			logfields.Version(event.Version), logfields.Path(event.Path), logfields.Error(err))
		return
	}

	s.recorder.IncInvalidationEvent("applied")
	observability.InfoContext(ctx, "cache invalidated by update event",
		logfields.Version(event.Version), logfields.Path(event.Path))
}

func componentCtx() context.Context {
	return observability.WithComponent(context.Background(), "events")
}
