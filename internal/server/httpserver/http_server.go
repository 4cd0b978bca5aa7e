// Package httpserver wires the two docserve HTTP servers: the docs server
// that renders manual pages and the admin server that carries health,
// metrics, and the management API.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/contentcache"
	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	handlers "git.home.luguber.info/inful/docserve/internal/server/handlers"
	smw "git.home.luguber.info/inful/docserve/internal/server/middleware"
	"git.home.luguber.info/inful/docserve/internal/services"
)

// Server manages the docs and admin HTTP endpoints.
type Server struct {
	docsServer  *http.Server
	adminServer *http.Server
	cfg         *config.Config
	opts        Options

	runtime      Runtime
	errorAdapter *derrors.HTTPErrorAdapter
	running      atomic.Bool

	// Bound listener addresses, set during Start. With port 0 in the
	// config these carry the ephemeral ports the OS picked.
	docsAddr  string
	adminAddr string

	// Handler modules
	docsHandler *handlers.DocsHandler
	apiHandlers *handlers.APIHandlers

	// middleware chain
	mchain func(http.Handler) http.Handler
}

// New constructs a new HTTP server wiring instance. The cache may be nil
// when caching is disabled; the recorder may be nil to disable metrics.
func New(cfg *config.Config, runtime Runtime, pages *services.PageService, cache *contentcache.Store, recorder metrics.Recorder, opts Options) *Server {
	s := &Server{
		cfg:          cfg,
		opts:         opts,
		runtime:      runtime,
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
	}

	// Initialize handler modules
	s.docsHandler = handlers.NewDocsHandler(pages, s.errorAdapter, recorder)
	s.apiHandlers = handlers.NewAPIHandlers(cfg, runtime, pages, cache, recorder)

	// Initialize middleware chain
	s.mchain = smw.Chain(slog.Default(), s.errorAdapter)

	return s
}

// Start initializes and starts both HTTP servers.
func (s *Server) Start(ctx context.Context) error {
	// Pre-bind both ports so we can fail fast and surface aggregate errors
	// instead of logging independent 'address already in use' lines after
	// partial initialization.
	type preBind struct {
		name string
		port int
		ln   net.Listener
	}
	binds := []preBind{
		{name: "docs", port: s.cfg.Server.HTTP.DocsPort},
		{name: "admin", port: s.cfg.Server.HTTP.AdminPort},
	}
	var bindErrs []error
	lc := net.ListenConfig{}
	for i := range binds {
		addr := fmt.Sprintf(":%d", binds[i].port)
		ln, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			bindErrs = append(bindErrs, fmt.Errorf("%s port %d: %w", binds[i].name, binds[i].port, err))
			continue
		}
		binds[i].ln = ln
	}
	if len(bindErrs) > 0 {
		// Close any successful listeners before returning
		for _, b := range binds {
			if b.ln != nil {
				_ = b.ln.Close()
			}
		}
		return fmt.Errorf("http startup failed: %w", errors.Join(bindErrs...))
	}

	// Both ports bound successfully, now hand the servers their pre-bound listeners.
	s.docsAddr = binds[0].ln.Addr().String()
	s.adminAddr = binds[1].ln.Addr().String()
	if err := s.startDocsServerWithListener(ctx, binds[0].ln); err != nil {
		return fmt.Errorf("failed to start docs server: %w", err)
	}
	if err := s.startAdminServerWithListener(ctx, binds[1].ln); err != nil {
		return fmt.Errorf("failed to start admin server: %w", err)
	}

	s.running.Store(true)
	slog.Info("HTTP servers started",
		slog.Int("docs_port", s.cfg.Server.HTTP.DocsPort),
		slog.Int("admin_port", s.cfg.Server.HTTP.AdminPort))
	return nil
}

// Stop gracefully shuts down both HTTP servers.
func (s *Server) Stop(ctx context.Context) error {
	s.running.Store(false)
	var errs []error

	// Stop servers in reverse order
	if s.adminServer != nil {
		if err := s.adminServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("admin server shutdown: %w", err))
		}
	}

	if s.docsServer != nil {
		if err := s.docsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("docs server shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	slog.Info("HTTP servers stopped")
	return nil
}

// IsRunning reports whether the servers have started and not yet stopped.
func (s *Server) IsRunning() bool {
	return s.running.Load()
}

// DocsAddr returns the bound docs listener address. Valid after Start.
func (s *Server) DocsAddr() string { return s.docsAddr }

// AdminAddr returns the bound admin listener address. Valid after Start.
func (s *Server) AdminAddr() string { return s.adminAddr }

// startServerWithListener launches an http.Server on a pre-bound listener or binds itself.
// It standardizes goroutine startup and error logging across server types.
func (s *Server) startServerWithListener(kind string, srv *http.Server, ln net.Listener) error {
	go func() {
		var err error
		if ln != nil {
			err = srv.Serve(ln)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s server error", kind), "error", err)
		}
	}()
	return nil
}
