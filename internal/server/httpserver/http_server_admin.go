package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/docserve/internal/services"
)

func (s *Server) startAdminServerWithListener(_ context.Context, ln net.Listener) error {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc(s.cfg.Monitoring.Health.Path, s.apiHandlers.HandleHealth)
	mux.HandleFunc("/healthz", s.apiHandlers.HandleHealth) // Kubernetes-style alias
	// Readiness endpoint: only ready once every managed service reports healthy
	mux.HandleFunc("/ready", s.handleReadiness)
	mux.HandleFunc("/readyz", s.handleReadiness) // Kubernetes-style alias

	// Metrics endpoint
	if s.cfg.Monitoring.Metrics.Enabled && s.opts.PrometheusHandler != nil {
		mux.Handle(s.cfg.Monitoring.Metrics.Path, s.opts.PrometheusHandler)
	}

	// Administrative endpoints
	mux.HandleFunc("/api/status", s.apiHandlers.HandleStatus)
	mux.HandleFunc("/api/versions", s.apiHandlers.HandleVersions)
	mux.HandleFunc("/api/cache/stats", s.apiHandlers.HandleCacheStats)
	mux.HandleFunc("/api/cache/invalidate", s.apiHandlers.HandleCacheInvalidate)

	s.adminServer = &http.Server{Handler: s.mchain(mux), ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}
	return s.startServerWithListener("admin", s.adminServer, ln)
}

func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	for _, info := range s.runtime.GetServiceInfo() {
		if info.Status != services.StatusRunning || info.Health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprintf(w, "not ready: service %s is %s", info.Name, info.Status)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
