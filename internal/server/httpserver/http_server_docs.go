package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"
)

// startDocsServerWithListener allows injecting a pre-bound listener (for coordinated bind checks).
func (s *Server) startDocsServerWithListener(_ context.Context, ln net.Listener) error {
	mux := http.NewServeMux()

	// Health/readiness endpoints on docs port as well for compatibility with common probe configs
	mux.HandleFunc("/health", s.apiHandlers.HandleHealth)
	mux.HandleFunc("/healthz", s.apiHandlers.HandleHealth) // Kubernetes-style alias
	mux.HandleFunc("/ready", s.handleReadiness)
	mux.HandleFunc("/readyz", s.handleReadiness) // Kubernetes-style alias

	// Everything else is page routing, including the / redirect.
	mux.Handle("/", s.mchain(s.docsHandler))

	s.docsServer = &http.Server{Handler: mux, ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}
	return s.startServerWithListener("docs", s.docsServer, ln)
}
