package httpserver

import (
	"net/http"
	"time"

	"git.home.luguber.info/inful/docserve/internal/services"
)

// Runtime is the minimal daemon interface required by shared HTTP handlers.
// It intentionally matches the interfaces in internal/server/handlers.
type Runtime interface {
	GetStatus() string
	GetStartTime() time.Time
	GetServiceInfo() []services.ServiceInfo
}

// Options configures additional server wiring that is runtime-specific.
type Options struct {
	// Optional: Prometheus metrics endpoint handler. Mounted on the admin
	// port at the configured metrics path when metrics are enabled.
	PrometheusHandler http.Handler
}
