package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once               sync.Once
	pageRequests       *prom.CounterVec
	renderDuration     *prom.HistogramVec
	fetchDuration      *prom.HistogramVec
	tocBuildDuration   prom.Histogram
	cacheOps           *prom.CounterVec
	invalidationEvents *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the serving metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.pageRequests = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docserve",
			Name:      "page_requests_total",
			Help:      "Page requests by final disposition",
		}, []string{"status"})
		pr.renderDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docserve",
			Name:      "page_render_duration_seconds",
			Help:      "End-to-end page assembly duration (fetch, ToC, render)",
			Buckets:   prom.DefBuckets,
		}, []string{"version"})
		pr.fetchDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docserve",
			Name:      "fetch_duration_seconds",
			Help:      "Origin fetch duration by outcome",
			Buckets:   prom.DefBuckets,
		}, []string{"outcome"})
		pr.tocBuildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docserve",
			Name:      "toc_build_duration_seconds",
			Help:      "Table of contents fetch and flatten duration",
			Buckets:   prom.DefBuckets,
		})
		pr.cacheOps = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docserve",
			Name:      "cache_ops_total",
			Help:      "Content cache operations",
		}, []string{"op"})
		pr.invalidationEvents = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docserve",
			Name:      "invalidation_events_total",
			Help:      "Cache invalidation events received on the message bus",
		}, []string{"result"})
		reg.MustRegister(pr.pageRequests, pr.renderDuration, pr.fetchDuration, pr.tocBuildDuration, pr.cacheOps, pr.invalidationEvents)
	})
	return pr
}

func (p *PrometheusRecorder) IncPageRequest(status RequestStatus) {
	if p == nil || p.pageRequests == nil {
		return
	}
	p.pageRequests.WithLabelValues(string(status)).Inc()
}

func (p *PrometheusRecorder) ObservePageRender(version string, d time.Duration) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.WithLabelValues(version).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveFetch(outcome FetchOutcome, d time.Duration) {
	if p == nil || p.fetchDuration == nil {
		return
	}
	p.fetchDuration.WithLabelValues(string(outcome)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveTocBuild(d time.Duration) {
	if p == nil || p.tocBuildDuration == nil {
		return
	}
	p.tocBuildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCacheOp(op CacheOp) {
	if p == nil || p.cacheOps == nil {
		return
	}
	p.cacheOps.WithLabelValues(string(op)).Inc()
}

func (p *PrometheusRecorder) IncInvalidationEvent(result string) {
	if p == nil || p.invalidationEvents == nil {
		return
	}
	p.invalidationEvents.WithLabelValues(result).Inc()
}
