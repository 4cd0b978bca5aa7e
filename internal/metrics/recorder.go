package metrics

import "time"

// RequestStatus labels the final disposition of a page request.
type RequestStatus string

const (
	RequestOK          RequestStatus = "ok"
	RequestRedirect    RequestStatus = "redirect"
	RequestNotModified RequestStatus = "not_modified"
	RequestNotFound    RequestStatus = "not_found"
	RequestError       RequestStatus = "error"
)

// FetchOutcome labels how an origin fetch concluded.
type FetchOutcome string

const (
	FetchOK FetchOutcome = "ok"
	// FetchMissing means the origin reported the page absent and a
	// not-found placeholder was served instead.
	FetchMissing FetchOutcome = "missing"
	// FetchDegraded means the origin was unreachable and an error
	// placeholder was served instead.
	FetchDegraded FetchOutcome = "degraded"
	FetchFailed   FetchOutcome = "failed"
)

// CacheOp labels content cache operations.
type CacheOp string

const (
	CacheHit        CacheOp = "hit"
	CacheMiss       CacheOp = "miss"
	CacheStore      CacheOp = "store"
	CacheInvalidate CacheOp = "invalidate"
	CacheSweep      CacheOp = "sweep"
)

// Recorder defines observability hooks for page serving. Implementations
// must be safe for concurrent use; the Prometheus recorder additionally
// tolerates nil receivers so injection stays optional.
type Recorder interface {
	IncPageRequest(status RequestStatus)
	ObservePageRender(version string, d time.Duration)
	ObserveFetch(outcome FetchOutcome, d time.Duration)
	ObserveTocBuild(d time.Duration)
	IncCacheOp(op CacheOp)
	IncInvalidationEvent(result string) // result: applied|ignored|invalid
}

// NoopRecorder is a Recorder that does nothing (default when monitoring is
// not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncPageRequest(RequestStatus)                 {}
func (NoopRecorder) ObservePageRender(string, time.Duration)      {}
func (NoopRecorder) ObserveFetch(FetchOutcome, time.Duration)     {}
func (NoopRecorder) ObserveTocBuild(time.Duration)                {}
func (NoopRecorder) IncCacheOp(CacheOp)                           {}
func (NoopRecorder) IncInvalidationEvent(string)                  {}
