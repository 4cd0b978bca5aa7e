package source

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/docserve/internal/contentcache"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/metrics"
)

// CachingSource wraps an origin with the persistent content cache. Cache
// failures never fail a request; they log and fall through to the origin.
// Placeholder content is deliberately not cached, so a transient origin
// failure does not pin an error page until the TTL runs out.
type CachingSource struct {
	origin   Source
	cache    *contentcache.Store
	recorder metrics.Recorder
}

// NewCachingSource wraps origin with cache. A nil recorder disables
// metrics.
func NewCachingSource(origin Source, cache *contentcache.Store, recorder metrics.Recorder) *CachingSource {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &CachingSource{origin: origin, cache: cache, recorder: recorder}
}

// FetchPage serves from the cache when fresh, otherwise fetches from the
// origin and stores real content.
func (s *CachingSource) FetchPage(ctx context.Context, version, path string) (PageContent, error) {
	entry, ok, err := s.cache.Get(ctx, version, path)
	if err != nil {
		slog.Warn("Cache read failed, falling through to origin",
			logfields.Version(version), logfields.Path(path), logfields.Error(err))
	}
	if ok {
		s.recorder.IncCacheOp(metrics.CacheHit)
		return PageContent{Body: entry.Content, Fingerprint: entry.Fingerprint}, nil
	}
	s.recorder.IncCacheOp(metrics.CacheMiss)

	content, err := s.origin.FetchPage(ctx, version, path)
	if err != nil || content.Placeholder {
		return content, err
	}

	stored, err := s.cache.Put(ctx, version, path, content.Body)
	if err != nil {
		slog.Warn("Cache write failed",
			logfields.Version(version), logfields.Path(path), logfields.Error(err))
		return content, nil
	}
	s.recorder.IncCacheOp(metrics.CacheStore)
	content.Fingerprint = stored.Fingerprint
	return content, nil
}

// FetchRaw caches supporting documents the same way. The ToC is needed on
// every page request, so it benefits from the cache more than anything.
func (s *CachingSource) FetchRaw(ctx context.Context, version, path string) ([]byte, error) {
	entry, ok, err := s.cache.Get(ctx, version, path)
	if err != nil {
		slog.Warn("Cache read failed, falling through to origin",
			logfields.Version(version), logfields.Path(path), logfields.Error(err))
	}
	if ok {
		s.recorder.IncCacheOp(metrics.CacheHit)
		return entry.Content, nil
	}
	s.recorder.IncCacheOp(metrics.CacheMiss)

	data, err := s.origin.FetchRaw(ctx, version, path)
	if err != nil {
		return nil, err
	}
	if _, err := s.cache.Put(ctx, version, path, data); err != nil {
		slog.Warn("Cache write failed",
			logfields.Version(version), logfields.Path(path), logfields.Error(err))
	} else {
		s.recorder.IncCacheOp(metrics.CacheStore)
	}
	return data, nil
}
