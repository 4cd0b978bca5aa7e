package events

import (
	"context"
	"sync"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/metrics"
)

type fakeCache struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeCache) Invalidate(_ context.Context, version, path string) error {
	f.record("invalidate " + version + " " + path)
	return f.err
}

func (f *fakeCache) InvalidateVersion(_ context.Context, version string) error {
	f.record("invalidate-version " + version)
	return f.err
}

func (f *fakeCache) Purge(context.Context) error {
	f.record("purge")
	return f.err
}

func (f *fakeCache) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

type eventRecorder struct {
	metrics.NoopRecorder
	mu      sync.Mutex
	results []string
}

func (r *eventRecorder) IncInvalidationEvent(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func deliver(s *Subscriber, payload string) {
	s.handleMessage(&nats.Msg{Subject: "docserve.content.updated", Data: []byte(payload)})
}

func TestHandleMessage_InvalidatesSingleEntry(t *testing.T) {
	cache := &fakeCache{}
	recorder := &eventRecorder{}
	s := NewSubscriber(nil, cache, recorder)

	deliver(s, `{"version":"v1.0","path":"basics/variables.md"}`)

	require.Equal(t, []string{"invalidate v1.0 basics/variables.md"}, cache.calls)
	require.Equal(t, []string{"applied"}, recorder.results)
}

func TestHandleMessage_EmptyPathInvalidatesVersion(t *testing.T) {
	cache := &fakeCache{}
	recorder := &eventRecorder{}
	s := NewSubscriber(nil, cache, recorder)

	deliver(s, `{"version":"v1.0"}`)

	require.Equal(t, []string{"invalidate-version v1.0"}, cache.calls)
	require.Equal(t, []string{"applied"}, recorder.results)
}

func TestHandleMessage_EmptyVersionPurges(t *testing.T) {
	cache := &fakeCache{}
	s := NewSubscriber(nil, cache, nil)

	deliver(s, `{}`)
	// A stray path without a version still means a full purge.
	deliver(s, `{"path":"basics.md"}`)

	require.Equal(t, []string{"purge", "purge"}, cache.calls)
}

func TestHandleMessage_MalformedPayload(t *testing.T) {
	cache := &fakeCache{}
	recorder := &eventRecorder{}
	s := NewSubscriber(nil, cache, recorder)

	deliver(s, "not json")

	require.Empty(t, cache.calls)
	require.Equal(t, []string{"invalid"}, recorder.results)
}

func TestHandleMessage_NilCacheIgnoresEvents(t *testing.T) {
	recorder := &eventRecorder{}
	s := NewSubscriber(nil, nil, recorder)

	deliver(s, `{"version":"v1.0"}`)

	require.Equal(t, []string{"ignored"}, recorder.results)
}

func TestHandleMessage_ApplyFailureCountsIgnored(t *testing.T) {
	cache := &fakeCache{err: errors.CacheError("database locked").Build()}
	recorder := &eventRecorder{}
	s := NewSubscriber(nil, cache, recorder)

	deliver(s, `{"version":"v1.0"}`)

	require.Equal(t, []string{"invalidate-version v1.0"}, cache.calls)
	require.Equal(t, []string{"ignored"}, recorder.results)
}

func TestStart_RequiresEnabledConfig(t *testing.T) {
	err := NewSubscriber(nil, nil, nil).Start(t.Context())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))

	disabled := &config.EventsConfig{Enabled: false}
	err = NewSubscriber(disabled, nil, nil).Start(t.Context())
	require.Error(t, err)
}

func TestStartStop_SurvivesUnreachableBus(t *testing.T) {
	cfg := &config.EventsConfig{
		Enabled: true,
		URL:     "nats://127.0.0.1:1",
		Subject: "docserve.content.updated",
	}
	s := NewSubscriber(cfg, &fakeCache{}, nil)

	// The connection retries in the background, so startup succeeds even
	// with no bus listening.
	require.NoError(t, s.Start(t.Context()))
	require.False(t, s.IsConnected())
	require.NoError(t, s.Stop(t.Context()))
}
