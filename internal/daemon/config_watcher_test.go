package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

const watcherTestConfig = `version: "1.0"
server:
  http:
    docs_port: 8080
    admin_port: 8081
  base_path: /manual
source:
  kind: http
  http:
    url_template: "https://git.example.com/product/manual/raw/{version}/{path}"
  toc_path: index.yml
versions:
  list:
    - name: v1.0
`

type fakeReloader struct {
	mu      sync.Mutex
	applied []*config.Config
	err     error
}

func (f *fakeReloader) Reload(_ context.Context, cfg *config.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, cfg)
	return f.err
}

func (f *fakeReloader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}

func (f *fakeReloader) last() *config.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.applied) == 0 {
		return nil
	}
	return f.applied[len(f.applied)-1]
}

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "docserve.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigWatcher_PerformReload_AppliesValidConfig(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), watcherTestConfig)
	reloader := &fakeReloader{}
	cw, err := NewConfigWatcher(path, reloader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cw.Stop(context.Background()) })

	require.NoError(t, cw.performReload(t.Context()))

	require.Equal(t, 1, reloader.count())
	require.Equal(t, "/manual", reloader.last().Server.BasePath)
}

func TestConfigWatcher_PerformReload_RejectsInvalidConfig(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), "version: \"1.0\"\nserver: [not, a, mapping]\n")
	reloader := &fakeReloader{}
	cw, err := NewConfigWatcher(path, reloader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cw.Stop(context.Background()) })

	require.Error(t, cw.performReload(t.Context()))
	require.Zero(t, reloader.count())
}

func TestConfigWatcher_PerformReload_SurfacesApplyFailure(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), watcherTestConfig)
	reloader := &fakeReloader{err: errors.ConfigError("port change needs restart").Build()}
	cw, err := NewConfigWatcher(path, reloader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cw.Stop(context.Background()) })

	err = cw.performReload(t.Context())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to apply new configuration")
}

func TestConfigWatcher_ReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, watcherTestConfig)
	reloader := &fakeReloader{}
	cw, err := NewConfigWatcher(path, reloader)
	require.NoError(t, err)
	cw.debounceTime = 20 * time.Millisecond

	require.NoError(t, cw.Start(t.Context()))
	require.True(t, cw.IsWatching())
	t.Cleanup(func() { _ = cw.Stop(context.Background()) })

	// Rewrite with an extra version and wait out the debounce.
	updated := strings.Replace(watcherTestConfig, "- name: v1.0", "- name: v2.0\n    - name: v1.0", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	require.Eventually(t, func() bool { return reloader.count() > 0 }, 5*time.Second, 25*time.Millisecond)
	require.Len(t, reloader.last().Versions.List, 2)
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, watcherTestConfig)
	reloader := &fakeReloader{}
	cw, err := NewConfigWatcher(path, reloader)
	require.NoError(t, err)
	cw.debounceTime = 20 * time.Millisecond

	require.NoError(t, cw.Start(t.Context()))
	t.Cleanup(func() { _ = cw.Stop(context.Background()) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))

	time.Sleep(150 * time.Millisecond)
	require.Zero(t, reloader.count())
}

func TestConfigWatcher_StopIsIdempotent(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), watcherTestConfig)
	cw, err := NewConfigWatcher(path, &fakeReloader{})
	require.NoError(t, err)

	require.NoError(t, cw.Start(t.Context()))
	require.True(t, cw.IsWatching())

	require.NoError(t, cw.Stop(context.Background()))
	require.NoError(t, cw.Stop(context.Background()))
	require.False(t, cw.IsWatching())
}

func TestConfigWatcher_TriggerCoalesces(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), watcherTestConfig)
	cw, err := NewConfigWatcher(path, &fakeReloader{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cw.Stop(context.Background()) })

	cw.triggerReload()
	cw.triggerReload()
	cw.triggerReload()

	require.Len(t, cw.reloadChan, 1)
}
