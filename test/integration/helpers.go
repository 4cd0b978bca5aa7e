// Package integration exercises the full serving stack: a daemon wired
// from configuration, started on ephemeral ports, and driven over real
// HTTP against a fixture content origin.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/daemon"
)

// manualToc is the table of contents the fixtures serve. It covers the two
// flatten behaviors readers hit: an alias and a nested child page.
const manualToc = `introduction:
  name: Introduction
  aliases:
    - getting-started
basics:
  name: Basics
  children:
    variables:
      name: Variables
`

// writeManualTree materializes manual content files under dir. Paths are
// slash-separated the way they appear in the table of contents.
func writeManualTree(t *testing.T, dir string, pages map[string]string) {
	t.Helper()

	for path, content := range pages {
		target := filepath.Join(dir, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755), "failed to create content directory")
		require.NoError(t, os.WriteFile(target, []byte(content), 0o644), "failed to write manual page")
	}
}

// commitAndTag commits the current worktree state and tags it with the
// version name. Manual releases are tags, which is what the git source
// resolves first when it clones.
func commitAndTag(t *testing.T, repo *git.Repository, version string) {
	t.Helper()

	w, err := repo.Worktree()
	require.NoError(t, err, "failed to get worktree")

	require.NoError(t, w.AddGlob("."), "failed to stage manual files")

	hash, err := w.Commit("manual content for "+version, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err, "failed to commit manual content")

	_, err = repo.CreateTag(version, hash, nil)
	require.NoError(t, err, "failed to tag version")
}

// startDaemon wires a daemon from cfg, starts it, and returns loopback base
// URLs for the docs and admin listeners. Configs use port 0, so parallel
// test runs cannot collide. The daemon is stopped on test cleanup.
func startDaemon(t *testing.T, cfg *config.Config) (d *daemon.Daemon, docsURL, adminURL string) {
	t.Helper()

	d, err := daemon.New(cfg, "")
	require.NoError(t, err, "failed to wire daemon")

	require.NoError(t, d.Start(t.Context()), "failed to start daemon")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = d.Stop(ctx)
	})

	docsAddr, adminAddr := d.HTTPAddrs()
	return d, loopbackURL(t, docsAddr), loopbackURL(t, adminAddr)
}

// loopbackURL rewrites a bound listener address (typically a wildcard host
// with an ephemeral port) into a dialable loopback base URL.
func loopbackURL(t *testing.T, addr string) string {
	t.Helper()

	_, port, err := net.SplitHostPort(addr)
	require.NoError(t, err, "listener address has no port")
	return "http://" + net.JoinHostPort("127.0.0.1", port)
}

// httpGet fetches url following redirects and returns the final status,
// response headers, and body. Extra request headers may be nil.
func httpGet(t *testing.T, url string, header map[string]string) (int, http.Header, string) {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
	require.NoError(t, err, "request failed")
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "reading response body failed")
	return resp.StatusCode, resp.Header, string(body)
}

// httpGetNoFollow fetches url without following redirects, returning the
// status and the Location header.
func httpGetNoFollow(t *testing.T, url string) (status int, location string) {
	t.Helper()

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		Timeout:       10 * time.Second,
	}
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err, "request failed")
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, resp.Header.Get("Location")
}

// httpGetJSON fetches url and decodes the JSON response into out.
func httpGetJSON(t *testing.T, url string, out any) {
	t.Helper()

	status, _, body := httpGet(t, url, nil)
	require.Equal(t, http.StatusOK, status, "unexpected status for %s: %s", url, body)
	require.NoError(t, json.Unmarshal([]byte(body), out), "decoding response from %s failed", url)
}

// httpPostJSON posts body as JSON to url and decodes the response into out.
func httpPostJSON(t *testing.T, url string, body, out any) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
	require.NoError(t, err, "request failed")
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "unexpected status for %s: %s", url, raw)
	require.NoError(t, json.Unmarshal(raw, out), "decoding response from %s failed", url)
}
