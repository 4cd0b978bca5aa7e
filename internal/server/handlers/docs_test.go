package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/manifest"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/services"
	"git.home.luguber.info/inful/docserve/internal/source"
)

const testToc = `introduction:
  name: Introduction
  aliases: [getting-started]
basics:
  name: Basics
  children:
    variables: Variables
`

// stubSource serves fixed documents. Unknown pages degrade to the
// not-found placeholder, matching real source behavior.
type stubSource struct {
	pages map[string]string
	raws  map[string]string
}

func (s *stubSource) FetchPage(_ context.Context, version, path string) (source.PageContent, error) {
	if body, ok := s.pages[version+"/"+path]; ok {
		return source.PageContent{Body: []byte(body)}, nil
	}
	return source.PageContent{Body: []byte(source.NotFoundPlaceholder), Placeholder: true}, nil
}

func (s *stubSource) FetchRaw(_ context.Context, version, path string) ([]byte, error) {
	if raw, ok := s.raws[version+"/"+path]; ok {
		return []byte(raw), nil
	}
	return nil, errors.NotFoundError("document not present").Build()
}

// statusRecorder captures page request dispositions; everything else is a no-op.
type statusRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	statuses []metrics.RequestStatus
}

func (c *statusRecorder) IncPageRequest(status metrics.RequestStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, status)
}

func newTestPageService(t *testing.T) *services.PageService {
	t.Helper()
	set, err := manifest.New(config.VersionsConfig{
		List: []config.VersionEntry{
			{Name: "v2.0", Std: "1.24"},
			{Name: "v1.0", Std: "1.22"},
		},
	})
	require.NoError(t, err)

	src := &stubSource{
		pages: map[string]string{
			"v1.0/introduction.md":     "# Welcome\n\nManual for {{version}}.\n",
			"v1.0/basics.md":           "# Basics\n\nSome text.\n",
			"v1.0/basics/variables.md": "# Variables\n",
		},
		raws: map[string]string{
			"v1.0/index.yml": testToc,
			"v2.0/index.yml": testToc,
		},
	}
	server := config.ServerConfig{BasePath: "/manual", Title: "Product Manual"}
	return services.NewPageService(src, manifest.NewManager(set), server, "index.yml", nil)
}

func newTestDocsHandler(t *testing.T, recorder metrics.Recorder) *DocsHandler {
	t.Helper()
	adapter := errors.NewHTTPErrorAdapter(slog.Default())
	return NewDocsHandler(newTestPageService(t), adapter, recorder)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDocs_MethodNotAllowed(t *testing.T) {
	h := newTestDocsHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/manual@v1.0/introduction", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestDocs_RootRedirectsToCanonicalDefault(t *testing.T) {
	h := newTestDocsHandler(t, nil)

	rec := get(t, h, "/")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/manual@v2.0/introduction", rec.Header().Get("Location"))
}

func TestDocs_BareBasePathRedirects(t *testing.T) {
	h := newTestDocsHandler(t, nil)

	for _, target := range []string{"/manual", "/manual/"} {
		rec := get(t, h, target)
		require.Equal(t, http.StatusFound, rec.Code, "path %s", target)
		require.Equal(t, "/manual@v2.0/introduction", rec.Header().Get("Location"), "path %s", target)
	}
}

func TestDocs_UnversionedPathPinsDefaultVersion(t *testing.T) {
	h := newTestDocsHandler(t, nil)

	rec := get(t, h, "/manual/basics/variables")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/manual@v2.0/basics/variables", rec.Header().Get("Location"))
}

func TestDocs_BareVersionRedirectsToItsLandingPage(t *testing.T) {
	h := newTestDocsHandler(t, nil)

	for _, target := range []string{"/manual@v1.0", "/manual@v1.0/"} {
		rec := get(t, h, target)
		require.Equal(t, http.StatusFound, rec.Code, "path %s", target)
		require.Equal(t, "/manual@v1.0/introduction", rec.Header().Get("Location"), "path %s", target)
	}
}

func TestDocs_MarkdownSuffixStripped(t *testing.T) {
	h := newTestDocsHandler(t, nil)

	rec := get(t, h, "/manual@v1.0/basics.md")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/manual@v1.0/basics", rec.Header().Get("Location"))
}

func TestDocs_AliasRedirectsPermanently(t *testing.T) {
	h := newTestDocsHandler(t, nil)

	rec := get(t, h, "/manual@v1.0/getting-started")
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	require.Equal(t, "/manual@v1.0/introduction", rec.Header().Get("Location"))
}

func TestDocs_RendersPage(t *testing.T) {
	h := newTestDocsHandler(t, nil)

	rec := get(t, h, "/manual@v1.0/introduction")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.NotEmpty(t, rec.Header().Get("ETag"))
	require.Contains(t, rec.Body.String(), "Manual for v1.0")
}

func TestDocs_ETagRoundTrip(t *testing.T) {
	h := newTestDocsHandler(t, nil)

	first := get(t, h, "/manual@v1.0/introduction")
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/manual@v1.0/introduction", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotModified, rec.Code)
	require.Empty(t, rec.Body.String())
	require.Equal(t, etag, rec.Header().Get("ETag"))
}

func TestDocs_StaleETagGetsFullResponse(t *testing.T) {
	h := newTestDocsHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/manual@v1.0/introduction", nil)
	req.Header.Set("If-None-Match", `"different"`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.String())
}

func TestDocs_PlaceholderServes200WithoutETag(t *testing.T) {
	h := newTestDocsHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/manual@v1.0/nonexistent", nil)
	req.Header.Set("If-None-Match", "*")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// Degraded content always comes back in full, even to a wildcard match.
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("ETag"))
	require.Contains(t, rec.Body.String(), "404 - Not Found")
}

func TestDocs_UnknownVersion404(t *testing.T) {
	h := newTestDocsHandler(t, nil)

	rec := get(t, h, "/manual@v9.9/introduction")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocs_PathOutsideBase404(t *testing.T) {
	h := newTestDocsHandler(t, nil)

	for _, target := range []string{"/other", "/manualx/foo"} {
		rec := get(t, h, target)
		require.Equal(t, http.StatusNotFound, rec.Code, "path %s", target)
	}
}

func TestDocs_QueryPreservedAcrossRedirect(t *testing.T) {
	h := newTestDocsHandler(t, nil)

	rec := get(t, h, "/manual/basics?highlight=let")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/manual@v2.0/basics?highlight=let", rec.Header().Get("Location"))
}

func TestDocs_RecordsRequestDispositions(t *testing.T) {
	recorder := &statusRecorder{}
	h := newTestDocsHandler(t, recorder)

	get(t, h, "/manual")
	get(t, h, "/manual@v1.0/introduction")
	get(t, h, "/manual@v9.9/introduction")

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.Equal(t, []metrics.RequestStatus{
		metrics.RequestRedirect,
		metrics.RequestOK,
		metrics.RequestNotFound,
	}, recorder.statuses)
}

func TestETagMatches(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   bool
	}{
		{name: "exact", header: `"abc"`, want: true},
		{name: "weak form", header: `W/"abc"`, want: true},
		{name: "wildcard", header: "*", want: true},
		{name: "list", header: `"xyz", "abc"`, want: true},
		{name: "miss", header: `"xyz"`, want: false},
		{name: "empty", header: "", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, etagMatches(tc.header, `"abc"`))
		})
	}
}

var _ source.Source = (*stubSource)(nil)
