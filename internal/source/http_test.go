package source

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

func newFakeOrigin(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/raw/v1.0/introduction.md":
			_, _ = w.Write([]byte("# Introduction\n\nWelcome.\n"))
		case "/raw/v1.0/index.yml":
			_, _ = w.Write([]byte("introduction: Introduction\n"))
		case "/raw/v1.0/forbidden.md":
			w.WriteHeader(http.StatusForbidden)
		case "/raw/v1.0/flaky.md":
			w.WriteHeader(http.StatusBadGateway)
		case "/raw/v1.0/huge.md":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newHTTPSource(t *testing.T, origin *httptest.Server, maxBytes int64) *HTTPSource {
	t.Helper()
	return NewHTTPSource(&config.HTTPSourceConfig{
		URLTemplate:      origin.URL + "/raw/{version}/{path}",
		Timeout:          "2s",
		MaxResponseBytes: maxBytes,
	})
}

func TestHTTPFetchPage_OK(t *testing.T) {
	src := newHTTPSource(t, newFakeOrigin(t), 1024)

	content, err := src.FetchPage(t.Context(), "v1.0", "introduction.md")
	require.NoError(t, err)
	require.False(t, content.Placeholder)
	require.Contains(t, string(content.Body), "# Introduction")
}

func TestHTTPFetchPage_MissingPageBecomesPlaceholder(t *testing.T) {
	src := newHTTPSource(t, newFakeOrigin(t), 1024)

	content, err := src.FetchPage(t.Context(), "v1.0", "never-written.md")
	require.NoError(t, err)
	require.True(t, content.Placeholder)
	require.Equal(t, NotFoundPlaceholder, string(content.Body))
}

func TestHTTPFetchPage_ForbiddenBecomesPlaceholder(t *testing.T) {
	src := newHTTPSource(t, newFakeOrigin(t), 1024)

	content, err := src.FetchPage(t.Context(), "v1.0", "forbidden.md")
	require.NoError(t, err)
	require.True(t, content.Placeholder)
	require.Equal(t, NotFoundPlaceholder, string(content.Body))
}

func TestHTTPFetchPage_UnreachableOriginBecomesErrorPlaceholder(t *testing.T) {
	origin := newFakeOrigin(t)
	src := newHTTPSource(t, origin, 1024)
	origin.Close()

	content, err := src.FetchPage(t.Context(), "v1.0", "introduction.md")
	require.NoError(t, err)
	require.True(t, content.Placeholder)
	require.Equal(t, ErrorPlaceholder, string(content.Body))
}

func TestHTTPFetchPage_UnexpectedStatusIsAnError(t *testing.T) {
	src := newHTTPSource(t, newFakeOrigin(t), 1024)

	_, err := src.FetchPage(t.Context(), "v1.0", "flaky.md")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategorySource))
}

func TestHTTPFetchRaw_OK(t *testing.T) {
	src := newHTTPSource(t, newFakeOrigin(t), 1024)

	data, err := src.FetchRaw(t.Context(), "v1.0", "index.yml")
	require.NoError(t, err)
	require.Equal(t, "introduction: Introduction\n", string(data))
}

func TestHTTPFetchRaw_MissingFileIsNotFound(t *testing.T) {
	src := newHTTPSource(t, newFakeOrigin(t), 1024)

	_, err := src.FetchRaw(t.Context(), "v1.0", "missing.yml")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestHTTPFetchRaw_UnreachableOriginIsNetworkError(t *testing.T) {
	origin := newFakeOrigin(t)
	src := newHTTPSource(t, origin, 1024)
	origin.Close()

	_, err := src.FetchRaw(t.Context(), "v1.0", "index.yml")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNetwork))
}

func TestHTTPFetchRaw_ResponseSizeCap(t *testing.T) {
	src := newHTTPSource(t, newFakeOrigin(t), 16)

	_, err := src.FetchRaw(t.Context(), "v1.0", "huge.md")
	require.Error(t, err)
}

func TestHTTPSource_SubstitutesTemplateMarkers(t *testing.T) {
	var requested string
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(origin.Close)

	src := NewHTTPSource(&config.HTTPSourceConfig{
		URLTemplate:      origin.URL + "/product/manual/raw/{version}/{path}",
		Timeout:          "2s",
		MaxResponseBytes: 1024,
	})

	_, err := src.FetchRaw(t.Context(), "v2.0", "basics/variables.md")
	require.NoError(t, err)
	require.Equal(t, "/product/manual/raw/v2.0/basics/variables.md", requested)
}
