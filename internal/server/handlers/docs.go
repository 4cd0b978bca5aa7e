package handlers

import (
	"net/http"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/observability"
	"git.home.luguber.info/inful/docserve/internal/services"
)

// DocsHandler serves manual pages. It owns the route grammar of the docs
// port: the base path, the @version segment, and the page slug. Everything
// below route parsing is delegated to the page service.
type DocsHandler struct {
	pages    *services.PageService
	adapter  *errors.HTTPErrorAdapter
	recorder metrics.Recorder
}

// NewDocsHandler creates the manual page handler. A nil recorder disables
// metrics.
func NewDocsHandler(pages *services.PageService, adapter *errors.HTTPErrorAdapter, recorder metrics.Recorder) *DocsHandler {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &DocsHandler{pages: pages, adapter: adapter, recorder: recorder}
}

// ServeHTTP routes a docs request. Redirect rules are applied one at a time,
// first match wins; a request may take several hops before it settles on its
// canonical URL.
func (h *DocsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		h.recorder.IncPageRequest(metrics.RequestError)
		return
	}

	if r.URL.Path == "/" {
		h.redirect(w, r, h.canonicalPath(h.pages.DefaultVersion().Name), http.StatusFound)
		return
	}

	base := h.pages.BasePath()
	if !strings.HasPrefix(r.URL.Path, base) {
		h.notFound(w, r)
		return
	}

	rest := r.URL.Path[len(base):]
	switch {
	case rest == "" || rest == "/":
		// Bare base path: fill in the default version and page.
		h.redirect(w, r, h.canonicalPath(h.pages.DefaultVersion().Name), http.StatusFound)
	case rest[0] == '/':
		// Unversioned page path: pin it to the default version.
		h.redirect(w, r, h.pages.PagePath(h.pages.DefaultVersion().Name, rest[1:]), http.StatusFound)
	case rest[0] == '@':
		version, slug, _ := strings.Cut(rest[1:], "/")
		h.servePage(w, r, version, slug)
	default:
		// The base path matched as a string prefix only, e.g. /manualfoo.
		h.notFound(w, r)
	}
}

// servePage handles the fully versioned form of the route.
func (h *DocsHandler) servePage(w http.ResponseWriter, r *http.Request, version, slug string) {
	slug = strings.Trim(slug, "/")
	if slug == "" {
		h.redirect(w, r, h.canonicalPath(version), http.StatusFound)
		return
	}
	if trimmed := strings.TrimSuffix(slug, ".md"); trimmed != slug {
		h.redirect(w, r, h.pages.PagePath(version, trimmed), http.StatusFound)
		return
	}

	ctx := observability.WithVersion(r.Context(), version)
	ctx = observability.WithSlug(ctx, slug)

	res, err := h.pages.Page(ctx, version, slug)
	if err != nil {
		status := h.adapter.StatusCodeFor(err)
		if status == http.StatusNotFound {
			h.recorder.IncPageRequest(metrics.RequestNotFound)
		} else {
			h.recorder.IncPageRequest(metrics.RequestError)
		}
		observability.ErrorContext(ctx, "page request failed",
			logfields.Error(err),
			logfields.Status(status))
		http.Error(w, http.StatusText(status), status)
		return
	}

	if res.RedirectTo != "" {
		// Moved pages keep their redirects permanently.
		h.redirect(w, r, res.RedirectTo, http.StatusMovedPermanently)
		return
	}

	// Placeholder pages carry no ETag and are never served as 304; degraded
	// content must not be revalidated into client caches.
	if res.ETag != "" {
		etag := `"` + res.ETag + `"`
		w.Header().Set("ETag", etag)
		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			h.recorder.IncPageRequest(metrics.RequestNotModified)
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(res.HTML); err != nil {
		observability.WarnContext(ctx, "writing page response failed", logfields.Error(err))
	}
	h.recorder.IncPageRequest(metrics.RequestOK)
}

// redirect sends the client to target, preserving the query string across
// the hop.
func (h *DocsHandler) redirect(w http.ResponseWriter, r *http.Request, target string, code int) {
	if q := r.URL.RawQuery; q != "" {
		target += "?" + q
	}
	h.recorder.IncPageRequest(metrics.RequestRedirect)
	http.Redirect(w, r, target, code)
}

func (h *DocsHandler) notFound(w http.ResponseWriter, _ *http.Request) {
	h.recorder.IncPageRequest(metrics.RequestNotFound)
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// canonicalPath is the landing page of a version.
func (h *DocsHandler) canonicalPath(version string) string {
	return h.pages.PagePath(version, services.DefaultSlug)
}

// etagMatches reports whether an If-None-Match header value matches the
// entity tag. Weak comparison is enough for GET revalidation.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
