package services

import (
	"bytes"
	"context"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/contentcache"
	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/manifest"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/render"
	"git.home.luguber.info/inful/docserve/internal/source"
	"git.home.luguber.info/inful/docserve/internal/toc"
)

// DefaultSlug is the page a manual request without a path lands on.
const DefaultSlug = "introduction"

// PageService assembles complete manual pages. Per request it resolves the
// version, fetches the page source and the table of contents concurrently,
// then renders the page inside the navigation shell. It holds no mutable
// per-request state; the cross-request cache lives inside the Source.
type PageService struct {
	source   source.Source
	renderer *render.Renderer
	shell    *render.Shell
	versions *manifest.Manager
	recorder metrics.Recorder

	basePath string
	siteName string
	tocPath  string
}

// NewPageService wires the page assembly pipeline. A nil recorder disables
// metrics.
func NewPageService(src source.Source, versions *manifest.Manager, server config.ServerConfig, tocPath string, recorder metrics.Recorder) *PageService {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &PageService{
		source:   src,
		renderer: render.NewRenderer(),
		shell:    render.NewShell(),
		versions: versions,
		recorder: recorder,
		basePath: strings.TrimSuffix(server.BasePath, "/"),
		siteName: server.Title,
		tocPath:  tocPath,
	}
}

// PageResult is the outcome of a page request.
type PageResult struct {
	// RedirectTo is the target path when the slug matched a redirect
	// source. When set, nothing else is populated.
	RedirectTo string

	// HTML is the complete rendered document.
	HTML []byte
	// ETag is the content fingerprint for conditional requests. Empty for
	// placeholder pages, which must not be revalidated into a cache.
	ETag string
	// Placeholder marks degraded content served in place of the real page.
	Placeholder bool
}

// Page assembles the manual page for (version, slug). The page source and
// the table of contents are fetched concurrently; either failing strictly
// fails the whole request, there are no partial renders. Redirects are
// checked once the table of contents is in hand.
func (s *PageService) Page(ctx context.Context, versionName, slug string) (PageResult, error) {
	ver, ok := s.versions.Current().Lookup(versionName)
	if !ok {
		return PageResult{}, errors.NotFoundError("unknown manual version").
			WithContext("version", versionName).
			Build()
	}
	slug = strings.Trim(slug, "/")
	if slug == "" {
		slug = DefaultSlug
	}

	start := time.Now()

	var content source.PageContent
	var tree toc.Tree
	var flat toc.Flat

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		fetchStart := time.Now()
		c, err := s.source.FetchPage(gctx, ver.Name, slug+".md")
		s.recorder.ObserveFetch(fetchOutcome(c, err), time.Since(fetchStart))
		if err != nil {
			return err
		}
		content = c
		return nil
	})
	grp.Go(func() error {
		tr, f, err := s.manualToc(gctx, ver)
		if err != nil {
			return err
		}
		tree, flat = tr, f
		return nil
	})
	if err := grp.Wait(); err != nil {
		return PageResult{}, err
	}

	if target, ok := flat.Redirect(slug); ok {
		return PageResult{RedirectTo: target}, nil
	}

	active := flat.ActiveIndex(slug)
	fallbackTitle := path.Base(slug)
	if active >= 0 {
		fallbackTitle = flat.Pages[active].Name
	}

	page, err := s.renderer.Page(content.Body, render.Vars{Version: ver.Name, StdVersion: ver.Std}, fallbackTitle)
	if err != nil {
		return PageResult{}, err
	}

	view := s.assembleView(ver, slug, page, tree, flat, active)

	var buf bytes.Buffer
	if err := s.shell.Render(&buf, view); err != nil {
		return PageResult{}, errors.WrapError(err, errors.CategoryRender, "rendering page shell").
			WithContext("version", ver.Name).
			WithContext("slug", slug).
			Build()
	}

	var etag string
	if !content.Placeholder {
		etag = content.Fingerprint
		if etag == "" {
			etag = contentcache.Fingerprint(content.Body)
		}
	}

	s.recorder.ObservePageRender(ver.Name, time.Since(start))

	return PageResult{HTML: buf.Bytes(), ETag: etag, Placeholder: content.Placeholder}, nil
}

// assembleView builds the shell view: version picker, navigation tree with
// the active node marked, and reading-order neighbors.
func (s *PageService) assembleView(ver manifest.Version, slug string, page render.Page, tree toc.Tree, flat toc.Flat, active int) render.View {
	activePath := ""
	if active >= 0 {
		activePath = flat.Pages[active].Path
	}
	nav := navTree(tree.Entries, s.versionPrefix(ver.Name), activePath)

	all := s.versions.Current().All()
	versionOptions := make([]render.VersionOption, len(all))
	for i, v := range all {
		versionOptions[i] = render.VersionOption{
			Path:    s.PagePath(v.Name, slug),
			Display: v.Display,
			Active:  v.Name == ver.Name,
		}
	}

	var prevLink, nextLink *render.NavLink
	if active >= 0 {
		prev, next := flat.Neighbors(active)
		if prev.IsSome() {
			p := prev.Unwrap()
			prevLink = &render.NavLink{Path: p.Path, Name: p.Name}
		}
		if next.IsSome() {
			n := next.Unwrap()
			nextLink = &render.NavLink{Path: n.Path, Name: n.Name}
		}
	}

	return render.View{
		Title:    page.Title,
		SiteName: s.siteName,
		BasePath: s.basePath,
		Versions: versionOptions,
		Nav:      nav,
		Content:  render.HTMLContent(page.Body),
		Outline:  page.Outline,
		Prev:     prevLink,
		Next:     nextLink,
	}
}

// navTree converts table-of-contents entries into the nested sidebar tree,
// marking the node whose routed path is the active page. Path construction
// matches toc.Flatten, so the marked node is the flattened active entry.
func navTree(entries []toc.Entry, parent, activePath string) []render.NavItem {
	items := make([]render.NavItem, len(entries))
	for i, e := range entries {
		p := parent + "/" + e.Slug
		items[i] = render.NavItem{
			Path:   p,
			Name:   e.Name,
			Active: p == activePath,
		}
		if len(e.Children) > 0 {
			items[i].Children = navTree(e.Children, p, activePath)
		}
	}
	return items
}

// PageList fetches, parses, and flattens the table of contents for a
// version. Used by the page path, the CLI, and cache prewarming.
func (s *PageService) PageList(ctx context.Context, versionName string) (toc.Flat, error) {
	ver, ok := s.versions.Current().Lookup(versionName)
	if !ok {
		return toc.Flat{}, errors.NotFoundError("unknown manual version").
			WithContext("version", versionName).
			Build()
	}
	_, flat, err := s.manualToc(ctx, ver)
	return flat, err
}

func (s *PageService) manualToc(ctx context.Context, ver manifest.Version) (toc.Tree, toc.Flat, error) {
	start := time.Now()

	raw, err := s.source.FetchRaw(ctx, ver.Name, s.tocPath)
	if err != nil {
		return toc.Tree{}, toc.Flat{}, err
	}
	tree, err := toc.Parse(raw)
	if err != nil {
		return toc.Tree{}, toc.Flat{}, err
	}
	flat, err := toc.Flatten(tree, s.versionPrefix(ver.Name))
	if err != nil {
		return toc.Tree{}, toc.Flat{}, err
	}

	s.recorder.ObserveTocBuild(time.Since(start))
	return tree, flat, nil
}

// fetchOutcome maps a page fetch result onto a metrics label. Placeholder
// bodies are the fixed documents the sources emit, so identity against them
// distinguishes a missing page from a degraded origin.
func fetchOutcome(c source.PageContent, err error) metrics.FetchOutcome {
	switch {
	case err != nil:
		return metrics.FetchFailed
	case !c.Placeholder:
		return metrics.FetchOK
	case string(c.Body) == source.NotFoundPlaceholder:
		return metrics.FetchMissing
	default:
		return metrics.FetchDegraded
	}
}

// versionPrefix is the routing prefix all pages of a version live under,
// e.g. "/manual@v1.0".
func (s *PageService) versionPrefix(versionName string) string {
	return s.basePath + "@" + versionName
}

// PagePath returns the routed path of a slug under a version.
func (s *PageService) PagePath(versionName, slug string) string {
	return s.versionPrefix(versionName) + "/" + strings.Trim(slug, "/")
}

// BasePath returns the manual route prefix, e.g. "/manual".
func (s *PageService) BasePath() string {
	return s.basePath
}

// DefaultVersion returns the version requests land on when none is named.
func (s *PageService) DefaultVersion() manifest.Version {
	return s.versions.Current().Default()
}

// HasVersion reports whether a routing name is a published version.
func (s *PageService) HasVersion(name string) bool {
	_, ok := s.versions.Current().Lookup(name)
	return ok
}

// Versions returns the published versions, newest first.
func (s *PageService) Versions() []manifest.Version {
	return s.versions.Current().All()
}
