// Package source retrieves raw manual page sources from the configured
// origin: a forge's raw-file endpoint over HTTP, or a git checkout of the
// manual repository. A caching wrapper adds cross-request persistence.
package source

import (
	"context"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

// Placeholder bodies rendered when a page cannot be retrieved. They pass
// through the normal render pipeline, so readers get a styled page with
// working navigation instead of a bare error.
const (
	NotFoundPlaceholder = "# 404 - Not Found\n\nThis page does not exist in this version of the manual.\n"
	ErrorPlaceholder    = "# 500 - Internal Server Error\n\nThe page could not be retrieved. Please try again later.\n"
)

// PageContent is the result of a page fetch.
type PageContent struct {
	Body []byte
	// Placeholder marks degraded content served in place of the real page.
	// Placeholders are never cached and carry no fingerprint.
	Placeholder bool
	// Fingerprint is the content fingerprint when the page came from the
	// cache; empty otherwise.
	Fingerprint string
}

// Source retrieves raw page sources for manual versions.
//
// FetchPage degrades gracefully: a page the origin reports as absent comes
// back as a not-found placeholder, and an unreachable origin comes back as
// an error placeholder, both with a nil error. Only unexpected origin
// responses surface as errors, because those indicate misconfiguration
// rather than a bad link.
//
// FetchRaw is strict: it retrieves supporting documents like the table of
// contents, where placeholder bytes would corrupt the parse.
type Source interface {
	FetchPage(ctx context.Context, version, path string) (PageContent, error)
	FetchRaw(ctx context.Context, version, path string) ([]byte, error)
}

// New builds the origin source selected by configuration.
func New(cfg config.SourceConfig) (Source, error) {
	switch config.NormalizeSourceKind(string(cfg.Kind)) {
	case config.SourceHTTP:
		return NewHTTPSource(cfg.HTTP), nil
	case config.SourceGit:
		return NewGitSource(cfg.Git), nil
	default:
		return nil, errors.ConfigError("unsupported source kind").WithContext("kind", string(cfg.Kind)).Build()
	}
}
