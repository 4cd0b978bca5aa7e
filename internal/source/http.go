package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
)

// HTTPSource fetches raw files from a forge's raw-content endpoint. The
// configured URL template carries {version} and {path} markers that are
// substituted per request.
type HTTPSource struct {
	client   *http.Client
	template string
	maxBytes int64
}

// NewHTTPSource builds the HTTP origin. Redirects are followed within the
// origin host only; raw endpoints commonly redirect to CDN paths on the
// same host, and anything else is a misconfiguration.
func NewHTTPSource(cfg *config.HTTPSourceConfig) *HTTPSource {
	return &HTTPSource{
		client: &http.Client{
			Timeout: cfg.TimeoutDuration(),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) == 0 {
					return nil
				}
				if req.URL.Host != via[0].URL.Host {
					return fmt.Errorf("redirect to different host blocked")
				}
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		template: cfg.URLTemplate,
		maxBytes: cfg.MaxResponseBytes,
	}
}

// FetchPage retrieves one markdown page, degrading to placeholders per the
// Source contract.
func (s *HTTPSource) FetchPage(ctx context.Context, version, path string) (PageContent, error) {
	url := s.url(version, path)

	body, status, err := s.fetch(ctx, url)
	if err != nil {
		slog.Warn("Origin unreachable, serving error placeholder",
			logfields.Version(version), logfields.Path(path), logfields.Error(err))
		return PageContent{Body: []byte(ErrorPlaceholder), Placeholder: true}, nil
	}

	switch {
	case status == http.StatusOK:
		return PageContent{Body: body}, nil
	case status == http.StatusNotFound || status == http.StatusForbidden:
		// Forges answer 403 for files outside the readable tree; readers
		// get the same not-found page either way.
		slog.Debug("Page absent at origin",
			logfields.Version(version), logfields.Path(path), logfields.Status(status))
		return PageContent{Body: []byte(NotFoundPlaceholder), Placeholder: true}, nil
	default:
		return PageContent{}, errors.SourceError("unexpected origin response").
			WithContext("status", status).
			WithContext("url", url).
			Build()
	}
}

// FetchRaw retrieves a supporting file with strict error semantics.
func (s *HTTPSource) FetchRaw(ctx context.Context, version, path string) ([]byte, error) {
	url := s.url(version, path)

	body, status, err := s.fetch(ctx, url)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "fetching from origin").
			Retryable().
			WithContext("url", url).
			Build()
	}
	switch status {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound, http.StatusForbidden:
		return nil, errors.NotFoundError("file not present at origin").
			WithContext("version", version).
			WithContext("path", path).
			Build()
	default:
		// Unexpected statuses are treated as transient; the origin may
		// answer normally on a later attempt.
		return nil, errors.SourceError("unexpected origin response").
			Retryable().
			WithContext("status", status).
			WithContext("url", url).
			Build()
	}
}

// fetch performs the GET. A non-nil error means the origin was never
// reached or the body could not be read; otherwise the status code tells
// the caller what happened. Non-200 bodies are drained so connections can
// be reused.
func (s *HTTPSource) fetch(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, s.maxBytes))
		return nil, resp.StatusCode, nil
	}

	limited := io.LimitReader(resp.Body, s.maxBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, 0, err
	}
	if int64(len(data)) > s.maxBytes {
		return nil, 0, fmt.Errorf("origin response larger than %d bytes", s.maxBytes)
	}
	return data, resp.StatusCode, nil
}

func (s *HTTPSource) url(version, path string) string {
	r := strings.NewReplacer("{version}", version, "{path}", path)
	return r.Replace(s.template)
}
