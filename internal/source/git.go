package source

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
)

// GitSource serves page files from shallow per-version clones of the
// manual repository. Each version gets its own checkout under the workdir,
// cloned on first use at the matching tag (or branch, for channel names
// like "latest").
type GitSource struct {
	url     string
	workdir string
	depth   int

	mu    sync.Mutex
	ready map[string]string // version -> checkout dir
}

// NewGitSource builds the git origin.
func NewGitSource(cfg *config.GitSourceConfig) *GitSource {
	return &GitSource{
		url:     cfg.URL,
		workdir: cfg.Workdir,
		depth:   cfg.Depth,
		ready:   make(map[string]string),
	}
}

// FetchPage reads one markdown page from the version's checkout, degrading
// to placeholders per the Source contract.
func (s *GitSource) FetchPage(ctx context.Context, version, path string) (PageContent, error) {
	dir, err := s.ensureVersion(ctx, version)
	if err != nil {
		slog.Warn("Checkout unavailable, serving error placeholder",
			logfields.Version(version), logfields.Path(path), logfields.Error(err))
		return PageContent{Body: []byte(ErrorPlaceholder), Placeholder: true}, nil
	}

	data, err := s.readFile(dir, path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("Page absent in checkout", logfields.Version(version), logfields.Path(path))
			return PageContent{Body: []byte(NotFoundPlaceholder), Placeholder: true}, nil
		}
		return PageContent{}, errors.SourceError("reading page from checkout").
			WithContext("version", version).
			WithContext("path", path).
			Build()
	}
	return PageContent{Body: data}, nil
}

// FetchRaw reads a supporting file with strict error semantics.
func (s *GitSource) FetchRaw(ctx context.Context, version, path string) ([]byte, error) {
	dir, err := s.ensureVersion(ctx, version)
	if err != nil {
		return nil, err
	}

	data, err := s.readFile(dir, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("file not present in checkout").
				WithContext("version", version).
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategorySource, "reading file from checkout").
			WithContext("version", version).
			WithContext("path", path).
			Build()
	}
	return data, nil
}

// readFile resolves path inside the checkout, rejecting anything that
// would escape it. Request paths are slash-separated slugs.
func (s *GitSource) readFile(dir, path string) ([]byte, error) {
	rel := filepath.FromSlash(path)
	if !filepath.IsLocal(rel) {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(filepath.Join(dir, rel))
}

// ensureVersion materializes the checkout for a version, cloning on first
// use. Concurrent requests for the same version wait for a single clone.
func (s *GitSource) ensureVersion(ctx context.Context, version string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir, ok := s.ready[version]; ok {
		return dir, nil
	}

	dir := filepath.Join(s.workdir, version)
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		s.ready[version] = dir
		return dir, nil
	}

	if err := os.RemoveAll(dir); err != nil {
		return "", errors.WrapError(err, errors.CategoryGit, "clearing stale checkout").
			WithContext("version", version).
			Build()
	}

	slog.Debug("Cloning manual version", logfields.URL(s.url), logfields.Version(version), logfields.Path(dir))

	// Release versions are tags; channel versions like "latest" are
	// branches. Try the tag first.
	repo, err := s.clone(ctx, dir, plumbing.NewTagReferenceName(version))
	if err != nil {
		_ = os.RemoveAll(dir)
		repo, err = s.clone(ctx, dir, plumbing.NewBranchReferenceName(version))
	}
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", errors.WrapError(err, errors.CategoryGit, "cloning manual version").
			Retryable().
			WithContext("version", version).
			WithContext("url", s.url).
			Build()
	}

	if ref, headErr := repo.Head(); headErr == nil {
		slog.Info("Manual version cloned",
			logfields.Version(version),
			slog.String("commit", ref.Hash().String()[:8]),
			logfields.Path(dir))
	} else {
		slog.Info("Manual version cloned", logfields.Version(version), logfields.Path(dir))
	}

	s.ready[version] = dir
	return dir, nil
}

func (s *GitSource) clone(ctx context.Context, dir string, ref plumbing.ReferenceName) (*git.Repository, error) {
	return git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:           s.url,
		ReferenceName: ref,
		SingleBranch:  true,
		Depth:         s.depth,
	})
}

// Invalidate drops the cached checkout mapping for a version so the next
// request clones fresh content. The caller decides when that is needed,
// typically on an invalidation event with no path scope.
func (s *GitSource) Invalidate(version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ready, version)
	dir := filepath.Join(s.workdir, version)
	if err := os.RemoveAll(dir); err != nil {
		return errors.WrapError(err, errors.CategoryGit, "removing checkout").
			WithContext("version", version).
			Build()
	}
	slog.Info("Checkout removed", logfields.Version(version), logfields.Path(dir))
	return nil
}
