package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Version string `help:"Manual version to render from (default: the default version)"`
	Path    string `required:"" help:"Page slug to render, e.g. basics/variables"`
}

func (r *RenderCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	pages, err := newPageService(cfg)
	if err != nil {
		return err
	}

	name := r.Version
	if name == "" {
		name = pages.DefaultVersion().Name
	}

	ctx := context.Background()
	result, err := pages.Page(ctx, name, r.Path)
	if err != nil {
		return err
	}
	if result.RedirectTo != "" {
		// Aliases always point at a live page, so one hop resolves it.
		slug := strings.TrimPrefix(result.RedirectTo, pages.PagePath(name, ""))
		slog.Info("Following redirect", slog.String("from", r.Path), slog.String("to", slug))
		result, err = pages.Page(ctx, name, slug)
		if err != nil {
			return err
		}
	}

	_, err = os.Stdout.Write(result.HTML)
	return err
}
