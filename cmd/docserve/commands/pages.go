package commands

import (
	"context"
	"fmt"
	"sort"
)

// PagesCmd implements the 'pages' command.
type PagesCmd struct {
	Version   string `help:"Manual version to list (default: the default version)"`
	Redirects bool   `help:"Also print the redirect map"`
}

func (p *PagesCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	pages, err := newPageService(cfg)
	if err != nil {
		return err
	}

	name := p.Version
	if name == "" {
		name = pages.DefaultVersion().Name
	}

	flat, err := pages.PageList(context.Background(), name)
	if err != nil {
		return err
	}

	for _, page := range flat.Pages {
		fmt.Printf("%s\t%s\n", page.Path, page.Name)
	}

	if p.Redirects {
		aliases := make([]string, 0, len(flat.Redirects))
		for alias := range flat.Redirects {
			aliases = append(aliases, alias)
		}
		sort.Strings(aliases)
		for _, alias := range aliases {
			fmt.Printf("%s\t-> %s\n", alias, flat.Redirects[alias])
		}
	}
	return nil
}
