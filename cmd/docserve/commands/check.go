package commands

import (
	"context"
	"fmt"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Fetch bool `help:"Also fetch and parse the table of contents for every version"`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		fmt.Printf("Configuration %s: INVALID\n", root.Config)
		return err
	}

	fmt.Printf("Configuration %s: OK\n", root.Config)
	fmt.Printf("  source: %s\n", cfg.Source.Kind)
	fmt.Printf("  versions: %d (default %s)\n", len(cfg.Versions.List), cfg.Versions.DefaultVersion())

	if !c.Fetch {
		return nil
	}

	pages, err := newPageService(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, ver := range pages.Versions() {
		flat, err := pages.PageList(ctx, ver.Name)
		if err != nil {
			fmt.Printf("  %s: FAILED\n", ver.Name)
			return err
		}
		fmt.Printf("  %s: %d pages, %d redirects\n", ver.Name, len(flat.Pages), len(flat.Redirects))
	}
	return nil
}
