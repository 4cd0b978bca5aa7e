package commands

import (
	"context"

	"git.home.luguber.info/inful/docserve/internal/daemon"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct{}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	serveLogging(root, cfg)

	d, err := daemon.New(cfg, root.Config)
	if err != nil {
		return err
	}
	return d.Run(context.Background())
}
