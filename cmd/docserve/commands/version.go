package commands

import (
	"fmt"

	"git.home.luguber.info/inful/docserve/internal/version"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (v *VersionCmd) Run(_ *Global, _ *CLI) error {
	fmt.Printf("docserve %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	return nil
}
