package commands

import (
	"git.home.luguber.info/inful/benchsync/internal/config"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	Destination string `help:"Documentation directory to audit" placeholder:"DIR"`
	Strict      bool   `help:"Exit non-zero when broken links are found"`
}

func (v *VerifyCmd) Run(g *Global, root *CLI) error {
	cfg, rootDir, err := root.Load(g, func(cfg *config.Config) {
		if v.Destination != "" {
			cfg.Destination = v.Destination
		}
	})
	if err != nil {
		return err
	}
	return VerifyIndex(g.Stdout, config.Resolve(rootDir, cfg.Destination), v.Strict)
}
