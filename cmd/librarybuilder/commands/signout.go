package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/librarybuilder/internal/session"
)

// SignoutCmd implements the 'signout' command.
type SignoutCmd struct{}

func (s *SignoutCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	store, err := session.NewSQLiteStore(cfg.Session.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := session.Clear(context.Background(), store); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.stdout(), "Signed out")
	return nil
}
