package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"git.home.luguber.info/inful/librarybuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Directory to write librarybuilder.yaml into (defaults to --config)"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := root.Config
	if i.Output != "" {
		path = filepath.Join(i.Output, config.DefaultPath)
	}
	return RunInit(path, i.Force, g.stdout())
}

// RunInit writes an example configuration to configPath.
func RunInit(configPath string, force bool, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, "Initialized successfully")
	return nil
}
