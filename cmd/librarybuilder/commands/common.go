// Package commands implements the librarybuilder command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/librarybuilder/internal/config"
)

// Global is shared state passed to every command's Run.
type Global struct {
	Logger *slog.Logger
	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) stderr() io.Writer {
	if g == nil || g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}

// CLI definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"librarybuilder.yaml" env:"LIBRARYBUILDER_CONFIG" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve   ServeCmd   `cmd:"" help:"Serve the sign-in page, JSON API and admin endpoints"`
	Build   BuildCmd   `cmd:"" help:"Run one library build with the given credentials"`
	Signout SignoutCmd `cmd:"" help:"Forget the saved credentials"`
	History HistoryCmd `cmd:"" help:"List recent library build attempts"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the configuration file, falling back to defaults when it does
// not exist, and applies its logging section unless --verbose was given.
func (c *CLI) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(c.Config); os.IsNotExist(err) {
		slog.Debug("Configuration file not found, using defaults", "path", c.Config)
		cfg = config.Default()
	} else {
		loaded, err := config.Load(c.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if !c.Verbose {
		slog.SetDefault(slog.New(cfg.Logging.NewLogHandler(os.Stderr)))
	}
	return cfg, nil
}
