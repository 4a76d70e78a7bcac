package main

import (
	stderrors "errors"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/librarybuilder/cmd/librarybuilder/commands"
	"git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/librarybuilder/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{}
	ctx := kong.Parse(&cli,
		kong.Name("librarybuilder"),
		kong.Description("Build a personal game library from Steam and SteamGridDB credentials."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	err := ctx.Run(global, &cli)
	if err == nil {
		return
	}
	adapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
	var reported *commands.ReportedError
	if stderrors.As(err, &reported) {
		os.Exit(adapter.ExitCodeFor(err))
	}
	adapter.HandleError(err)
}
