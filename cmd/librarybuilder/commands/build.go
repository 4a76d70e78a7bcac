package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/librarybuilder/internal/build"
	"git.home.luguber.info/inful/librarybuilder/internal/config"
	"git.home.luguber.info/inful/librarybuilder/internal/credentials"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SteamID         string `name:"steam-id" help:"Steam account id" env:"STEAM_ID"`
	SteamAPIKey     string `name:"steam-api-key" help:"Steam Web API key" env:"STEAM_API_KEY"`
	SteamGridAPIKey string `name:"steam-grid-api-key" help:"SteamGridDB API key" env:"STEAM_GRID_API_KEY"`
	NoPersist       bool   `name:"no-persist" help:"Do not save the credentials even if the build succeeds"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if b.NoPersist {
		persist := false
		cfg.Session.PersistCredentialsOnSuccess = &persist
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunBuild(ctx, cfg, nil, b.values(), g.stdout(), g.stderr())
}

func (b *BuildCmd) values() credentials.Values {
	return credentials.Values{
		credentials.FieldAccountID:       b.SteamID,
		credentials.FieldPrimaryAPIKey:   b.SteamAPIKey,
		credentials.FieldSecondaryAPIKey: b.SteamGridAPIKey,
	}
}

// RunBuild submits values once. The destination is printed to stdout on success;
// any notice goes to stderr and the outcome's error is returned for the exit code.
// builder overrides the configured transport when non-nil.
func RunBuild(ctx context.Context, cfg *config.Config, builder build.Builder, values credentials.Values, stdout, stderr io.Writer) error {
	a, err := newApp(cfg, builder)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	out := a.orchestrator.Submit(ctx, cliSubmission{values}, cliView{stdout: stdout, stderr: stderr})
	if out.Succeeded() {
		return nil
	}
	return &ReportedError{Err: out.Err}
}

// ReportedError wraps an error whose message has already been shown to the user.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }
func (e *ReportedError) Unwrap() error { return e.Err }

type cliSubmission struct {
	credentials.Values
}

func (cliSubmission) PreventDefault() {}

type cliView struct {
	stdout io.Writer
	stderr io.Writer
}

func (v cliView) Navigate(destination string) { _, _ = fmt.Fprintln(v.stdout, destination) }
func (v cliView) Notify(message string)       { _, _ = fmt.Fprintln(v.stderr, message) }
