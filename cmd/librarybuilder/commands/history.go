package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/librarybuilder/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int  `short:"n" help:"Number of attempts to show" default:"20"`
	JSON  bool `name:"json" help:"Print attempts as JSON"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	store, err := history.NewSQLiteStore(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return PrintHistory(context.Background(), store, h.Limit, h.JSON, g.stdout())
}

// PrintHistory writes up to limit recent attempts to w, newest first.
func PrintHistory(ctx context.Context, store history.Store, limit int, asJSON bool, w io.Writer) error {
	attempts, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if asJSON {
		if attempts == nil {
			attempts = []history.Attempt{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(attempts)
	}
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No build attempts recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tSTEAM ID\tOUTCOME\tDURATION\tMESSAGE")
	for _, a := range attempts {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.StartedAt.Local().Format(time.DateTime),
			a.AccountID,
			a.Outcome,
			a.Duration.Round(time.Millisecond),
			a.Message)
	}
	return tw.Flush()
}
