package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/librarybuilder/internal/build"
	"git.home.luguber.info/inful/librarybuilder/internal/build/httpbuilder"
	"git.home.luguber.info/inful/librarybuilder/internal/build/natsbuilder"
	"git.home.luguber.info/inful/librarybuilder/internal/config"
	"git.home.luguber.info/inful/librarybuilder/internal/history"
	"git.home.luguber.info/inful/librarybuilder/internal/logfields"
	"git.home.luguber.info/inful/librarybuilder/internal/metrics"
	"git.home.luguber.info/inful/librarybuilder/internal/orchestrator"
	"git.home.luguber.info/inful/librarybuilder/internal/session"
)

// app holds the services shared by the serve and build commands.
type app struct {
	cfg          *config.Config
	sessions     *session.SQLiteStore
	history      *history.SQLiteStore
	registry     *prom.Registry
	orchestrator *orchestrator.Orchestrator
	closers      []func() error
}

// newApp opens the stores, connects the builder and assembles the orchestrator.
// builder overrides the configured transport when non-nil.
func newApp(cfg *config.Config, builder build.Builder) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if a.sessions, err = session.NewSQLiteStore(cfg.Session.DBPath); err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	a.closers = append(a.closers, a.sessions.Close)

	if a.history, err = history.NewSQLiteStore(cfg.History.DBPath); err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	a.closers = append(a.closers, a.history.Close)

	if builder == nil {
		if builder, err = a.connectBuilder(); err != nil {
			return nil, err
		}
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Enabled {
		a.registry = metrics.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(a.registry)
	}

	a.orchestrator = orchestrator.New(builder, a.sessions, orchestrator.Config{
		Destination:                 cfg.Navigation.Destination,
		PersistCredentialsOnSuccess: cfg.Session.PersistCredentials(),
	},
		orchestrator.WithRecorder(recorder),
		orchestrator.WithHistory(a.history),
	)
	return a, nil
}

func (a *app) connectBuilder() (build.Builder, error) {
	bc := a.cfg.Builder
	slog.Info("Configuring library builder", logfields.Transport(string(bc.Transport)), logfields.Endpoint(bc.URL))
	switch bc.Transport {
	case config.TransportNATS:
		var opts []nats.Option
		if bc.Token != "" {
			opts = append(opts, nats.Token(bc.Token))
		}
		client, conn, err := natsbuilder.Connect(bc.URL, bc.Subject, bc.Timeout.Std(), opts...)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Drain)
		return client, nil
	default:
		opts := []httpbuilder.Option{httpbuilder.WithTimeout(bc.Timeout.Std())}
		if bc.Token != "" {
			opts = append(opts, httpbuilder.WithToken(bc.Token))
		}
		client, err := httpbuilder.New(bc.URL, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
