package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/librarybuilder/internal/config"
	"git.home.luguber.info/inful/librarybuilder/internal/logfields"
	"git.home.luguber.info/inful/librarybuilder/internal/metrics"
	"git.home.luguber.info/inful/librarybuilder/internal/refresh"
	"git.home.luguber.info/inful/librarybuilder/internal/server/httpserver"
)

const shutdownTimeout = 30 * time.Second

// newConfigWatcher is replaced in tests.
var newConfigWatcher = config.NewWatcher

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	NoWatch bool `name:"no-watch" help:"Do not reload the configuration file when it changes"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunServe(ctx, cfg, root.Config, !s.NoWatch)
}

// RunServe runs the HTTP servers, the refresh scheduler and the config watcher
// until ctx is cancelled.
func RunServe(ctx context.Context, cfg *config.Config, configPath string, watch bool) error {
	a, err := newApp(cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	deps := httpserver.Dependencies{
		Submitter: a.orchestrator,
		Sessions:  a.sessions,
		History:   a.history,
	}
	if a.registry != nil {
		deps.MetricsHandler = metrics.HTTPHandler(a.registry)
	}
	srv, err := httpserver.New(cfg, deps)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}
	stopped := false
	defer func() {
		if stopped {
			return
		}
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(stopCtx); err != nil {
			slog.Warn("Failed to stop http servers", logfields.Error(err))
		}
	}()

	if cfg.Refresh.Interval > 0 {
		sched, err := refresh.NewScheduler(a.orchestrator, a.sessions, slog.Default())
		if err != nil {
			return err
		}
		if _, err := sched.ScheduleEvery(cfg.Refresh.Interval.Std()); err != nil {
			return err
		}
		sched.Start(ctx)
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Failed to stop refresh scheduler", logfields.Error(err))
			}
		}()
	}

	if watch {
		if _, statErr := os.Stat(configPath); statErr == nil {
			w, err := newConfigWatcher(configPath, 0, func(_ context.Context, next *config.Config) {
				a.orchestrator.SetPersistCredentials(next.Session.PersistCredentials())
			})
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				_ = w.Stop()
				return err
			}
			defer func() { _ = w.Stop() }()
		}
	}

	slog.Info("librarybuilder serving, waiting for shutdown signal")
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping")

	stopped = true
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop http servers: %w", err)
	}
	return nil
}
