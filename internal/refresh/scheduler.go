// Package refresh periodically rebuilds the library from the saved session so the
// destination view stays current without the user signing in again.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/librarybuilder/internal/credentials"
	"git.home.luguber.info/inful/librarybuilder/internal/logfields"
	"git.home.luguber.info/inful/librarybuilder/internal/orchestrator"
	"git.home.luguber.info/inful/librarybuilder/internal/session"
)

// Submitter runs a submission; *orchestrator.Orchestrator satisfies it.
type Submitter interface {
	Submit(ctx context.Context, sub orchestrator.Submission, view orchestrator.View) orchestrator.Outcome
}

// Scheduler wraps a gocron scheduler running library refreshes.
type Scheduler struct {
	scheduler gocron.Scheduler
	submitter Submitter
	store     session.Store
	logger    *slog.Logger

	mu  sync.RWMutex
	ctx context.Context
}

// NewScheduler creates a scheduler that submits the credentials held in store.
func NewScheduler(submitter Submitter, store session.Store, logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: s,
		submitter: submitter,
		store:     store,
		logger:    logger,
		ctx:       context.Background(),
	}, nil
}

// Start begins running scheduled jobs. ctx is passed to every refresh.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.logger.Info("Starting refresh scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for a running refresh to finish.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping refresh scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleEvery registers a refresh every interval and returns the job id.
// A refresh still running when the next one is due causes that run to be skipped.
func (s *Scheduler) ScheduleEvery(interval time.Duration) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("refresh interval must be positive, got %s", interval)
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.execute),
		gocron.WithName("library-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create refresh job: %w", err)
	}
	return job.ID().String(), nil
}

func (s *Scheduler) execute() {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if _, _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("Library refresh failed", logfields.Error(err))
	}
}

// RunOnce submits the saved session, if any. ran is false when no session is saved.
func (s *Scheduler) RunOnce(ctx context.Context) (out orchestrator.Outcome, ran bool, err error) {
	creds, ok, err := session.Load(ctx, s.store)
	if err != nil {
		return orchestrator.Outcome{}, false, err
	}
	if !ok {
		s.logger.Debug("No saved session, skipping library refresh")
		return orchestrator.Outcome{}, false, nil
	}
	s.logger.Info("Refreshing library", logfields.AccountID(creds.AccountID))
	out = s.submitter.Submit(ctx, savedSubmission{creds.Values()}, logView{logger: s.logger})
	return out, true, nil
}

type savedSubmission struct {
	credentials.Values
}

func (savedSubmission) PreventDefault() {}

// logView reports refresh results to the log; there is no user to show them to.
type logView struct {
	logger *slog.Logger
}

func (v logView) Navigate(destination string) {
	v.logger.Info("Library refreshed", logfields.Destination(destination))
}

func (v logView) Notify(message string) {
	v.logger.Warn("Library refresh not completed", slog.String("message", message))
}
