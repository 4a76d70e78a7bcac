// Package orchestrator drives a single library build submission from credential
// collection through the remote build to persistence, navigation or a user-visible
// failure notice.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/librarybuilder/internal/build"
	"git.home.luguber.info/inful/librarybuilder/internal/credentials"
	"git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/librarybuilder/internal/history"
	"git.home.luguber.info/inful/librarybuilder/internal/logfields"
	"git.home.luguber.info/inful/librarybuilder/internal/metrics"
	"git.home.luguber.info/inful/librarybuilder/internal/session"
)

// DefaultDestination is the view a successful build navigates to when none is configured.
const DefaultDestination = "/library"

// BusyMessage is shown when a submission arrives while a build is outstanding.
const BusyMessage = "A library build is already in progress"

// ErrBusy rejects overlapping submissions.
var ErrBusy = errors.BusyError(BusyMessage).Build()

// State is the terminal state a submission reached.
type State string

const (
	StateNavigated State = "navigated"
	StateFailed    State = "failed"
	StateFaulted   State = "faulted"
	StateRejected  State = "rejected"
)

// Submission is one user attempt. PreventDefault suppresses whatever the
// surrounding surface would otherwise do with it (for a form: a page reload).
type Submission interface {
	credentials.FieldSource
	PreventDefault()
}

// Navigator moves the user to a destination view.
type Navigator interface {
	Navigate(destination string)
}

// Notifier shows a blocking, user-visible message.
type Notifier interface {
	Notify(message string)
}

// View is the presentation side of a submission.
type View interface {
	Navigator
	Notifier
}

// Outcome describes what a submission did.
type Outcome struct {
	ID          string
	State       State
	Message     string
	Destination string
	AccountID   string
	StartedAt   time.Time
	Duration    time.Duration
	// Err is set for every state but StateNavigated. Failures carry a build
	// category error whose message is the builder's status text.
	Err error
}

// Succeeded reports whether the submission navigated to the destination.
func (o Outcome) Succeeded() bool { return o.State == StateNavigated }

// Config holds the orchestrator's fixed parameters.
type Config struct {
	Destination                 string
	PersistCredentialsOnSuccess bool
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithHistory records every outcome in h.
func WithHistory(h history.Store) Option {
	return func(o *Orchestrator) { o.history = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Orchestrator runs library build submissions. At most one build is outstanding
// at any time; it is safe for concurrent use.
type Orchestrator struct {
	builder     build.Builder
	store       session.Store
	destination string
	persist     atomic.Bool
	inFlight    atomic.Bool

	recorder metrics.Recorder
	history  history.Store
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an Orchestrator. store may be nil only when persistence is disabled
// for the lifetime of the orchestrator.
func New(builder build.Builder, store session.Store, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		builder:     builder,
		store:       store,
		destination: cfg.Destination,
		recorder:    metrics.NoopRecorder{},
		logger:      slog.Default(),
		now:         time.Now,
	}
	if o.destination == "" {
		o.destination = DefaultDestination
	}
	o.persist.Store(cfg.PersistCredentialsOnSuccess)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Destination returns the view successful submissions navigate to.
func (o *Orchestrator) Destination() string { return o.destination }

// PersistCredentials reports whether successful builds save their credentials.
func (o *Orchestrator) PersistCredentials() bool { return o.persist.Load() }

// SetPersistCredentials switches between persisting and navigate-only behavior.
// It applies to submissions that have not yet reached the success branch.
func (o *Orchestrator) SetPersistCredentials(enabled bool) {
	if o.persist.Swap(enabled) != enabled {
		o.logger.Info("Credential persistence changed", slog.Bool("persist_credentials_on_success", enabled))
	}
}

// Submit handles one submission. It never returns an error: every failure is
// reported through view and described by the returned Outcome.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission, view View) Outcome {
	sub.PreventDefault()

	out := Outcome{ID: uuid.NewString(), StartedAt: o.now()}

	if !o.inFlight.CompareAndSwap(false, true) {
		out.AccountID = sub.FormValue(credentials.FieldAccountID)
		out.State = StateRejected
		out.Message = BusyMessage
		out.Err = ErrBusy
		view.Notify(out.Message)
		return o.finish(ctx, out)
	}
	defer o.inFlight.Store(false)
	o.recorder.SetBuildInFlight(true)
	defer o.recorder.SetBuildInFlight(false)

	creds := credentials.Collect(sub)
	out.AccountID = creds.AccountID
	o.logger.Debug("Starting library build", logfields.SubmissionID(out.ID), logfields.AccountID(creds.AccountID))

	buildStart := o.now()
	result, err := o.runBuild(ctx, creds)
	o.recorder.ObserveBuildDuration(o.now().Sub(buildStart))

	switch {
	case err != nil:
		out.State = StateFaulted
		out.Message = errors.UserMessage(err)
		out.Err = err
		view.Notify(out.Message)
	case !result.Succeeded():
		out.State = StateFailed
		out.Message = result.Status
		out.Err = errors.BuildError(result.Status).
			WithContext("submission_id", out.ID).
			Build()
		view.Notify(out.Message)
	default:
		if o.persist.Load() {
			if perr := o.save(ctx, creds); perr != nil {
				out.State = StateFaulted
				out.Message = errors.UserMessage(perr)
				out.Err = perr
				view.Notify(out.Message)
				return o.finish(ctx, out)
			}
		}
		out.State = StateNavigated
		out.Destination = o.destination
		view.Navigate(o.destination)
	}
	return o.finish(ctx, out)
}

// ErrBuilderPanic reports a builder that panicked instead of returning.
var ErrBuilderPanic = errors.InternalError("the library builder failed unexpectedly").Build()

// runBuild invokes the builder once, turning a panic into ErrBuilderPanic.
func (o *Orchestrator) runBuild(ctx context.Context, creds credentials.Credentials) (result build.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.NewError(errors.CategoryInternal, ErrBuilderPanic.Message()).
				WithContext("panic", fmt.Sprint(rec)).
				Build()
		}
	}()
	return o.builder.Build(ctx, creds)
}

func (o *Orchestrator) save(ctx context.Context, creds credentials.Credentials) error {
	if o.store == nil {
		return errors.ConfigError("credential persistence enabled without a session store").Build()
	}
	err := session.Save(ctx, o.store, creds)
	o.recorder.IncSessionWrite(err == nil)
	return err
}

func (o *Orchestrator) finish(ctx context.Context, out Outcome) Outcome {
	out.Duration = o.now().Sub(out.StartedAt)
	o.recorder.IncBuildOutcome(metrics.OutcomeLabel(out.State))

	attrs := []any{
		logfields.SubmissionID(out.ID),
		logfields.AccountID(out.AccountID),
		logfields.Outcome(string(out.State)),
		logfields.Duration(out.Duration),
	}
	switch out.State {
	case StateNavigated:
		o.logger.Info("Library build succeeded", append(attrs, logfields.Destination(out.Destination))...)
	case StateFailed, StateRejected:
		o.logger.Info("Library build not completed", append(attrs, slog.String("message", out.Message))...)
	default:
		o.logger.Error("Library build faulted", append(attrs, logfields.Error(out.Err))...)
	}

	if o.history != nil {
		attempt := history.Attempt{
			ID:        out.ID,
			AccountID: out.AccountID,
			Outcome:   string(out.State),
			Message:   out.Message,
			StartedAt: out.StartedAt,
			Duration:  out.Duration,
		}
		if err := o.history.Record(context.WithoutCancel(ctx), attempt); err != nil {
			o.logger.Warn("Failed to record build attempt", logfields.SubmissionID(out.ID), logfields.Error(err))
		}
	}
	return out
}
