package metrics

import "time"

// OutcomeLabel enumerates terminal outcomes of a submission.
type OutcomeLabel string

const (
	OutcomeNavigated OutcomeLabel = "navigated" // build succeeded, user navigated
	OutcomeFailed    OutcomeLabel = "failed"    // builder reported a failure status
	OutcomeFaulted   OutcomeLabel = "faulted"   // builder call or persistence failed
	OutcomeRejected  OutcomeLabel = "rejected"  // another build was in flight
)

// Recorder defines observability hooks for library build submissions.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome OutcomeLabel)
	IncSessionWrite(success bool)
	SetBuildInFlight(inFlight bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(OutcomeLabel)       {}
func (NoopRecorder) IncSessionWrite(bool)               {}
func (NoopRecorder) SetBuildInFlight(bool)              {}
