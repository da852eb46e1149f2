// Package session holds the reconciled view of one tracked job. Events fold
// in strictly in arrival order; the visible phase never regresses on
// out-of-order or duplicate delivery, while sticky side-data (output link,
// segment counts, fallback log) is absorbed independently of phase order.
package session

import (
	"vidmatic/internal/event"
	"vidmatic/internal/logger"
	"vidmatic/internal/phase"
)

// State is the lifecycle of a tracked job.
type State int

const (
	Idle State = iota
	Submitting
	Tracking
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Tracking:
		return "tracking"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Session is the single-owner aggregate for one job. Not safe for concurrent
// use; the tracker owns it and hands out immutable Snapshots.
type Session struct {
	state State
	snap  Snapshot
}

// Snapshot is an immutable copy of the session's visible state.
type Snapshot struct {
	State   State
	JobID   string
	Phase   phase.Key
	Percent int

	StepLabel string
	Message   string

	Segments  *event.SegmentProgress
	Fallbacks []event.FallbackDetail

	ScheduleConfirmed bool
	OutputLink        string

	Topic       string
	Title       string
	TopicReason string
	TopicAngle  string

	FailureMessage string
}

// New returns an idle session.
func New() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Snapshot returns a copy of the current visible state. The fallback slice
// is copied so callers can hold snapshots across further folding.
func (s *Session) Snapshot() Snapshot {
	out := s.snap
	out.State = s.state
	if s.snap.Fallbacks != nil {
		out.Fallbacks = append([]event.FallbackDetail(nil), s.snap.Fallbacks...)
	}
	if s.snap.Segments != nil {
		seg := *s.snap.Segments
		out.Segments = &seg
	}
	return out
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Reset returns the session to Idle, discarding all accumulated data.
func (s *Session) Reset() {
	s.state = Idle
	s.snap = Snapshot{Phase: phase.Init, StepLabel: phase.Label(phase.Init)}
}

// BeginSubmit marks a job-creation request in flight.
func (s *Session) BeginSubmit() {
	s.Reset()
	s.state = Submitting
}

// SubmitFailed returns to Idle after a failed creation call; no job id ever
// existed, so nothing is retained.
func (s *Session) SubmitFailed() {
	s.Reset()
}

// Attach transitions to Tracking once a transport is delivering events for
// jobID. For streaming jobs jobID is a client-generated session id.
func (s *Session) Attach(jobID string) {
	s.snap.JobID = jobID
	s.state = Tracking
}

// TransportFailed ends the session on a transport-level error (network,
// non-2xx, missing credential). Prior progress stays inspectable. A session
// already terminal is left untouched: a connection dropping after COMPLETED
// does not demote a finished job.
func (s *Session) TransportFailed(err error) {
	if s.state == Completed || s.state == Failed {
		return
	}
	s.state = Failed
	if err != nil {
		s.snap.FailureMessage = err.Error()
	}
	s.snap.StepLabel = "Failed"
}

// Apply folds one normalized event into the session.
func (s *Session) Apply(n event.Normalized) {
	if s.state == Completed || s.state == Failed {
		// Terminal: no further phase movement, but a trailing output link
		// is still absorbed.
		s.absorbSticky(n)
		return
	}

	if n.Phase == phase.Fallback {
		if n.Fallback != nil {
			s.snap.Fallbacks = append(s.snap.Fallbacks, *n.Fallback)
		}
		s.absorbSticky(n)
		return
	}

	if n.Phase == phase.Error {
		// Terminal override from any ordinal. The phase keeps its last main
		// value so the view can show where the pipeline failed.
		s.absorbSticky(n)
		s.state = Failed
		s.snap.StepLabel = "Failed"
		if n.FailureMessage != "" {
			s.snap.FailureMessage = n.FailureMessage
		} else if n.Message != "" {
			s.snap.FailureMessage = n.Message
		}
		return
	}

	newOrd := phase.Ordinal(n.Phase)
	curOrd := phase.Ordinal(s.snap.Phase)
	switch {
	case newOrd == -1:
		// Unknown phase: opaque, non-advancing.
		logger.Warn().Str("phase", string(n.Phase)).Msg("ignoring unknown phase")
	case newOrd >= curOrd:
		s.snap.Phase = n.Phase
		if n.StepLabel != "" {
			s.snap.StepLabel = n.StepLabel
		}
		s.snap.Message = n.Message
	default:
		// Stale or replayed earlier phase: keep the visible phase, but
		// sticky fields below are still absorbed.
	}

	if n.Phase == phase.VideoScheduled {
		s.snap.ScheduleConfirmed = true
	}
	if n.Percent > s.snap.Percent {
		s.snap.Percent = n.Percent
	}
	s.absorbSticky(n)

	if n.Phase == phase.Completed {
		s.state = Completed
		s.snap.Percent = 100
	}
}

// absorbSticky takes fields that are retained once observed, independent of
// phase ordering.
func (s *Session) absorbSticky(n event.Normalized) {
	if n.OutputLink != "" {
		s.snap.OutputLink = n.OutputLink
	}
	if n.Topic != "" {
		s.snap.Topic = n.Topic
	}
	if n.Title != "" {
		s.snap.Title = n.Title
	}
	if n.TopicReason != "" {
		s.snap.TopicReason = n.TopicReason
	}
	if n.TopicAngle != "" {
		s.snap.TopicAngle = n.TopicAngle
	}
	if n.Segments != nil {
		if s.snap.Segments == nil || n.Segments.Done >= s.snap.Segments.Done {
			seg := *n.Segments
			s.snap.Segments = &seg
		}
	}
}
