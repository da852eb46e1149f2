// Package render derives the progress view from a session snapshot. It is a
// pure mapping with no state of its own: every UI (TUI, plain text) renders
// from the same Model so both transports look identical on screen.
package render

import (
	"vidmatic/internal/event"
	"vidmatic/internal/phase"
	"vidmatic/internal/session"
)

// StepStatus is the visual state of one stepper row.
type StepStatus int

const (
	Wait StepStatus = iota
	Process
	Finish
	Skipped
	Error
)

func (s StepStatus) String() string {
	switch s {
	case Wait:
		return "wait"
	case Process:
		return "process"
	case Finish:
		return "finish"
	case Skipped:
		return "skipped"
	case Error:
		return "error"
	}
	return "unknown"
}

// Step is one row of the pipeline stepper.
type Step struct {
	Key    phase.Key
	Label  string
	Status StepStatus
	// Detail is the backend's free-text message, shown on the active row.
	Detail string
}

// SegmentView is the clip mini-stepper. Done is clamped into [0, Total] for
// display; Active is the 1-based index of the sub-step currently in flight.
type SegmentView struct {
	Done   int
	Total  int
	Active int
}

// Model is everything a view needs to draw one update.
type Model struct {
	State     session.State
	JobID     string
	Steps     []Step
	Percent   int
	Banner    string
	Segments  *SegmentView
	Fallbacks []event.FallbackDetail

	Topic       string
	Title       string
	TopicReason string
	TopicAngle  string

	OutputLink     string
	FailureMessage string
	RecoveryHint   string
}

// recoveryHint is the fixed guidance shown with every failure view.
const recoveryHint = "Generation failed. You can safely start a new job; if this keeps happening, contact support."

// FromSnapshot derives the render model.
func FromSnapshot(s session.Snapshot) Model {
	m := Model{
		State:       s.State,
		JobID:       s.JobID,
		Percent:     s.Percent,
		Banner:      s.StepLabel,
		Fallbacks:   s.Fallbacks,
		Topic:       s.Topic,
		Title:       s.Title,
		TopicReason: s.TopicReason,
		TopicAngle:  s.TopicAngle,
		OutputLink:  s.OutputLink,
	}

	cur := phase.Ordinal(s.Phase)
	for i, d := range phase.Defs {
		st := Step{Key: d.Key, Label: d.Label}
		switch {
		case i < cur || s.State == session.Completed:
			st.Status = Finish
			if d.Key == phase.VideoScheduled && s.State == session.Completed && !s.ScheduleConfirmed {
				// Completed without ever confirming a schedule: the step was
				// bypassed, which is distinct from having finished it.
				st.Status = Skipped
			}
		case i == cur && s.State == session.Failed:
			st.Status = Error
		case i == cur && s.State == session.Tracking:
			st.Status = Process
			st.Detail = s.Message
		default:
			st.Status = Wait
		}
		m.Steps = append(m.Steps, st)
	}

	if s.Segments != nil && s.Segments.Total >= 1 {
		m.Segments = segmentView(*s.Segments)
	}

	if s.State == session.Failed {
		m.FailureMessage = s.FailureMessage
		m.RecoveryHint = recoveryHint
	}
	return m
}

// segmentView clamps the counter for display and picks the active sub-step:
// the highest done step plus one, capped at the total.
func segmentView(sp event.SegmentProgress) *SegmentView {
	done := sp.Done
	if done < 0 {
		done = 0
	}
	if done > sp.Total {
		done = sp.Total
	}
	active := done
	if done < sp.Total {
		active = done + 1
	}
	return &SegmentView{Done: done, Total: sp.Total, Active: active}
}
