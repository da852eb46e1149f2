// Package event normalizes raw backend progress payloads from both
// transports into a single canonical event shape. All inference over the
// loosely-typed wire contract (optional field precedence, content-marker
// progress, free-text segment counters) lives here and nowhere else.
package event

import (
	"vidmatic/internal/phase"
)

// SegmentProgress is clip-level sub-progress within a job.
// Done > Total is passed through as received; clamping is a presentation
// concern, not a parser rejection.
type SegmentProgress struct {
	Done  int
	Total int
}

// FallbackDetail describes an automatic recovery/substitution for one
// segment. It accompanies a FALLBACK event and never advances the pipeline.
type FallbackDetail struct {
	Segment int
	Type    string
	Reason  string
}

// Normalized is the canonical, transport-agnostic progress event.
type Normalized struct {
	Phase     phase.Key
	Percent   int // 0..100, clamped
	StepLabel string
	Message   string

	Segments *SegmentProgress
	Fallback *FallbackDetail

	// Sticky side-data: retained by the session once observed.
	OutputLink  string
	Topic       string
	Title       string
	TopicReason string
	TopicAngle  string

	// FailureMessage is set on backend-reported failures.
	FailureMessage string
}

// Terminal reports whether the event ends the job.
func (n Normalized) Terminal() bool {
	return phase.IsTerminal(n.Phase)
}
