package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidmatic/internal/event"
	"vidmatic/internal/phase"
	"vidmatic/internal/session"
)

func stepByKey(t *testing.T, m Model, k phase.Key) Step {
	t.Helper()
	for _, s := range m.Steps {
		if s.Key == k {
			return s
		}
	}
	t.Fatalf("no step for %s", k)
	return Step{}
}

func TestStepStatuses_MidPipeline(t *testing.T) {
	m := FromSnapshot(session.Snapshot{
		State:   session.Tracking,
		Phase:   phase.AssemblingVideo,
		Message: "stitching clips",
	})

	assert.Equal(t, Finish, stepByKey(t, m, phase.Init).Status)
	assert.Equal(t, Finish, stepByKey(t, m, phase.GeneratingClips).Status)

	active := stepByKey(t, m, phase.AssemblingVideo)
	assert.Equal(t, Process, active.Status)
	assert.Equal(t, "stitching clips", active.Detail)

	assert.Equal(t, Wait, stepByKey(t, m, phase.AddingVoice).Status)
	assert.Equal(t, Wait, stepByKey(t, m, phase.Completed).Status)
}

func TestStepStatuses_CompletedMarksAllFinished(t *testing.T) {
	m := FromSnapshot(session.Snapshot{
		State:             session.Completed,
		Phase:             phase.Completed,
		ScheduleConfirmed: true,
	})
	for _, s := range m.Steps {
		assert.Equal(t, Finish, s.Status, "step %s", s.Key)
	}
}

func TestScheduleStepSkippedWhenNeverConfirmed(t *testing.T) {
	m := FromSnapshot(session.Snapshot{
		State: session.Completed,
		Phase: phase.Completed,
	})
	assert.Equal(t, Skipped, stepByKey(t, m, phase.VideoScheduled).Status)
	assert.Equal(t, Finish, stepByKey(t, m, phase.VideoUploaded).Status)
}

func TestFailureView(t *testing.T) {
	m := FromSnapshot(session.Snapshot{
		State:          session.Failed,
		Phase:          phase.SyncingVoice,
		FailureMessage: "render timeout",
	})

	assert.Equal(t, Error, stepByKey(t, m, phase.SyncingVoice).Status)
	assert.Equal(t, Finish, stepByKey(t, m, phase.AddingVoice).Status)
	assert.Equal(t, Wait, stepByKey(t, m, phase.VideoUploaded).Status)
	assert.Equal(t, "render timeout", m.FailureMessage)
	assert.NotEmpty(t, m.RecoveryHint)
}

func TestSegmentView(t *testing.T) {
	tests := []struct {
		name       string
		seg        event.SegmentProgress
		wantActive int
		wantDone   int
	}{
		{"mid progress activates next", event.SegmentProgress{Done: 1, Total: 4}, 2, 1},
		{"all done stays on last", event.SegmentProgress{Done: 4, Total: 4}, 4, 4},
		{"zero done activates first", event.SegmentProgress{Done: 0, Total: 3}, 1, 0},
		{"done above total clamped", event.SegmentProgress{Done: 10, Total: 4}, 4, 4},
		{"negative done clamped", event.SegmentProgress{Done: -2, Total: 3}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromSnapshot(session.Snapshot{
				State:    session.Tracking,
				Phase:    phase.GeneratingClips,
				Segments: &tt.seg,
			})
			require.NotNil(t, m.Segments)
			assert.Equal(t, tt.wantActive, m.Segments.Active)
			assert.Equal(t, tt.wantDone, m.Segments.Done)
			assert.Equal(t, tt.seg.Total, m.Segments.Total)
		})
	}
}

func TestNoSegmentViewWithoutCounts(t *testing.T) {
	m := FromSnapshot(session.Snapshot{State: session.Tracking, Phase: phase.Init})
	assert.Nil(t, m.Segments)
}

func TestFallbacksPreservedInOrder(t *testing.T) {
	m := FromSnapshot(session.Snapshot{
		State: session.Tracking,
		Phase: phase.GeneratingClips,
		Fallbacks: []event.FallbackDetail{
			{Segment: 3, Reason: "provider timeout"},
			{Segment: 1, Reason: "nsfw filter"},
			{Segment: 3, Reason: "provider timeout"},
		},
	})
	require.Len(t, m.Fallbacks, 3)
	assert.Equal(t, 3, m.Fallbacks[0].Segment)
	assert.Equal(t, 1, m.Fallbacks[1].Segment)
}

func TestOutputLinkAlwaysRenderedWhenSticky(t *testing.T) {
	m := FromSnapshot(session.Snapshot{
		State:      session.Completed,
		Phase:      phase.Completed,
		OutputLink: "https://youtu.be/abc",
	})
	assert.Equal(t, "https://youtu.be/abc", m.OutputLink)
}
