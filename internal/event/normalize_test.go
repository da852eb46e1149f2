package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidmatic/internal/api"
	"vidmatic/internal/phase"
)

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func TestFromJob_PercentPrecedence(t *testing.T) {
	tests := []struct {
		name string
		job  api.LongVideoJob
		want int
	}{
		{
			name: "progressPct preferred over progress",
			job:  api.LongVideoJob{Status: "running", ProgressPct: floatp(55), Progress: floatp(20)},
			want: 55,
		},
		{
			name: "progress used when progressPct absent",
			job:  api.LongVideoJob{Status: "running", Progress: floatp(33)},
			want: 33,
		},
		{
			name: "meta.progressPct used when top-level fields absent",
			job:  api.LongVideoJob{Status: "running", Meta: &api.JobMeta{ProgressPct: floatp(47)}},
			want: 47,
		},
		{
			name: "meta markers win over an explicit zero",
			job: api.LongVideoJob{
				Status:      "running",
				ProgressPct: floatp(0),
				Meta:        &api.JobMeta{Title: "X"},
			},
			want: 18,
		},
		{
			name: "clamped above 100",
			job:  api.LongVideoJob{Status: "running", ProgressPct: floatp(140)},
			want: 100,
		},
		{
			name: "clamped below 0",
			job:  api.LongVideoJob{Status: "running", ProgressPct: floatp(-3)},
			want: 0,
		},
		{
			name: "final video url forces 100 over any numeric field",
			job:  api.LongVideoJob{Status: "running", ProgressPct: floatp(12), FinalVideoURL: "https://cdn/x.mp4"},
			want: 100,
		},
		{
			name: "completed status forces 100",
			job:  api.LongVideoJob{Status: "completed", ProgressPct: floatp(73)},
			want: 100,
		},
		{
			name: "queued maps to 1",
			job:  api.LongVideoJob{Status: "queued"},
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromJob(tt.job).Percent)
		})
	}
}

func TestFromJob_MetaMarkers(t *testing.T) {
	timeline := json.RawMessage(`{"tracks":[]}`)
	tests := []struct {
		name string
		meta *api.JobMeta
		want int
	}{
		{"timeline", &api.JobMeta{Timeline: timeline}, 40},
		{"script segments", &api.JobMeta{Script: &api.Script{Segments: []api.ScriptSegment{{Text: "a"}}}}, 18},
		{"title only", &api.JobMeta{Title: "t"}, 18},
		{"topics only", &api.JobMeta{Topics: []string{"a", "b"}}, 8},
		{"nothing", &api.JobMeta{}, 0},
		{"explicit null timeline counts as absent", &api.JobMeta{Timeline: json.RawMessage(`null`)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := FromJob(api.LongVideoJob{Status: "running", Meta: tt.meta})
			assert.Equal(t, tt.want, n.Percent)
		})
	}
}

func TestFromJob_PhaseMapping(t *testing.T) {
	assert.Equal(t, phase.Init, FromJob(api.LongVideoJob{Status: "queued"}).Phase)
	assert.Equal(t, phase.Completed, FromJob(api.LongVideoJob{Status: "completed"}).Phase)
	assert.Equal(t, phase.Error, FromJob(api.LongVideoJob{Status: "failed"}).Phase)

	running := FromJob(api.LongVideoJob{
		Status: "running",
		Meta:   &api.JobMeta{Timeline: json.RawMessage(`[]`)},
	})
	assert.Equal(t, phase.AssemblingVideo, running.Phase)

	// Unknown statuses pass through opaquely; ordinal -1 means no advancement.
	odd := FromJob(api.LongVideoJob{Status: "paused"})
	assert.Equal(t, phase.Key("PAUSED"), odd.Phase)
	assert.Equal(t, -1, phase.Ordinal(odd.Phase))
}

func TestFromJob_NullTimelineDoesNotAdvance(t *testing.T) {
	var job api.LongVideoJob
	require.NoError(t, json.Unmarshal([]byte(`{"status":"running","meta":{"timeline":null}}`), &job))

	n := FromJob(job)
	assert.Equal(t, phase.Init, n.Phase)
	assert.Equal(t, 0, n.Percent)
}

func TestFromJob_StepLabels(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{1, "Queued and initializing"},
		{11, "Queued and initializing"},
		{12, "Presenter + context prep"},
		{50, "Rendering segments"},
		{71, "Rendering segments"},
		{72, "Concatenating segments"},
		{96, "Final export"},
		{99, "Final export"},
	}
	for _, tt := range tests {
		n := FromJob(api.LongVideoJob{Status: "running", ProgressPct: floatp(tt.pct)})
		assert.Equal(t, tt.want, n.StepLabel, "pct=%v", tt.pct)
	}
}

func TestFromJob_StepLabelVisualPlanBreakdown(t *testing.T) {
	seg := json.RawMessage(`{}`)
	n := FromJob(api.LongVideoJob{
		Status:      "running",
		ProgressPct: floatp(50),
		Meta: &api.JobMeta{
			VisualPlan: &api.VisualPlan{
				PresenterSegments: []json.RawMessage{seg, seg},
				ImageSegments:     []json.RawMessage{seg, seg, seg},
			},
		},
	})
	assert.Equal(t, "Rendering segments (Presenter 2 / Images 3)", n.StepLabel)
}

func TestFromJob_TerminalLabelsAndFailure(t *testing.T) {
	done := FromJob(api.LongVideoJob{Status: "completed"})
	assert.Equal(t, "Completed", done.StepLabel)

	failed := FromJob(api.LongVideoJob{Status: "failed", Error: "render timeout"})
	assert.Equal(t, "Failed", failed.StepLabel)
	assert.Equal(t, "render timeout", failed.FailureMessage)

	queued := FromJob(api.LongVideoJob{Status: "queued"})
	assert.Equal(t, "Queued", queued.StepLabel)
}

func TestFromStream_SegmentPercent(t *testing.T) {
	n := FromStream(api.StreamEvent{
		Phase: "GENERATING_CLIPS",
		Extra: api.StreamExtra{Done: intp(1), Total: intp(4)},
	})
	require.NotNil(t, n.Segments)
	assert.Equal(t, 1, n.Segments.Done)
	assert.Equal(t, 4, n.Segments.Total)
	assert.Equal(t, 25, n.Percent)
}

func TestFromStream_CompletedForces100(t *testing.T) {
	n := FromStream(api.StreamEvent{
		Phase: "COMPLETED",
		Extra: api.StreamExtra{YoutubeLink: "https://youtu.be/abc"},
	})
	assert.Equal(t, 100, n.Percent)
	assert.Equal(t, "https://youtu.be/abc", n.OutputLink)
	assert.True(t, n.Terminal())
}

func TestFromStream_ReplayRecoversOutputLink(t *testing.T) {
	n := FromStream(api.StreamEvent{
		Phase: "COMPLETED",
		Extra: api.StreamExtra{
			Phases: []api.StreamEvent{
				{Phase: "VIDEO_UPLOADED", Extra: api.StreamExtra{YoutubeLink: "https://youtu.be/old"}},
			},
		},
	})
	assert.Equal(t, "https://youtu.be/old", n.OutputLink)
}

func TestFromStream_FallbackDetail(t *testing.T) {
	n := FromStream(api.StreamEvent{
		Phase: "FALLBACK",
		Extra: api.StreamExtra{Segment: intp(2), Type: "image", Reason: "provider timeout"},
	})
	require.NotNil(t, n.Fallback)
	assert.Equal(t, 2, n.Fallback.Segment)
	assert.Equal(t, "provider timeout", n.Fallback.Reason)
	assert.Equal(t, -1, phase.Ordinal(n.Phase))
}

func TestFromStream_ErrorEvent(t *testing.T) {
	n := FromStream(api.StreamEvent{
		Phase: "ERROR",
		Extra: api.StreamExtra{Msg: "voice synthesis failed"},
	})
	assert.True(t, n.Terminal())
	assert.Equal(t, "voice synthesis failed", n.FailureMessage)
}

func TestParseSegmentProgress(t *testing.T) {
	tests := []struct {
		name  string
		extra api.StreamExtra
		want  *SegmentProgress
	}{
		{
			name:  "explicit fields preferred",
			extra: api.StreamExtra{Done: intp(2), Total: intp(5), Msg: "segment 9/9"},
			want:  &SegmentProgress{Done: 2, Total: 5},
		},
		{
			name:  "parsed from message",
			extra: api.StreamExtra{Msg: "Rendering segment 3/6"},
			want:  &SegmentProgress{Done: 3, Total: 6},
		},
		{
			name:  "case insensitive with spaces",
			extra: api.StreamExtra{Msg: "SEGMENT 2 / 4 underway"},
			want:  &SegmentProgress{Done: 2, Total: 4},
		},
		{
			name:  "done greater than total passes through",
			extra: api.StreamExtra{Msg: "segment 10/4"},
			want:  &SegmentProgress{Done: 10, Total: 4},
		},
		{
			name:  "zero total rejected",
			extra: api.StreamExtra{Done: intp(3), Total: intp(0)},
			want:  nil,
		},
		{
			name:  "no counters",
			extra: api.StreamExtra{Msg: "warming up"},
			want:  nil,
		},
		{
			name:  "overflowing counter rejected",
			extra: api.StreamExtra{Msg: "segment 99999999999999999999/4"},
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSegmentProgress(tt.extra))
		})
	}
}
