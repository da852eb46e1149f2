package event

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"vidmatic/internal/api"
	"vidmatic/internal/phase"
)

// Backend statuses on the polled long-form resource.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// stepLabels maps a progress percentage to the pipeline step the backend is
// most likely in. Rows are ordered by threshold; the highest row whose
// threshold is <= the percentage wins.
var stepLabels = []struct {
	min   int
	label string
}{
	{1, "Queued and initializing"},
	{12, "Presenter + context prep"},
	{18, "Script + SEO plan"},
	{40, "Audio timing + visual plan"},
	{50, "Rendering segments"},
	{72, "Concatenating segments"},
	{84, "Finalizing visuals"},
	{92, "Mixing music"},
	{96, "Final export"},
}

// segmentRe tolerates the backend's free-text segment counters,
// e.g. "Rendering segment 3/6" or "SEGMENT 2 / 4 done".
var segmentRe = regexp.MustCompile(`(?i)segment\s+(\d+)\s*/\s*(\d+)`)

// FromStream normalizes one record of the short-form streaming feed.
func FromStream(ev api.StreamEvent) Normalized {
	key := phase.Key(ev.Phase)
	n := Normalized{
		Phase:      key,
		StepLabel:  phase.Label(key),
		Message:    ev.Extra.Msg,
		Segments:   ParseSegmentProgress(ev.Extra),
		OutputLink: ev.Extra.YoutubeLink,
	}

	// A replayed history may carry side-data that arrived before we attached.
	if n.OutputLink == "" {
		for _, prev := range ev.Extra.Phases {
			if prev.Extra.YoutubeLink != "" {
				n.OutputLink = prev.Extra.YoutubeLink
				break
			}
		}
	}

	switch {
	case key == phase.Error:
		n.StepLabel = "Failed"
		n.FailureMessage = ev.Extra.Msg
	case key == phase.Completed || n.OutputLink != "":
		n.Percent = 100
	case n.Segments != nil && n.Segments.Total > 0:
		n.Percent = clampPercent(float64(n.Segments.Done) / float64(n.Segments.Total) * 100)
	}

	if key == phase.Fallback {
		n.Fallback = fallbackDetail(ev.Extra)
	}
	return n
}

// FromJob normalizes the polled long-form job resource.
func FromJob(job api.LongVideoJob) Normalized {
	status := strings.ToLower(strings.TrimSpace(job.Status))
	link := outputLink(job)

	pct, explicit := explicitPercent(job)
	if !explicit || (pct <= 0 && progressFromMeta(status, job.Meta) > 0) {
		pct = float64(progressFromMeta(status, job.Meta))
	}
	percent := clampPercent(pct)
	if link != "" || status == StatusCompleted {
		percent = 100
	}

	n := Normalized{
		Phase:      phaseForStatus(status, job.Meta, link),
		Percent:    percent,
		Topic:      job.Topic,
		OutputLink: link,
	}
	if job.Meta != nil {
		n.Title = job.Meta.Title
		n.TopicReason = job.Meta.TopicReason
		n.TopicAngle = job.Meta.TopicAngle
	}
	n.StepLabel = stepLabel(status, percent, job.Meta, link)
	if status == StatusFailed {
		n.FailureMessage = job.Error
	}
	return n
}

// outputLink resolves the final video URL from either spelling on the
// resource.
func outputLink(job api.LongVideoJob) string {
	if job.FinalVideoURL != "" {
		return job.FinalVideoURL
	}
	if job.Meta != nil {
		return job.Meta.FinalVideoURL
	}
	return ""
}

// phaseForStatus maps a polled status onto the canonical phase sequence. The
// long-form backend never names a phase, so "running" is inferred from which
// meta artifacts exist so far.
func phaseForStatus(status string, meta *api.JobMeta, link string) phase.Key {
	switch status {
	case StatusQueued:
		return phase.Init
	case StatusCompleted:
		return phase.Completed
	case StatusFailed:
		return phase.Error
	case StatusRunning:
		switch {
		case link != "":
			return phase.SyncingVoice
		case meta != nil && hasJSON(meta.Timeline):
			return phase.AssemblingVideo
		case meta != nil && (meta.Title != "" || (meta.Script != nil && len(meta.Script.Segments) > 0)):
			return phase.GeneratingClips
		default:
			return phase.Init
		}
	default:
		// Unknown statuses pass through opaquely and never advance.
		return phase.Key(strings.ToUpper(status))
	}
}

// explicitPercent resolves the backend's four historical spellings of the
// numeric progress field, in precedence order.
func explicitPercent(job api.LongVideoJob) (float64, bool) {
	candidates := []*float64{job.ProgressPct, job.Progress}
	if job.Meta != nil {
		candidates = append(candidates, job.Meta.ProgressPct, job.Meta.Progress)
	}
	for _, c := range candidates {
		if c != nil && !math.IsNaN(*c) && !math.IsInf(*c, 0) {
			return *c, true
		}
	}
	return 0, false
}

// progressFromMeta infers a percentage from which artifacts the job has
// produced so far. Values mirror the production heuristic; they are
// best-effort markers, not backend-guaranteed milestones.
func progressFromMeta(status string, meta *api.JobMeta) int {
	switch status {
	case StatusCompleted:
		return 100
	case StatusQueued:
		return 1
	}
	if meta == nil {
		return 0
	}
	switch {
	case meta.FinalVideoURL != "":
		return 100
	case hasJSON(meta.Timeline):
		return 40
	case meta.Script != nil && len(meta.Script.Segments) > 0:
		return 18
	case meta.Title != "":
		return 18
	case len(meta.Topics) > 0:
		return 8
	}
	return 0
}

// stepLabel picks the banner text for the polled view. Terminal statuses use
// fixed labels; otherwise the highest qualifying threshold row wins, with a
// visual-plan breakdown appended when available.
func stepLabel(status string, percent int, meta *api.JobMeta, link string) string {
	if link != "" || status == StatusCompleted {
		return "Completed"
	}
	if status == StatusFailed {
		return "Failed"
	}
	if status == StatusQueued {
		return "Queued"
	}

	label := "Running"
	for _, row := range stepLabels {
		if percent >= row.min {
			label = row.label
		}
	}

	if meta != nil && meta.VisualPlan != nil {
		presenter := len(meta.VisualPlan.PresenterSegments)
		images := len(meta.VisualPlan.ImageSegments)
		if presenter > 0 || images > 0 {
			return fmt.Sprintf("%s (Presenter %d / Images %d)", label, presenter, images)
		}
	}
	return label
}

// ParseSegmentProgress extracts done/total clip counts, preferring explicit
// fields and falling back to the "segment N/M" pattern in the message text.
// Returns nil when neither yields a usable total.
func ParseSegmentProgress(extra api.StreamExtra) *SegmentProgress {
	if extra.Done != nil && extra.Total != nil && *extra.Total > 0 {
		return &SegmentProgress{Done: *extra.Done, Total: *extra.Total}
	}
	if m := segmentRe.FindStringSubmatch(extra.Msg); m != nil {
		done, derr := strconv.Atoi(m[1])
		total, terr := strconv.Atoi(m[2])
		if derr == nil && terr == nil && total > 0 {
			return &SegmentProgress{Done: done, Total: total}
		}
	}
	return nil
}

// hasJSON reports whether a raw meta field is actually present: the backend
// ships explicit nulls, which decode to the literal "null" and must count as
// absent.
func hasJSON(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func fallbackDetail(extra api.StreamExtra) *FallbackDetail {
	if extra.Segment == nil {
		return nil
	}
	return &FallbackDetail{Segment: *extra.Segment, Type: extra.Type, Reason: extra.Reason}
}

func clampPercent(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
