package api

import "encoding/json"

// Schedule mirrors the backend's schedule block on job creation.
type Schedule struct {
	Type      string `json:"type"`      // daily | weekly | monthly
	TimeOfDay string `json:"timeOfDay"` // "HH:mm"
	StartDate string `json:"startDate"` // "YYYY-MM-DD"
	EndDate   string `json:"endDate,omitempty"`
}

// SeedImage references a previously uploaded cover/seed image.
type SeedImage struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// ShortVideoRequest is the body of POST /videos. The response is a streamed
// progress feed, not a JSON document.
type ShortVideoRequest struct {
	Category     string     `json:"category"`
	Ratio        string     `json:"ratio"`
	Duration     int        `json:"duration"`
	Language     string     `json:"language"`
	Country      string     `json:"country"`
	Description  string     `json:"description,omitempty"`
	CustomPrompt string     `json:"customPrompt,omitempty"`
	VideoImage   *SeedImage `json:"videoImage,omitempty"`
	Schedule     *Schedule  `json:"schedule,omitempty"`
}

// LongVideoRequest is the body of POST /long-video.
type LongVideoRequest struct {
	PreferredTopicHint string    `json:"preferredTopicHint,omitempty"`
	Category           string    `json:"category"`
	Language           string    `json:"language"`
	TargetDurationSec  int       `json:"targetDurationSec"`
	Schedule           *Schedule `json:"schedule,omitempty"`
}

// LongVideoCreated is the response of POST /long-video.
type LongVideoCreated struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// StreamEvent is one decoded record of the short-form streaming feed.
type StreamEvent struct {
	Phase string      `json:"phase"`
	Extra StreamExtra `json:"extra"`
}

// StreamExtra carries the per-phase payload. Fields are all optional; the
// backend only populates what the current phase knows about.
type StreamExtra struct {
	Msg         string `json:"msg,omitempty"`
	Done        *int   `json:"done,omitempty"`
	Total       *int   `json:"total,omitempty"`
	YoutubeLink string `json:"youtubeLink,omitempty"`

	// Fallback detail, only present when phase is FALLBACK.
	Segment *int   `json:"segment,omitempty"`
	Type    string `json:"type,omitempty"`
	Reason  string `json:"reason,omitempty"`

	// Historical replay of prior phase/extra pairs, used to recover data
	// (e.g. an output link) that arrived before the consumer attached.
	Phases []StreamEvent `json:"phases,omitempty"`
}

// LongVideoJob is the polled job resource from GET /long-video/:id.
// The backend has shipped both progressPct and progress over time; both are
// decoded and precedence is resolved by the normalizer.
type LongVideoJob struct {
	JobID         string   `json:"jobId,omitempty"`
	Status        string   `json:"status"`
	ProgressPct   *float64 `json:"progressPct,omitempty"`
	Progress      *float64 `json:"progress,omitempty"`
	Topic         string   `json:"topic,omitempty"`
	FinalVideoURL string   `json:"finalVideoUrl,omitempty"`
	Error         string   `json:"error,omitempty"`
	Meta          *JobMeta `json:"meta,omitempty"`
}

// JobMeta is the free-form meta object on a long-form job. Only the fields
// the client derives progress or labels from are decoded.
type JobMeta struct {
	ProgressPct   *float64        `json:"progressPct,omitempty"`
	Progress      *float64        `json:"progress,omitempty"`
	FinalVideoURL string          `json:"finalVideoUrl,omitempty"`
	Timeline      json.RawMessage `json:"timeline,omitempty"`
	Title         string          `json:"title,omitempty"`
	TopicReason   string          `json:"topicReason,omitempty"`
	TopicAngle    string          `json:"topicAngle,omitempty"`
	Topics        []string        `json:"topics,omitempty"`
	Script        *Script         `json:"script,omitempty"`
	VisualPlan    *VisualPlan     `json:"visualPlan,omitempty"`
}

// Script is the generated narration script.
type Script struct {
	Segments []ScriptSegment `json:"segments"`
}

// ScriptSegment is one timed narration line.
type ScriptSegment struct {
	StartSec *float64 `json:"startSec,omitempty"`
	EndSec   *float64 `json:"endSec,omitempty"`
	Text     string   `json:"text,omitempty"`
}

// VisualPlan splits the video into presenter and image segments.
type VisualPlan struct {
	PresenterSegments []json.RawMessage `json:"presenterSegments,omitempty"`
	ImageSegments     []json.RawMessage `json:"imageSegments,omitempty"`
}
