// Package phase defines the canonical ordered catalog of pipeline phases
// reported by the video-generation backend.
package phase

// Key identifies a backend pipeline phase.
type Key string

// Sequential phases, in the exact order the backend reports them.
const (
	Init            Key = "INIT"
	UsingSeedImage  Key = "USING_UPLOADED_IMAGE"
	GeneratingClips Key = "GENERATING_CLIPS"
	AssemblingVideo Key = "ASSEMBLING_VIDEO"
	AddingVoice     Key = "ADDING_VOICE_MUSIC"
	SyncingVoice    Key = "SYNCING_VOICE_MUSIC"
	VideoUploaded   Key = "VIDEO_UPLOADED"
	VideoScheduled  Key = "VIDEO_SCHEDULED"
	Completed       Key = "COMPLETED"
)

// Non-sequential keys. Fallback is a side-channel notice that never advances
// the pipeline; Error is terminal and can occur from any position.
const (
	Fallback Key = "FALLBACK"
	Error    Key = "ERROR"
)

// Def is one registry entry.
type Def struct {
	Key   Key
	Label string
}

// Defs lists every sequential phase. Order here must exactly match the order
// the backend emits them; ordinals are derived from declaration order.
var Defs = []Def{
	{Init, "Initializing"},
	{UsingSeedImage, "Applying Seed Image"},
	{GeneratingClips, "Generating Clips"},
	{AssemblingVideo, "Assembling Video"},
	{AddingVoice, "Adding Voice & Music"},
	{SyncingVoice, "Syncing Voice & Music"},
	{VideoUploaded, "Uploaded to YouTube"},
	{VideoScheduled, "Scheduled"},
	{Completed, "Completed"},
}

var ordinals = func() map[Key]int {
	m := make(map[Key]int, len(Defs))
	for i, d := range Defs {
		m[d.Key] = i
	}
	return m
}()

// Ordinal returns the position of k in the canonical sequence, or -1 when k
// is unknown or non-sequential (FALLBACK, ERROR). Unknown keys are not an
// error: the backend contract evolves and new phases must not crash clients.
func Ordinal(k Key) int {
	if i, ok := ordinals[k]; ok {
		return i
	}
	return -1
}

// Label returns the display text for k, or the raw key for unknown phases.
func Label(k Key) string {
	if i, ok := ordinals[k]; ok {
		return Defs[i].Label
	}
	return string(k)
}

// IsTerminal reports whether k ends a job.
func IsTerminal(k Key) bool {
	return k == Completed || k == Error
}
