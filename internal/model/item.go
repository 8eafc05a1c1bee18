package model

import (
	"time"
)

// WorkItem is one requested download tracked from submission to a terminal
// state.
//
// ID, Seq and SourceRef never change after submission. The remaining fields
// are owned by the status board and only change through its Transition and
// Report methods; values handed out by the board are copies.
type WorkItem struct {
	// ID is the unique identifier assigned at submission.
	ID string `json:"id"`

	// Seq is the submission order, starting at 1.
	Seq uint64 `json:"seq"`

	// SourceRef is the text the user submitted, usually a URL.
	SourceRef string `json:"source"`

	// State is the lifecycle state.
	State State `json:"state"`

	// DisplayName is the resolved title. Empty until the fetcher resolves it.
	DisplayName string `json:"display_name,omitempty"`

	// Artist is the resolved uploader or artist, if known.
	Artist string `json:"artist,omitempty"`

	// Error is the human-readable failure cause. Only set when Failed.
	Error string `json:"error,omitempty"`

	// ErrorKind classifies Error. Only set when Failed.
	ErrorKind ErrorKind `json:"error_kind,omitempty"`

	// OutputPath is the encoded file. Only set when Completed.
	OutputPath string `json:"output_path,omitempty"`

	// Progress is 0.0 to 1.0 while Active, 1.0 once Completed.
	Progress float64 `json:"progress"`

	// Worker is the index of the worker that owns (or owned) the item, -1 if
	// it was never claimed.
	Worker int `json:"worker"`

	// FinishSeq is the order in which the item reached a terminal state,
	// starting at 1. Zero while Pending or Active.
	FinishSeq uint64 `json:"finish_seq,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`
	StartedAt   time.Time `json:"started_at,omitzero"`
	FinishedAt  time.Time `json:"finished_at,omitzero"`
}

// NewWorkItem creates a Pending item.
func NewWorkItem(id string, seq uint64, sourceRef string) WorkItem {
	return WorkItem{
		ID:          id,
		Seq:         seq,
		SourceRef:   sourceRef,
		State:       StatePending,
		Worker:      -1,
		SubmittedAt: time.Now(),
	}
}

// Title returns DisplayName, or SourceRef while the name is unresolved.
func (w WorkItem) Title() string {
	if w.DisplayName != "" {
		return w.DisplayName
	}
	return w.SourceRef
}

// Elapsed returns how long the item has been (or was) active.
func (w WorkItem) Elapsed() time.Duration {
	if w.StartedAt.IsZero() {
		return 0
	}
	if w.FinishedAt.IsZero() {
		return time.Since(w.StartedAt)
	}
	return w.FinishedAt.Sub(w.StartedAt)
}

// Artifact is what a fetcher produces: raw audio on local disk plus the
// metadata resolved while fetching it.
type Artifact struct {
	// SourceRef is the reference the artifact was fetched from.
	SourceRef string

	// Path is the raw audio file.
	Path string

	// DisplayName is the resolved title.
	DisplayName string

	// Artist is the uploader or artist, if known.
	Artist string

	// ThumbnailPath is a downloaded cover image, empty if none.
	ThumbnailPath string

	// Duration is the media length in seconds, 0 if unknown.
	Duration float64
}

// TargetFormat describes the encoded output.
type TargetFormat struct {
	Codec   string
	Bitrate string
}

// String returns e.g. "mp3@192k".
func (f TargetFormat) String() string {
	return f.Codec + "@" + f.Bitrate
}

// Extension returns the output file extension, including the dot.
func (f TargetFormat) Extension() string {
	return "." + f.Codec
}

// MP3At192 is the only output format.
var MP3At192 = TargetFormat{Codec: "mp3", Bitrate: "192k"}
