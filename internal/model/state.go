package model

// State represents where a WorkItem is in its lifecycle.
//
// The only legal moves are:
//
//	Pending -> Active -> Completed
//	                  -> Failed
//
// Completed and Failed are terminal.
type State string

const (
	// StatePending means the item is queued and no worker has claimed it yet.
	StatePending State = "pending"

	// StateActive means exactly one worker owns the item and is fetching or
	// transcoding it.
	StateActive State = "active"

	// StateCompleted means both fetch and transcode succeeded.
	StateCompleted State = "completed"

	// StateFailed means fetch or transcode failed; Error holds the cause.
	StateFailed State = "failed"
)

// String returns the string representation of State.
func (s State) String() string {
	return string(s)
}

// IsTerminal returns true for Completed and Failed.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s State) CanTransitionTo(next State) bool {
	switch s {
	case StatePending:
		return next == StateActive
	case StateActive:
		return next == StateCompleted || next == StateFailed
	default:
		return false
	}
}
