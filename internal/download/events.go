package download

import "time"

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// String returns a short lowercase name for the level.
func (l ProgressLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	}
	return "unknown"
}

// ProgressEvent is a human-readable notification from the pool or
// coordinator. ItemID is empty for events not tied to a single item.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	ItemID  string
	Time    time.Time
}

type eventSink func(ProgressEvent)

func (s eventSink) emit(level ProgressLevel, itemID, message string) {
	if s == nil {
		return
	}
	s(ProgressEvent{
		Message: message,
		Level:   level,
		ItemID:  itemID,
		Time:    time.Now(),
	})
}
