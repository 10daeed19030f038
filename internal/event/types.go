package event

import "time"

// Event represents a typed event with an occurrence timestamp.
type Event interface {
	Type() string
	Timestamp() time.Time
}

// File event types published by watchers.
const (
	TypeFileChanged  = "file_changed"
	TypeFileAppeared = "file_appeared"
	TypeFileStable   = "file_stable"
	TypeWatchError   = "watch_error"
)

// Change event types published to the rendering layer.
const (
	TypeFieldChanged  = "field_changed"
	TypeAssetsChanged = "assets_changed"
	TypeConfigChanged = "config_changed"
)

// FileEvent represents a filesystem observation made by one watcher.
type FileEvent struct {
	EventType  string
	Watcher    string
	Path       string
	Operation  string
	Err        string
	OccurredAt time.Time
}

func NewFileEvent(eventType, path, operation string) FileEvent {
	return FileEvent{
		EventType:  eventType,
		Path:       path,
		Operation:  operation,
		OccurredAt: time.Now().UTC(),
	}
}

func (e FileEvent) Type() string {
	return e.EventType
}

func (e FileEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// ChangeEvent is one logical snapshot update. Field is set for
// field_changed, Sections for config_changed.
type ChangeEvent struct {
	EventType         string
	ID                string
	Source            string
	Field             string
	Path              string
	Sections          []string
	ResolutionChanged bool
	OccurredAt        time.Time
}

func NewChangeEvent(eventType, source string) ChangeEvent {
	return ChangeEvent{
		EventType:  eventType,
		Source:     source,
		OccurredAt: time.Now().UTC(),
	}
}

func (e ChangeEvent) Type() string {
	return e.EventType
}

func (e ChangeEvent) Timestamp() time.Time {
	return e.OccurredAt
}
