package logging

import "time"

type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// CategoryKey tags every record with the component that produced it.
const CategoryKey = "kiosk.category"

type LogEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     Level             `json:"level"`
	Message   string            `json:"message"`
	Context   map[string]string `json:"context,omitempty"`
}

// Category returns the component tag of the entry, if any.
func (e LogEntry) Category() string {
	if e.Context == nil {
		return ""
	}
	return e.Context[CategoryKey]
}
