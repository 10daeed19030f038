package watcher

import (
	"time"

	"kiosk/internal/event"
	"kiosk/internal/logging"
	"kiosk/internal/metrics"
)

// DebounceMode selects how raw changes on different paths interact while
// waiting for stability.
type DebounceMode string

const (
	// DebounceSingle keeps one pending path per watcher. A change on another
	// path discards the current pending path without dispatching it.
	DebounceSingle DebounceMode = "single"
	// DebouncePerPath gives every path its own timer and sample.
	DebouncePerPath DebounceMode = "per-path"
)

// ParseDebounceMode accepts "single" and "per-path".
func ParseDebounceMode(value string) (DebounceMode, bool) {
	switch DebounceMode(value) {
	case DebounceSingle, "":
		return DebounceSingle, true
	case DebouncePerPath, "per_path", "perpath":
		return DebouncePerPath, true
	default:
		return "", false
	}
}

// Options controls watcher behavior.
type Options struct {
	// Name labels logs and metrics, e.g. "config" or "content".
	Name         string
	Logger       *logging.Logger
	Registry     *metrics.Registry
	Delay        time.Duration
	PollInterval time.Duration
	Debounce     DebounceMode
	// OnStable runs on the watcher goroutine once a path is confirmed
	// stable. It must not call back into the Watcher.
	OnStable     func(path string)
	ErrorHandler func(error)
	// BusHistory keeps the last raw events for replay; zero disables it.
	BusHistory int
}

// WatchedPath is a read-only view of one desired path.
type WatchedPath struct {
	Path       string `json:"path" yaml:"path"`
	Registered bool   `json:"registered" yaml:"registered"`
	Pending    bool   `json:"pending" yaml:"pending"`
}

// Sample is a stability observation of one file.
type Sample struct {
	Exists  bool
	Size    int64
	ModTime time.Time
}

func (s Sample) Equal(other Sample) bool {
	return s.Exists == other.Exists && s.Size == other.Size && s.ModTime.Equal(other.ModTime)
}

// Metrics reports current watcher stats.
type Metrics struct {
	DesiredPaths    int
	RegisteredPaths int
	PendingPaths    int
	RawEvents       uint64
	StableEvents    uint64
	Errors          uint64
	RestartAttempts int
}

// Events published on the watcher's bus.
type Event = event.FileEvent
