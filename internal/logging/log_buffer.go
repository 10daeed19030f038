package logging

import (
	"sync"

	"kiosk/internal/buffer"
)

// LogBuffer keeps the most recent entries in memory for diagnostics.
type LogBuffer struct {
	mu      sync.Mutex
	entries *buffer.Ring[LogEntry]
}

func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{
		entries: buffer.NewRing[LogEntry](size),
	}
}

func (b *LogBuffer) Add(entry LogEntry) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries.Add(entry)
}

func (b *LogBuffer) List() []LogEntry {
	return b.Recent(0)
}

// Recent returns up to count of the newest entries, oldest first.
func (b *LogBuffer) Recent(count int) []LogEntry {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries.Last(count)
}

// Find returns buffered entries matching the filter, oldest first.
func (b *LogBuffer) Find(filter func(LogEntry) bool) []LogEntry {
	var matched []LogEntry
	for _, entry := range b.Recent(0) {
		if filter == nil || filter(entry) {
			matched = append(matched, entry)
		}
	}
	return matched
}
