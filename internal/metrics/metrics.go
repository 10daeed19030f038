package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Watcher event kinds counted per watcher instance.
const (
	WatcherRawEvent           = "raw"
	WatcherAppeared           = "appeared"
	WatcherStable             = "stable"
	WatcherStabilityRetry     = "stability_retry"
	WatcherSuperseded         = "superseded"
	WatcherRegistrationFailed = "registration_failed"
	WatcherRestart            = "restart"
)

type Registry struct {
	busEvents     sync.Map
	busGauges     sync.Map
	watcherEvents sync.Map
	loads         sync.Map
}

type busCounters struct {
	published atomic.Int64
	dropped   atomic.Int64
}

type busSubscribers struct {
	filtered   atomic.Int64
	unfiltered atomic.Int64
}

type loadStats struct {
	count         atomic.Int64
	failures      atomic.Int64
	durationNanos atomic.Int64
}

var Default = &Registry{}

func (r *Registry) IncEventPublished(bus, eventType string) {
	if r == nil {
		return
	}
	r.busCounters(bus, eventType).published.Add(1)
}

func (r *Registry) IncEventDropped(bus, eventType string) {
	if r == nil {
		return
	}
	r.busCounters(bus, eventType).dropped.Add(1)
}

func (r *Registry) SetEventSubscriberCounts(bus string, filtered, unfiltered int) {
	if r == nil {
		return
	}
	value, _ := r.busGauges.LoadOrStore(normalizeName(bus), &busSubscribers{})
	gauges := value.(*busSubscribers)
	gauges.filtered.Store(int64(filtered))
	gauges.unfiltered.Store(int64(unfiltered))
}

func (r *Registry) IncWatcherEvent(watcher, kind string) {
	if r == nil {
		return
	}
	key := labelKey(normalizeName(watcher), normalizeName(kind))
	value, _ := r.watcherEvents.LoadOrStore(key, new(atomic.Int64))
	value.(*atomic.Int64).Add(1)
}

// WatcherEvents reports the counter for one watcher and kind.
func (r *Registry) WatcherEvents(watcher, kind string) int64 {
	if r == nil {
		return 0
	}
	value, ok := r.watcherEvents.Load(labelKey(normalizeName(watcher), normalizeName(kind)))
	if !ok {
		return 0
	}
	return value.(*atomic.Int64).Load()
}

func (r *Registry) RecordLoad(route string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	value, _ := r.loads.LoadOrStore(normalizeName(route), &loadStats{})
	stats := value.(*loadStats)
	stats.count.Add(1)
	stats.durationNanos.Add(duration.Nanoseconds())
	if err != nil {
		stats.failures.Add(1)
	}
}

// LoadCounts reports total and failed loads for a route.
func (r *Registry) LoadCounts(route string) (int64, int64) {
	if r == nil {
		return 0, 0
	}
	value, ok := r.loads.Load(normalizeName(route))
	if !ok {
		return 0, 0
	}
	stats := value.(*loadStats)
	return stats.count.Load(), stats.failures.Load()
}

// EventCounts reports published and dropped events for a bus and event type.
func (r *Registry) EventCounts(bus, eventType string) (int64, int64) {
	if r == nil {
		return 0, 0
	}
	value, ok := r.busEvents.Load(labelKey(normalizeName(bus), normalizeName(eventType)))
	if !ok {
		return 0, 0
	}
	counters := value.(*busCounters)
	return counters.published.Load(), counters.dropped.Load()
}

func (r *Registry) WritePrometheus(writer io.Writer) error {
	if r == nil {
		return nil
	}

	writeHelp(writer, "kiosk_events_published_total", "Events published per bus and type")
	fmt.Fprintln(writer, "# TYPE kiosk_events_published_total counter")
	writeHelp(writer, "kiosk_events_dropped_total", "Events dropped per bus and type")
	fmt.Fprintln(writer, "# TYPE kiosk_events_dropped_total counter")
	for _, key := range sortedKeys(&r.busEvents) {
		bus, eventType := splitLabelKey(key)
		counters := mustLoad[*busCounters](&r.busEvents, key)
		labels := fmt.Sprintf("bus=%s,type=%s", formatLabel(bus), formatLabel(eventType))
		fmt.Fprintf(writer, "kiosk_events_published_total{%s} %d\n", labels, counters.published.Load())
		fmt.Fprintf(writer, "kiosk_events_dropped_total{%s} %d\n", labels, counters.dropped.Load())
	}

	writeHelp(writer, "kiosk_event_subscribers", "Current subscribers per bus")
	fmt.Fprintln(writer, "# TYPE kiosk_event_subscribers gauge")
	for _, bus := range sortedKeys(&r.busGauges) {
		gauges := mustLoad[*busSubscribers](&r.busGauges, bus)
		fmt.Fprintf(writer, "kiosk_event_subscribers{bus=%s,filtered=\"true\"} %d\n", formatLabel(bus), gauges.filtered.Load())
		fmt.Fprintf(writer, "kiosk_event_subscribers{bus=%s,filtered=\"false\"} %d\n", formatLabel(bus), gauges.unfiltered.Load())
	}

	writeHelp(writer, "kiosk_watcher_events_total", "Watcher events per watcher and kind")
	fmt.Fprintln(writer, "# TYPE kiosk_watcher_events_total counter")
	for _, key := range sortedKeys(&r.watcherEvents) {
		watcher, kind := splitLabelKey(key)
		counter := mustLoad[*atomic.Int64](&r.watcherEvents, key)
		fmt.Fprintf(writer, "kiosk_watcher_events_total{watcher=%s,kind=%s} %d\n", formatLabel(watcher), formatLabel(kind), counter.Load())
	}

	writeHelp(writer, "kiosk_load_duration_seconds", "Loader duration in seconds")
	fmt.Fprintln(writer, "# TYPE kiosk_load_duration_seconds summary")
	writeHelp(writer, "kiosk_load_failures_total", "Loader failures")
	fmt.Fprintln(writer, "# TYPE kiosk_load_failures_total counter")
	for _, route := range sortedKeys(&r.loads) {
		stats := mustLoad[*loadStats](&r.loads, route)
		label := formatLabel(route)
		durationSeconds := float64(stats.durationNanos.Load()) / float64(time.Second)
		fmt.Fprintf(writer, "kiosk_load_duration_seconds_sum{route=%s} %.6f\n", label, durationSeconds)
		fmt.Fprintf(writer, "kiosk_load_duration_seconds_count{route=%s} %d\n", label, stats.count.Load())
		fmt.Fprintf(writer, "kiosk_load_failures_total{route=%s} %d\n", label, stats.failures.Load())
	}

	return nil
}

func (r *Registry) busCounters(bus, eventType string) *busCounters {
	key := labelKey(normalizeName(bus), normalizeName(eventType))
	value, _ := r.busEvents.LoadOrStore(key, &busCounters{})
	return value.(*busCounters)
}

func mustLoad[T any](m *sync.Map, key string) T {
	value, _ := m.Load(key)
	typed, _ := value.(T)
	return typed
}

func sortedKeys(m *sync.Map) []string {
	var keys []string
	m.Range(func(key, value any) bool {
		if name, ok := key.(string); ok {
			keys = append(keys, name)
		}
		return true
	})
	sort.Strings(keys)
	return keys
}

const labelSeparator = "\x00"

func labelKey(first, second string) string {
	return first + labelSeparator + second
}

func splitLabelKey(key string) (string, string) {
	first, second, _ := strings.Cut(key, labelSeparator)
	return first, second
}

func normalizeName(value string) string {
	if strings.TrimSpace(value) == "" {
		return "unknown"
	}
	return value
}

func writeHelp(writer io.Writer, metric, help string) {
	fmt.Fprintf(writer, "# HELP %s %s\n", metric, help)
}

func formatLabel(value string) string {
	escaped := strings.ReplaceAll(value, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
	return fmt.Sprintf("\"%s\"", escaped)
}
