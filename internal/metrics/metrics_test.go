package metrics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRegistryWritesPrometheusText(t *testing.T) {
	registry := &Registry{}
	registry.IncEventPublished("changes", "field_changed")
	registry.IncEventPublished("changes", "field_changed")
	registry.IncEventDropped("changes", "field_changed")
	registry.SetEventSubscriberCounts("changes", 1, 2)
	registry.IncWatcherEvent("content", WatcherStable)
	registry.RecordLoad("facility_data", 1500*time.Millisecond, nil)
	registry.RecordLoad("facility_data", 500*time.Millisecond, errors.New("bad json"))

	var out bytes.Buffer
	if err := registry.WritePrometheus(&out); err != nil {
		t.Fatalf("write prometheus: %v", err)
	}
	text := out.String()

	expected := []string{
		`kiosk_events_published_total{bus="changes",type="field_changed"} 2`,
		`kiosk_events_dropped_total{bus="changes",type="field_changed"} 1`,
		`kiosk_event_subscribers{bus="changes",filtered="true"} 1`,
		`kiosk_event_subscribers{bus="changes",filtered="false"} 2`,
		`kiosk_watcher_events_total{watcher="content",kind="stable"} 1`,
		`kiosk_load_duration_seconds_sum{route="facility_data"} 2.000000`,
		`kiosk_load_duration_seconds_count{route="facility_data"} 2`,
		`kiosk_load_failures_total{route="facility_data"} 1`,
	}
	for _, line := range expected {
		if !strings.Contains(text, line) {
			t.Fatalf("expected output to contain %q\n%s", line, text)
		}
	}
}

func TestRegistryCounterAccessors(t *testing.T) {
	registry := &Registry{}
	registry.IncWatcherEvent("config", WatcherStabilityRetry)
	registry.IncWatcherEvent("config", WatcherStabilityRetry)

	if got := registry.WatcherEvents("config", WatcherStabilityRetry); got != 2 {
		t.Fatalf("expected 2 retries, got %d", got)
	}
	if got := registry.WatcherEvents("config", WatcherStable); got != 0 {
		t.Fatalf("expected 0 stable events, got %d", got)
	}

	registry.RecordLoad("", time.Millisecond, errors.New("boom"))
	total, failed := registry.LoadCounts("unknown")
	if total != 1 || failed != 1 {
		t.Fatalf("expected unnamed route to count as unknown, got total=%d failed=%d", total, failed)
	}
}

func TestNilRegistryIsSafe(t *testing.T) {
	var registry *Registry
	registry.IncEventPublished("bus", "type")
	registry.IncWatcherEvent("watcher", WatcherRawEvent)
	registry.RecordLoad("route", time.Second, nil)
	if err := registry.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
