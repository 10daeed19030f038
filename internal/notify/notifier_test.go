package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"kiosk/internal/event"
	"kiosk/internal/logging"
	"kiosk/internal/metrics"
)

func newTestNotifier(t *testing.T) *Notifier {
	t.Helper()
	notifier := New(context.Background(), Options{Registry: &metrics.Registry{}})
	t.Cleanup(notifier.Close)
	return notifier
}

func receive(t *testing.T, ch <-chan event.ChangeEvent) event.ChangeEvent {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change event")
	}
	return event.ChangeEvent{}
}

func TestNotifierPublishesTypedEvents(t *testing.T) {
	notifier := newTestNotifier(t)
	ch, cancel := notifier.Subscribe()
	defer cancel()

	notifier.FieldChanged("content", "text_daily", "/vars/text_daily")
	notifier.AssetsChanged("content", "/vars/left_image.png")
	notifier.ConfigChanged("display", "/vars/config.ini", []string{"app_live"}, true)

	field := receive(t, ch)
	if field.Type() != event.TypeFieldChanged || field.Field != "text_daily" || field.ID == "" {
		t.Fatalf("unexpected field event %+v", field)
	}
	assets := receive(t, ch)
	if assets.Type() != event.TypeAssetsChanged || assets.Path != "/vars/left_image.png" {
		t.Fatalf("unexpected assets event %+v", assets)
	}
	config := receive(t, ch)
	if config.Type() != event.TypeConfigChanged || !config.ResolutionChanged || len(config.Sections) != 1 {
		t.Fatalf("unexpected config event %+v", config)
	}
	if field.ID == assets.ID {
		t.Fatal("expected unique event ids")
	}
	if history := notifier.History(); len(history) != 3 {
		t.Fatalf("expected 3 history events, got %d", len(history))
	}
}

func TestPumpForwardsInOrder(t *testing.T) {
	notifier := newTestNotifier(t)
	sink := NewMemorySink()
	sink.SetError(errors.New("sink offline"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		notifier.Pump(ctx, sink)
		close(done)
	}()

	deadline := time.After(time.Second)
	for notifier.bus.SubscriberCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for pump to subscribe")
		case <-time.After(5 * time.Millisecond):
		}
	}

	for _, field := range []string{"scroll_upper", "scroll_lower", "facility_name"} {
		notifier.FieldChanged("content", field, "")
	}

	for len(sink.Events()) < 3 {
		select {
		case <-deadline:
			t.Fatalf("timed out, got %d events", len(sink.Events()))
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	events := sink.Events()
	if events[0].Field != "scroll_upper" || events[2].Field != "facility_name" {
		t.Fatalf("unexpected order %+v", events)
	}
}

func TestAttachSeesEventsPublishedRightAfter(t *testing.T) {
	notifier := newTestNotifier(t)
	sink := NewMemorySink()
	ctx, cancel := context.WithCancel(context.Background())

	done := notifier.Attach(ctx, sink)
	notifier.FieldChanged("content", "facility_name", "")
	notifier.AssetsChanged("content", "")

	deadline := time.After(time.Second)
	for len(sink.Events()) < 2 {
		select {
		case <-deadline:
			t.Fatalf("timed out, got %d events", len(sink.Events()))
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected attached pump to stop")
	}

	events := sink.Events()
	if events[0].Field != "facility_name" || events[1].Type() != event.TypeAssetsChanged {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestLogSinkWritesRecord(t *testing.T) {
	buffer := logging.NewLogBuffer(4)
	sink := NewLogSink(logging.NewLoggerWithOutput(buffer, logging.LevelInfo, nil))

	evt := event.NewChangeEvent(event.TypeConfigChanged, "display")
	evt.Sections = []string{"app_theme", "app_live"}
	if err := sink.Emit(context.Background(), evt); err != nil {
		t.Fatalf("emit: %v", err)
	}

	entries := buffer.List()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Message != event.TypeConfigChanged || entry.Context["sections"] != "app_theme,app_live" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.Context["resolution_changed"] != "false" || entry.Category() != "changes" {
		t.Fatalf("unexpected entry context %+v", entry.Context)
	}
}
