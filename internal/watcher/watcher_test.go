package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"kiosk/internal/event"
	"kiosk/internal/metrics"
)

const testDelay = 30 * time.Millisecond

func newTestWatcher(t *testing.T, options Options) (*Watcher, chan string) {
	t.Helper()
	stable := make(chan string, 16)
	if options.Delay == 0 {
		options.Delay = testDelay
	}
	if options.PollInterval == 0 {
		options.PollInterval = testDelay
	}
	if options.Registry == nil {
		options.Registry = &metrics.Registry{}
	}
	if options.OnStable == nil {
		options.OnStable = func(path string) {
			stable <- path
		}
	}
	watcher, err := New(options)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(func() {
		_ = watcher.Close()
	})
	return watcher, stable
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func waitForPath(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", want)
	}
}

func waitForEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watcher event")
	}
	return Event{}
}

func TestWatcherDispatchesBurstOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facility_data.json")
	writeFile(t, path, "{}")

	watcher, stable := newTestWatcher(t, Options{Name: "content"})
	if err := watcher.Watch(path); err != nil {
		t.Fatalf("watch: %v", err)
	}

	writeFile(t, path, `{"a": 1}`)
	writeFile(t, path, `{"a": 12}`)
	writeFile(t, path, `{"a": 123}`)

	waitForPath(t, stable, path)
	select {
	case extra := <-stable:
		t.Fatalf("expected a single dispatch, got another for %s", extra)
	case <-time.After(5 * testDelay):
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"a": 123}` {
		t.Fatalf("expected final content, got %q", data)
	}
	if got := watcher.Metrics().StableEvents; got != 1 {
		t.Fatalf("expected 1 stable event, got %d", got)
	}
}

func TestWatcherAppearancePublishesAppearedThenChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text_daily")

	watcher, stable := newTestWatcher(t, Options{Name: "content"})
	events, cancel := watcher.Subscribe(event.TypeFileAppeared, event.TypeFileChanged)
	defer cancel()

	if err := watcher.Watch(path); err != nil {
		t.Fatalf("watch: %v", err)
	}
	paths := watcher.Paths()
	if len(paths) != 1 || paths[0].Registered {
		t.Fatalf("expected one unregistered path, got %+v", paths)
	}

	writeFile(t, path, "OPEN 9-5")

	first := waitForEvent(t, events)
	if first.Type() != event.TypeFileAppeared || first.Path != path {
		t.Fatalf("expected file_appeared for %s, got %+v", path, first)
	}
	second := waitForEvent(t, events)
	if second.Type() != event.TypeFileChanged || second.Path != path {
		t.Fatalf("expected file_changed for %s, got %+v", path, second)
	}
	if second.Watcher != "content" {
		t.Fatalf("expected watcher name on event, got %q", second.Watcher)
	}

	waitForPath(t, stable, path)
	paths = watcher.Paths()
	if len(paths) != 1 || !paths[0].Registered {
		t.Fatalf("expected path to be registered, got %+v", paths)
	}
}

func TestWatcherRemoveSettlesAndReappears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qr_support.png")
	writeFile(t, path, "png")

	watcher, stable := newTestWatcher(t, Options{})
	appeared, cancel := watcher.Subscribe(event.TypeFileAppeared)
	defer cancel()
	if err := watcher.Watch(path); err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	waitForPath(t, stable, path)
	if paths := watcher.Paths(); paths[0].Registered {
		t.Fatalf("expected removed file to be unregistered, got %+v", paths)
	}

	writeFile(t, path, "png again")
	if evt := waitForEvent(t, appeared); evt.Path != path {
		t.Fatalf("expected reappearance of %s, got %+v", path, evt)
	}
	waitForPath(t, stable, path)
}

func TestWatcherUnwatchStopsDispatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text_round")
	writeFile(t, path, "one")

	watcher, stable := newTestWatcher(t, Options{})
	if err := watcher.Watch(path); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if err := watcher.Unwatch(path); err != nil {
		t.Fatalf("unwatch: %v", err)
	}
	writeFile(t, path, "two")

	select {
	case got := <-stable:
		t.Fatalf("unexpected dispatch for %s", got)
	case <-time.After(5 * testDelay):
	}
	if paths := watcher.Paths(); len(paths) != 0 {
		t.Fatalf("expected no paths, got %+v", paths)
	}
}

func TestWatcherReplaceAll(t *testing.T) {
	oldRoot := t.TempDir()
	newRoot := t.TempDir()
	oldPath := filepath.Join(oldRoot, "text_count")
	newPath := filepath.Join(newRoot, "text_count")
	writeFile(t, oldPath, "1")
	writeFile(t, newPath, "1")

	watcher, stable := newTestWatcher(t, Options{})
	if err := watcher.Watch(oldPath); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if err := watcher.ReplaceAll([]string{newPath}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	writeFile(t, oldPath, "2")
	writeFile(t, newPath, "2")
	waitForPath(t, stable, newPath)

	paths := watcher.Paths()
	if len(paths) != 1 || paths[0].Path != newPath || !paths[0].Registered {
		t.Fatalf("unexpected paths %+v", paths)
	}
}

func TestWatcherSinglePendingAcrossPaths(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "scroll_upper.txt")
	second := filepath.Join(dir, "scroll_lower.txt")
	writeFile(t, first, "a")
	writeFile(t, second, "b")

	watcher, stable := newTestWatcher(t, Options{Delay: 100 * time.Millisecond})
	for _, path := range []string{first, second} {
		if err := watcher.Watch(path); err != nil {
			t.Fatalf("watch: %v", err)
		}
	}

	writeFile(t, first, "aa")
	writeFile(t, second, "bb")

	waitForPath(t, stable, second)
	select {
	case got := <-stable:
		t.Fatalf("expected superseded path to be dropped, got %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherClosed(t *testing.T) {
	watcher, _ := newTestWatcher(t, Options{})
	if err := watcher.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := watcher.Watch("/tmp/anything"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if paths := watcher.Paths(); paths != nil {
		t.Fatalf("expected nil paths after close, got %+v", paths)
	}
	if err := watcher.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestWatcherRejectsEmptyPath(t *testing.T) {
	watcher, _ := newTestWatcher(t, Options{})
	if err := watcher.Watch(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestParseDebounceMode(t *testing.T) {
	cases := map[string]DebounceMode{
		"":         DebounceSingle,
		"single":   DebounceSingle,
		"per-path": DebouncePerPath,
		"per_path": DebouncePerPath,
	}
	for input, want := range cases {
		got, ok := ParseDebounceMode(input)
		if !ok || got != want {
			t.Fatalf("%q: expected %q, got %q (%v)", input, want, got, ok)
		}
	}
	if _, ok := ParseDebounceMode("queue"); ok {
		t.Fatal("expected unknown mode to be rejected")
	}
}
