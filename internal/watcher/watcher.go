package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"kiosk/internal/event"
	"kiosk/internal/fsutil"
	"kiosk/internal/logging"
	"kiosk/internal/metrics"
)

const (
	DefaultDelay        = 500 * time.Millisecond
	DefaultPollInterval = 500 * time.Millisecond
	maxRestartAttempts  = 3
	restartBaseDelay    = 200 * time.Millisecond
)

var (
	ErrClosed    = errors.New("watcher closed")
	errEmptyPath = errors.New("path is required")
)

// Watcher is one fsnotify-backed watch instance. All of its state is owned
// by a single goroutine; exported methods are safe for concurrent use.
type Watcher struct {
	name         string
	logger       *logging.Logger
	registry     *metrics.Registry
	bus          *event.Bus[Event]
	delay        time.Duration
	pollInterval time.Duration
	onStable     func(path string)
	errorHandler func(error)
	newFS        func() (*fsnotify.Watcher, error)

	// Owned by the run goroutine.
	fs              *fsnotify.Watcher
	paths           *pathSet
	gate            *stabilityGate
	restartAttempts int
	restartTimer    *time.Timer

	events   chan fsnotify.Event
	errors   chan error
	fired    chan gateFire
	restarts chan struct{}
	calls    chan func()
	done     chan struct{}
	stopped  chan struct{}

	closeOnce sync.Once
	closeErr  error

	rawEvents    atomic.Uint64
	stableEvents atomic.Uint64
	errorCount   atomic.Uint64
}

type gateFire struct {
	path string
	gen  uint64
}

// New starts a watcher with the given options.
func New(options Options) (*Watcher, error) {
	source, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	name := options.Name
	if name == "" {
		name = "files"
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.Category("watcher").With(map[string]string{"watcher": name})
	registry := options.Registry
	if registry == nil {
		registry = metrics.Default
	}
	delay := options.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	pollInterval := options.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	instance := &Watcher{
		name:         name,
		logger:       logger,
		registry:     registry,
		delay:        delay,
		pollInterval: pollInterval,
		onStable:     options.OnStable,
		errorHandler: options.ErrorHandler,
		newFS:        fsnotify.NewWatcher,
		fs:           source,
		events:       make(chan fsnotify.Event, 16),
		errors:       make(chan error, 4),
		fired:        make(chan gateFire, 16),
		restarts:     make(chan struct{}, 1),
		calls:        make(chan func()),
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	instance.bus = event.NewBus[Event](context.Background(), event.BusOptions{
		Name:        "watcher." + name,
		HistorySize: options.BusHistory,
		Registry:    registry,
		Logger:      logger,
	})
	instance.paths = newPathSet(name, source, fsutil.Exists)
	instance.paths.registry = registry
	instance.paths.logWarn = logger.Warn
	instance.paths.logDebug = logger.Debug
	instance.gate = newStabilityGate(options.Debounce, instance.armStability, statSample)

	instance.startForwarder(source)
	go instance.run()
	return instance, nil
}

// Watch requests a path. It is registered now if it exists, otherwise as
// soon as the poller sees it.
func (watcher *Watcher) Watch(path string) error {
	cleaned, err := cleanPath(path)
	if err != nil {
		return err
	}
	return watcher.do(func() {
		watcher.paths.request(cleaned)
	})
}

// Unwatch forgets a path and any stability wait pending on it.
func (watcher *Watcher) Unwatch(path string) error {
	cleaned, err := cleanPath(path)
	if err != nil {
		return err
	}
	return watcher.do(func() {
		watcher.gate.forget(cleaned)
		watcher.paths.remove(cleaned)
	})
}

// ReplaceAll tears down every registration and pending wait, then requests
// paths. It is used when the watched root moves.
func (watcher *Watcher) ReplaceAll(paths []string) error {
	cleaned := make([]string, 0, len(paths))
	for _, path := range paths {
		value, err := cleanPath(path)
		if err != nil {
			return err
		}
		cleaned = append(cleaned, value)
	}
	return watcher.do(func() {
		watcher.gate.reset()
		watcher.paths.clear()
		for _, path := range cleaned {
			watcher.paths.request(path)
		}
		watcher.logger.Info("watch set replaced", map[string]string{
			"paths": strconv.Itoa(len(cleaned)),
		})
	})
}

// Paths returns a copy of the desired paths and their state.
func (watcher *Watcher) Paths() []WatchedPath {
	var out []WatchedPath
	if err := watcher.do(func() {
		out = watcher.paths.snapshot(watcher.gate.isPending)
	}); err != nil {
		return nil
	}
	return out
}

// Subscribe streams raw watcher events of the given types, or all types.
func (watcher *Watcher) Subscribe(eventTypes ...string) (<-chan Event, func()) {
	return watcher.bus.SubscribeTypes(eventTypes...)
}

// Bus exposes the raw event bus, e.g. for history replay.
func (watcher *Watcher) Bus() *event.Bus[Event] {
	return watcher.bus
}

func (watcher *Watcher) Name() string {
	return watcher.name
}

// Metrics reports current watcher stats.
func (watcher *Watcher) Metrics() Metrics {
	stats := Metrics{
		RawEvents:    watcher.rawEvents.Load(),
		StableEvents: watcher.stableEvents.Load(),
		Errors:       watcher.errorCount.Load(),
	}
	_ = watcher.do(func() {
		stats.DesiredPaths, stats.RegisteredPaths = watcher.paths.counts()
		stats.PendingPaths = watcher.gate.size()
		stats.RestartAttempts = watcher.restartAttempts
	})
	return stats
}

// Close stops the watcher goroutine and releases the OS watch.
func (watcher *Watcher) Close() error {
	if watcher == nil {
		return nil
	}
	watcher.closeOnce.Do(func() {
		close(watcher.done)
		<-watcher.stopped
		watcher.bus.Close()
	})
	return watcher.closeErr
}

// do runs fn on the watcher goroutine and waits for it.
func (watcher *Watcher) do(fn func()) error {
	if watcher == nil {
		return ErrClosed
	}
	finished := make(chan struct{})
	call := func() {
		defer close(finished)
		fn()
	}
	select {
	case watcher.calls <- call:
	case <-watcher.stopped:
		return ErrClosed
	}
	<-finished
	return nil
}

func (watcher *Watcher) run() {
	defer close(watcher.stopped)
	ticker := time.NewTicker(watcher.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-watcher.done:
			watcher.shutdown()
			return
		case evt := <-watcher.events:
			watcher.handleEvent(evt)
		case err := <-watcher.errors:
			watcher.handleError(err)
		case <-ticker.C:
			watcher.pollAppearances()
		case fire := <-watcher.fired:
			watcher.handleFire(fire)
		case <-watcher.restarts:
			watcher.performRestart()
		case call := <-watcher.calls:
			call()
		}
	}
}

func (watcher *Watcher) shutdown() {
	watcher.gate.reset()
	if watcher.restartTimer != nil {
		watcher.restartTimer.Stop()
		watcher.restartTimer = nil
	}
	if watcher.fs != nil {
		watcher.closeErr = watcher.fs.Close()
	}
}

func (watcher *Watcher) startForwarder(source *fsnotify.Watcher) {
	if source == nil {
		return
	}

	go func() {
		for {
			select {
			case evt, ok := <-source.Events:
				if !ok {
					return
				}
				select {
				case watcher.events <- evt:
				case <-watcher.done:
					return
				}
			case err, ok := <-source.Errors:
				if !ok {
					return
				}
				select {
				case watcher.errors <- err:
				case <-watcher.done:
					return
				}
			case <-watcher.done:
				return
			}
		}
	}()
}

func (watcher *Watcher) handleEvent(evt fsnotify.Event) {
	path := filepath.Clean(evt.Name)
	if !watcher.paths.desired(path) {
		return
	}
	// Attribute-only changes never alter content.
	if evt.Op == fsnotify.Chmod {
		return
	}
	watcher.rawEvents.Add(1)
	watcher.registry.IncWatcherEvent(watcher.name, metrics.WatcherRawEvent)

	if evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename) {
		watcher.paths.markDropped(path)
	}
	watcher.logger.Debug("file changed", map[string]string{
		"path": path,
		"op":   evt.Op.String(),
	})
	watcher.publish(event.TypeFileChanged, path, evt.Op.String())
	watcher.observe(path)
}

func (watcher *Watcher) observe(path string) {
	for _, superseded := range watcher.gate.observe(path) {
		watcher.registry.IncWatcherEvent(watcher.name, metrics.WatcherSuperseded)
		watcher.logger.Debug("pending file superseded", map[string]string{
			"path": superseded,
			"by":   path,
		})
	}
}

func (watcher *Watcher) armStability(path string, gen uint64) func() bool {
	timer := time.AfterFunc(watcher.delay, func() {
		select {
		case watcher.fired <- gateFire{path: path, gen: gen}:
		case <-watcher.done:
		}
	})
	return timer.Stop
}

func (watcher *Watcher) handleFire(fire gateFire) {
	result, err := watcher.gate.fire(fire.path, fire.gen)
	switch result {
	case gateStatFailed:
		watcher.logger.Warn("stability sample failed", map[string]string{
			"path":  fire.path,
			"error": err.Error(),
		})
	case gateUnstable:
		watcher.registry.IncWatcherEvent(watcher.name, metrics.WatcherStabilityRetry)
		watcher.logger.Debug("file still being written, retrying", map[string]string{"path": fire.path})
	case gateStable:
		watcher.dispatchStable(fire.path)
	}
}

func (watcher *Watcher) dispatchStable(path string) {
	watcher.paths.ensureRegistered(path)
	watcher.stableEvents.Add(1)
	watcher.registry.IncWatcherEvent(watcher.name, metrics.WatcherStable)
	watcher.publish(event.TypeFileStable, path, "")
	if watcher.onStable == nil {
		return
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			watcher.logger.Error("stable handler panicked", map[string]string{
				"path":  path,
				"panic": fmt.Sprint(recovered),
			})
		}
	}()
	watcher.onStable(path)
}

func (watcher *Watcher) publish(eventType, path, operation string) {
	evt := event.NewFileEvent(eventType, path, operation)
	evt.Watcher = watcher.name
	watcher.bus.Publish(evt)
}

func cleanPath(path string) (string, error) {
	if path == "" {
		return "", errEmptyPath
	}
	return filepath.Clean(path), nil
}
