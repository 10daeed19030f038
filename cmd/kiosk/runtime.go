package main

import (
	"context"
	"errors"
	"fmt"

	"kiosk/internal/config"
	"kiosk/internal/content"
	"kiosk/internal/display"
	"kiosk/internal/logging"
	"kiosk/internal/metrics"
	"kiosk/internal/notify"
	"kiosk/internal/watcher"
)

// runtime wires the stores to one change notifier.
type runtime struct {
	logger   *logging.Logger
	registry *metrics.Registry
	notifier *notify.Notifier
	content  *content.Store
	display  *display.Manager
	pumpDone <-chan struct{}
}

type runtimeOptions struct {
	settings config.Settings
	logger   *logging.Logger
	registry *metrics.Registry
	watch    bool
	// sink, when set, is attached before the initial load.
	sink notify.Sink
}

func startRuntime(ctx context.Context, options runtimeOptions) (*runtime, error) {
	settings := options.settings
	debounce, ok := watcher.ParseDebounceMode(settings.Watch.Debounce)
	if !ok {
		return nil, fmt.Errorf("unknown debounce mode %q", settings.Watch.Debounce)
	}
	logger := options.logger
	if logger == nil {
		logger = logging.Discard()
	}
	registry := options.registry
	if registry == nil {
		registry = &metrics.Registry{}
	}

	notifier := notify.New(ctx, notify.Options{Logger: logger, Registry: registry})
	var pumpDone <-chan struct{}
	if options.sink != nil {
		pumpDone = notifier.Attach(ctx, options.sink)
	}
	root := settings.ContentRoot()
	contentStore, err := content.New(content.Options{
		Root:         root,
		Logger:       logger,
		Registry:     registry,
		Notifier:     notifier,
		Delay:        settings.Watch.StabilityDelay(),
		PollInterval: settings.Watch.PollInterval(),
		Debounce:     debounce,
		ReadLimit:    settings.Watch.ReadLimitBytes,
		DisableWatch: !options.watch,
	})
	if err != nil {
		notifier.Close()
		return nil, fmt.Errorf("start content store: %w", err)
	}
	displayManager, err := display.New(display.Options{
		Path:         settings.ConfigFile(),
		ContentRoot:  root,
		Logger:       logger,
		Registry:     registry,
		Notifier:     notifier,
		Delay:        settings.Watch.StabilityDelay(),
		PollInterval: settings.Watch.PollInterval(),
		Debounce:     debounce,
		ReadLimit:    settings.Watch.ReadLimitBytes,
		DisableWatch: !options.watch,
	})
	if err != nil {
		_ = contentStore.Close()
		notifier.Close()
		return nil, fmt.Errorf("start display config: %w", err)
	}

	return &runtime{
		logger:   logger,
		registry: registry,
		notifier: notifier,
		content:  contentStore,
		display:  displayManager,
		pumpDone: pumpDone,
	}, nil
}

// watchedPaths lists the watch set of both stores, keyed by watcher name.
func (r *runtime) watchedPaths() map[string][]watcher.WatchedPath {
	paths := map[string][]watcher.WatchedPath{}
	if instance := r.content.Watcher(); instance != nil {
		paths[instance.Name()] = instance.Paths()
	}
	if instance := r.display.Watcher(); instance != nil {
		paths[instance.Name()] = instance.Paths()
	}
	return paths
}

// Close stops both stores, then the notifier, and waits for an attached sink
// to drain.
func (r *runtime) Close() error {
	err := errors.Join(r.display.Close(), r.content.Close())
	r.notifier.Close()
	if r.pumpDone != nil {
		<-r.pumpDone
	}
	return err
}
