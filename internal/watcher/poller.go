package watcher

import (
	"kiosk/internal/event"
	"kiosk/internal/metrics"
)

// pollAppearances registers desired paths that now exist. A file that
// appears with content is loaded without waiting for a later edit event.
func (watcher *Watcher) pollAppearances() {
	for _, path := range watcher.paths.unregistered() {
		if !watcher.paths.ensureRegistered(path) {
			continue
		}
		watcher.registry.IncWatcherEvent(watcher.name, metrics.WatcherAppeared)
		watcher.logger.Info("file appeared, now watching", map[string]string{"path": path})
		watcher.publish(event.TypeFileAppeared, path, "")
		watcher.publish(event.TypeFileChanged, path, "")
		watcher.observe(path)
	}
}
