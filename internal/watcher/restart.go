package watcher

import (
	"time"

	"kiosk/internal/event"
	"kiosk/internal/metrics"
)

func (watcher *Watcher) handleError(err error) {
	if err == nil {
		return
	}
	watcher.errorCount.Add(1)
	watcher.logger.Warn("watcher error", map[string]string{
		"error": err.Error(),
	})
	watcher.scheduleRestart(err)
}

func restartDelay(attempt int) time.Duration {
	return restartBaseDelay * time.Duration(1<<attempt)
}

// scheduleRestart backs off before replacing the fsnotify watcher. Once the
// attempts are used up the error is surfaced instead.
func (watcher *Watcher) scheduleRestart(err error) {
	if watcher.restartTimer != nil {
		return
	}
	if watcher.restartAttempts >= maxRestartAttempts {
		watcher.notifyError(err)
		return
	}
	delay := restartDelay(watcher.restartAttempts)
	watcher.restartAttempts++
	watcher.restartTimer = time.AfterFunc(delay, func() {
		select {
		case watcher.restarts <- struct{}{}:
		case <-watcher.done:
		}
	})
}

func (watcher *Watcher) performRestart() {
	watcher.restartTimer = nil
	if err := watcher.restart(); err != nil {
		watcher.logger.Warn("watcher restart failed", map[string]string{
			"error": err.Error(),
		})
		watcher.scheduleRestart(err)
		return
	}
	watcher.restartAttempts = 0
	watcher.registry.IncWatcherEvent(watcher.name, metrics.WatcherRestart)
	watcher.logger.Info("watcher restarted", nil)
}

func (watcher *Watcher) restart() error {
	replacement, err := watcher.newFS()
	if err != nil {
		return err
	}
	previous := watcher.fs
	watcher.fs = replacement
	watcher.paths.rebind(replacement)
	watcher.startForwarder(replacement)
	if previous != nil {
		_ = previous.Close()
	}
	return nil
}

func (watcher *Watcher) notifyError(err error) {
	if err == nil {
		return
	}
	evt := event.NewFileEvent(event.TypeWatchError, "", "")
	evt.Watcher = watcher.name
	evt.Err = err.Error()
	watcher.bus.Publish(evt)
	if watcher.errorHandler != nil {
		watcher.errorHandler(err)
	}
}
