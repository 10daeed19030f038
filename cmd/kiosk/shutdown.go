package main

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"

	"kiosk/internal/logging"
)

type shutdownPhase struct {
	name string
	stop func(context.Context) error
}

// shutdownCoordinator stops components in registration order, once.
type shutdownCoordinator struct {
	logger *logging.Logger
	once   sync.Once
	phases []shutdownPhase
}

func newShutdownCoordinator(logger *logging.Logger) *shutdownCoordinator {
	return &shutdownCoordinator{logger: logger}
}

func (coordinator *shutdownCoordinator) Add(name string, stop func(context.Context) error) {
	if coordinator == nil || stop == nil {
		return
	}
	coordinator.phases = append(coordinator.phases, shutdownPhase{name: name, stop: stop})
}

func (coordinator *shutdownCoordinator) Run(ctx context.Context) error {
	if coordinator == nil {
		return nil
	}
	var runErr error
	coordinator.once.Do(func() {
		for _, phase := range coordinator.phases {
			coordinator.logger.Debug("shutdown phase starting", map[string]string{"phase": phase.name})
			if err := phase.stop(ctx); err != nil {
				runErr = errors.Join(runErr, err)
				coordinator.logger.Warn("shutdown phase failed", map[string]string{
					"phase": phase.name,
					"error": err.Error(),
				})
			}
		}
	})
	return runErr
}

// watchShutdownSignals cancels on the first signal and logs a repeat once.
// The returned func stops watching.
func watchShutdownSignals(logger *logging.Logger, shutdownCancel context.CancelFunc, signalCh <-chan os.Signal) func() {
	if signalCh == nil {
		return func() {}
	}

	done := make(chan struct{})
	var shutdownStarted atomic.Bool
	var loggedRepeat atomic.Bool

	go func() {
		for {
			select {
			case <-done:
				return
			case sig, ok := <-signalCh:
				if !ok {
					return
				}
				fields := map[string]string{}
				if sig != nil {
					fields["signal"] = sig.String()
				}
				if shutdownStarted.CompareAndSwap(false, true) {
					logger.Info("shutdown signal received", fields)
					if shutdownCancel != nil {
						shutdownCancel()
					}
					continue
				}
				if loggedRepeat.CompareAndSwap(false, true) {
					logger.Info("shutdown already in progress; ignoring signal", fields)
				}
			}
		}
	}()

	var stopOnce sync.Once
	return func() {
		stopOnce.Do(func() { close(done) })
	}
}
