package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kiosk/internal/config"
	"kiosk/internal/logging"
	"kiosk/internal/metrics"
	"kiosk/internal/notify"
	"kiosk/internal/version"
)

const shutdownTimeout = 5 * time.Second

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch the content directory and display config until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			signalCh := make(chan os.Signal, 2)
			signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(signalCh)

			return runDaemon(cmd.Context(), settings, logger, signalCh)
		},
	}
}

// runDaemon runs until parent ends or a signal arrives on signalCh.
func runDaemon(parent context.Context, settings config.Settings, logger *logging.Logger, signalCh <-chan os.Signal) error {
	if parent == nil {
		parent = context.Background()
	}
	runCtx, cancel := context.WithCancel(parent)
	defer cancel()
	stopSignals := watchShutdownSignals(logger, cancel, signalCh)
	defer stopSignals()

	for _, key := range settings.UnknownKeys {
		logger.Warn("unknown setting ignored", map[string]string{"key": key})
	}

	registry := &metrics.Registry{}
	rt, err := startRuntime(runCtx, runtimeOptions{
		settings: settings,
		logger:   logger,
		registry: registry,
		watch:    true,
		sink:     notify.NewLogSink(logger),
	})
	if err != nil {
		return err
	}
	logger.Info("kiosk started", map[string]string{
		"version":      version.GetVersionInfo().String(),
		"content_root": rt.content.Root(),
		"config_file":  rt.display.Path(),
		"debounce":     settings.Watch.Debounce,
	})

	var workers sync.WaitGroup
	if settings.Metrics.Textfile != "" {
		workers.Add(1)
		go func() {
			defer workers.Done()
			runMetricsTextfile(runCtx, registry, settings.Metrics.Textfile, settings.Metrics.Interval(), logger)
		}()
	}

	<-runCtx.Done()

	coordinator := newShutdownCoordinator(logger)
	coordinator.Add("workers", func(context.Context) error {
		workers.Wait()
		return nil
	})
	coordinator.Add("stores", func(context.Context) error {
		return rt.Close()
	})
	if settings.Metrics.Textfile != "" {
		coordinator.Add("metrics", func(context.Context) error {
			return writeMetricsTextfile(registry, settings.Metrics.Textfile)
		})
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	err = coordinator.Run(stopCtx)
	logger.Info("kiosk stopped", nil)
	return err
}
