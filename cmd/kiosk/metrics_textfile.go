package main

import (
	"bytes"
	"context"
	"time"

	"kiosk/internal/fsutil"
	"kiosk/internal/logging"
	"kiosk/internal/metrics"
)

// writeMetricsTextfile replaces path with the current exposition so a
// textfile collector never reads a partial file.
func writeMetricsTextfile(registry *metrics.Registry, path string) error {
	var out bytes.Buffer
	if err := registry.WritePrometheus(&out); err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, 0o644, &out)
}

// runMetricsTextfile writes the textfile every interval until ctx ends.
func runMetricsTextfile(ctx context.Context, registry *metrics.Registry, path string, interval time.Duration, logger *logging.Logger) {
	if path == "" {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	write := func() {
		if err := writeMetricsTextfile(registry, path); err != nil {
			logger.Warn("metrics textfile write failed", map[string]string{
				"path":  path,
				"error": err.Error(),
			})
		}
	}
	write()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			write()
		}
	}
}
