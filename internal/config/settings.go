package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"kiosk/internal/config/tomlkeys"
)

type Settings struct {
	Paths   PathSettings
	Watch   WatchSettings
	Log     LogSettings
	Metrics MetricsSettings

	// UnknownKeys lists keys in the settings file that no setting reads.
	UnknownKeys []string
}

type PathSettings struct {
	ContentRoot string
	DeployRoot  string
	ConfigFile  string
}

type WatchSettings struct {
	StabilityDelayMS int64
	PollIntervalMS   int64
	Debounce         string
	ReadLimitBytes   int64
}

type LogSettings struct {
	Level string
}

type MetricsSettings struct {
	Textfile   string
	IntervalMS int64
}

func (s WatchSettings) StabilityDelay() time.Duration {
	return time.Duration(s.StabilityDelayMS) * time.Millisecond
}

func (s WatchSettings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMS) * time.Millisecond
}

func (s MetricsSettings) Interval() time.Duration {
	return time.Duration(s.IntervalMS) * time.Millisecond
}

// LoadSettings layers the embedded defaults, the optional TOML file at path
// and overrides, in that order. A missing file is not an error.
func LoadSettings(path string, defaultsPayload []byte, overrides map[string]any) (Settings, error) {
	defaultsStore, err := tomlkeys.Decode(defaultsPayload)
	if err != nil {
		return Settings{}, fmt.Errorf("decode default settings: %w", err)
	}
	defaults := defaultsStore.Flat()
	values := defaultsStore.Flat()
	var unknown []string

	if strings.TrimSpace(path) != "" {
		payload, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Settings{}, err
			}
		} else {
			store, err := tomlkeys.Decode(payload)
			if err != nil {
				return Settings{}, fmt.Errorf("decode %s: %w", path, err)
			}
			unknown = Schema.Unknown(store)
			for key, value := range store.Flat() {
				values[key] = value
			}
		}
	}

	for key, value := range overrides {
		normalized := tomlkeys.NormalizeKey(key)
		if normalized == "" {
			continue
		}
		values[normalized] = value
	}

	settings := Settings{}

	settings.Paths.ContentRoot = stringSetting(values, "paths.content-root", "")
	settings.Paths.DeployRoot = stringSetting(values, "paths.deploy-root", "")
	settings.Paths.ConfigFile = stringSetting(values, "paths.config-file", "")
	settings.Watch.StabilityDelayMS = intSetting(values, "watch.stability-delay-ms", 0)
	settings.Watch.PollIntervalMS = intSetting(values, "watch.poll-interval-ms", 0)
	settings.Watch.Debounce = stringSetting(values, "watch.debounce", "")
	settings.Watch.ReadLimitBytes = intSetting(values, "watch.read-limit-bytes", 0)
	settings.Log.Level = stringSetting(values, "log.level", "")
	settings.Metrics.Textfile = stringSetting(values, "metrics.textfile", "")
	settings.Metrics.IntervalMS = intSetting(values, "metrics.interval-ms", 0)

	settings.UnknownKeys = unknown

	return normalizeSettings(settings, defaults), nil
}

func normalizeSettings(settings Settings, defaults map[string]any) Settings {
	if settings.Watch.StabilityDelayMS <= 0 {
		settings.Watch.StabilityDelayMS = intSetting(defaults, "watch.stability-delay-ms", 0)
	}
	if settings.Watch.PollIntervalMS <= 0 {
		settings.Watch.PollIntervalMS = intSetting(defaults, "watch.poll-interval-ms", 0)
	}
	if settings.Watch.Debounce == "" {
		settings.Watch.Debounce = stringSetting(defaults, "watch.debounce", "")
	}
	if settings.Watch.ReadLimitBytes <= 0 {
		settings.Watch.ReadLimitBytes = intSetting(defaults, "watch.read-limit-bytes", 0)
	}
	if settings.Log.Level == "" {
		settings.Log.Level = stringSetting(defaults, "log.level", "")
	}
	if settings.Metrics.IntervalMS <= 0 {
		settings.Metrics.IntervalMS = intSetting(defaults, "metrics.interval-ms", 0)
	}
	return settings
}

func intSetting(values map[string]any, key string, fallback int64) int64 {
	value, ok := values[tomlkeys.NormalizeKey(key)]
	if !ok {
		return fallback
	}
	if parsed, ok := tomlkeys.AsInt(value); ok {
		return parsed
	}
	return fallback
}

func stringSetting(values map[string]any, key string, fallback string) string {
	value, ok := values[tomlkeys.NormalizeKey(key)]
	if !ok {
		return fallback
	}
	if parsed, ok := value.(string); ok {
		return strings.TrimSpace(parsed)
	}
	return fallback
}
