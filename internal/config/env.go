package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"

	"kiosk/internal/config/tomlkeys"
)

const envPrefix = "KIOSK_"

// Schema lists every recognised setting and its type.
var Schema = tomlkeys.NewSchema(map[string]tomlkeys.Kind{
	"paths.content-root":       tomlkeys.KindString,
	"paths.deploy-root":        tomlkeys.KindString,
	"paths.config-file":        tomlkeys.KindString,
	"watch.stability-delay-ms": tomlkeys.KindInt,
	"watch.poll-interval-ms":   tomlkeys.KindInt,
	"watch.debounce":           tomlkeys.KindString,
	"watch.read-limit-bytes":   tomlkeys.KindInt,
	"log.level":                tomlkeys.KindString,
	"metrics.textfile":         tomlkeys.KindString,
	"metrics.interval-ms":      tomlkeys.KindInt,
})

// KnownKey reports whether key names a recognised setting.
func KnownKey(key string) bool {
	return Schema.Known(key)
}

// EnvName is the environment variable for a settings key, for example
// KIOSK_WATCH_POLL_INTERVAL_MS for watch.poll-interval-ms.
func EnvName(key string) string {
	return tomlkeys.EnvName(envPrefix, key)
}

// ParseOverride converts a key=value assignment into a typed override.
func ParseOverride(assignment string) (string, any, error) {
	key, value, ok := strings.Cut(assignment, "=")
	key = tomlkeys.NormalizeKey(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("invalid assignment %q: expected key=value", assignment)
	}
	parsed, err := Schema.Coerce(key, value)
	if err != nil {
		return "", nil, err
	}
	return key, parsed, nil
}

// LoadDotEnv loads variables from a .env file without overriding variables
// already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// EnvOverrides collects KIOSK_* variables as settings overrides.
func EnvOverrides(lookup func(string) (string, bool)) (map[string]any, error) {
	overrides := map[string]any{}
	if lookup == nil {
		return overrides, nil
	}
	for _, key := range Schema.Keys() {
		name := EnvName(key)
		raw, ok := lookup(name)
		if !ok {
			continue
		}
		parsed, err := Schema.Coerce(key, raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		overrides[key] = parsed
	}
	return overrides, nil
}

// MergeOverrides combines override layers; later layers win.
func MergeOverrides(layers ...map[string]any) map[string]any {
	merged := map[string]any{}
	for _, layer := range layers {
		for key, value := range layer {
			merged[key] = value
		}
	}
	return merged
}
