package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnvName(t *testing.T) {
	cases := map[string]string{
		"watch.poll-interval-ms": "KIOSK_WATCH_POLL_INTERVAL_MS",
		"paths.content-root":     "KIOSK_PATHS_CONTENT_ROOT",
		"log.level":              "KIOSK_LOG_LEVEL",
	}
	for key, want := range cases {
		if got := EnvName(key); got != want {
			t.Fatalf("%s: expected %s, got %s", key, want, got)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"KIOSK_WATCH_STABILITY_DELAY_MS": " 250 ",
		"KIOSK_LOG_LEVEL":                "debug",
		"KIOSK_UNRELATED":                "x",
	}
	lookup := func(name string) (string, bool) {
		value, ok := env[name]
		return value, ok
	}
	overrides, err := EnvOverrides(lookup)
	if err != nil {
		t.Fatalf("env overrides: %v", err)
	}
	if len(overrides) != 2 {
		t.Fatalf("expected 2 overrides, got %v", overrides)
	}
	if overrides["watch.stability-delay-ms"] != int64(250) || overrides["log.level"] != "debug" {
		t.Fatalf("unexpected overrides: %v", overrides)
	}

	env["KIOSK_METRICS_INTERVAL_MS"] = "soon"
	if _, err := EnvOverrides(lookup); err == nil {
		t.Fatalf("expected integer parse error")
	}
}

func TestMergeOverridesLaterWins(t *testing.T) {
	merged := MergeOverrides(
		map[string]any{"log.level": "info", "watch.debounce": "single"},
		map[string]any{"log.level": "error"},
	)
	if merged["log.level"] != "error" || merged["watch.debounce"] != "single" {
		t.Fatalf("unexpected merge result: %v", merged)
	}
}

func TestKnownKey(t *testing.T) {
	if !KnownKey("Watch.Read_Limit_Bytes") {
		t.Fatalf("expected normalised key to be known")
	}
	if KnownKey("session.log-max-bytes") {
		t.Fatalf("expected unrelated key to be unknown")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("KIOSK_TEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("KIOSK_TEST_DOTENV") })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("KIOSK_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("expected variable from file, got %q", got)
	}
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}
