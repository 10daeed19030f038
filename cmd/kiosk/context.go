package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"kiosk"
	"kiosk/internal/config"
	"kiosk/internal/logging"
)

type globalFlags struct {
	settingsPath string
	envFile      string
	contentRoot  string
	configFile   string
	logLevel     string
	set          []string
}

type commandContext struct {
	flags *globalFlags

	settingsOnce sync.Once
	settings     config.Settings
	settingsErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureSettings layers embedded defaults, the settings file, .env and
// KIOSK_* variables, then command-line flags.
func (c *commandContext) ensureSettings() (config.Settings, error) {
	c.settingsOnce.Do(func() {
		defaultsPayload, err := fs.ReadFile(kiosk.EmbeddedConfigFS, kiosk.DefaultSettingsPath)
		if err != nil {
			c.settingsErr = fmt.Errorf("read default settings: %w", err)
			return
		}
		if err := config.LoadDotEnv(c.flags.envFile); err != nil {
			c.settingsErr = err
			return
		}
		envOverrides, err := config.EnvOverrides(os.LookupEnv)
		if err != nil {
			c.settingsErr = err
			return
		}
		cliOverrides, err := c.flags.overrides()
		if err != nil {
			c.settingsErr = err
			return
		}
		c.settings, c.settingsErr = config.LoadSettings(
			strings.TrimSpace(c.flags.settingsPath),
			defaultsPayload,
			config.MergeOverrides(envOverrides, cliOverrides),
		)
	})
	return c.settings, c.settingsErr
}

func (c *commandContext) logger(out io.Writer) (*logging.Logger, error) {
	settings, err := c.ensureSettings()
	if err != nil {
		return nil, err
	}
	level, ok := logging.ParseLevel(settings.Log.Level)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", settings.Log.Level)
	}
	return logging.NewLoggerWithOutput(logging.NewLogBuffer(logging.DefaultBufferSize), level, out), nil
}

func (f *globalFlags) overrides() (map[string]any, error) {
	overrides := map[string]any{}
	for _, assignment := range f.set {
		key, value, err := config.ParseOverride(assignment)
		if err != nil {
			return nil, fmt.Errorf("invalid --set: %w", err)
		}
		overrides[key] = value
	}
	if f.contentRoot != "" {
		overrides["paths.content-root"] = f.contentRoot
	}
	if f.configFile != "" {
		overrides["paths.config-file"] = f.configFile
	}
	if f.logLevel != "" {
		overrides["log.level"] = f.logLevel
	}
	return overrides, nil
}

func shouldSkipSettings(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipSettingsLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
