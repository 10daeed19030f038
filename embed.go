package kiosk

import "embed"

// EmbeddedConfigFS provides the default daemon settings.
//
//go:embed config
var EmbeddedConfigFS embed.FS

// DefaultSettingsPath is the settings file inside EmbeddedConfigFS.
const DefaultSettingsPath = "config/kiosk.toml"
