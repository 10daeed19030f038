package config

import (
	"os"
	"path/filepath"
	"strings"
)

// FallbackContentRoot is used when neither an explicit root nor the deploy
// root is available.
const FallbackContentRoot = "welcome-data"

// ContentRoot selects the content directory: the explicit setting, else the
// deploy root when it is an existing directory, else FallbackContentRoot.
func (s Settings) ContentRoot() string {
	if root := strings.TrimSpace(s.Paths.ContentRoot); root != "" {
		return expandHome(root)
	}
	if deploy := strings.TrimSpace(s.Paths.DeployRoot); deploy != "" {
		deploy = expandHome(deploy)
		if info, err := os.Stat(deploy); err == nil && info.IsDir() {
			return deploy
		}
	}
	return FallbackContentRoot
}

// ConfigFile returns the display config path; relative paths resolve under
// the content root.
func (s Settings) ConfigFile() string {
	file := strings.TrimSpace(s.Paths.ConfigFile)
	if file == "" {
		return ""
	}
	file = expandHome(file)
	if filepath.IsAbs(file) {
		return filepath.Clean(file)
	}
	return filepath.Join(s.ContentRoot(), file)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
