package version

import (
	"fmt"
	"strconv"
)

// Version values are set at build time using -ldflags.
var Version = "dev"
var Major = "0"
var Minor = "0"
var Patch = "0"
var Built = ""
var GitCommit = ""

type VersionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Major     int    `json:"major" yaml:"major"`
	Minor     int    `json:"minor" yaml:"minor"`
	Patch     int    `json:"patch" yaml:"patch"`
	Built     string `json:"built" yaml:"built"`
	GitCommit string `json:"git_commit,omitempty" yaml:"git_commit,omitempty"`
}

func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		Major:     parseInt(Major),
		Minor:     parseInt(Minor),
		Patch:     parseInt(Patch),
		Built:     Built,
		GitCommit: GitCommit,
	}
}

// String formats the version for display, with the commit when known.
func (info VersionInfo) String() string {
	if info.GitCommit == "" {
		return info.Version
	}
	return fmt.Sprintf("%s (%s)", info.Version, info.GitCommit)
}

func parseInt(value string) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return parsed
}
