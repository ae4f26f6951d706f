package buildconfig

import (
	"runtime"
	"time"
)

// Set with -ldflags "-X github.com/Harshitk-cp/askdesk/internal/buildconfig.version=..."
var (
	version = "dev"
	commit  = "unknown"
)

var startedAt = time.Now()

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"goVersion"`
}

func Version() string {
	return version
}

func Commit() string {
	return commit
}

func VersionInfo() Info {
	return Info{
		Version:   version,
		Commit:    commit,
		GoVersion: runtime.Version(),
	}
}

// Uptime is the time since the process loaded this package.
func Uptime() time.Duration {
	return time.Since(startedAt)
}
