package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is set by ldflags during release builds.
	Version = "dev"

	// GitCommit is set by ldflags during release builds.
	GitCommit = ""
)

// Info carries version and build details for the status endpoint and CLI.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func Get() Info {
	return Info{
		Version:   GetVersion(),
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// GetVersion returns the version string, falling back to module build info
// when no ldflags version was set.
func GetVersion() string {
	if Version != "" && Version != "dev" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
	}

	return "dev"
}

// GetShortVersion appends the abbreviated commit when available.
func GetShortVersion() string {
	version := GetVersion()
	if len(GitCommit) >= 7 {
		return fmt.Sprintf("%s-%s", version, GitCommit[:7])
	}
	return version
}
