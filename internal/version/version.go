// Package version reports build information for LocaleDrift
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const devCommit = "dev"

var (
	// Version is the release version, overridden with -ldflags at build time
	Version = "0.3.0"

	// GitCommit is the git commit hash (set during build)
	GitCommit = devCommit

	// BuildDate is the build date (set during build)
	BuildDate = "unknown"

	// GoVersion is the Go version used to build
	GoVersion = runtime.Version()

	// Platform is the target platform
	Platform = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

// Info is the version information printed by `localedrift version`
type Info struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
	Modified  bool   `json:"modified,omitempty" yaml:"modified,omitempty"`
}

// GetVersion returns the version information. When no commit was injected
// at link time, the VCS stamp recorded by the Go toolchain is used.
func GetVersion() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
		Platform:  Platform,
	}

	if info.GitCommit == devCommit {
		applyVCSStamp(&info)
	}

	return info
}

// IsDevelopment reports whether the binary carries no release commit
func (i Info) IsDevelopment() bool {
	return i.GitCommit == devCommit
}

// GetVersionString returns a one-line version string
func GetVersionString() string {
	info := GetVersion()
	if info.IsDevelopment() {
		return fmt.Sprintf("LocaleDrift %s (development build)", info.Version)
	}
	return fmt.Sprintf("LocaleDrift %s (commit %s, built %s)", info.Version, shortCommit(info.GitCommit), info.BuildDate)
}

// GetDetailedVersionString returns every field on its own line
func GetDetailedVersionString() string {
	info := GetVersion()
	commit := info.GitCommit
	if info.Modified {
		commit += " (modified)"
	}
	return fmt.Sprintf(`LocaleDrift Version Information:
  Version:    %s
  Git Commit: %s
  Build Date: %s
  Go Version: %s
  Platform:   %s`, info.Version, commit, info.BuildDate, info.GoVersion, info.Platform)
}

func applyVCSStamp(info *Info) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if s.Value != "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "unknown" && s.Value != "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

func shortCommit(commit string) string {
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}
