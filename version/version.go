// Package version provides build and version information for harvester, read from the VCS metadata the Go toolchain
// embeds in the binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Masterminds/semver"
)

// These variables can be set via ldflags at build time. Empty VCS fields are filled from debug.ReadBuildInfo.
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// GitCommit is the git commit hash.
	GitCommit = ""
	// GitCommitTime is the timestamp of the git commit.
	GitCommitTime = ""
	// GitTreeDirty indicates if the git tree was dirty at build time.
	GitTreeDirty = ""
)

// Info contains the full version information for the build.
type Info struct {
	Version       string
	GitCommit     string
	GitCommitTime string
	GitTreeDirty  bool
	GoVersion     string
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if GitCommit == "" {
				GitCommit = setting.Value
			}
		case "vcs.time":
			if GitCommitTime == "" {
				GitCommitTime = setting.Value
			}
		case "vcs.modified":
			if GitTreeDirty == "" {
				GitTreeDirty = setting.Value
			}
		}
	}
}

// GetInfo returns the complete version information.
func GetInfo() Info {
	return Info{
		Version:       Version,
		GitCommit:     GitCommit,
		GitCommitTime: GitCommitTime,
		GitTreeDirty:  GitTreeDirty == "true",
		GoVersion:     runtime.Version(),
	}
}

// SemVer parses the version of the build.
func (i Info) SemVer() (*semver.Version, error) {
	return semver.NewVersion(i.Version)
}

// displayVersion returns the canonical form of the version, so a `v1.2.3` tag set through ldflags prints as `1.2.3`.
// Versions which do not parse are returned as is.
func (i Info) displayVersion() string {
	v, err := i.SemVer()
	if err != nil {
		return i.Version
	}
	return v.String()
}

// ShortCommit returns the first 7 characters of the git commit hash.
func (i Info) ShortCommit() string {
	if len(i.GitCommit) >= 7 {
		return i.GitCommit[:7]
	}
	return i.GitCommit
}

// commitLabel returns the short commit with a `-dirty` marker for modified trees.
func (i Info) commitLabel() string {
	commit := i.ShortCommit()
	if commit != "" && i.GitTreeDirty {
		commit += "-dirty"
	}
	return commit
}

// FormattedTime returns the commit time in a human-readable format.
func (i Info) FormattedTime() string {
	if i.GitCommitTime == "" {
		return "unknown"
	}
	t, err := time.Parse(time.RFC3339, i.GitCommitTime)
	if err != nil {
		return i.GitCommitTime
	}
	return t.Format("2006-01-02 15:04:05 MST")
}

// String returns a formatted multi-line version string.
func (i Info) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("harvester version %s\n", i.displayVersion()))
	if commit := i.commitLabel(); commit != "" {
		sb.WriteString(fmt.Sprintf("  Commit:     %s\n", commit))
	}
	if i.GitCommitTime != "" {
		sb.WriteString(fmt.Sprintf("  Built:      %s\n", i.FormattedTime()))
	}
	sb.WriteString(fmt.Sprintf("  Go version: %s\n", i.GoVersion))
	return sb.String()
}

// Short returns a single-line version string suitable for --version output.
func (i Info) Short() string {
	if commit := i.commitLabel(); commit != "" {
		return i.displayVersion() + "+" + commit
	}
	return i.displayVersion()
}
