package types

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver"
)

// NormalizeCompilerVersion reduces a compiler version string such as "v0.8.19+commit.7dd6d404" or
// "0.5.16+commit.9c3226ce.Emscripten.clang" to its "major.minor.patch" form. Versions that cannot be parsed are
// returned trimmed but otherwise unchanged.
func NormalizeCompilerVersion(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	parsed, err := semver.NewVersion(version)
	if err != nil {
		return version
	}
	return fmt.Sprintf("%d.%d.%d", parsed.Major(), parsed.Minor(), parsed.Patch())
}
