// Package version holds the reliverse build identity.
package version

import "fmt"

// Set at build time with -ldflags "-X github.com/reliverse/reliverse/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// GetVersion returns the release version.
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version with commit and build date.
func GetFullVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}

// UserAgent is sent with outgoing HTTP requests.
func UserAgent() string {
	return "reliverse/" + Version
}
