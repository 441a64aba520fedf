// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/hazemdh/leadbot-go/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/hazemdh/leadbot-go/internal/buildinfo.Commit=...
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
// Inject via: -X github.com/hazemdh/leadbot-go/internal/buildinfo.BuildDate=...
var BuildDate = ""

// String returns a human-readable release identifier, e.g. "v1.2.0 (a1b2c3d)".
// Falls back to "dev" when no version was injected.
func String() string {
	version := Version
	if version == "" {
		version = "dev"
	}
	if Commit == "" {
		return version
	}
	return version + " (" + Commit + ")"
}
