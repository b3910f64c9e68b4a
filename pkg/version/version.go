// pkg/version/version.go
// Package version provides version metadata for the application.
package version

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Masterminds/semver/v3"
)

// These variables are typically injected at build time using -ldflags
var (
	// Version holds the current version of mediabridge.
	Version = "dev"
	// Commit holds the current version commit of mediabridge.
	Commit = "none"
	// BuildDate holds the build date of mediabridge.
	BuildDate = "unknown"
	// StartDate holds the start date of mediabridge.
	StartDate = time.Now()
)

// Struct returns version information in a structured format.
type Struct struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("Mediabridge %s (commit: %s, date: %s)", Version, Commit, BuildDate)
}

// Get returns version information as a Struct.
func Get() Struct {
	return Struct{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// IsNewer reports whether candidate is a newer release than the running
// build. Development builds and pre-release candidates never count as newer.
func IsNewer(candidate string) (bool, error) {
	if Version == "dev" {
		return false, nil
	}
	current, err := semver.NewVersion(Version)
	if err != nil {
		return false, fmt.Errorf("parse current version %q: %w", Version, err)
	}
	next, err := semver.NewVersion(candidate)
	if err != nil {
		return false, fmt.Errorf("parse candidate version %q: %w", candidate, err)
	}
	if current.Prerelease() == "" && next.Prerelease() != "" {
		return false, nil
	}
	return next.GreaterThan(current), nil
}
