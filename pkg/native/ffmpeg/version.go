package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// DefaultMinVersion is the ffmpeg version constraint used when none is configured.
const DefaultMinVersion = ">= 4.0"

// ErrUnsupportedVersion is returned when the installed ffmpeg does not
// satisfy the configured constraint.
var ErrUnsupportedVersion = errors.New("unsupported ffmpeg version")

var versionRe = regexp.MustCompile(`ffmpeg version n?(\d+(?:\.\d+){0,2})`)

// parseVersion extracts the release version from `ffmpeg -version` output.
// It returns nil for builds without a release number, such as git snapshots.
func parseVersion(out string) (*semver.Version, error) {
	m := versionRe.FindStringSubmatch(out)
	if m == nil {
		return nil, nil
	}
	return semver.NewVersion(m[1])
}

// CheckVersion runs `ffmpeg -version` and verifies it against the configured
// constraint. Snapshot builds are accepted with a warning.
func (e *Engine) CheckVersion(ctx context.Context) (*semver.Version, error) {
	constraint := e.cfg.MinVersion
	if constraint == "" {
		constraint = DefaultMinVersion
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("parse version constraint %q: %w", constraint, err)
	}

	var out bytes.Buffer
	if err := e.runner.Run(ctx, e.cfg.FFmpegPath, []string{"-version"}, &out); err != nil {
		return nil, fmt.Errorf("run %s -version: %w", e.cfg.FFmpegPath, err)
	}

	v, err := parseVersion(out.String())
	if err != nil {
		return nil, fmt.Errorf("parse ffmpeg version: %w", err)
	}
	if v == nil {
		e.logger.Warn().Msg("Could not determine ffmpeg release version, assuming compatible")
		return nil, nil
	}
	if !c.Check(v) {
		return v, fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, v, constraint)
	}
	return v, nil
}
