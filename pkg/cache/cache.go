// Package cache removes stale downloads and generated output files from the
// media cache directory, once or on a cron schedule.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CleanupOld removes regular files directly inside dir whose modification
// time is older than maxAge. Hidden files are kept. A missing dir is not an
// error.
func CleanupOld(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cache dir: %w", err)
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// Cleaner runs CleanupOld on a cron schedule. Schedules use the six field
// format with seconds, e.g. "0 */30 * * * *".
type Cleaner struct {
	dir    string
	maxAge time.Duration
	cron   *cron.Cron
	logger zerolog.Logger
	now    func() time.Time
}

// NewCleaner validates schedule and prepares a cleaner for dir.
func NewCleaner(dir string, maxAge time.Duration, schedule string, logger zerolog.Logger) (*Cleaner, error) {
	if maxAge <= 0 {
		return nil, fmt.Errorf("cache max age must be positive, got %s", maxAge)
	}
	c := &Cleaner{
		dir:    dir,
		maxAge: maxAge,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With().Str("component", "cache").Logger(),
		now:    time.Now,
	}
	if _, err := c.cron.AddFunc(schedule, c.Run); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return c, nil
}

// Run performs one cleanup pass.
func (c *Cleaner) Run() {
	n, err := CleanupOld(c.dir, c.maxAge, c.now())
	if err != nil {
		c.logger.Warn().Err(err).Str("dir", c.dir).Msg("Cache cleanup incomplete")
	}
	if n > 0 {
		c.logger.Info().Int("removed", n).Str("dir", c.dir).Msg("Cache cleaned")
	}
}

// Start starts the scheduler in its own goroutine.
func (c *Cleaner) Start() {
	c.cron.Start()
}

// Stop stops the scheduler. The returned context is done once a running
// cleanup pass has finished.
func (c *Cleaner) Stop() context.Context {
	return c.cron.Stop()
}
