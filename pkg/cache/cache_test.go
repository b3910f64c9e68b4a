package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	ts := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(p, ts, ts))
	return p
}

func TestCleanupOld(t *testing.T) {
	dir := t.TempDir()
	old := touch(t, dir, "download-1.mp4", 48*time.Hour)
	fresh := touch(t, dir, "out.mp4", time.Minute)
	hidden := touch(t, dir, ".mediabridge.lock", 48*time.Hour)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	n, err := CleanupOld(dir, 24*time.Hour, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, hidden)
	assert.DirExists(t, filepath.Join(dir, "nested"))
}

func TestCleanupOld_MissingDir(t *testing.T) {
	n, err := CleanupOld(filepath.Join(t.TempDir(), "missing"), time.Hour, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewCleaner_InvalidSchedule(t *testing.T) {
	_, err := NewCleaner(t.TempDir(), time.Hour, "every tuesday", zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cleanup schedule")

	_, err = NewCleaner(t.TempDir(), 0, "* * * * * *", zerolog.Nop())
	require.Error(t, err)
}

func TestCleaner_RunsOnSchedule(t *testing.T) {
	dir := t.TempDir()
	old := touch(t, dir, "download-2.mp4", 2*time.Hour)

	c, err := NewCleaner(dir, time.Hour, "* * * * * *", zerolog.Nop())
	require.NoError(t, err)
	c.Start()
	defer func() { <-c.Stop().Done() }()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(old)
		return os.IsNotExist(err)
	}, 3*time.Second, 20*time.Millisecond)
}
