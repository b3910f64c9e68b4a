package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to reset global variables for testing
func resetGlobalConfig() {
	k = nil
	once = sync.Once{}
}

func TestNewManager_SharesGlobalKoanf(t *testing.T) {
	resetGlobalConfig()
	first := NewManager()
	InitGlobalConfig()
	second := NewManager()

	require.NotNil(t, k)
	assert.Equal(t, ".", k.Delim())
	assert.Same(t, k, first.koanfInstance)
	assert.Same(t, first.koanfInstance, second.koanfInstance)
}

func TestManager_Load_FlagOverrides(t *testing.T) {
	tests := []struct {
		name  string
		set   map[string]string
		check func(t *testing.T, cfg Config)
	}{
		{
			name: "log flags",
			set:  map[string]string{"log-level": "error", "log-format": "json", "log-file": "/tmp/mediabridge.log"},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "error", cfg.Log.Level)
				assert.Equal(t, "json", cfg.Log.Format)
				assert.Equal(t, "/tmp/mediabridge.log", cfg.Log.File)
			},
		},
		{
			name: "debug wins over log level",
			set:  map[string]string{"debug": "true", "log-level": "warn"},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "debug", cfg.Log.Level)
			},
		},
		{
			name: "unset flags keep defaults",
			set:  map[string]string{},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "info", cfg.Log.Level)
				assert.Equal(t, "text", cfg.Log.Format)
				assert.Empty(t, cfg.Log.File)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobalConfig()
			flags := newTestFlagSet()
			for name, value := range tt.set {
				require.NoError(t, flags.Set(name, value))
			}
			manager := NewManager()
			require.NoError(t, manager.Load(flags, ""))
			tt.check(t, manager.Get())
		})
	}
}

func TestBindFlags_RegistersMediaFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)

	debug := flags.Lookup("debug")
	require.NotNil(t, debug)
	assert.Equal(t, "false", debug.DefValue)

	for name, def := range map[string]string{
		"ffmpeg":         "ffmpeg",
		"ffprobe":        "ffprobe",
		"concurrency":    "2",
		"platform":       "desktop",
		"log-level":      "info",
		"upload-timeout": "0s",
		"s3":             "false",
		"s3-path-style":  "false",
	} {
		f := flags.Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, def, f.DefValue, name)
	}

	require.NoError(t, flags.Set("debug", "true"))
	on, err := flags.GetBool("debug")
	require.NoError(t, err)
	assert.True(t, on)
}

func TestManager_UpdateRuntimeValue_AppliesValue(t *testing.T) {
	resetGlobalConfig()
	manager := NewManager()
	require.NoError(t, manager.Load(nil, ""))

	require.NoError(t, manager.UpdateRuntimeValue("media.concurrency", 6))
	assert.Equal(t, 6, manager.Get().Media.Concurrency)
}

func TestManager_Load_Defaults(t *testing.T) {
	resetGlobalConfig()
	manager := NewManager()
	require.NoError(t, manager.Load(nil, ""))

	cfg := manager.Get()
	assert.Equal(t, "ffmpeg", cfg.Media.FFmpeg)
	assert.Equal(t, "ffprobe", cfg.Media.FFprobe)
	assert.Equal(t, 2, cfg.Media.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Background.Expiration)
	assert.Equal(t, 24*time.Hour, cfg.Watch.MaxAge)
	assert.Equal(t, "desktop", cfg.Platform)
	assert.NotEmpty(t, cfg.Media.CacheDir)
}

func TestManager_Load_Layering(t *testing.T) {
	resetGlobalConfig()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
platform: ios
media:
  concurrency: 4
background:
  expiration: 1m
`), 0o644))
	t.Setenv("MEDIABRIDGE_PLATFORM", "android")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	require.NoError(t, flags.Set("concurrency", "8"))

	manager := NewManager()
	require.NoError(t, manager.Load(flags, path))

	cfg := manager.Get()
	assert.Equal(t, "android", cfg.Platform, "env overrides file")
	assert.Equal(t, 8, cfg.Media.Concurrency, "flags override file")
	assert.Equal(t, time.Minute, cfg.Background.Expiration)
}

func TestManager_PostProcess_RestoresBlankDefaults(t *testing.T) {
	resetGlobalConfig()
	manager := NewManager()
	require.NoError(t, manager.Load(nil, ""))
	require.NoError(t, manager.UpdateRuntimeValue("media.ffmpeg", ""))
	require.NoError(t, manager.UpdateRuntimeValue("media.concurrency", 0))

	cfg := manager.Get()
	assert.Equal(t, "ffmpeg", cfg.Media.FFmpeg)
	assert.Equal(t, 2, cfg.Media.Concurrency)
}

func newTestFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	return flags
}
