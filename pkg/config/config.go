// pkg/config/config.go
package config

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/mediabridge/mediabridge/pkg/paths"
)

// Global Koanf instance, initialized once at startup.
var (
	k    *koanf.Koanf
	once sync.Once
)

// InitGlobalConfig initializes the global Koanf instance.
// This should be called early in the application lifecycle, before Load.
func InitGlobalConfig() {
	once.Do(func() {
		k = koanf.New(".")
	})
}

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex
}

// NewManager creates a new Manager backed by the global Koanf instance.
func NewManager() *Manager {
	InitGlobalConfig()
	return &Manager{
		koanfInstance: k,
	}
}

// DefaultConfig returns a new Config struct populated with hardcoded default values.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Media: MediaConfig{
			FFmpeg:      "ffmpeg",
			FFprobe:     "ffprobe",
			CacheDir:    paths.CacheDir(),
			Concurrency: 2,
			MinVersion:  ">= 4.0",
		},
		Upload: UploadConfig{
			Timeout: 0,
		},
		Background: BackgroundConfig{
			Expiration: 30 * time.Second,
		},
		Watch: WatchConfig{
			Cleanup:  "0 0 * * * *",
			MaxAge:   24 * time.Hour,
			Debounce: 2 * time.Second,
		},
		Platform: "desktop",
	}
}

// Load loads configuration from the default sources: defaults, the config
// file, MEDIABRIDGE_* environment variables and command-line flags.
func (m *Manager) Load(flags *pflag.FlagSet, customConfigFilePath string) error {
	debug := false
	if flags != nil {
		if f := flags.Lookup("debug"); f != nil && f.Value.String() == "true" {
			debug = true
		}
	}
	return m.LoadWithSources(DefaultSources(customConfigFilePath, flags, debug))
}

// LoadWithSources loads the given sources in priority order and unmarshals
// the merged result.
func (m *Manager) LoadWithSources(sources []ConfigSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := append([]ConfigSource(nil), sources...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	for _, src := range ordered {
		if err := src.Load(m.koanfInstance); err != nil {
			return fmt.Errorf("config source %s: %w", src.Name(), err)
		}
	}

	var newCfg Config
	if err := m.koanfInstance.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	m.currentConfig = newCfg
	m.postProcessConfig()
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentConfig
}

// UpdateRuntimeValue sets key on the live configuration and re-unmarshals it.
func (m *Manager) UpdateRuntimeValue(key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.koanfInstance.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	var newCfg Config
	if err := m.koanfInstance.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	m.currentConfig = newCfg
	m.postProcessConfig()
	return nil
}

// postProcessConfig restores defaults that were explicitly blanked out.
func (m *Manager) postProcessConfig() {
	def := DefaultConfig()
	if m.currentConfig.Media.FFmpeg == "" {
		m.currentConfig.Media.FFmpeg = def.Media.FFmpeg
	}
	if m.currentConfig.Media.FFprobe == "" {
		m.currentConfig.Media.FFprobe = def.Media.FFprobe
	}
	if m.currentConfig.Media.CacheDir == "" {
		m.currentConfig.Media.CacheDir = def.Media.CacheDir
	}
	if m.currentConfig.Media.Concurrency <= 0 {
		m.currentConfig.Media.Concurrency = def.Media.Concurrency
	}
}

// DefaultConfigAsMap converts the DefaultConfig struct to a map for Koanf's
// confmap.Provider so that every key is known before flags are loaded.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"log.level":  def.Log.Level,
		"log.format": def.Log.Format,
		"log.file":   def.Log.File,

		"media.ffmpeg":      def.Media.FFmpeg,
		"media.ffprobe":     def.Media.FFprobe,
		"media.cachedir":    def.Media.CacheDir,
		"media.concurrency": def.Media.Concurrency,
		"media.minversion":  def.Media.MinVersion,

		"upload.timeout":      def.Upload.Timeout,
		"upload.s3.enabled":   def.Upload.S3.Enabled,
		"upload.s3.region":    def.Upload.S3.Region,
		"upload.s3.endpoint":  def.Upload.S3.Endpoint,
		"upload.s3.pathstyle": def.Upload.S3.PathStyle,

		"background.expiration": def.Background.Expiration,

		"watch.upload":   def.Watch.Upload,
		"watch.cleanup":  def.Watch.Cleanup,
		"watch.maxage":   def.Watch.MaxAge,
		"watch.debounce": def.Watch.Debounce,

		"platform": def.Platform,
	}
}

// flagKeys maps the flags registered by BindFlags to the keys they set.
var flagKeys = map[string]string{
	"log-level":      "log.level",
	"log-format":     "log.format",
	"log-file":       "log.file",
	"ffmpeg":         "media.ffmpeg",
	"ffprobe":        "media.ffprobe",
	"cache-dir":      "media.cachedir",
	"concurrency":    "media.concurrency",
	"upload-timeout": "upload.timeout",
	"s3":             "upload.s3.enabled",
	"s3-region":      "upload.s3.region",
	"s3-endpoint":    "upload.s3.endpoint",
	"s3-path-style":  "upload.s3.pathstyle",
	"platform":       "platform",
}

// BindFlags defines the global flags that override configuration. FlagSource
// translates them to config keys through flagKeys.
func BindFlags(flags *pflag.FlagSet) {
	defaults := DefaultConfig()

	var flagvar bool
	flags.BoolVar(&flagvar, "debug", false, "Enable debug logging")

	flags.String("log-level", defaults.Log.Level, "Log level: debug, info, warn or error")
	flags.String("log-format", defaults.Log.Format, "Log format: text or json")
	flags.String("log-file", defaults.Log.File, "Also write logs to this file")

	flags.String("ffmpeg", defaults.Media.FFmpeg, "Path to the ffmpeg binary")
	flags.String("ffprobe", defaults.Media.FFprobe, "Path to the ffprobe binary")
	flags.String("cache-dir", defaults.Media.CacheDir, "Directory for downloads and generated files")
	flags.Int("concurrency", defaults.Media.Concurrency, "Maximum number of concurrent ffmpeg processes")
	flags.String("platform", defaults.Platform, "Target platform: android, ios or desktop")

	flags.Duration("upload-timeout", defaults.Upload.Timeout, "HTTP upload timeout, 0 disables it")
	flags.Bool("s3", defaults.Upload.S3.Enabled, "Route s3:// destinations to S3")
	flags.String("s3-region", defaults.Upload.S3.Region, "AWS region for s3:// uploads")
	flags.String("s3-endpoint", defaults.Upload.S3.Endpoint, "Custom endpoint for S3 compatible stores")
	flags.Bool("s3-path-style", defaults.Upload.S3.PathStyle, "Use path style bucket addressing")
}
