// pkg/config/types.go
package config

import "time"

// Config is the root configuration structure for mediabridge.
// Keys are single words so that MEDIABRIDGE_* environment variables map onto
// them unambiguously.
type Config struct {
	Log        LogConfig        `description:"Logging configuration" koanf:"log"`
	Media      MediaConfig      `description:"Media engine configuration" koanf:"media"`
	Upload     UploadConfig     `description:"Upload engine configuration" koanf:"upload"`
	Background BackgroundConfig `description:"Background task configuration" koanf:"background"`
	Watch      WatchConfig      `description:"Folder watcher configuration" koanf:"watch"`
	Platform   string           `description:"Target platform: android | ios | desktop" koanf:"platform"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level  string `description:"Log level (debug, info, warn, error)" koanf:"level"`
	Format string `description:"Log format: json | text" koanf:"format"`
	File   string `description:"Log file path" koanf:"file"`
}

// MediaConfig configures the ffmpeg media engine.
type MediaConfig struct {
	FFmpeg      string `description:"Path to the ffmpeg binary" koanf:"ffmpeg"`
	FFprobe     string `description:"Path to the ffprobe binary" koanf:"ffprobe"`
	CacheDir    string `description:"Directory for downloads and generated output files" koanf:"cachedir"`
	Concurrency int    `description:"Maximum number of concurrent ffmpeg processes" koanf:"concurrency"`
	MinVersion  string `description:"Required ffmpeg version constraint" koanf:"minversion"`
}

// UploadConfig configures the upload engines.
type UploadConfig struct {
	Timeout time.Duration `description:"HTTP upload timeout, 0 disables it" koanf:"timeout"`
	S3      S3Config      `description:"S3 destination settings" koanf:"s3"`
}

// S3Config configures the S3 client used for s3:// destinations.
type S3Config struct {
	Enabled   bool   `description:"Route s3:// destinations to S3" koanf:"enabled"`
	Region    string `description:"AWS region" koanf:"region"`
	Endpoint  string `description:"Custom endpoint for S3 compatible stores" koanf:"endpoint"`
	PathStyle bool   `description:"Use path style bucket addressing" koanf:"pathstyle"`
}

// BackgroundConfig configures background task emulation.
type BackgroundConfig struct {
	Expiration time.Duration `description:"Time a background task is granted before it expires" koanf:"expiration"`
}

// WatchConfig configures `mediabridge watch`.
type WatchConfig struct {
	Upload   string        `description:"Upload compressed files to this url" koanf:"upload"`
	Cleanup  string        `description:"Cron schedule for cache cleanup" koanf:"cleanup"`
	MaxAge   time.Duration `description:"Cache entries older than this are removed" koanf:"maxage"`
	Debounce time.Duration `description:"Quiet period before a new file is processed" koanf:"debounce"`
}
