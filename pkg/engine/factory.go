// pkg/engine/factory.go
package engine

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/mediabridge/mediabridge/pkg/compressor"
	"github.com/mediabridge/mediabridge/pkg/config"
	"github.com/mediabridge/mediabridge/pkg/event"
	"github.com/mediabridge/mediabridge/pkg/hook"
	"github.com/mediabridge/mediabridge/pkg/job"
	"github.com/mediabridge/mediabridge/pkg/logging"
	"github.com/mediabridge/mediabridge/pkg/native/ffmpeg"
	"github.com/mediabridge/mediabridge/pkg/native/transfer"
	"github.com/mediabridge/mediabridge/pkg/version"
)

// AppManagerFactory constructs an AppManager with all required components.
type AppManagerFactory interface {
	CreateWithConfig(flags *pflag.FlagSet, configFile string) (*AppManager, error)
}

// DefaultAppManagerFactory wires the ffmpeg engine, the HTTP and S3
// uploaders and the background task provider into a compressor.
type DefaultAppManagerFactory struct{}

// Create loads configuration, configures logging and wires the application.
//
// Parameters:
//   - flags:      A pflag.FlagSet containing runtime flags, may be nil.
//   - configFile: Path to the configuration file.
func (f *DefaultAppManagerFactory) Create(flags *pflag.FlagSet, configFile string) (*AppManager, error) {
	configManager := config.NewManager()
	if err := configManager.Load(flags, configFile); err != nil {
		return nil, err
	}
	cfg := configManager.Get()

	logCloser, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, err
	}
	if level, ok := f.GetRuntimeLogLevel(flags); ok {
		logging.ConfigureGlobal(level)
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := event.New()
	hooks := hook.NewManager()
	jobs := job.NewRegistry()

	media := ffmpeg.New(ffmpeg.Config{
		FFmpegPath:  cfg.Media.FFmpeg,
		FFprobePath: cfg.Media.FFprobe,
		CacheDir:    cfg.Media.CacheDir,
		Concurrency: cfg.Media.Concurrency,
		MinVersion:  cfg.Media.MinVersion,
	}, bus, ffmpeg.WithLogger(log.Logger))
	if err := media.Start(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("start media engine: %w", err)
	}

	client := &http.Client{Timeout: cfg.Upload.Timeout}
	uploads := transfer.NewMux(transfer.NewHTTPUploader(client, bus, log.Logger))
	if cfg.Upload.S3.Enabled {
		s3u, err := transfer.NewS3Uploader(ctx, transfer.S3Config{
			Region:    cfg.Upload.S3.Region,
			Endpoint:  cfg.Upload.S3.Endpoint,
			PathStyle: cfg.Upload.S3.PathStyle,
		}, bus, log.Logger)
		if err != nil {
			_ = media.Stop(ctx)
			cancel()
			return nil, err
		}
		uploads.Handle("s3", s3u)
	}

	background := transfer.NewBackground(cfg.Background.Expiration, bus, log.Logger)

	comp := compressor.New(bus, media,
		compressor.WithRegistry(jobs),
		compressor.WithHooks(hooks),
		compressor.WithUploader(uploads),
		compressor.WithBackground(background),
		compressor.WithPlatform(cfg.Platform),
		compressor.WithLogger(logging.NewLogger("compressor", log.Logger.GetLevel())),
	)

	log.Debug().
		Str("ffmpeg", cfg.Media.FFmpeg).
		Str("cache_dir", cfg.Media.CacheDir).
		Int("concurrency", cfg.Media.Concurrency).
		Str("platform", cfg.Platform).
		Bool("s3", cfg.Upload.S3.Enabled).
		Msg("Application wired")
	log.Debug().Msg(version.Info())

	return &AppManager{
		ctx:           ctx,
		cancel:        cancel,
		ConfigManager: configManager,
		EventBus:      bus,
		HookManager:   hooks,
		Jobs:          jobs,
		Media:         media,
		Uploads:       uploads,
		Background:    background,
		Compressor:    comp,
		Version:       version.Get(),
		logCloser:     logCloser,
	}, nil
}

// CreateWithConfig delegates to Create.
func (f *DefaultAppManagerFactory) CreateWithConfig(flags *pflag.FlagSet, configFile string) (*AppManager, error) {
	return f.Create(flags, configFile)
}

// CreateWithNoConfig creates an AppManager from defaults and environment only.
func (f *DefaultAppManagerFactory) CreateWithNoConfig() (*AppManager, error) {
	return f.Create(nil, "")
}

// GetRuntimeLogLevel maps the -v count to a log level. It reports false when
// no verbosity was requested, leaving the configured level in place.
func (f *DefaultAppManagerFactory) GetRuntimeLogLevel(flags *pflag.FlagSet) (zerolog.Level, bool) {
	if flags == nil {
		return zerolog.NoLevel, false
	}
	verbosityLevel, err := flags.GetCount("verbosity")
	if err != nil || verbosityLevel == 0 {
		return zerolog.NoLevel, false
	}
	switch verbosityLevel {
	case 1:
		return zerolog.InfoLevel, true
	case 2:
		return zerolog.DebugLevel, true
	default:
		return zerolog.TraceLevel, true
	}
}
