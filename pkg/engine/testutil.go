package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mediabridge/mediabridge/pkg/compressor"
	"github.com/mediabridge/mediabridge/pkg/config"
	"github.com/mediabridge/mediabridge/pkg/event"
	"github.com/mediabridge/mediabridge/pkg/hook"
	"github.com/mediabridge/mediabridge/pkg/job"
	"github.com/mediabridge/mediabridge/pkg/native"
)

// NewTestAppManager creates a minimal AppManager around the given media
// engine without loading config files or starting ffmpeg.
func NewTestAppManager(media native.MediaEngine, uploader native.Uploader) *AppManager {
	ctx, cancel := context.WithCancel(context.Background())
	bus := event.New()
	hooks := hook.NewManager()
	jobs := job.NewRegistry()
	return &AppManager{
		ctx:           ctx,
		cancel:        cancel,
		ConfigManager: config.NewManager(),
		EventBus:      bus,
		HookManager:   hooks,
		Jobs:          jobs,
		Compressor: compressor.New(bus, media,
			compressor.WithRegistry(jobs),
			compressor.WithHooks(hooks),
			compressor.WithUploader(uploader),
			compressor.WithLogger(zerolog.Nop()),
		),
	}
}
