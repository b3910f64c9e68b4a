// AppManager manages the application lifecycle, providing access to the
// application's context and to the wired media components.
// pkg/engine/manager.go
package engine

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mediabridge/mediabridge/pkg/compressor"
	"github.com/mediabridge/mediabridge/pkg/config"
	"github.com/mediabridge/mediabridge/pkg/event"
	"github.com/mediabridge/mediabridge/pkg/hook"
	"github.com/mediabridge/mediabridge/pkg/job"
	"github.com/mediabridge/mediabridge/pkg/native/ffmpeg"
	"github.com/mediabridge/mediabridge/pkg/native/transfer"
	"github.com/mediabridge/mediabridge/pkg/version"
)

// shutdownTimeout bounds how long Shutdown waits for the process pool.
const shutdownTimeout = 10 * time.Second

// AppManager represents the application manager constructed by the factory.
type AppManager struct {
	ctx    context.Context
	cancel context.CancelFunc

	ConfigManager *config.Manager
	EventBus      *event.Bus
	HookManager   *hook.Manager
	Jobs          *job.Registry

	Media      *ffmpeg.Engine
	Uploads    *transfer.Mux
	Background *transfer.Background
	Compressor *compressor.Compressor

	Version version.Struct

	logCloser io.Closer
	once      sync.Once
}

// Context returns the context associated with the AppManager instance.
func (a *AppManager) Context() context.Context {
	return a.ctx
}

// Shutdown fires the shutdown hooks, stops the media engine and cancels the
// application context. It is safe to call more than once.
func (a *AppManager) Shutdown() {
	a.once.Do(func() {
		if a.HookManager != nil {
			a.HookManager.Trigger(a.ctx, hook.OnShutdown, job.Job{})
			a.HookManager.Wait()
		}
		if a.Background != nil {
			_ = a.Background.Deactivate(a.ctx)
		}
		if a.Media != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			if err := a.Media.Stop(ctx); err != nil {
				log.Warn().Err(err).Msg("Media engine did not stop cleanly")
			}
			cancel()
		}
		a.cancel()
		if a.logCloser != nil {
			_ = a.logCloser.Close()
		}
	})
}
