package transfer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mediabridge/mediabridge/pkg/event"
	"github.com/mediabridge/mediabridge/pkg/native"
)

// DefaultExpiration matches the time a mobile OS usually grants a
// background task before reclaiming it.
const DefaultExpiration = 30 * time.Second

// Background emulates a platform background task: it hands out a handle on
// activation and publishes backgroundTaskExpired when the grant runs out.
// At most one task is active; activating again replaces it.
type Background struct {
	expiration time.Duration
	publisher  native.Publisher
	logger     zerolog.Logger

	mu     sync.Mutex
	handle string
	timer  *time.Timer
}

// NewBackground creates a background task provider. A non-positive
// expiration uses DefaultExpiration.
func NewBackground(expiration time.Duration, publisher native.Publisher, logger zerolog.Logger) *Background {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &Background{
		expiration: expiration,
		publisher:  publisher,
		logger:     logger.With().Str("component", "transfer.background").Logger(),
	}
}

// Activate implements native.BackgroundTasks.
func (b *Background) Activate(ctx context.Context, cfg native.BackgroundTaskConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.logger.Debug().Str("handle", b.handle).Msg("Replacing active background task")
	}

	handle := uuid.NewString()
	b.handle = handle
	b.timer = time.AfterFunc(b.expiration, func() { b.expire(handle) })

	b.logger.Debug().
		Str("handle", handle).
		Str("name", cfg.Name).
		Dur("expiration", b.expiration).
		Msg("Background task activated")
	return handle, nil
}

// Deactivate implements native.BackgroundTasks. It is a no-op when no task
// is active.
func (b *Background) Deactivate(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer == nil {
		return nil
	}
	b.timer.Stop()
	b.logger.Debug().Str("handle", b.handle).Msg("Background task deactivated")
	b.timer = nil
	b.handle = ""
	return nil
}

// Active returns the handle of the active task, if any.
func (b *Background) Active() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handle, b.handle != ""
}

func (b *Background) expire(handle string) {
	b.mu.Lock()
	if b.handle != handle {
		b.mu.Unlock()
		return
	}
	b.handle = ""
	b.timer = nil
	b.mu.Unlock()

	b.logger.Info().Str("handle", handle).Msg("Background task expired")
	if b.publisher != nil {
		b.publisher.Publish(context.Background(), event.Event{
			Name: native.EventBackgroundTaskExpired,
			ID:   handle,
			Data: map[string]any{"handle": handle},
		})
	}
}
