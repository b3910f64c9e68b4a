package compressor

import (
	"context"
	"errors"

	"github.com/mediabridge/mediabridge/pkg/event"
	"github.com/mediabridge/mediabridge/pkg/job"
	"github.com/mediabridge/mediabridge/pkg/native"
)

// ActivateBackgroundTask starts a background task and returns its handle.
// onExpired runs at most once, when the task expires; its listener removes
// itself before the first call.
func (c *Compressor) ActivateBackgroundTask(ctx context.Context, onExpired func(ev event.Event)) (string, error) {
	if c.background == nil {
		return "", wrapEngine(errors.New("no background task provider configured"))
	}

	// Activating again replaces the previous task.
	c.endBackgroundJobs(ctx, job.StatusCompleted)

	sub := c.bus.Once(native.EventBackgroundTaskExpired, func(ctx context.Context, ev event.Event) {
		c.endBackgroundJob(ctx, ev.ID, job.StatusCancelled)
		if onExpired != nil {
			onExpired(ev)
		}
	})

	handle, err := c.background.Activate(ctx, native.BackgroundTaskConfig{Name: "mediabridge"})
	if err != nil {
		sub.Remove()
		return "", wrapEngine(err)
	}

	if j, err := c.jobs.Begin(handle, job.KindBackgroundTask); err == nil {
		c.hooks.TriggerStatus(ctx, j)
		c.finish(ctx, handle, job.StatusRunning)
	} else {
		c.logger.Warn().Err(err).Str("handle", handle).Msg("Background task handle already tracked")
	}

	c.logger.Debug().Str("handle", handle).Msg("Background task activated")
	return handle, nil
}

// DeactivateBackgroundTask removes every expiry listener and ends the
// active background task.
func (c *Compressor) DeactivateBackgroundTask(ctx context.Context) error {
	removed := c.bus.RemoveAllListeners(native.EventBackgroundTaskExpired)
	c.logger.Debug().Int("listeners", removed).Msg("Background expiry listeners removed")

	c.endBackgroundJobs(ctx, job.StatusCompleted)

	if c.background == nil {
		return nil
	}
	if err := c.background.Deactivate(ctx); err != nil {
		return wrapEngine(err)
	}
	return nil
}

func (c *Compressor) endBackgroundJobs(ctx context.Context, status job.Status) {
	for _, j := range c.jobs.List() {
		if j.Kind == job.KindBackgroundTask {
			c.endBackgroundJob(ctx, j.ID, status)
		}
	}
}

func (c *Compressor) endBackgroundJob(ctx context.Context, handle string, status job.Status) {
	j, ok := c.jobs.Get(handle)
	if !ok || j.Kind != job.KindBackgroundTask {
		return
	}
	c.finish(ctx, handle, status)
}
