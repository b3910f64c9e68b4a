// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package compressor orchestrates media jobs. Every call issues a correlation
// id, subscribes the caller's progress handlers on the shared event bus, runs
// the native operation and releases the subscriptions before it returns,
// whatever the outcome.
package compressor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mediabridge/mediabridge/pkg/event"
	"github.com/mediabridge/mediabridge/pkg/hook"
	"github.com/mediabridge/mediabridge/pkg/job"
	"github.com/mediabridge/mediabridge/pkg/native"
	"github.com/mediabridge/mediabridge/pkg/options"
	"github.com/mediabridge/mediabridge/pkg/paths"
)

// PlatformAndroid is the target platform on which local file urls are
// handed to the uploader without their file:// scheme.
const PlatformAndroid = "android"

// Compressor ties the bus, the job registry and the native engines together.
type Compressor struct {
	bus        *event.Bus
	jobs       *job.Registry
	hooks      *hook.Manager
	media      native.MediaEngine
	uploader   native.Uploader
	background native.BackgroundTasks
	platform   string
	logger     zerolog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// Option customizes a Compressor.
type Option func(*Compressor)

// WithRegistry shares a job registry with other components.
func WithRegistry(r *job.Registry) Option {
	return func(c *Compressor) { c.jobs = r }
}

// WithHooks sets the lifecycle hook manager.
func WithHooks(h *hook.Manager) Option {
	return func(c *Compressor) { c.hooks = h }
}

// WithUploader sets the upload engine.
func WithUploader(u native.Uploader) Option {
	return func(c *Compressor) { c.uploader = u }
}

// WithBackground sets the background task engine.
func WithBackground(b native.BackgroundTasks) Option {
	return func(c *Compressor) { c.background = b }
}

// WithPlatform sets the target platform name, e.g. "android" or "ios".
func WithPlatform(p string) Option {
	return func(c *Compressor) { c.platform = strings.ToLower(p) }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Compressor) { c.logger = l }
}

// New creates a compressor publishing on bus and compressing with media.
func New(bus *event.Bus, media native.MediaEngine, opts ...Option) *Compressor {
	c := &Compressor{
		bus:     bus,
		media:   media,
		logger:  log.With().Str("component", "compressor").Logger(),
		cancels: make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.jobs == nil {
		c.jobs = job.NewRegistry()
	}
	if c.hooks == nil {
		c.hooks = hook.NewManager()
	}
	return c
}

// Jobs returns the outstanding jobs, oldest first.
func (c *Compressor) Jobs() []job.Job {
	return c.jobs.List()
}

// Compress compresses the video at fileURL. onProgress, when set, receives
// compression progress in [0, 1] for this job only.
func (c *Compressor) Compress(ctx context.Context, fileURL string, o options.VideoOptions, onProgress func(progress float64)) (string, error) {
	if strings.TrimSpace(fileURL) == "" {
		return "", emptyURL()
	}

	id := job.GenerateID()
	req := options.NormalizeVideo(id, o)

	return run(ctx, c, id, job.KindCompress, func(scope *event.Scope) {
		if onProgress != nil {
			scope.Subscribe(native.EventCompressProgress, func(_ context.Context, ev event.Event) {
				onProgress(ev.Float("progress"))
			})
		}
		if o.DownloadProgress != nil {
			scope.Subscribe(native.EventDownloadProgress, func(_ context.Context, ev event.Event) {
				o.DownloadProgress(ev.Float("progress"))
			})
		}
		if o.GetCancellationID != nil {
			o.GetCancellationID(id)
		}
	}, func(ctx context.Context) (string, error) {
		return c.media.Compress(ctx, fileURL, req)
	})
}

// BackgroundUpload uploads the local file at fileURL to url. onProgress,
// when set, receives the bytes written so far and the total size.
func (c *Compressor) BackgroundUpload(ctx context.Context, url, fileURL string, o options.UploadOptions, onProgress func(written, total int64)) (*native.HTTPResponse, error) {
	if strings.TrimSpace(fileURL) == "" {
		return nil, emptyURL()
	}
	if c.uploader == nil {
		return nil, wrapEngine(errors.New("no uploader configured"))
	}

	id := job.GenerateID()
	req, err := options.NormalizeUpload(id, url, o)
	if err != nil {
		return nil, invalidOptions(err)
	}

	path := fileURL
	if c.platform == PlatformAndroid {
		path = paths.TrimFileScheme(path)
	}

	return run(ctx, c, id, job.KindUpload, func(scope *event.Scope) {
		if onProgress != nil {
			scope.Subscribe(native.EventUploadProgress, func(_ context.Context, ev event.Event) {
				onProgress(ev.Int("written"), ev.Int("total"))
			})
		}
	}, func(ctx context.Context) (*native.HTTPResponse, error) {
		return c.uploader.Upload(ctx, path, req)
	})
}

// CancelCompression asks the engine running id to abort. It does not wait
// for the job to stop; the original call settles with whatever the engine
// reports. Unknown ids are forwarded to the media engine, which ignores them.
func (c *Compressor) CancelCompression(id string) {
	j, ok := c.jobs.RequestCancel(id)
	if !ok {
		c.logger.Debug().Str("job_id", id).Msg("Cancel requested for unknown job")
		if c.media != nil {
			c.media.Cancel(id)
		}
		return
	}

	c.logger.Info().Str("job_id", id).Str("kind", string(j.Kind)).Msg("Cancel requested")
	c.cancelContext(id)
	switch j.Kind {
	case job.KindUpload:
		if c.uploader != nil {
			c.uploader.Cancel(id)
		}
	default:
		if c.media != nil {
			c.media.Cancel(id)
		}
	}
}

// run drives one job through its lifecycle. subscribe registers the job's
// listeners on a scope that is closed before run returns.
func run[T any](ctx context.Context, c *Compressor, id string, kind job.Kind, subscribe func(*event.Scope), call func(context.Context) (T, error)) (T, error) {
	var zero T

	j, err := c.jobs.Begin(id, kind)
	if err != nil {
		return zero, WithErrorCode(err, errorCodeDuplicateJob)
	}
	c.hooks.TriggerStatus(ctx, j)

	// The job context is cancelled along with the engine request, so a cancel
	// that reaches the engine before it tracks the id still stops the call.
	jobCtx, cancel := context.WithCancel(ctx)
	c.setCancel(id, cancel)
	defer c.clearCancel(id)

	scope := c.bus.Scope(id)
	defer scope.Close()

	subscribe(scope)

	logger := c.logger.With().Str("job_id", id).Str("kind", string(kind)).Logger()

	// A cancel issued from the id callback arrives before the engine knows
	// the job, so it is honoured here instead.
	if c.cancelRequested(id) {
		c.finish(ctx, id, job.StatusCancelled)
		logger.Info().Msg("Job cancelled before start")
		return zero, wrapEngine(native.ErrCancelled)
	}

	c.finish(ctx, id, job.StatusRunning)
	logger.Debug().Msg("Job started")

	out, err := call(jobCtx)
	switch {
	case err == nil:
		c.finish(ctx, id, job.StatusCompleted)
		logger.Debug().Msg("Job completed")
		return out, nil
	case errors.Is(err, native.ErrCancelled) || c.cancelRequested(id):
		if !errors.Is(err, native.ErrCancelled) {
			err = fmt.Errorf("%w: %w", native.ErrCancelled, err)
		}
		c.finish(ctx, id, job.StatusCancelled)
		logger.Info().Msg("Job cancelled")
	default:
		c.finish(ctx, id, job.StatusFailed)
		logger.Warn().Err(err).Msg("Job failed")
	}
	return zero, wrapEngine(err)
}

func (c *Compressor) cancelRequested(id string) bool {
	j, ok := c.jobs.Get(id)
	return ok && j.CancelRequested
}

func (c *Compressor) setCancel(id string, cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancels[id] = cancel
}

func (c *Compressor) clearCancel(id string) {
	c.mu.Lock()
	cancel, ok := c.cancels[id]
	delete(c.cancels, id)
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

func (c *Compressor) cancelContext(id string) {
	c.mu.Lock()
	cancel, ok := c.cancels[id]
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

// finish records a status change and fires its hooks.
func (c *Compressor) finish(ctx context.Context, id string, status job.Status) {
	j, err := c.jobs.Transition(id, status)
	if err != nil {
		c.logger.Error().Err(err).Str("job_id", id).Msg("Job transition rejected")
		return
	}
	c.hooks.TriggerStatus(ctx, j)
}
