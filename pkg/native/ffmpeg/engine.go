// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package ffmpeg implements native.MediaEngine on top of the ffmpeg and
// ffprobe command line tools.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/mediabridge/mediabridge/pkg/event"
	"github.com/mediabridge/mediabridge/pkg/native"
	"github.com/mediabridge/mediabridge/pkg/options"
	"github.com/mediabridge/mediabridge/pkg/paths"
	"github.com/mediabridge/mediabridge/pkg/worker"
)

// ErrDuplicateJob is returned when a compression is started with an id that
// is already running on this engine.
var ErrDuplicateJob = errors.New("job already running")

// Config holds the engine settings.
type Config struct {
	FFmpegPath  string
	FFprobePath string
	CacheDir    string
	Concurrency int
	MinVersion  string
}

// Engine runs ffmpeg processes and publishes their progress.
type Engine struct {
	cfg       Config
	runner    Runner
	publisher native.Publisher
	client    *http.Client
	pool      *worker.Pool
	logger    zerolog.Logger

	mu   sync.Mutex
	jobs map[string]*running
}

type running struct {
	cancel          context.CancelFunc
	cancelRequested bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRunner replaces the command runner (useful for tests).
func WithRunner(r Runner) Option {
	return func(e *Engine) { e.runner = r }
}

// WithHTTPClient replaces the client used to download remote inputs.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) { e.client = c }
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l.With().Str("component", "ffmpeg").Logger() }
}

// New creates an engine publishing progress on publisher. Start must be
// called before Compress.
func New(cfg Config, publisher native.Publisher, opts ...Option) *Engine {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = paths.CacheDir()
	}

	e := &Engine{
		cfg:       cfg,
		runner:    ExecRunner{},
		publisher: publisher,
		client:    http.DefaultClient,
		pool:      worker.NewPool("ffmpeg", cfg.Concurrency),
		logger:    zerolog.Nop(),
		jobs:      make(map[string]*running),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start starts the process pool.
func (e *Engine) Start(ctx context.Context) error {
	return e.pool.Start(ctx)
}

// Stop cancels running jobs and stops the process pool.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	for _, r := range e.jobs {
		r.cancel()
	}
	e.mu.Unlock()
	return e.pool.Stop(ctx)
}

// Compress encodes path according to req and returns the output file path.
// Remote inputs are downloaded first. Inputs smaller than
// req.MinimumFileSizeForCompress megabytes are returned unchanged.
func (e *Engine) Compress(ctx context.Context, path string, req options.VideoRequest) (string, error) {
	ctx, r, err := e.track(ctx, req.UUID)
	if err != nil {
		return "", err
	}
	defer e.untrack(req.UUID)

	log := e.logger.With().Str("job_id", req.UUID).Logger()

	input := paths.TrimFileScheme(path)
	if paths.IsRemote(path) {
		downloaded, err := e.download(ctx, path, req.UUID)
		if err != nil {
			return "", e.classify(r, fmt.Errorf("download input: %w", err))
		}
		defer os.Remove(downloaded)
		input = downloaded
	}

	stat, err := os.Stat(input)
	if err != nil {
		return "", fmt.Errorf("stat input: %w", err)
	}
	if req.MinimumFileSizeForCompress != nil {
		sizeMB := float64(stat.Size()) / (1024 * 1024)
		if sizeMB < *req.MinimumFileSizeForCompress {
			log.Debug().Float64("size_mb", sizeMB).Msg("Input below minimum size, skipping compression")
			return path, nil
		}
	}

	src, err := e.Probe(ctx, input)
	if err != nil {
		return "", e.classify(r, err)
	}

	output, err := e.GenerateOutputFile(ctx, "mp4")
	if err != nil {
		return "", err
	}

	p := planVideo(req, src)
	args := videoArgs(input, output, p, req.MaxSize)
	progress := newProgressWriter(src.Duration, func(f float64) {
		e.publish(ctx, native.EventCompressProgress, req.UUID, map[string]any{"progress": f})
	})

	log.Debug().
		Str("input", input).
		Str("output", output).
		Int("width", p.Width).
		Int("height", p.Height).
		Int64("bitrate", p.Bitrate).
		Str("method", string(req.CompressionMethod)).
		Msg("Starting compression")

	err = e.pool.Do(ctx, func(ctx context.Context) error {
		return e.runner.Run(ctx, e.cfg.FFmpegPath, args, progress)
	})
	if err != nil {
		_ = os.Remove(output)
		return "", e.classify(r, fmt.Errorf("compress %s: %w", req.UUID, err))
	}

	progress.emit(1)
	log.Info().Str("output", output).Msg("Compression finished")
	return output, nil
}

// CompressAudio re-encodes the audio of path into output.
func (e *Engine) CompressAudio(ctx context.Context, path, output string, opts options.AudioOptions) (string, error) {
	opts = options.NormalizeAudio(opts)
	input := paths.TrimFileScheme(path)
	output = paths.TrimFileScheme(output)

	args := audioArgs(input, output, opts)
	err := e.pool.Do(ctx, func(ctx context.Context) error {
		return e.runner.Run(ctx, e.cfg.FFmpegPath, args, &bytes.Buffer{})
	})
	if err != nil {
		return "", fmt.Errorf("compress audio: %w", err)
	}
	return output, nil
}

// Cancel requests cancellation of the job with id. Unknown ids are ignored.
func (e *Engine) Cancel(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.jobs[id]
	if !ok {
		e.logger.Debug().Str("job_id", id).Msg("Cancel for unknown job ignored")
		return
	}
	r.cancelRequested = true
	r.cancel()
}

// Running reports whether a job with id is in progress.
func (e *Engine) Running(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.jobs[id]
	return ok
}

// GenerateOutputFile creates an empty file with the extension in the cache
// directory and returns its path.
func (e *Engine) GenerateOutputFile(_ context.Context, extension string) (string, error) {
	if err := os.MkdirAll(e.cfg.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	name := uuid.NewString()
	if ext := strings.TrimPrefix(extension, "."); ext != "" {
		name += "." + ext
	}
	path := filepath.Join(e.cfg.CacheDir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("generate output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("generate output file: %w", err)
	}
	return path, nil
}

type probeOutput struct {
	Streams []map[string]any `json:"streams"`
	Format  map[string]any   `json:"format"`
}

// Probe reads size, dimensions and duration of path with ffprobe.
func (e *Engine) Probe(ctx context.Context, path string) (*native.Probe, error) {
	var out bytes.Buffer
	if err := e.runner.Run(ctx, e.cfg.FFprobePath, probeArgs(paths.TrimFileScheme(path)), &out); err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}

	var raw probeOutput
	if err := json.Unmarshal(out.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("decode probe output: %w", err)
	}

	p := &native.Probe{
		Size:     cast.ToInt64(raw.Format["size"]),
		Duration: cast.ToFloat64(raw.Format["duration"]),
		Format:   cast.ToString(raw.Format["format_name"]),
		Bitrate:  cast.ToInt64(raw.Format["bit_rate"]),
	}
	if len(raw.Streams) > 0 {
		s := raw.Streams[0]
		p.Width = cast.ToInt(s["width"])
		p.Height = cast.ToInt(s["height"])
		if p.Duration == 0 {
			p.Duration = cast.ToFloat64(s["duration"])
		}
	}
	return p, nil
}

func (e *Engine) track(ctx context.Context, id string) (context.Context, *running, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.jobs[id]; exists {
		return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateJob, id)
	}
	ctx, cancel := context.WithCancel(ctx)
	r := &running{cancel: cancel}
	e.jobs[id] = r
	return ctx, r, nil
}

func (e *Engine) untrack(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r, ok := e.jobs[id]; ok {
		r.cancel()
		delete(e.jobs, id)
	}
}

// classify maps a failure of a cancelled job to native.ErrCancelled.
func (e *Engine) classify(r *running, err error) error {
	e.mu.Lock()
	cancelled := r.cancelRequested
	e.mu.Unlock()

	if cancelled {
		return fmt.Errorf("%w: %w", native.ErrCancelled, err)
	}
	return err
}

func (e *Engine) publish(ctx context.Context, name, id string, data map[string]any) {
	if e.publisher == nil {
		return
	}
	e.publisher.Publish(ctx, event.Event{Name: name, ID: id, Data: data})
}
