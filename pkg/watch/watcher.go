// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package watch compresses media files as they appear in a directory and
// optionally uploads the results.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/mediabridge/mediabridge/pkg/native"
	"github.com/mediabridge/mediabridge/pkg/options"
	"github.com/mediabridge/mediabridge/pkg/paths"
)

// LockFile is created in every watched directory. Only the process holding
// it processes files there.
const LockFile = ".mediabridge.lock"

// DefaultDebounce is the quiet period after the last write to a file before
// it is picked up.
const DefaultDebounce = 2 * time.Second

// ErrLocked is returned by Start when another watcher holds the directory.
var ErrLocked = errors.New("directory is already watched by another process")

// DefaultExtensions lists the video extensions picked up when Config leaves
// Extensions empty.
var DefaultExtensions = []string{"mp4", "mov", "m4v", "mkv", "avi", "webm", "3gp"}

// Compressor is the subset of the compressor used by the watcher.
type Compressor interface {
	Compress(ctx context.Context, fileURL string, o options.VideoOptions, onProgress func(float64)) (string, error)
	BackgroundUpload(ctx context.Context, url, fileURL string, o options.UploadOptions, onProgress func(written, total int64)) (*native.HTTPResponse, error)
}

// Config configures a Watcher.
type Config struct {
	Dir        string
	Extensions []string
	Debounce   time.Duration
	Video      options.VideoOptions

	// UploadURL, when set, receives every compressed file.
	UploadURL string
	Upload    options.UploadOptions

	// OnResult is called once per processed file.
	OnResult func(Result)
}

// Result describes one processed file.
type Result struct {
	Source   string
	Output   string
	Response *native.HTTPResponse
	Err      error
}

// Watcher reacts to new media files in a single directory.
type Watcher struct {
	cfg        Config
	compressor Compressor
	watcher    *fsnotify.Watcher
	lock       *flock.Flock
	extensions map[string]struct{}
	logger     zerolog.Logger
	ready      chan struct{}

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

// New creates a watcher for cfg.Dir.
func New(cfg Config, c Compressor, logger zerolog.Logger) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("watch directory is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		set[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		cfg:        cfg,
		compressor: c,
		watcher:    fw,
		lock:       flock.New(filepath.Join(cfg.Dir, LockFile)),
		extensions: set,
		logger:     logger.With().Str("component", "watch").Str("dir", cfg.Dir).Logger(),
		ready:      make(chan struct{}),
		timers:     make(map[string]*time.Timer),
	}, nil
}

// Ready is closed once the directory is locked and watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Start locks and watches the directory until ctx is cancelled. Files
// still pending or being processed are finished before it returns.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.watcher.Close()

	locked, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", w.lock.Path(), err)
	}
	if !locked {
		return ErrLocked
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			w.logger.Warn().Err(err).Msg("Failed to release watch lock")
		}
	}()

	if err := w.watcher.Add(w.cfg.Dir); err != nil {
		w.logger.Error().Err(err).Msg("Failed to watch directory")
		return err
	}

	w.logger.Info().Dur("debounce", w.cfg.Debounce).Msg("Started watching directory")
	close(w.ready)

	defer func() {
		w.stopTimers()
		w.wg.Wait()
		w.logger.Info().Msg("Stopped watching directory")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !w.accepts(ev.Name) {
				continue
			}
			w.logger.Debug().Str("op", ev.Op.String()).Str("file", ev.Name).Msg("Detected media file")
			w.schedule(ctx, ev.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (w *Watcher) accepts(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	_, ok := w.extensions[strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))]
	return ok
}

// schedule processes path after the debounce delay, restarting the delay
// on every new write.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		if t.Stop() {
			t.Reset(w.cfg.Debounce)
			return
		}
	}

	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.cfg.Debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.timers[path] == t {
			delete(w.timers, path)
		}
		w.mu.Unlock()
		w.process(ctx, path)
	})
	w.timers[path] = t
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.timers, path)
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	res := Result{Source: path}
	logger := w.logger.With().Str("file", path).Logger()

	res.Output, res.Err = w.compressor.Compress(ctx, paths.WithFileScheme(path), w.cfg.Video, nil)
	if res.Err != nil {
		logger.Error().Err(res.Err).Msg("Compression failed")
	} else {
		logger.Info().Str("output", res.Output).Msg("Compressed")
		if w.cfg.UploadURL != "" {
			res.Response, res.Err = w.compressor.BackgroundUpload(ctx, w.cfg.UploadURL, res.Output, w.cfg.Upload, nil)
			if res.Err != nil {
				logger.Error().Err(res.Err).Msg("Upload failed")
			} else {
				logger.Info().Int("status", res.Response.Status).Msg("Uploaded")
			}
		}
	}

	if w.cfg.OnResult != nil {
		w.cfg.OnResult(res)
	}
}
