// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package native defines the contracts of the engines that do the actual
// media and transfer work. The compressor only talks to these interfaces.
package native

import (
	"context"
	"errors"

	"github.com/mediabridge/mediabridge/pkg/event"
	"github.com/mediabridge/mediabridge/pkg/options"
)

// Event names published by engines on the shared bus.
const (
	EventCompressProgress      = "videoCompressProgress"
	EventDownloadProgress      = "downloadProgress"
	EventUploadProgress        = "VideoCompressorProgress"
	EventBackgroundTaskExpired = "backgroundTaskExpired"
)

// ErrCancelled is returned by an engine when a job ended because of a
// cancellation request.
var ErrCancelled = errors.New("operation cancelled")

// Publisher is the sending side of the shared event channel.
type Publisher interface {
	Publish(ctx context.Context, ev event.Event)
}

// Probe is the raw metadata an engine reports for a media file.
type Probe struct {
	Size     int64   `json:"size" yaml:"size"`
	Width    int     `json:"width,omitempty" yaml:"width,omitempty"`
	Height   int     `json:"height,omitempty" yaml:"height,omitempty"`
	Duration float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
	Format   string  `json:"format,omitempty" yaml:"format,omitempty"`
	Bitrate  int64   `json:"bitrate,omitempty" yaml:"bitrate,omitempty"`
}

// MediaEngine compresses and inspects media files.
type MediaEngine interface {
	Probe(ctx context.Context, path string) (*Probe, error)
	Compress(ctx context.Context, path string, req options.VideoRequest) (string, error)
	CompressAudio(ctx context.Context, path, output string, opts options.AudioOptions) (string, error)
	Cancel(id string)
	GenerateOutputFile(ctx context.Context, extension string) (string, error)
}

// HTTPResponse is the response an uploader hands back to the caller.
type HTTPResponse struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// Uploader transfers a local file to a remote destination.
type Uploader interface {
	Upload(ctx context.Context, path string, req options.UploadRequest) (*HTTPResponse, error)
	Cancel(id string)
}

// BackgroundTaskConfig configures a background task activation.
type BackgroundTaskConfig struct {
	Name string `json:"name,omitempty"`
}

// BackgroundTasks keeps work alive past the foreground lifetime of the caller
// and reports expiry on the event channel.
type BackgroundTasks interface {
	Activate(ctx context.Context, cfg BackgroundTaskConfig) (string, error)
	Deactivate(ctx context.Context) error
}
