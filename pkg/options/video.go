// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package options merges caller supplied compression and upload options with
// their defaults before they are handed to an engine.
package options

// CompressionMethod selects how the engine picks bitrate and resolution.
type CompressionMethod string

const (
	MethodAuto   CompressionMethod = "auto"
	MethodManual CompressionMethod = "manual"
)

// DefaultMaxSize is the longest output edge, in pixels, when none is given.
const DefaultMaxSize = 640

// VideoOptions are the caller facing video compression options. Zero values
// mean "not set" except for MinimumFileSizeForCompress, where nil is unset and
// a pointer to 0 is an explicit value.
type VideoOptions struct {
	Bitrate                    int
	MaxSize                    int
	CompressionMethod          CompressionMethod
	MinimumFileSizeForCompress *float64

	// GetCancellationID receives the job id before the engine call starts.
	GetCancellationID func(id string)

	// DownloadProgress receives download progress for remote inputs.
	DownloadProgress func(progress float64)
}

// VideoRequest is the normalized option set sent to the media engine.
type VideoRequest struct {
	UUID                       string            `json:"uuid"`
	Bitrate                    int               `json:"bitrate,omitempty"`
	CompressionMethod          CompressionMethod `json:"compressionMethod"`
	MaxSize                    int               `json:"maxSize"`
	MinimumFileSizeForCompress *float64          `json:"minimumFileSizeForCompress,omitempty"`
}

// NormalizeVideo applies defaults to o. It never fails; malformed values are
// left for the engine to reject.
func NormalizeVideo(id string, o VideoOptions) VideoRequest {
	req := VideoRequest{
		UUID:              id,
		CompressionMethod: MethodAuto,
		MaxSize:           DefaultMaxSize,
	}
	if o.Bitrate != 0 {
		req.Bitrate = o.Bitrate
	}
	if o.CompressionMethod == MethodManual {
		req.CompressionMethod = MethodManual
	}
	if o.MaxSize != 0 {
		req.MaxSize = o.MaxSize
	}
	if o.MinimumFileSizeForCompress != nil {
		v := *o.MinimumFileSizeForCompress
		req.MinimumFileSizeForCompress = &v
	}
	return req
}

// Float returns a pointer to v, for optional fields.
func Float(v float64) *float64 { return &v }
