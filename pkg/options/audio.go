// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package options

// Quality is a coarse audio quality preset.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// AudioBitrates lists the supported audio bitrates in kbit/s, highest first.
var AudioBitrates = []int{256, 192, 160, 128, 96, 64, 32}

// AudioOptions configures audio compression.
type AudioOptions struct {
	Bitrate        string  `json:"bitrate,omitempty" yaml:"bitrate,omitempty"`
	Quality        Quality `json:"quality" yaml:"quality"`
	OutputFilePath string  `json:"outputFilePath,omitempty" yaml:"outputFilePath,omitempty"`
}

// DefaultAudioOptions returns the audio defaults.
func DefaultAudioOptions() AudioOptions {
	return AudioOptions{
		Bitrate: "96k",
		Quality: QualityMedium,
	}
}

// NormalizeAudio fills missing audio options. An unknown quality falls back
// to medium and a missing bitrate is derived from the quality.
func NormalizeAudio(o AudioOptions) AudioOptions {
	switch o.Quality {
	case QualityLow, QualityMedium, QualityHigh:
	default:
		o.Quality = QualityMedium
	}
	if o.Bitrate == "" {
		o.Bitrate = qualityBitrate(o.Quality)
	}
	return o
}

func qualityBitrate(q Quality) string {
	switch q {
	case QualityLow:
		return "64k"
	case QualityHigh:
		return "192k"
	default:
		return "96k"
	}
}
