package compressor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/mediabridge/mediabridge/pkg/event"
	"github.com/mediabridge/mediabridge/pkg/job"
	"github.com/mediabridge/mediabridge/pkg/options"
	"github.com/mediabridge/mediabridge/pkg/paths"
)

// MediaInfo is the probe snapshot returned by GetDetails. Callers may keep
// it and pass it back to skip probing again.
type MediaInfo struct {
	Filename      string  `json:"filename" yaml:"filename"`
	Extension     string  `json:"extension" yaml:"extension"`
	IsRemoteMedia *bool   `json:"isRemoteMedia" yaml:"isRemoteMedia"`
	Size          int64   `json:"size" yaml:"size"`
	Width         int     `json:"width,omitempty" yaml:"width,omitempty"`
	Height        int     `json:"height,omitempty" yaml:"height,omitempty"`
	Duration      float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
	Format        string  `json:"format,omitempty" yaml:"format,omitempty"`
	Bitrate       int64   `json:"bitrate,omitempty" yaml:"bitrate,omitempty"`
}

// Result reports whether an input url and its output path are usable.
type Result struct {
	OutputFilePath string `json:"outputFilePath"`
	IsCorrect      bool   `json:"isCorrect"`
	Message        string `json:"message"`
}

// GetDetails probes the media at path. A cached snapshot is returned as is
// unless force is set.
func (c *Compressor) GetDetails(ctx context.Context, path string, cached *MediaInfo, force bool) (*MediaInfo, error) {
	if !force && cached != nil {
		return cached, nil
	}
	if strings.TrimSpace(path) == "" {
		return nil, emptyURL()
	}

	probe, err := c.media.Probe(ctx, path)
	if err != nil {
		return nil, wrapEngine(err)
	}

	return &MediaInfo{
		Filename:      paths.Filename(path),
		Extension:     paths.Extension(path),
		IsRemoteMedia: paths.IsRemoteMedia(&path),
		Size:          probe.Size,
		Width:         probe.Width,
		Height:        probe.Height,
		Duration:      probe.Duration,
		Format:        probe.Format,
		Bitrate:       probe.Bitrate,
	}, nil
}

// GenerateFile creates an empty output file with the given extension in the
// engine's cache directory and returns it as a file:// url.
func (c *Compressor) GenerateFile(ctx context.Context, extension string) (string, error) {
	p, err := c.media.GenerateOutputFile(ctx, extension)
	if err != nil {
		return "", wrapEngine(err)
	}
	return paths.WithFileScheme(p), nil
}

// CheckURLAndOptions validates url and resolves the audio output path. An
// empty url is an error; output path problems are reported in the Result.
func (c *Compressor) CheckURLAndOptions(ctx context.Context, url string, o options.AudioOptions) (Result, error) {
	if strings.TrimSpace(url) == "" {
		return Result{}, emptyURL()
	}

	res := Result{IsCorrect: true}
	if o.OutputFilePath != "" {
		res.OutputFilePath = o.OutputFilePath
		dir := filepath.Dir(paths.TrimFileScheme(o.OutputFilePath))
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			res.IsCorrect = false
			res.Message = paths.IncorrectOutputPath
		}
		return res, nil
	}

	out, err := c.GenerateFile(ctx, "mp3")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Could not generate audio output file")
		res.IsCorrect = false
		res.Message = paths.ErrorGeneratingOutputFile
		return res, nil
	}
	res.OutputFilePath = out
	return res, nil
}

// CompressAudio compresses the audio at url and returns the output path.
func (c *Compressor) CompressAudio(ctx context.Context, url string, o options.AudioOptions) (string, error) {
	o = options.NormalizeAudio(o)

	res, err := c.CheckURLAndOptions(ctx, url, o)
	if err != nil {
		return "", err
	}
	if !res.IsCorrect {
		return "", invalidOptions(errors.New(res.Message))
	}

	id := job.GenerateID()
	return run(ctx, c, id, job.KindCompress, func(*event.Scope) {}, func(ctx context.Context) (string, error) {
		return c.media.CompressAudio(ctx, url, res.OutputFilePath, o)
	})
}
