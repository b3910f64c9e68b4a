package ffmpeg

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mediabridge/mediabridge/pkg/native"
	"github.com/mediabridge/mediabridge/pkg/options"
)

const (
	// minAutoBitrate is the floor for bitrates derived in auto mode.
	minAutoBitrate = 250_000
	// autoBitrateRatio scales the source bitrate after resizing in auto mode.
	autoBitrateRatio = 0.8
)

// plan holds the encoder settings derived from a request and a probe.
type plan struct {
	Width   int
	Height  int
	Bitrate int64
}

// planVideo derives output size and bitrate. Auto mode ignores the requested
// bitrate and derives one from the source; manual mode uses the requested
// bitrate when one is set.
func planVideo(req options.VideoRequest, src *native.Probe) plan {
	maxSize := req.MaxSize
	if maxSize <= 0 {
		maxSize = options.DefaultMaxSize
	}

	var p plan
	scale := 1.0
	if src != nil && src.Width > 0 && src.Height > 0 {
		longest := max(src.Width, src.Height)
		if longest > maxSize {
			scale = float64(maxSize) / float64(longest)
		}
		p.Width = even(int(math.Round(float64(src.Width) * scale)))
		p.Height = even(int(math.Round(float64(src.Height) * scale)))
	}

	if req.CompressionMethod == options.MethodManual && req.Bitrate > 0 {
		p.Bitrate = int64(req.Bitrate)
		return p
	}
	p.Bitrate = autoBitrate(src, p, scale)
	return p
}

func autoBitrate(src *native.Probe, p plan, scale float64) int64 {
	if src != nil && src.Bitrate > 0 {
		b := int64(float64(src.Bitrate) * scale * scale * autoBitrateRatio)
		return min(max(b, minAutoBitrate), src.Bitrate)
	}
	if p.Width > 0 && p.Height > 0 {
		return max(int64(p.Width*p.Height*3), minAutoBitrate)
	}
	return 1_000_000
}

func even(v int) int {
	if v < 2 {
		return 2
	}
	return v &^ 1
}

// videoArgs builds the ffmpeg argument list for a compression run.
func videoArgs(input, output string, p plan, maxSize int) []string {
	args := []string{"-hide_banner", "-nostdin", "-y", "-i", input}
	if p.Width > 0 && p.Height > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", p.Width, p.Height))
	} else {
		args = append(args, "-vf", fmt.Sprintf(
			"scale='if(gt(iw,ih),min(iw,%[1]d),-2)':'if(gt(iw,ih),-2,min(ih,%[1]d))'", maxSize))
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "medium",
		"-b:v", strconv.FormatInt(p.Bitrate, 10),
		"-c:a", "aac",
		"-movflags", "+faststart",
		"-progress", "pipe:1",
		"-nostats",
		output,
	)
	return args
}

// audioArgs builds the ffmpeg argument list for an audio compression run.
func audioArgs(input, output string, o options.AudioOptions) []string {
	return []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", input,
		"-vn",
		"-map_metadata", "0",
		"-b:a", o.Bitrate,
		"-progress", "pipe:1",
		"-nostats",
		output,
	}
}

// probeArgs builds the ffprobe argument list.
func probeArgs(input string) []string {
	return []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-select_streams", "v:0",
		input,
	}
}
