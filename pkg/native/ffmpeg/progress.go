package ffmpeg

import (
	"bytes"
	"strconv"
	"strings"
)

// progressWriter parses the key=value stream ffmpeg writes with
// "-progress pipe:1" and reports the completed fraction of duration.
type progressWriter struct {
	duration float64 // seconds, 0 when unknown
	report   func(fraction float64)
	buf      []byte
	last     float64
}

func newProgressWriter(duration float64, report func(float64)) *progressWriter {
	return &progressWriter{duration: duration, report: report, last: -1}
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.line(strings.TrimSpace(string(w.buf[:i])))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *progressWriter) line(l string) {
	key, value, ok := strings.Cut(l, "=")
	if !ok {
		return
	}

	switch key {
	case "out_time_us", "out_time_ms":
		// both keys carry microseconds
		if w.duration <= 0 {
			return
		}
		us, err := strconv.ParseFloat(value, 64)
		if err != nil || us < 0 {
			return
		}
		w.emit(us / 1e6 / w.duration)
	case "progress":
		if value == "end" {
			w.emit(1)
		}
	}
}

func (w *progressWriter) emit(fraction float64) {
	if fraction > 1 {
		fraction = 1
	}
	if fraction <= w.last {
		return
	}
	w.last = fraction
	if w.report != nil {
		w.report(fraction)
	}
}
