package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mediabridge/mediabridge/pkg/native"
	"github.com/mediabridge/mediabridge/pkg/paths"
)

// download fetches a remote input into the cache directory, publishing
// downloadProgress events for id. The caller removes the returned file.
func (e *Engine) download(ctx context.Context, url, id string) (string, error) {
	if !paths.IsValidURL(url) {
		return "", fmt.Errorf("invalid remote url %q", url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := os.MkdirAll(e.cfg.CacheDir, 0o755); err != nil {
		return "", err
	}
	name := "download-" + uuid.NewString()
	if ext := paths.Extension(url); ext != "" {
		name += "." + ext
	}
	target := filepath.Join(e.cfg.CacheDir, name)

	f, err := os.Create(target)
	if err != nil {
		return "", err
	}

	w := &countingWriter{
		total: resp.ContentLength,
		report: func(written, total int64) {
			if total > 0 {
				e.publish(ctx, native.EventDownloadProgress, id, map[string]any{
					"progress": float64(written) / float64(total),
				})
			}
		},
	}
	_, copyErr := io.Copy(io.MultiWriter(f, w), resp.Body)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(target)
		if copyErr != nil {
			return "", copyErr
		}
		return "", closeErr
	}

	e.logger.Debug().Str("job_id", id).Str("url", url).Int64("bytes", w.written).Msg("Remote input downloaded")
	return target, nil
}

type countingWriter struct {
	written int64
	total   int64
	report  func(written, total int64)
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	if w.report != nil {
		w.report(w.written, w.total)
	}
	return len(p), nil
}
