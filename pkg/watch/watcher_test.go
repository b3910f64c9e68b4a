package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediabridge/mediabridge/pkg/native"
	"github.com/mediabridge/mediabridge/pkg/options"
)

type fakeCompressor struct {
	mu          sync.Mutex
	compressed  []string
	uploaded    []string
	compressErr error
}

func (f *fakeCompressor) Compress(_ context.Context, fileURL string, _ options.VideoOptions, _ func(float64)) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.compressed = append(f.compressed, fileURL)
	if f.compressErr != nil {
		return "", f.compressErr
	}
	return "/tmp/out.mp4", nil
}

func (f *fakeCompressor) BackgroundUpload(_ context.Context, url, fileURL string, _ options.UploadOptions, _ func(int64, int64)) (*native.HTTPResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, url+" "+fileURL)
	return &native.HTTPResponse{Status: 201}, nil
}

func startWatcher(t *testing.T, cfg Config, c Compressor) (context.CancelFunc, <-chan error) {
	t.Helper()
	w, err := New(cfg, c, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	select {
	case <-w.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("watcher never became ready")
	}
	return cancel, done
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New(Config{}, &fakeCompressor{}, zerolog.Nop())
	require.Error(t, err)
}

func TestWatcher_CompressesAndUploadsNewMedia(t *testing.T) {
	dir := t.TempDir()
	results := make(chan Result, 4)
	fc := &fakeCompressor{}

	cancel, done := startWatcher(t, Config{
		Dir:       dir,
		Debounce:  100 * time.Millisecond,
		UploadURL: "https://example.com/upload",
		OnResult:  func(r Result) { results <- r },
	}, fc)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	src := filepath.Join(dir, "clip.MP4")
	require.NoError(t, os.WriteFile(src, []byte("video"), 0o644))

	select {
	case r := <-results:
		assert.Equal(t, src, r.Source)
		assert.Equal(t, "/tmp/out.mp4", r.Output)
		require.NoError(t, r.Err)
		require.NotNil(t, r.Response)
		assert.Equal(t, 201, r.Response.Status)
	case <-time.After(3 * time.Second):
		t.Fatal("no result")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	fc.mu.Lock()
	defer fc.mu.Unlock()
	assert.Equal(t, []string{"file://" + src}, fc.compressed)
	assert.Equal(t, []string{"https://example.com/upload /tmp/out.mp4"}, fc.uploaded)
}

func TestWatcher_CompressFailureSkipsUpload(t *testing.T) {
	dir := t.TempDir()
	results := make(chan Result, 1)
	fc := &fakeCompressor{compressErr: errors.New("boom")}

	cancel, done := startWatcher(t, Config{
		Dir:       dir,
		Debounce:  10 * time.Millisecond,
		UploadURL: "https://example.com/upload",
		OnResult:  func(r Result) { results <- r },
	}, fc)
	defer func() { cancel(); <-done }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mov"), []byte("v"), 0o644))

	select {
	case r := <-results:
		require.EqualError(t, r.Err, "boom")
		assert.Nil(t, r.Response)
	case <-time.After(3 * time.Second):
		t.Fatal("no result")
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	assert.Empty(t, fc.uploaded)
}

func TestWatcher_SecondWatcherIsLockedOut(t *testing.T) {
	dir := t.TempDir()
	cancel, done := startWatcher(t, Config{Dir: dir}, &fakeCompressor{})
	defer func() { cancel(); <-done }()

	w, err := New(Config{Dir: dir}, &fakeCompressor{}, zerolog.Nop())
	require.NoError(t, err)
	err = w.Start(context.Background())
	assert.ErrorIs(t, err, ErrLocked)
}

func TestWatcher_Accepts(t *testing.T) {
	w, err := New(Config{Dir: t.TempDir(), Extensions: []string{".webm"}}, &fakeCompressor{}, zerolog.Nop())
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.True(t, w.accepts("/in/a.WEBM"))
	assert.False(t, w.accepts("/in/a.mp4"))
	assert.False(t, w.accepts("/in/.hidden.webm"))
	assert.False(t, w.accepts("/in/"+LockFile))
}
