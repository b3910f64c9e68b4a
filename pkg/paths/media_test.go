package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/a.mp4", true},
		{"http://cdn.example.org/video", true},
		{"//example.com/a.mp4", true},
		{"http://localhost:8080/a.mp4", true},
		{"http://localhost", true},
		{"not a url", false},
		{"example.com/a.mp4", false},
		{"http://bad", false},
		{"https://exa mple.com/a.mp4", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidURL(tt.in))
		})
	}
}

func TestFullFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"file:///a/b/video.mp4", "video.mp4"},
		{"/a/b/c/", "c"},
		{"https://example.com/media/clip.mov", "clip.mov"},
		{"https://example.com/media/", "media"},
		{"video.mp4", IncorrectInputPath},
		{"", IncorrectInputPath},
		{"/", IncorrectInputPath},
		{"//", IncorrectInputPath},
		{"http://bad/clip", IncorrectInputPath},
		// The host check only needs a dot somewhere after the scheme.
		{"http://bad/clip.mp4", "clip.mp4"},
		{"httpfoo", IncorrectInputPath},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FullFilename(tt.in))
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "video", Filename("file:///a/b/video.mp4"))
	assert.Equal(t, "my.video", Filename("/a/my.video.mp4"))
	assert.Equal(t, "README", Filename("/docs/README"))
	assert.Equal(t, "", Filename("/home/.hidden"))
	assert.Equal(t, IncorrectInputPath, Filename("video.mp4"))
	assert.Equal(t, IncorrectInputPath, Filename("http://bad/clip"))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "mp4", Extension("/a/b/video.mp4"))
	assert.Equal(t, "", Extension("/a/b/video"))
	assert.Equal(t, "", Extension("/a/b/video."))
	assert.Equal(t, "", Extension("video.mp4"))
}

func TestIsRemoteMedia(t *testing.T) {
	assert.Nil(t, IsRemoteMedia(nil))

	remote := "https://example.com/a.mp4"
	got := IsRemoteMedia(&remote)
	require.NotNil(t, got)
	assert.True(t, *got)

	local := "file:///tmp/a.mp4"
	got = IsRemoteMedia(&local)
	require.NotNil(t, got)
	assert.False(t, *got)

	assert.False(t, IsRemote("/tmp/a.mp4"))
	assert.True(t, IsRemote("http://localhost:3000/a.mp4"))
}

func TestFileScheme(t *testing.T) {
	assert.Equal(t, "/tmp/a.mp4", TrimFileScheme("file:///tmp/a.mp4"))
	assert.Equal(t, "/tmp/a.mp4", TrimFileScheme("/tmp/a.mp4"))
	assert.Equal(t, "file:///tmp/a.mp4", WithFileScheme("/tmp/a.mp4"))
	assert.Equal(t, "file:///tmp/a.mp4", WithFileScheme("file:///tmp/a.mp4"))
}
