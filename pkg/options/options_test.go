package options

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVideo_Defaults(t *testing.T) {
	req := NormalizeVideo("id-1", VideoOptions{})

	assert.Equal(t, "id-1", req.UUID)
	assert.Equal(t, MethodAuto, req.CompressionMethod)
	assert.Equal(t, 640, req.MaxSize)
	assert.Zero(t, req.Bitrate)
	assert.Nil(t, req.MinimumFileSizeForCompress)

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"uuid":"id-1","compressionMethod":"auto","maxSize":640}`, string(raw))
}

func TestNormalizeVideo_ZeroMaxSizeFallsBack(t *testing.T) {
	req := NormalizeVideo("x", VideoOptions{MaxSize: 0})
	assert.Equal(t, DefaultMaxSize, req.MaxSize)
}

func TestNormalizeVideo_ExplicitZeroMinimumSizeIsKept(t *testing.T) {
	req := NormalizeVideo("x", VideoOptions{MinimumFileSizeForCompress: Float(0)})
	require.NotNil(t, req.MinimumFileSizeForCompress)
	assert.Equal(t, 0.0, *req.MinimumFileSizeForCompress)

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"minimumFileSizeForCompress":0`)
}

func TestNormalizeVideo_Overrides(t *testing.T) {
	req := NormalizeVideo("x", VideoOptions{
		Bitrate:           2_000_000,
		MaxSize:           1280,
		CompressionMethod: MethodManual,
	})
	assert.Equal(t, 2_000_000, req.Bitrate)
	assert.Equal(t, 1280, req.MaxSize)
	assert.Equal(t, MethodManual, req.CompressionMethod)
}

func TestNormalizeVideo_UnknownMethodIsAuto(t *testing.T) {
	req := NormalizeVideo("x", VideoOptions{CompressionMethod: "fast"})
	assert.Equal(t, MethodAuto, req.CompressionMethod)
}

func TestNormalizeVideo_DoesNotAliasCallerPointer(t *testing.T) {
	minSize := 5.0
	req := NormalizeVideo("x", VideoOptions{MinimumFileSizeForCompress: &minSize})
	minSize = 10
	assert.Equal(t, 5.0, *req.MinimumFileSizeForCompress)
}

func TestNormalizeUpload_Defaults(t *testing.T) {
	req, err := NormalizeUpload("id", "https://example.com/upload", UploadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, UploadBinaryContent, req.UploadType)
	assert.Empty(t, req.FieldName)
}

func TestNormalizeUpload_Multipart(t *testing.T) {
	req, err := NormalizeUpload("id", "https://example.com/upload", UploadOptions{
		UploadType: UploadMultipart,
		HTTPMethod: "put",
		Parameters: map[string]string{"k": "v"},
	})
	require.NoError(t, err)
	assert.Equal(t, "PUT", req.Method)
	assert.Equal(t, DefaultFieldName, req.FieldName)
	assert.Equal(t, "v", req.Parameters["k"])
}

func TestNormalizeUpload_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		opts  UploadOptions
		field string
	}{
		{name: "bad method", url: "https://example.com", opts: UploadOptions{HTTPMethod: "DELETE"}, field: "Method"},
		{name: "missing url", url: "  ", opts: UploadOptions{}, field: "URL"},
		{name: "bad upload type", url: "https://example.com", opts: UploadOptions{UploadType: 7}, field: "UploadType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeUpload("id", tt.url, tt.opts)
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNormalizeAudio(t *testing.T) {
	assert.Equal(t, AudioOptions{Bitrate: "96k", Quality: QualityMedium}, NormalizeAudio(AudioOptions{}))
	assert.Equal(t, "192k", NormalizeAudio(AudioOptions{Quality: QualityHigh}).Bitrate)
	assert.Equal(t, "128k", NormalizeAudio(AudioOptions{Bitrate: "128k", Quality: QualityLow}).Bitrate)
	assert.Equal(t, DefaultAudioOptions(), NormalizeAudio(DefaultAudioOptions()))
}
