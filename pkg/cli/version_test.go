package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v "github.com/mediabridge/mediabridge/pkg/version"
)

func TestVersionCommand_Short(t *testing.T) {
	cmd := NewVersionCommand("mediabridge", nil)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--short"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "mediabridge version: dev\n", out.String())
	assert.Nil(t, cmd.Flags().Lookup("check-ffmpeg"))
}

func TestVersionCommand_CheckFFmpeg(t *testing.T) {
	cmd := NewVersionCommand("mediabridge", func(context.Context) (string, error) {
		return "6.1.1", nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--check-ffmpeg"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Go Version:")
	assert.Contains(t, out.String(), "FFmpeg: 6.1.1")
}

func TestVersionCommand_CheckFFmpegFailure(t *testing.T) {
	boom := errors.New("unsupported ffmpeg version")
	cmd := NewVersionCommand("mediabridge", func(context.Context) (string, error) {
		return "", boom
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--check-ffmpeg"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, boom)
}

func TestVersionCommand_Latest(t *testing.T) {
	orig := v.Version
	t.Cleanup(func() { v.Version = orig })

	run := func(latest string) string {
		cmd := NewVersionCommand("mediabridge", nil)
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--latest", latest})
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	v.Version = "dev"
	assert.Contains(t, run("9.9.9"), "Up to date")

	v.Version = "1.2.0"
	assert.Contains(t, run("1.3.0"), "Update available: 1.3.0")
	assert.Contains(t, run("1.2.0"), "Up to date")
}
