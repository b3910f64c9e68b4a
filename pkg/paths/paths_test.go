package paths

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppDirs(t *testing.T) {
	tests := []struct {
		name    string
		fn      func() string
		xdg     string
		winEnv  string
		winWant string
		home    string
	}{
		{"config", ConfigDir, "XDG_CONFIG_HOME", "AppData", "Mediabridge", ".config"},
		{"data", DataDir, "XDG_DATA_HOME", "AppData", "Mediabridge", filepath.Join(".local", "share")},
		{"cache", CacheDir, "XDG_CACHE_HOME", "LocalAppData", filepath.Join("Mediabridge", "Cache"), ".cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/xdg", func(t *testing.T) {
			t.Setenv(tt.xdg, "/tmp/xdg")
			assert.Equal(t, filepath.Join("/tmp/xdg", "mediabridge"), tt.fn())
		})

		t.Run(tt.name+"/platform", func(t *testing.T) {
			t.Setenv(tt.xdg, "")
			if runtime.GOOS == "windows" {
				t.Setenv(tt.winEnv, `C:\Base`)
				assert.Equal(t, filepath.Join(`C:\Base`, tt.winWant), tt.fn())
				return
			}
			t.Setenv("HOME", "/home/tester")
			assert.Equal(t, filepath.Join("/home/tester", tt.home, "mediabridge"), tt.fn())
		})
	}
}

func TestDefaultConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "mediabridge", "config.yaml"), DefaultConfigFile())
}
