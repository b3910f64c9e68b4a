// Package paths resolves application directories and derives names and
// locations from media paths and URLs.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "mediabridge"

// ConfigDir returns the config directory.
// Order: XDG_CONFIG_HOME/mediabridge, platform-specific fallback.
func ConfigDir() string {
	return resolve("XDG_CONFIG_HOME", "AppData", "Mediabridge", ".config")
}

// DataDir returns the data directory.
// Order: XDG_DATA_HOME/mediabridge, platform-specific fallback.
func DataDir() string {
	return resolve("XDG_DATA_HOME", "AppData", "Mediabridge", filepath.Join(".local", "share"))
}

// CacheDir returns the cache directory. Generated output files live below it.
// Order: XDG_CACHE_HOME/mediabridge, platform-specific fallback.
func CacheDir() string {
	return resolve("XDG_CACHE_HOME", "LocalAppData", filepath.Join("Mediabridge", "Cache"), ".cache")
}

// DefaultConfigFile is the config file used when --config is not given.
func DefaultConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func resolve(xdgEnv, windowsEnv, windowsSub, homeSub string) string {
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if runtime.GOOS == "windows" {
		if base := os.Getenv(windowsEnv); base != "" {
			return filepath.Join(base, windowsSub)
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, homeSub, appName)
}
