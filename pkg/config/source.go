// pkg/config/source.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by EnvSource.
const EnvPrefix = "MEDIABRIDGE_"

// ConfigSource loads one configuration layer into koanf. Layers are applied
// by ascending priority so later layers override earlier ones:
//
//	defaults (10) < config file (20) < MEDIABRIDGE_* env (30) < flags (40)
//
// Every layer above the defaults runs its values through normalizeValue and
// fails the load on a value that key cannot hold.
type ConfigSource interface {
	Name() string
	Priority() int
	Load(k *koanf.Koanf) error
}

// DefaultSource seeds every known key with its built-in value.
type DefaultSource struct{}

func (s *DefaultSource) Name() string  { return "defaults" }
func (s *DefaultSource) Priority() int { return 10 }

func (s *DefaultSource) Load(k *koanf.Koanf) error {
	if err := k.Load(confmap.Provider(DefaultConfigAsMap(), "."), nil); err != nil {
		return fmt.Errorf("load defaults: %w", err)
	}
	return nil
}

// FileSource reads a YAML config file. An empty or missing path is skipped.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string  { return "file:" + s.Path }
func (s *FileSource) Priority() int { return 20 }

func (s *FileSource) Load(k *koanf.Koanf) error {
	if s.Path == "" {
		return nil
	}
	if _, err := os.Stat(s.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat config file %s: %w", s.Path, err)
	}

	layer := koanf.New(".")
	if err := layer.Load(file.Provider(s.Path), yaml.Parser()); err != nil {
		return fmt.Errorf("parse config file %s: %w", s.Path, err)
	}
	for key, raw := range layer.All() {
		v, err := normalizeValue(key, raw)
		if err != nil {
			return fmt.Errorf("config file %s: %w", s.Path, err)
		}
		if err := k.Set(key, v); err != nil {
			return fmt.Errorf("config file %s: set %s: %w", s.Path, key, err)
		}
	}
	return nil
}

// EnvSource reads MEDIABRIDGE_* variables. Underscores separate key levels
// and only keys that exist in the defaults are taken:
//
//	MEDIABRIDGE_MEDIA_CONCURRENCY=4   -> media.concurrency
//	MEDIABRIDGE_UPLOAD_S3_REGION=...  -> upload.s3.region
//	MEDIABRIDGE_WATCH_MAXAGE=7d       -> watch.maxage
type EnvSource struct {
	Prefix string // default: EnvPrefix
}

func (s *EnvSource) Name() string  { return "env" }
func (s *EnvSource) Priority() int { return 30 }

func (s *EnvSource) Load(k *koanf.Koanf) error {
	prefix := s.Prefix
	if prefix == "" {
		prefix = EnvPrefix
	}
	known := DefaultConfigAsMap()

	var firstErr error
	provider := env.ProviderWithValue(prefix, ".", func(name, value string) (string, interface{}) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, prefix)), "_", ".")
		if _, ok := known[key]; !ok {
			return "", nil
		}
		v, err := normalizeValue(key, value)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", name, err)
			}
			return "", nil
		}
		return key, v
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}
	return firstErr
}

// FlagSource applies the flags registered by BindFlags. Only flags the user
// changed are applied, each under the key flagKeys names for it; other flags
// on the set (output mode, verbosity, subcommand flags) are ignored.
type FlagSource struct {
	Flags *pflag.FlagSet
	Debug bool // forces log.level to debug
}

func (s *FlagSource) Name() string  { return "flags" }
func (s *FlagSource) Priority() int { return 40 }

func (s *FlagSource) Load(k *koanf.Koanf) error {
	if s.Flags != nil {
		var firstErr error
		provider := posflag.ProviderWithFlag(s.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			v, err := normalizeValue(key, posflag.FlagVal(s.Flags, f))
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("--%s: %w", f.Name, err)
				}
				return "", nil
			}
			return key, v
		})
		if err := k.Load(provider, nil); err != nil {
			return fmt.Errorf("load flags: %w", err)
		}
		if firstErr != nil {
			return firstErr
		}
	}

	if s.Debug {
		_ = k.Set("log.level", "debug")
	}
	return nil
}

// DefaultSources returns defaults, file, env and flags in load order.
func DefaultSources(configPath string, flags *pflag.FlagSet, debug bool) []ConfigSource {
	return []ConfigSource{
		&DefaultSource{},
		&FileSource{Path: configPath},
		&EnvSource{Prefix: EnvPrefix},
		&FlagSource{Flags: flags, Debug: debug},
	}
}

var platforms = map[string]bool{"android": true, "ios": true, "desktop": true}

// normalizeValue converts raw, as read from YAML, the environment or a flag,
// into the type the key unmarshals into. Unknown keys pass through.
func normalizeValue(key string, raw interface{}) (interface{}, error) {
	switch key {
	case "log.level":
		s := strings.ToLower(strings.TrimSpace(cast.ToString(raw)))
		if _, err := zerolog.ParseLevel(s); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return s, nil

	case "log.format":
		s := strings.ToLower(strings.TrimSpace(cast.ToString(raw)))
		if s != "" && s != "json" && s != "text" {
			return nil, fmt.Errorf("%s %q: want json or text", key, s)
		}
		return s, nil

	case "log.file", "media.ffmpeg", "media.ffprobe", "media.cachedir":
		return expandHome(strings.TrimSpace(cast.ToString(raw))), nil

	case "media.concurrency":
		n, err := cast.ToIntE(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("%s %d: must be at least 1", key, n)
		}
		return n, nil

	case "media.minversion":
		s := strings.TrimSpace(cast.ToString(raw))
		if s == "" {
			return s, nil
		}
		if _, err := semver.NewConstraint(s); err != nil {
			return nil, fmt.Errorf("%s %q: %w", key, s, err)
		}
		return s, nil

	case "upload.s3.enabled", "upload.s3.pathstyle":
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return b, nil

	case "upload.s3.region":
		return strings.ToLower(strings.TrimSpace(cast.ToString(raw))), nil

	case "upload.s3.endpoint":
		s := strings.TrimSpace(cast.ToString(raw))
		if s == "" {
			return s, nil
		}
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("%s %q: want an http(s) url", key, s)
		}
		return strings.TrimRight(s, "/"), nil

	case "upload.timeout", "background.expiration", "watch.maxage", "watch.debounce":
		d, err := parseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return d, nil

	case "platform":
		s := strings.ToLower(strings.TrimSpace(cast.ToString(raw)))
		if s == "" {
			return DefaultConfig().Platform, nil
		}
		if !platforms[s] {
			return nil, fmt.Errorf("%s %q: want android, ios or desktop", key, s)
		}
		return s, nil
	}
	return raw, nil
}

// parseDuration accepts Go durations, a day suffix ("7d") and bare numbers,
// which count seconds.
func parseDuration(raw interface{}) (time.Duration, error) {
	var d time.Duration
	switch v := raw.(type) {
	case time.Duration:
		d = v
	case string:
		s := strings.TrimSpace(v)
		switch {
		case s == "":
			return 0, nil
		case strings.HasSuffix(s, "d"):
			days, err := strconv.ParseFloat(strings.TrimSuffix(s, "d"), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q", s)
			}
			d = time.Duration(days * float64(24*time.Hour))
		default:
			if secs, err := strconv.ParseFloat(s, 64); err == nil {
				d = time.Duration(secs * float64(time.Second))
				break
			}
			parsed, err := time.ParseDuration(s)
			if err != nil {
				return 0, err
			}
			d = parsed
		}
	default:
		secs, err := cast.ToFloat64E(raw)
		if err != nil {
			return 0, err
		}
		d = time.Duration(secs * float64(time.Second))
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
