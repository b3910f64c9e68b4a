// pkg/logging/logging.go
package logging

import (
	"fmt"
	"io"
	stdLog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mediabridge/mediabridge/pkg/config"
)

// logWriter is the destination of the global logger and of NewLogger.
var logWriter io.Writer = zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}

// stdLogWriter forwards output of the standard library logger, which some
// dependencies still use, into zerolog at debug level.
type stdLogWriter struct {
	logger zerolog.Logger
}

func (w *stdLogWriter) Write(p []byte) (n int, err error) {
	w.logger.Debug().Str("source", "stdlog").Msg(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// Setup configures the global logger from the log section of the
// configuration. The returned closer releases the log file, if any.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", cfg.File, err)
		}
		out, closer = f, f
	}

	switch strings.ToLower(cfg.Format) {
	case "json":
		SetLogWriter(out)
	case "", "text":
		SetLogWriter(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.File != "",
		})
	default:
		_ = closer.Close()
		return nil, fmt.Errorf("unknown log format %q, expected json or text", cfg.Format)
	}

	ConfigureGlobal(ParseLevel(cfg.Level))
	return closer, nil
}

// ConfigureGlobal sets the global level and rebuilds the global logger on
// the current writer.
func ConfigureGlobal(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)

	logContext := zerolog.New(logWriter).With().Timestamp()
	if level <= zerolog.DebugLevel {
		logContext = logContext.Caller()
	}

	log.Logger = logContext.Logger().Level(level)
	zerolog.DefaultContextLogger = &log.Logger

	stdLog.SetFlags(0)
	stdLog.SetOutput(&stdLogWriter{logger: log.Logger})
}

// NewLogger returns a component logger writing to the global writer.
func NewLogger(component string, level zerolog.Level) zerolog.Logger {
	return NewLoggerWithWriter(component, level, logWriter)
}

// NewLoggerWithWriter returns a component logger writing to w.
func NewLoggerWithWriter(component string, level zerolog.Level, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// ParseLevel converts a level name into a zerolog level. Empty or unknown
// names fall back to info.
func ParseLevel(levelString string) zerolog.Level {
	if levelString == "" {
		return zerolog.InfoLevel
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelString))
	if err != nil || level == zerolog.NoLevel {
		log.Warn().
			Str("logLevel", levelString).
			Msg("Invalid log level provided. Defaulting to info level.")
		return zerolog.InfoLevel
	}
	return level
}

// SetLogWriter sets the global log writer.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
