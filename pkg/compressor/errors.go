package compressor

import (
	"errors"
	"fmt"

	"github.com/mediabridge/mediabridge/pkg/native"
)

// Sentinel errors for input failures.
var (
	// ErrEmptyURL indicates that no media or destination url was supplied.
	ErrEmptyURL = errors.New("compression url is empty, please provide a url for compression")

	// ErrInvalidOptions indicates that caller options failed validation.
	ErrInvalidOptions = errors.New("invalid options")

	// ErrEngine marks failures reported by a native engine.
	ErrEngine = errors.New("native engine failure")

	// ErrCancelled marks jobs that ended because of a cancellation request.
	ErrCancelled = native.ErrCancelled
)

// Error codes used by the CLI suggestion system.
const (
	errorCodeEmptyURL       = "EMPTY_URL"
	errorCodeInvalidOptions = "INVALID_OPTIONS"
	errorCodeCancelled      = "CANCELLED"
	errorCodeEngine         = "ENGINE_FAILURE"
	errorCodeDuplicateJob   = "DUPLICATE_JOB"
)

// codedError wraps an error with an explicit error code.
type codedError struct {
	error
	code string
}

func (e *codedError) Error() string {
	return e.error.Error()
}

func (e *codedError) Unwrap() error {
	return e.error
}

func (e *codedError) Code() string {
	return e.code
}

// WithErrorCode wraps err with a specific error code.
func WithErrorCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &codedError{error: err, code: code}
}

// engineError keeps the engine's message unchanged while matching ErrEngine.
type engineError struct {
	err error
}

func (e *engineError) Error() string        { return e.err.Error() }
func (e *engineError) Unwrap() error        { return e.err }
func (e *engineError) Is(target error) bool { return target == ErrEngine }
func (e *engineError) Code() string {
	if errors.Is(e.err, native.ErrCancelled) {
		return errorCodeCancelled
	}
	return errorCodeEngine
}

func wrapEngine(err error) error {
	if err == nil {
		return nil
	}
	return &engineError{err: err}
}

func invalidOptions(err error) error {
	return WithErrorCode(fmt.Errorf("%w: %w", ErrInvalidOptions, err), errorCodeInvalidOptions)
}

func emptyURL() error {
	return WithErrorCode(ErrEmptyURL, errorCodeEmptyURL)
}

// ErrorCode resolves an error into a stable error code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		if code := coded.Code(); code != "" {
			return code
		}
	}

	switch {
	case errors.Is(err, ErrEmptyURL):
		return errorCodeEmptyURL
	case errors.Is(err, ErrInvalidOptions):
		return errorCodeInvalidOptions
	case errors.Is(err, ErrCancelled):
		return errorCodeCancelled
	}
	return errorCodeEngine
}

// ExitCode maps errors to CLI exit codes.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch ErrorCode(err) {
	case errorCodeEmptyURL, errorCodeInvalidOptions:
		return 2
	case errorCodeCancelled:
		return 130
	default:
		return 1
	}
}

// Suggestions provides CLI hints for an error.
func Suggestions(err error) []string {
	if err == nil {
		return nil
	}

	switch ErrorCode(err) {
	case errorCodeEmptyURL:
		return []string{
			"Provide an input file:      mediabridge compress ./video.mp4",
			"Compress a remote file:     mediabridge compress https://example.com/video.mp4",
		}
	case errorCodeInvalidOptions:
		return []string{
			"Use one of POST, PUT, PATCH: mediabridge upload <url> <file> --method PUT",
			"Run help for options:        mediabridge upload --help",
		}
	case errorCodeCancelled:
		return []string{
			"The job was cancelled before it finished; rerun the command to start over",
		}
	case errorCodeDuplicateJob:
		return []string{
			"Wait for the running job with the same id to finish",
		}
	default:
		return []string{
			"Check that ffmpeg is installed:  mediabridge version --check-ffmpeg",
			"Retry with debug logs:           mediabridge --debug <command>",
		}
	}
}
