package paths

import (
	"regexp"
	"strings"
)

// IncorrectInputPath is returned in place of a filename when the input path
// cannot be resolved. Callers compare against it with IsFilenameError.
const IncorrectInputPath = "Incorrect input path. Please provide a valid one"

// IncorrectOutputPath is reported when a caller supplied output path is unusable.
const IncorrectOutputPath = "Incorrect output path. Please provide a valid one"

// ErrorGeneratingOutputFile is reported when no output file could be generated.
const ErrorGeneratingOutputFile = "An error occur while generating output file"

const fileScheme = "file://"

// remoteURLRe accepts an optional scheme followed by //host where the host has
// a TLD-like suffix, or localhost with an optional port.
var remoteURLRe = regexp.MustCompile(`^(?:\w+:)?//([^\s.]+\.\S{2}|localhost[:?\d]*)\S*$`)

// IsValidURL reports whether path has the shape of a remote media URL.
func IsValidURL(path string) bool {
	return remoteURLRe.MatchString(path)
}

// FullFilename returns the last segment of path, extension included. Remote
// paths that are not valid URLs and paths without a directory separator
// yield IncorrectInputPath.
func FullFilename(path string) string {
	if strings.Contains(path, "http") && !IsValidURL(path) {
		return IncorrectInputPath
	}

	trimmed := strings.TrimSuffix(path, "/")
	segments := strings.Split(trimmed, "/")
	if len(segments) < 2 {
		return IncorrectInputPath
	}
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return IncorrectInputPath
}

// Filename returns the last segment of path without its final extension.
// A dotfile such as ".hidden" has no stem and yields "".
func Filename(path string) string {
	full := FullFilename(path)
	if IsFilenameError(full) {
		return full
	}
	if i := strings.LastIndex(full, "."); i >= 0 {
		return full[:i]
	}
	return full
}

// Extension returns the final extension of path without the dot, or "" when
// there is none or the path cannot be resolved.
func Extension(path string) string {
	full := FullFilename(path)
	if IsFilenameError(full) {
		return ""
	}
	if i := strings.LastIndex(full, "."); i > 0 && i < len(full)-1 {
		return full[i+1:]
	}
	return ""
}

// IsFilenameError reports whether name is the IncorrectInputPath sentinel.
func IsFilenameError(name string) bool {
	return name == IncorrectInputPath
}

// IsRemoteMedia reports whether the scheme part of path mentions http.
// A nil path yields nil so callers can tell "absent" from "local".
func IsRemoteMedia(path *string) *bool {
	if path == nil {
		return nil
	}
	scheme, _, _ := strings.Cut(*path, ":/")
	remote := strings.Contains(scheme, "http")
	return &remote
}

// IsRemote is IsRemoteMedia for a path that is known to be present.
func IsRemote(path string) bool {
	return *IsRemoteMedia(&path)
}

// TrimFileScheme removes a leading file:// scheme.
func TrimFileScheme(path string) string {
	return strings.TrimPrefix(path, fileScheme)
}

// WithFileScheme prefixes path with file:// unless it already carries it.
func WithFileScheme(path string) string {
	if strings.HasPrefix(path, fileScheme) {
		return path
	}
	return fileScheme + path
}
