// Package lockpath converts bun.lock package keys to and from their
// installation segments. A key like "@scope/pkg/dep" is two segments:
// "@scope/pkg" and "dep".
package lockpath

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPath is returned when a key cannot be split into segments.
var ErrMalformedPath = errors.New("malformed dependency path")

// Decode splits an installation path into package-name segments, keeping
// scoped names together.
func Decode(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrMalformedPath)
	}

	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for i := 0; i < len(parts); i++ {
		part := parts[i]
		if part == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrMalformedPath, path)
		}
		if strings.HasPrefix(part, "@") {
			if i+1 >= len(parts) || parts[i+1] == "" {
				return nil, fmt.Errorf("%w: scope %q without a package name in %q", ErrMalformedPath, part, path)
			}
			part += "/" + parts[i+1]
			i++
		}
		segments = append(segments, part)
	}
	return segments, nil
}

// Encode joins segments back into an installation path.
func Encode(segments []string) string {
	return strings.Join(segments, "/")
}

// Join returns the path of name installed under prefix.
func Join(prefix []string, name string) string {
	if len(prefix) == 0 {
		return name
	}
	return Encode(prefix) + "/" + name
}

// Parent drops the last segment. The parent of a root-level package is empty.
func Parent(segments []string) []string {
	if len(segments) == 0 {
		return nil
	}
	return segments[:len(segments)-1]
}

// IsWithin reports whether path is ancestor itself or installed somewhere below it.
func IsWithin(path, ancestor string) bool {
	return path == ancestor || strings.HasPrefix(path, ancestor+"/")
}
