package transfer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/opd-ai/autotox/limits"
)

// ErrInvalidFileName indicates a proposed file name that is unsafe to use
// as a local path component.
var ErrInvalidFileName = errors.New("invalid file name")

// ErrFileNameTooLong indicates that a file name exceeds limits.MaxFileNameLength.
var ErrFileNameTooLong = errors.New("file name too long")

// ErrPathEscapes indicates a resolved path outside the download directory.
var ErrPathEscapes = errors.New("path escapes download directory")

// ValidateFileName checks a peer-proposed file name. The name must be
// non-empty, must not start with a space or hyphen, must not be "." or "..",
// and must not contain a path separator or NUL byte.
func ValidateFileName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidFileName)
	case len(name) > limits.MaxFileNameLength:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileNameTooLong, len(name), limits.MaxFileNameLength)
	case name[0] == ' ' || name[0] == '-':
		return fmt.Errorf("%w: leading %q", ErrInvalidFileName, name[0])
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: contains a path separator", ErrInvalidFileName)
	}
	return nil
}

// ResolvePath joins a validated name onto dir and verifies that the result
// stays inside dir.
func ResolvePath(dir, name string) (string, error) {
	if err := ValidateFileName(name); err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	cleanDir := filepath.Clean(dir)
	path := filepath.Join(cleanDir, name)

	rel, err := filepath.Rel(cleanDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == "." {
		return "", ErrPathEscapes
	}
	return path, nil
}
