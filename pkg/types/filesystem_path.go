// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
var ErrInvalidFilesystemPath = errors.New("invalid filesystem path")

type (
	// FilesystemPath represents an absolute or relative filesystem path.
	// A valid path must be non-empty and not whitespace-only. A leading "~"
	// refers to the user's home directory and is expanded by Resolve.
	FilesystemPath string

	// InvalidFilesystemPathError is returned when a FilesystemPath value is
	// empty or whitespace-only.
	InvalidFilesystemPathError struct {
		Value FilesystemPath
	}
)

// String returns the string representation of the FilesystemPath.
func (p FilesystemPath) String() string { return string(p) }

// IsValid returns whether the FilesystemPath is valid.
// A valid path must be non-empty and not whitespace-only.
func (p FilesystemPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidFilesystemPathError{Value: p}}
	}
	return true, nil
}

// Resolve returns an absolute, cleaned form of the path. "~" and "~/..."
// expand against home; other relative paths are joined onto base.
func (p FilesystemPath) Resolve(base, home string) (string, error) {
	if ok, errs := p.IsValid(); !ok {
		return "", errs[0]
	}

	s := string(p)
	switch {
	case s == "~":
		s = home
	case strings.HasPrefix(s, "~/"), strings.HasPrefix(s, `~\`):
		if home == "" {
			return "", fmt.Errorf("cannot expand %q: home directory unknown", s)
		}
		s = filepath.Join(home, s[2:])
	case !filepath.IsAbs(s):
		s = filepath.Join(base, s)
	}

	return filepath.Abs(s)
}

// Error implements the error interface for InvalidFilesystemPathError.
func (e *InvalidFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidFilesystemPath for errors.Is() compatibility.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }
