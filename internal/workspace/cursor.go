// SPDX-License-Identifier: MPL-2.0

package workspace

import "path/filepath"

// Cursor is the working directory commands are issued from. It replaces
// process-wide chdir: actions Enter a directory, run commands in Dir, and
// release it, which returns the cursor to where it was.
type Cursor struct {
	base  string
	stack []string
}

// NewCursor creates a Cursor positioned at base.
func NewCursor(base string) *Cursor {
	return &Cursor{base: base}
}

// Dir returns the current directory.
func (c *Cursor) Dir() string {
	if len(c.stack) == 0 {
		return c.base
	}
	return c.stack[len(c.stack)-1]
}

// Base returns the directory the cursor was created at.
func (c *Cursor) Base() string { return c.base }

// Enter moves to dir, resolved against the current directory when
// relative, and returns the release function restoring the previous one.
// Releasing twice is a no-op.
func (c *Cursor) Enter(dir string) (release func()) {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.Dir(), dir)
	}
	depth := len(c.stack)
	c.stack = append(c.stack, filepath.Clean(dir))

	released := false
	return func() {
		if released {
			return
		}
		released = true
		if len(c.stack) > depth {
			c.stack = c.stack[:depth]
		}
	}
}

// AtBase reports whether every acquired directory has been released.
func (c *Cursor) AtBase() bool { return len(c.stack) == 0 }

// Reset releases every acquired directory.
func (c *Cursor) Reset() { c.stack = c.stack[:0] }
