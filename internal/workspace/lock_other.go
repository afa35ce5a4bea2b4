// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package workspace

// Lock is the stub used where flock is unavailable.
type Lock struct{}

func acquireLockAt(string) (*Lock, error) {
	return nil, ErrLockUnsupported
}

// Path returns "".
func (l *Lock) Path() string { return "" }

// Release is a no-op.
func (l *Lock) Release() error { return nil }
