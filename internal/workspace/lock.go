// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
)

// lockFilePrefix names the zero-byte lock files. An orphaned file is
// harmless: the kernel drops the flock when the descriptor closes.
const lockFilePrefix = "devsetup-"

var (
	// ErrLocked is returned when another process holds the environment lock.
	ErrLocked = errors.New("environment is locked by another devsetup process")

	// ErrLockUnsupported is returned where flock is unavailable.
	ErrLockUnsupported = errors.New("environment locking not available on this platform")
)

// AcquireLock takes the exclusive, non-blocking lock for venvDir. The lock
// is keyed on the absolute environment path, so two projects never contend.
func AcquireLock(venvDir string) (*Lock, error) {
	return acquireLockAt(lockFilePathWith(os.Getenv, venvDir))
}

// lockFilePathWith returns the lock file path using the provided getenv.
// Prefers $XDG_RUNTIME_DIR (per-user tmpfs), falls back to os.TempDir().
func lockFilePathWith(getenv func(string) string, venvDir string) string {
	dir := getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	sum := sha256.Sum256([]byte(venvDir))
	return filepath.Join(dir, lockFilePrefix+hex.EncodeToString(sum[:8])+".lock")
}
