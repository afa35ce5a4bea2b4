// SPDX-License-Identifier: MPL-2.0

// Package bootstrap prepares a project's Python environment before the
// interactive menu starts.
//
// The sequence is fail-fast: ensure uv is on the search path (installing it
// through Homebrew on macOS or the upstream install script elsewhere), make
// sure the pinned interpreter is installed and pinned, create the virtual
// environment when it is missing, verify its activation script and activate
// it in the session. Re-running any step on a ready machine changes nothing.
package bootstrap
