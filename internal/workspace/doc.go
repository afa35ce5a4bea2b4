// SPDX-License-Identifier: MPL-2.0

// Package workspace owns the filesystem side of a devsetup session: the
// immutable environment Descriptor (pinned Python, venv, OpenMC checkout,
// base directory), the working-directory Cursor every command runs from,
// and the cross-process Lock guarding the virtual environment.
package workspace
