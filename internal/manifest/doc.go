// SPDX-License-Identifier: MPL-2.0

// Package manifest reads the parts of a Python project's pyproject.toml that
// the setup actions care about: the project name, its dependencies and the
// names of its optional-dependency extras.
package manifest
