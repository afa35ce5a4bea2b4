// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. Errors that match a known failure mode also carry an
// Id into the catalog of Markdown help pages, rendered with glamour when a
// fatal error reaches the CLI layer.
package issue
