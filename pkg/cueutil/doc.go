// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and
// formats CUE errors with JSON-path prefixes.
//
// Configuration files are unified with a schema definition (for example
// "#Config"), validated without requiring concrete values, and decoded to a
// generic map so the caller can merge them over Viper defaults.
package cueutil
