// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for devsetup.
//
// The root command bootstraps the project's Python environment and opens the
// interactive action menu. Subcommands bootstrap only, run actions without a
// menu, list the actions and manage the configuration file.
package cmd
