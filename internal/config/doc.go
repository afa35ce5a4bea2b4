// SPDX-License-Identifier: MPL-2.0

// Package config handles devsetup configuration using Viper with CUE as the file format.
//
// Configuration is read from, in order of precedence:
//   - the file passed with --config (must exist)
//   - ~/.config/devsetup/config.cue ($XDG_CONFIG_HOME on Linux,
//     ~/Library/Application Support on macOS, %APPDATA% on Windows)
//   - ./devsetup.cue in the project directory
//
// A missing file is not an error: every key has a default. Files are
// validated against the embedded config_schema.cue (#Config) before being
// merged over the defaults, and DEVSETUP_* environment variables override
// both (DEVSETUP_PYTHON_VERSION, DEVSETUP_OPENMC_JOBS, ...).
package config
