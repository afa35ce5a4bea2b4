// SPDX-License-Identifier: MPL-2.0

// Package actions defines the fixed set of menu actions and runs them.
//
// The set is closed: ID enumerates every action and All lists them in menu
// order with their selectors. Parse is the only way to turn user input into
// an ID, so an unknown selector is rejected before anything runs.
//
// Each action delegates to external tools through a runner.Runner and
// reports a single runner.Outcome. Commands declare their own error policy:
// prerequisite installs and dependency sync are tolerated, everything else is
// fatal.
package actions
