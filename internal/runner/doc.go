// SPDX-License-Identifier: MPL-2.0

// Package runner is the command-execution boundary between devsetup and the
// external tools it orchestrates (uv, git, cmake, pytest, sphinx, python).
//
// A Command names a program (or a shell pipeline), its working directory and
// its complete environment; nothing is inherited implicitly from the process.
// Runner implementations:
//   - HostRunner: executes argv commands with os/exec and shell pipelines with
//     the embedded mvdan/sh interpreter
//   - DryRunner: prints the commands instead of executing them
//
// Every Command carries a Policy. Judging a Result against its Policy yields
// an Outcome: Succeeded, Tolerated, Skipped or Fatal.
package runner
