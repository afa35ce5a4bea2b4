// SPDX-License-Identifier: MPL-2.0

// Package runnertest provides a recording fake runner.Runner.
//
// This package is separate from testutil to avoid import cycles, since
// testutil is used by internal/runner tests.
//
// # Usage
//
//	fake := runnertest.New()
//	fake.Fail(2, "pytest")
//	fake.Output("3.12.4\n", "uv", "python", "list")
//	outcome := action.Run(ctx, fake)
//	fake.Lines() // every command rendered as a shell line, in order
package runnertest
