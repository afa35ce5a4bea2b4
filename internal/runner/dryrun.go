// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"fmt"
	"io"
)

// DryRunner prints each command instead of executing it and reports success.
// Captured commands return empty output.
type DryRunner struct {
	Out io.Writer
}

// NewDryRunner creates a DryRunner writing to out.
func NewDryRunner(out io.Writer) *DryRunner {
	return &DryRunner{Out: out}
}

// Run prints cmd and returns a successful Result.
func (r *DryRunner) Run(_ context.Context, cmd Command) *Result {
	if err := cmd.Validate(); err != nil {
		return &Result{ExitCode: 1, Error: err}
	}
	line := "would run: " + cmd.String()
	if cmd.Dir != "" {
		line += "  (in " + cmd.Dir + ")"
	}
	if cmd.Policy == PolicyTolerate {
		line += "  [failure tolerated]"
	}
	fmt.Fprintln(r.Out, line)
	return &Result{}
}
