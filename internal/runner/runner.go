// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fusion-energy/devsetup/pkg/types"

	"mvdan.cc/sh/v3/syntax"
)

type (
	// Command describes one delegated external invocation.
	// Exactly one of Argv or Script is set.
	Command struct {
		// Argv is the program and its arguments. The program is resolved
		// against Env's PATH.
		Argv []string
		// Script is a POSIX shell pipeline run by the embedded interpreter.
		Script string
		// Dir is the working directory. Empty means the runner's base directory.
		Dir string
		// Env is the complete environment for the process.
		Env Environ
		// Policy decides whether a failure stops the orchestrator.
		Policy Policy
		// Capture collects stdout/stderr into the Result instead of streaming.
		Capture bool
		// Stdin overrides the runner's input stream.
		Stdin io.Reader
	}

	// Result is what a Runner observed.
	Result struct {
		// ExitCode is the exit status reported by the process.
		ExitCode types.ExitCode
		// Error is set when the process could not be started or its status
		// could not be determined.
		Error error
		// Output is captured stdout when Command.Capture is set.
		Output string
		// ErrOutput is captured stderr when Command.Capture is set.
		ErrOutput string
	}

	// Runner executes commands. Implementations block until the command
	// finishes or ctx is cancelled.
	Runner interface {
		Run(ctx context.Context, cmd Command) *Result
	}

	// NotFoundError reports a program missing from the command's PATH.
	NotFoundError struct {
		Name string
	}
)

// Exec builds an argv Command.
func Exec(argv ...string) Command {
	return Command{Argv: argv}
}

// Shell builds a shell pipeline Command.
func Shell(script string) Command {
	return Command{Script: script}
}

// In returns a copy of c running in dir.
func (c Command) In(dir string) Command {
	c.Dir = dir
	return c
}

// WithEnv returns a copy of c using env.
func (c Command) WithEnv(env Environ) Command {
	c.Env = env
	return c
}

// Tolerate returns a copy of c whose failures are tolerated.
func (c Command) Tolerate() Command {
	c.Policy = PolicyTolerate
	return c
}

// Captured returns a copy of c whose output is captured.
func (c Command) Captured() Command {
	c.Capture = true
	return c
}

// String renders the command as a shell-quoted line for logs and dry runs.
func (c Command) String() string {
	if c.Script != "" {
		return c.Script
	}
	quoted := make([]string, 0, len(c.Argv))
	for _, arg := range c.Argv {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			q = fmt.Sprintf("%q", arg)
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " ")
}

// Validate reports malformed commands.
func (c Command) Validate() error {
	switch {
	case c.Script == "" && len(c.Argv) == 0:
		return errors.New("command has neither argv nor script")
	case c.Script != "" && len(c.Argv) > 0:
		return errors.New("command has both argv and script")
	case len(c.Argv) > 0 && strings.TrimSpace(c.Argv[0]) == "":
		return errors.New("command has an empty program name")
	}
	return nil
}

// Success reports whether the command ran and exited zero.
func (r *Result) Success() bool {
	return r != nil && r.Error == nil && r.ExitCode.IsSuccess()
}

// Err returns a descriptive error for a failed result, or nil.
func (r *Result) Err() error {
	switch {
	case r == nil:
		return errors.New("no result")
	case r.Error != nil:
		return r.Error
	case !r.ExitCode.IsSuccess():
		return fmt.Errorf("exit status %d", r.ExitCode)
	}
	return nil
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: executable not found in PATH", e.Name)
}

// Unwrap returns ErrNotFound for errors.Is.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }
