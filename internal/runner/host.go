// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/fusion-energy/devsetup/pkg/types"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// HostRunner executes commands on the host. Argv commands go through
// os/exec; Script commands go through the embedded mvdan/sh interpreter,
// which still spawns the external programs named in the pipeline.
type HostRunner struct {
	// Stdout and Stderr receive streamed output. Nil means os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	// Stdin feeds commands that do not set their own. Nil means no input.
	Stdin io.Reader
	// Logger receives debug traces of every command. Nil disables tracing.
	Logger *log.Logger
}

// NewHostRunner creates a HostRunner streaming to the process stdio.
func NewHostRunner(logger *log.Logger) *HostRunner {
	return &HostRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
		Logger: logger,
	}
}

// Run executes cmd and blocks until it exits or ctx is cancelled.
func (r *HostRunner) Run(ctx context.Context, cmd Command) *Result {
	if err := cmd.Validate(); err != nil {
		return &Result{ExitCode: types.ExitFailure, Error: err}
	}
	if cmd.Env.IsZero() {
		cmd.Env = HostEnviron()
	}

	if r.Logger != nil {
		r.Logger.Debug("exec", "cmd", cmd.String(), "dir", cmd.Dir, "policy", cmd.Policy)
	}

	if cmd.Script != "" {
		return r.runScript(ctx, cmd)
	}
	return r.runArgv(ctx, cmd)
}

func (r *HostRunner) runArgv(ctx context.Context, c Command) *Result {
	path, err := c.Env.LookPath(c.Argv[0])
	if err != nil {
		return &Result{ExitCode: 127, Error: &NotFoundError{Name: c.Argv[0]}}
	}

	cmd := exec.CommandContext(ctx, path, c.Argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env.Slice()
	cmd.Stdin = r.stdin(c)

	var stdout, stderr bytes.Buffer
	if c.Capture {
		cmd.Stdout, cmd.Stderr = &stdout, &stderr
	} else {
		cmd.Stdout, cmd.Stderr = r.stdout(), r.stderr()
	}

	err = cmd.Run()
	result := &Result{Output: stdout.String(), ErrOutput: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = types.ExitCode(exitErr.ExitCode())
			if result.ExitCode < 0 {
				// killed by a signal
				result.ExitCode = types.ExitInterrupted
			}
			return result
		}
		result.ExitCode = types.ExitFailure
		result.Error = fmt.Errorf("failed to execute %s: %w", c.Argv[0], err)
	}
	return result
}

func (r *HostRunner) runScript(ctx context.Context, c Command) *Result {
	prog, err := syntax.NewParser().Parse(strings.NewReader(c.Script), "script")
	if err != nil {
		return &Result{ExitCode: types.ExitFailure, Error: fmt.Errorf("failed to parse script: %w", err)}
	}

	var stdout, stderr bytes.Buffer
	out, errOut := r.stdout(), r.stderr()
	if c.Capture {
		out, errOut = &stdout, &stderr
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(c.Env.Slice()...)),
		interp.StdIO(r.stdin(c), out, errOut),
	}
	if c.Dir != "" {
		opts = append(opts, interp.Dir(c.Dir))
	}

	sh, err := interp.New(opts...)
	if err != nil {
		return &Result{ExitCode: types.ExitFailure, Error: fmt.Errorf("failed to create interpreter: %w", err)}
	}

	result := &Result{}
	if err := sh.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			result.ExitCode = types.ExitCode(status)
		} else {
			result.ExitCode = types.ExitFailure
			result.Error = fmt.Errorf("script execution failed: %w", err)
		}
	}
	result.Output = stdout.String()
	result.ErrOutput = stderr.String()
	return result
}

func (r *HostRunner) stdin(c Command) io.Reader {
	if c.Stdin != nil {
		return c.Stdin
	}
	return r.Stdin
}

func (r *HostRunner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *HostRunner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}
