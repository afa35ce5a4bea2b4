// SPDX-License-Identifier: MPL-2.0

package actions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/fusion-energy/devsetup/internal/config"
	"github.com/fusion-energy/devsetup/internal/issue"
	"github.com/fusion-energy/devsetup/internal/runner"
	"github.com/fusion-energy/devsetup/internal/workspace"
	"github.com/fusion-energy/devsetup/pkg/platform"
	"github.com/fusion-energy/devsetup/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// Provisioner (re)creates and activates the environment of a session.
	Provisioner interface {
		Provision(ctx context.Context, s *workspace.Session) runner.Outcome
	}

	// Dispatcher runs actions against one session.
	Dispatcher struct {
		Runner      runner.Runner
		Session     *workspace.Session
		Config      *config.Config
		Host        platform.Host
		Source      SourceFetcher
		Provisioner Provisioner
		Logger      *log.Logger
		// Out receives user-facing messages such as skip notices.
		Out io.Writer
		// RemoveAll deletes a directory tree.
		RemoveAll func(path string) error
		// NumCPU is the job count used when the config leaves it at zero.
		NumCPU int
		// Root reports that devsetup runs as the superuser, so system
		// package installs need no sudo.
		Root bool
		// DryRun relaxes checks that depend on commands having really run.
		DryRun bool
	}
)

// NewDispatcher creates a Dispatcher for host with defaults for the
// optional fields.
func NewDispatcher(r runner.Runner, s *workspace.Session, cfg *config.Config, host platform.Host, p Provisioner) *Dispatcher {
	return &Dispatcher{
		Runner:      r,
		Session:     s,
		Config:      cfg,
		Host:        host,
		Source:      &GitSource{},
		Provisioner: p,
		Logger:      log.New(io.Discard),
		Out:         io.Discard,
		RemoveAll:   os.RemoveAll,
		NumCPU:      runtime.NumCPU(),
		Root:        os.Geteuid() == 0,
	}
}

// Run executes the action id and reports its outcome. The working directory
// cursor is back at the base directory when Run returns.
func (d *Dispatcher) Run(ctx context.Context, id ID) runner.Outcome {
	a, ok := id.Action()
	if !ok {
		return runner.Fatal(fmt.Errorf("%w: %v", ErrUnknownSelector, id), types.ExitFailure)
	}
	if err := ctx.Err(); err != nil {
		return runner.Fatal(err, types.ExitInterrupted)
	}

	defer d.Session.Cursor().Reset()

	if a.NeedsEnvironment && d.needsProvisioning() {
		d.Logger.Info("environment missing, provisioning before action", "action", a.Name)
		if out := d.Provisioner.Provision(ctx, d.Session); out.IsFatal() {
			return out
		}
	}

	d.Logger.Debug("running action", "action", a.Name)
	switch id {
	case BuildOpenMC:
		return d.buildOpenMC(ctx)
	case SyncDependencies:
		return d.syncDependencies(ctx)
	case RunTests:
		return d.runTests(ctx)
	case BuildDocs:
		return d.buildDocs(ctx)
	case RunExamples:
		return d.runExamples(ctx)
	case InstallDev:
		return d.installDev(ctx)
	case DeleteVenv:
		return d.deleteVenv()
	case Exit:
		return runner.Succeeded(d.Session.Descriptor().ReactivateHint())
	}
	return runner.Fatal(fmt.Errorf("action %v has no handler", id), types.ExitFailure)
}

func (d *Dispatcher) needsProvisioning() bool {
	if !d.Session.Active() {
		return true
	}
	return !d.DryRun && !d.Session.Descriptor().HasActivationScript()
}

// run executes c bound to the session and judges it under c's policy.
func (d *Dispatcher) run(ctx context.Context, summary string, c runner.Command) runner.Outcome {
	c = d.Session.Command(c)
	res := d.Runner.Run(ctx, c)
	out := c.Policy.Judge(summary, res, func(err error) error {
		return commandError(c, err)
	})
	if out.Status == runner.StatusTolerated {
		d.Logger.Warn("command failed, continuing", "cmd", c.String(), "err", out.Err)
	}
	return out
}

// commandError wraps a failed command into an actionable error.
func commandError(c runner.Command, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("run " + c.String()).
		WithResource(c.Dir).
		Wrap(err)

	var nf *runner.NotFoundError
	if errors.As(err, &nf) {
		return ctx.WithIssue(issue.CommandNotFoundId).
			WithSuggestion("Install " + nf.Name + " into the environment or check PATH").
			BuildError()
	}
	return ctx.WithIssue(issue.CommandFailedId).BuildError()
}

// say writes a user-facing line.
func (d *Dispatcher) say(format string, args ...any) {
	fmt.Fprintf(d.Out, format+"\n", args...)
}
