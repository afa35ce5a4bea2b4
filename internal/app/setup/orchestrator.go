// SPDX-License-Identifier: MPL-2.0

package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fusion-energy/devsetup/internal/actions"
	"github.com/fusion-energy/devsetup/internal/bootstrap"
	"github.com/fusion-energy/devsetup/internal/config"
	"github.com/fusion-energy/devsetup/internal/issue"
	"github.com/fusion-energy/devsetup/internal/menu"
	"github.com/fusion-energy/devsetup/internal/runner"
	"github.com/fusion-energy/devsetup/internal/workspace"
	"github.com/fusion-energy/devsetup/pkg/platform"
	"github.com/fusion-energy/devsetup/pkg/types"

	"github.com/charmbracelet/log"
)

const (
	// PhaseBootstrapping is the initial phase: the environment is not ready.
	PhaseBootstrapping Phase = iota
	// PhaseMenuLoop is entered once bootstrap succeeded.
	PhaseMenuLoop
	// PhaseExited is terminal.
	PhaseExited
)

// ErrInvalidOptions is returned by New for incomplete Options.
var ErrInvalidOptions = errors.New("invalid orchestrator options")

type (
	// Phase is the orchestrator state.
	Phase int

	// Releaser is a held resource such as the environment lock.
	Releaser interface {
		Release() error
	}

	// Options configure an Orchestrator. Config and Runner are required.
	Options struct {
		Config *config.Config
		Runner runner.Runner
		// Env is the starting environment. Zero means the host environment.
		Env runner.Environ
		// BaseDir is the project directory. Empty means the working directory.
		BaseDir string
		// HomeDir expands "~" in configured paths. Empty means the user's home.
		HomeDir string
		// Host overrides platform detection.
		Host *platform.Host
		// Source fetches the OpenMC checkout. Nil means go-git.
		Source actions.SourceFetcher
		// Prompter reads menu selections. Nil means lines from stdin.
		Prompter menu.Prompter
		Out      io.Writer
		Theme    menu.Theme
		Logger   *log.Logger
		// Locker takes the cross-process environment lock. Nil means
		// workspace.AcquireLock.
		Locker func(venvDir string) (Releaser, error)
		// RemoveAll deletes the environment. Nil means os.RemoveAll.
		RemoveAll func(path string) error
		DryRun    bool
	}

	// Orchestrator drives one devsetup session through
	// Bootstrapping -> MenuLoop -> Exited.
	Orchestrator struct {
		opts       Options
		phase      Phase
		session    *workspace.Session
		boot       *bootstrap.Bootstrapper
		dispatcher *actions.Dispatcher
		lock       Releaser
	}
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseBootstrapping:
		return "bootstrapping"
	case PhaseMenuLoop:
		return "menu"
	case PhaseExited:
		return "exited"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// New builds the session and its collaborators from opts.
func New(opts Options) (*Orchestrator, error) {
	if opts.Config == nil || opts.Runner == nil {
		return nil, fmt.Errorf("%w: config and runner are required", ErrInvalidOptions)
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Locker == nil {
		opts.Locker = func(venvDir string) (Releaser, error) {
			l, err := workspace.AcquireLock(venvDir)
			if err != nil {
				return nil, err
			}
			return l, nil
		}
	}

	cfg := opts.Config
	desc, err := workspace.NewDescriptor(workspace.DescriptorOptions{
		PythonVersion:    string(cfg.PythonVersion),
		VenvDir:          cfg.VenvDir,
		ToolkitSourceDir: cfg.OpenMC.SourceDir,
		BaseDir:          opts.BaseDir,
		HomeDir:          opts.HomeDir,
	})
	if err != nil {
		return nil, err
	}
	session := workspace.NewSession(desc, opts.Env)

	host := platform.Detect(session.LookPath)
	if opts.Host != nil {
		host = *opts.Host
	}

	boot := bootstrap.New(opts.Runner, host, opts.Logger)
	boot.DryRun = opts.DryRun

	d := actions.NewDispatcher(opts.Runner, session, cfg, host, boot)
	d.Logger = opts.Logger
	d.Out = opts.Out
	d.DryRun = opts.DryRun
	if opts.Source != nil {
		d.Source = opts.Source
	}
	if opts.RemoveAll != nil {
		d.RemoveAll = opts.RemoveAll
	}

	if opts.Prompter == nil {
		opts.Prompter = menu.NewLinePrompter(os.Stdin, opts.Out, opts.Theme)
	}

	return &Orchestrator{
		opts:       opts,
		session:    session,
		boot:       boot,
		dispatcher: d,
	}, nil
}

// Phase returns the current phase.
func (o *Orchestrator) Phase() Phase { return o.phase }

// Session returns the orchestrator's session.
func (o *Orchestrator) Session() *workspace.Session { return o.session }

// Bootstrap takes the environment lock and runs the bootstrap sequence. On
// success the orchestrator enters the menu phase; a fatal outcome exits.
func (o *Orchestrator) Bootstrap(ctx context.Context) runner.Outcome {
	if o.phase != PhaseBootstrapping {
		return runner.Succeeded("already bootstrapped")
	}

	if out := o.acquireLock(); out.IsFatal() {
		o.phase = PhaseExited
		return out
	}

	out := o.boot.Run(ctx, o.session)
	if out.IsFatal() {
		o.phase = PhaseExited
		return out
	}
	o.phase = PhaseMenuLoop
	return out
}

// Interactive bootstraps and then runs the menu loop until it ends.
func (o *Orchestrator) Interactive(ctx context.Context) runner.Outcome {
	if out := o.Bootstrap(ctx); out.IsFatal() {
		return out
	}
	menu.Report(o.opts.Out, o.opts.Theme, runner.Succeeded("environment ready: "+o.session.Descriptor().VenvDisplay()))

	loop := &menu.Loop{
		Prompter:   o.opts.Prompter,
		Dispatcher: o.dispatcher,
		Out:        o.opts.Out,
		Theme:      o.opts.Theme,
		Logger:     o.opts.Logger,
	}
	out := loop.Run(ctx)
	o.phase = PhaseExited
	return out
}

// RunActions bootstraps and then runs ids in order without prompting. It
// stops at the first fatal outcome; Exit ends the sequence early.
func (o *Orchestrator) RunActions(ctx context.Context, ids []actions.ID) runner.Outcome {
	if out := o.Bootstrap(ctx); out.IsFatal() {
		return out
	}

	last := runner.Succeeded("nothing to run")
	for _, id := range ids {
		out := o.dispatcher.Run(ctx, id)
		if out.IsFatal() {
			o.phase = PhaseExited
			return out
		}
		menu.Report(o.opts.Out, o.opts.Theme, out)
		last = out
		if id == actions.Exit {
			break
		}
	}
	o.phase = PhaseExited
	return last
}

// Close releases the environment lock.
func (o *Orchestrator) Close() error {
	o.phase = PhaseExited
	if o.lock == nil {
		return nil
	}
	err := o.lock.Release()
	o.lock = nil
	return err
}

func (o *Orchestrator) acquireLock() runner.Outcome {
	if o.lock != nil {
		return runner.Succeeded("lock held")
	}
	venv := o.session.Descriptor().VenvDir()
	lock, err := o.opts.Locker(venv)
	switch {
	case err == nil:
		o.lock = lock
		return runner.Succeeded("lock acquired")
	case errors.Is(err, workspace.ErrLockUnsupported):
		o.opts.Logger.Debug("environment lock unavailable", "err", err)
		return runner.Skipped("no environment lock on this platform")
	case errors.Is(err, workspace.ErrLocked):
		return runner.Fatal(issue.NewErrorContext().
			WithOperation("lock environment").
			WithResource(o.session.Descriptor().VenvDisplay()).
			WithIssue(issue.EnvironmentLockedId).
			WithSuggestion("Wait for the other devsetup session in this project to finish").
			Wrap(err).
			BuildError(), types.ExitFailure)
	default:
		return runner.Fatal(fmt.Errorf("failed to lock environment: %w", err), types.ExitFailure)
	}
}
