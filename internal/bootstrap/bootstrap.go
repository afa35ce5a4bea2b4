// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fusion-energy/devsetup/internal/issue"
	"github.com/fusion-energy/devsetup/internal/runner"
	"github.com/fusion-energy/devsetup/internal/workspace"
	"github.com/fusion-energy/devsetup/pkg/platform"
	"github.com/fusion-energy/devsetup/pkg/types"

	"github.com/charmbracelet/log"
)

const (
	// UVProgram is the package and Python version manager.
	UVProgram = "uv"
	// UVInstallScript installs uv on hosts without Homebrew.
	UVInstallScript = "curl -LsSf https://astral.sh/uv/install.sh | sh"
)

// Bootstrapper runs the bootstrap sequence against a Session.
type Bootstrapper struct {
	Runner runner.Runner
	Host   platform.Host
	Logger *log.Logger
	// DryRun skips the checks that depend on commands having really run.
	DryRun bool
}

// New creates a Bootstrapper. A nil logger discards output.
func New(r runner.Runner, host platform.Host, logger *log.Logger) *Bootstrapper {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bootstrapper{Runner: r, Host: host, Logger: logger}
}

// Run executes every bootstrap step in order and stops at the first fatal
// outcome. On success the session is active.
func (b *Bootstrapper) Run(ctx context.Context, s *workspace.Session) runner.Outcome {
	b.Logger.Info("bootstrapping", "host", b.Host, "python", s.Descriptor().PythonVersion(), "venv", s.Descriptor().VenvDisplay())

	steps := []func(context.Context, *workspace.Session) runner.Outcome{
		b.EnsureUV,
		b.EnsurePython,
		b.Provision,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return runner.Fatal(err, types.ExitInterrupted)
		}
		if out := step(ctx, s); out.IsFatal() {
			return out
		}
	}
	return runner.Succeeded("environment ready at " + s.Descriptor().VenvDisplay())
}

// EnsureUV installs uv when it is not on the session's search path.
func (b *Bootstrapper) EnsureUV(ctx context.Context, s *workspace.Session) runner.Outcome {
	if path, err := s.LookPath(UVProgram); err == nil {
		b.Logger.Debug("uv found", "path", path)
		return runner.Succeeded("uv already installed")
	}

	var cmd runner.Command
	if b.Host.IsDarwin() {
		cmd = runner.Exec("brew", "install", UVProgram)
	} else {
		cmd = runner.Shell(UVInstallScript)
	}

	b.Logger.Info("installing uv", "via", cmd.String())
	res := b.Runner.Run(ctx, s.Command(cmd))
	out := cmd.Policy.Judge("installed uv", res, func(err error) error {
		return issue.NewErrorContext().
			WithOperation("install uv").
			WithResource(cmd.String()).
			WithIssue(issue.PackageManagerInstallFailedId).
			WithSuggestion("Install uv by hand: https://docs.astral.sh/uv/getting-started/installation/").
			Wrap(err).
			BuildError()
	})
	if out.IsFatal() {
		return out
	}

	if cmd.Script != "" {
		// the install script drops uv into one of these without touching
		// the running shell's PATH
		if home := s.Descriptor().HomeDir(); home != "" {
			s.ExtendPath(filepath.Join(home, ".local", "bin"), filepath.Join(home, ".cargo", "bin"))
		}
	}
	if _, err := s.LookPath(UVProgram); err != nil && !b.DryRun {
		b.Logger.Warn("uv is still not on PATH after installation", "path", s.Environ().Get("PATH"))
	}
	return out
}

// EnsurePython installs the pinned interpreter when uv does not list it and
// always pins it for the project.
func (b *Bootstrapper) EnsurePython(ctx context.Context, s *workspace.Session) runner.Outcome {
	version := s.Descriptor().PythonVersion()

	list := runner.Exec(UVProgram, "python", "list", "--only-installed").Captured()
	res := b.Runner.Run(ctx, s.Command(list))
	installed := false
	if res.Success() {
		installed = PythonInstalled(res.Output, version)
	} else {
		b.Logger.Debug("could not list installed interpreters", "err", res.Err())
	}

	pythonFailure := func(op string, cmd runner.Command) func(error) error {
		return func(err error) error {
			return issue.NewErrorContext().
				WithOperation(op).
				WithResource(cmd.String()).
				WithIssue(issue.PythonInstallFailedId).
				WithSuggestion(fmt.Sprintf("Check that uv can provide Python %s: uv python list", version)).
				Wrap(err).
				BuildError()
		}
	}

	if installed {
		b.Logger.Debug("python already installed", "version", version)
	} else {
		install := runner.Exec(UVProgram, "python", "install", version)
		b.Logger.Info("installing python", "version", version)
		res := b.Runner.Run(ctx, s.Command(install))
		if out := install.Policy.Judge("installed python "+version, res, pythonFailure("install python "+version, install)); out.IsFatal() {
			return out
		}
	}

	pin := runner.Exec(UVProgram, "python", "pin", version).In(s.Descriptor().BaseDir())
	res = b.Runner.Run(ctx, s.Command(pin))
	return pin.Policy.Judge("pinned python "+version, res, pythonFailure("pin python "+version, pin))
}

// Provision creates the environment directory when absent, verifies its
// activation script and activates it. It is also what re-provisions the
// environment after it was deleted from the menu.
func (b *Bootstrapper) Provision(ctx context.Context, s *workspace.Session) runner.Outcome {
	d := s.Descriptor()

	if d.HasEnvironment() {
		b.Logger.Debug("reusing environment", "dir", d.VenvDir())
	} else {
		create := runner.Exec(UVProgram, "venv", "--python", d.PythonVersion(), d.VenvDir()).In(d.BaseDir())
		b.Logger.Info("creating environment", "dir", d.VenvDisplay())
		res := b.Runner.Run(ctx, s.Command(create))
		out := create.Policy.Judge("created "+d.VenvDisplay(), res, func(err error) error {
			return issue.NewErrorContext().
				WithOperation("create virtual environment").
				WithResource(d.VenvDir()).
				WithIssue(issue.EnvironmentCreateFailedId).
				WithSuggestion("Remove any partial directory at " + d.VenvDisplay() + " and retry").
				Wrap(err).
				BuildError()
		})
		if out.IsFatal() {
			return out
		}
	}

	if !d.HasActivationScript() {
		if b.DryRun {
			b.Logger.Info("dry run: skipping activation check", "script", d.ActivationScript())
		} else {
			err := issue.NewErrorContext().
				WithOperation("activate virtual environment").
				WithResource(d.ActivationScript()).
				WithIssue(issue.ActivationScriptMissingId).
				WithSuggestion("Delete " + d.VenvDisplay() + " and run devsetup again").
				Wrap(fmt.Errorf("activation script not found: %s", d.ActivationScript())).
				BuildError()
			return runner.Fatal(err, types.ExitFailure)
		}
	}

	s.Activate()
	b.Logger.Debug("environment activated", "VIRTUAL_ENV", d.VenvDir())
	return runner.Succeeded("activated " + d.VenvDisplay())
}

// PythonInstalled reports whether `uv python list --only-installed` output
// lists a CPython interpreter satisfying version. "3.12" matches any 3.12.x
// build; "3.12.4" matches only that patch release. Other implementations and
// variant builds such as "+freethreaded" do not count.
func PythonInstalled(listing, version string) bool {
	for line := range strings.Lines(listing) {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		// cpython-3.12.4-linux-x86_64-gnu
		parts := strings.Split(fields[0], "-")
		if len(parts) < 2 || parts[0] != "cpython" || strings.Contains(parts[1], "+") {
			continue
		}
		got := parts[1]
		if got == version || strings.HasPrefix(got, version+".") {
			return true
		}
	}
	return false
}
