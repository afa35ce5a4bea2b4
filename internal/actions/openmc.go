// SPDX-License-Identifier: MPL-2.0

package actions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fusion-energy/devsetup/internal/issue"
	"github.com/fusion-energy/devsetup/internal/runner"
	"github.com/fusion-energy/devsetup/pkg/platform"
	"github.com/fusion-energy/devsetup/pkg/types"
)

// prerequisites lists the packages OpenMC's build needs per package manager.
var prerequisites = map[platform.PackageManager][]string{
	platform.PackageManagerApt:  {"g++", "cmake", "libhdf5-dev", "libpng-dev"},
	platform.PackageManagerDnf:  {"gcc-c++", "cmake", "hdf5-devel", "libpng-devel"},
	platform.PackageManagerBrew: {"cmake", "hdf5", "libpng", "libomp"},
}

func (d *Dispatcher) buildOpenMC(ctx context.Context) runner.Outcome {
	var warnings []error

	if out := d.installPrerequisites(ctx); out.Status == runner.StatusTolerated {
		warnings = append(warnings, out.Err)
	}

	src := d.Session.Descriptor().ToolkitSourceDir()
	if out := d.ensureSource(ctx, src); out.IsFatal() {
		return out
	}

	cfg := d.Config.OpenMC
	build := filepath.Join(src, cfg.BuildDir)
	venv := d.Session.Descriptor().VenvDir()
	jobs := strconv.Itoa(cfg.Jobs.Resolve(d.NumCPU))

	release := d.Session.Cursor().Enter(src)
	defer release()

	steps := []struct {
		summary string
		cmd     runner.Command
	}{
		{"configured OpenMC", runner.Exec("cmake", "-S", src, "-B", build, "-DCMAKE_INSTALL_PREFIX="+venv)},
		{"compiled OpenMC", runner.Exec("cmake", "--build", build, "-j", jobs)},
		{"installed OpenMC into " + d.Session.Descriptor().VenvDisplay(), runner.Exec("cmake", "--install", build)},
	}
	for _, step := range steps {
		if out := d.run(ctx, step.summary, step.cmd); out.IsFatal() {
			return out
		}
	}

	if len(warnings) > 0 {
		return runner.Tolerated("built OpenMC, but prerequisites may be incomplete", errors.Join(warnings...))
	}
	return runner.Succeeded("built and installed OpenMC")
}

// installPrerequisites installs the system build dependencies. Failures and
// a missing package manager are tolerated.
func (d *Dispatcher) installPrerequisites(ctx context.Context) runner.Outcome {
	pm := d.Host.PackageManager
	pkgs, ok := prerequisites[pm]
	if !ok {
		err := errors.New("no supported package manager found; install a C++ compiler, cmake, HDF5 and libpng by hand")
		d.Logger.Warn("skipping build prerequisites", "host", d.Host, "err", err)
		return runner.Tolerated("skipped build prerequisites", err)
	}

	var argv []string
	switch pm {
	case platform.PackageManagerBrew:
		argv = append([]string{"brew", "install"}, pkgs...)
	default:
		argv = append([]string{string(pm), "install", "-y"}, pkgs...)
		if !d.Root {
			if _, err := d.Session.LookPath("sudo"); err == nil {
				argv = append([]string{"sudo"}, argv...)
			}
		}
	}

	return d.run(ctx, "installed build prerequisites", runner.Exec(argv...).Tolerate())
}

// ensureSource clones OpenMC when src does not exist. An existing directory
// is used as is: it is neither updated nor verified beyond a warning when it
// does not look like a git checkout. Anything else at src is left untouched
// and fails the action.
func (d *Dispatcher) ensureSource(ctx context.Context, src string) runner.Outcome {
	if info, err := os.Stat(src); err == nil && info.IsDir() {
		rev, err := d.Source.Inspect(src)
		if err != nil {
			d.Logger.Warn("existing OpenMC directory is not a usable git checkout, building it as is", "dir", src, "err", err)
		} else {
			d.Logger.Info("reusing existing OpenMC checkout", "dir", src, "rev", rev)
		}
		return runner.Skipped("OpenMC source already present")
	}

	cfg := d.Config.OpenMC
	if _, err := os.Lstat(src); err == nil {
		return runner.Fatal(issue.NewErrorContext().
			WithOperation("clone OpenMC").
			WithResource(src).
			WithIssue(issue.CommandFailedId).
			WithSuggestion("Move " + src + " out of the way or set openmc.source_dir to another path").
			Wrap(errors.New(src + " exists and is not a directory")).
			BuildError(), types.ExitFailure)
	}

	d.Logger.Info("cloning OpenMC", "url", cfg.RepoURL, "dir", src)
	if err := d.Source.Clone(ctx, cfg.RepoURL, cfg.Ref, src); err != nil {
		code := types.ExitFailure
		if ctx.Err() != nil {
			code = types.ExitInterrupted
		}
		return runner.Fatal(issue.NewErrorContext().
			WithOperation("clone OpenMC").
			WithResource(cfg.RepoURL).
			WithIssue(issue.CommandFailedId).
			WithSuggestion("Check network access to " + cfg.RepoURL).
			WithSuggestion("Clone it by hand into " + src + " and select the action again").
			Wrap(err).
			BuildError(), code)
	}
	return runner.Succeeded("cloned OpenMC")
}
