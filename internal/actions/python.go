// SPDX-License-Identifier: MPL-2.0

package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fusion-energy/devsetup/internal/manifest"
	"github.com/fusion-energy/devsetup/internal/runner"
	"github.com/fusion-energy/devsetup/pkg/types"

	"mvdan.cc/sh/v3/shell"
)

func (d *Dispatcher) syncDependencies(ctx context.Context) runner.Outcome {
	out := d.run(ctx, "synced dependencies", runner.Exec("uv", "sync").Tolerate())
	if out.Status != runner.StatusTolerated {
		return out
	}

	// Dependencies built from source are expected to break resolution.
	if external := d.externalDependencies(); len(external) > 0 {
		out.Summary = fmt.Sprintf("dependency sync failed; %s must be provided separately (see Build OpenMC)", strings.Join(external, ", "))
	} else {
		out.Summary = "dependency sync failed"
	}
	return out
}

// externalDependencies lists configured external packages the manifest
// depends on. A missing or unreadable manifest yields none.
func (d *Dispatcher) externalDependencies() []string {
	path := d.projectPath(d.Config.Project.Manifest)
	m, err := manifest.Load(path)
	if err != nil {
		d.Logger.Debug("could not read manifest", "path", path, "err", err)
		return nil
	}
	return m.ExternalDependencies(d.Config.Project.ExternalDeps)
}

func (d *Dispatcher) runTests(ctx context.Context) runner.Outcome {
	argv, err := d.commandLine(d.Config.Commands.Test)
	if err != nil {
		return runner.Fatal(err, types.ExitFailure)
	}
	return d.run(ctx, "tests passed", runner.Exec(argv...))
}

func (d *Dispatcher) buildDocs(ctx context.Context) runner.Outcome {
	project := d.Config.Project
	if !d.isDir(project.DocsDir) {
		d.say("No %s/ directory found, skipping documentation build.", project.DocsDir)
		return runner.Skipped("no documentation directory")
	}

	if m, err := manifest.Load(d.projectPath(project.Manifest)); err == nil && !m.HasExtra("docs") {
		d.Logger.Warn("manifest declares no docs extra", "manifest", project.Manifest)
	}

	if out := d.run(ctx, "installed docs dependencies", runner.Exec("uv", "pip", "install", "-e", ".[docs]")); out.IsFatal() {
		return out
	}

	argv, err := d.commandLine(d.Config.Commands.Docs)
	if err != nil {
		return runner.Fatal(err, types.ExitFailure)
	}
	return d.run(ctx, "built documentation into "+project.DocsOutput, runner.Exec(argv...))
}

func (d *Dispatcher) runExamples(ctx context.Context) runner.Outcome {
	dir := d.Config.Project.ExamplesDir
	if !d.isDir(dir) {
		d.say("No %s/ directory found, skipping examples.", dir)
		return runner.Skipped("no examples directory")
	}

	scripts, err := filepath.Glob(filepath.Join(d.projectPath(dir), "*.py"))
	if err != nil {
		return runner.Fatal(err, types.ExitFailure)
	}
	slices.Sort(scripts)
	if len(scripts) == 0 {
		d.say("No example scripts in %s/.", dir)
		return runner.Skipped("no example scripts")
	}

	release := d.Session.Cursor().Enter(d.projectPath(dir))
	defer release()

	python := d.Session.Descriptor().Python()
	for _, script := range scripts {
		name := filepath.Base(script)
		d.say("Running %s", name)
		if out := d.run(ctx, "ran "+name, runner.Exec(python, name)); out.IsFatal() {
			return out
		}
	}
	return runner.Succeeded(fmt.Sprintf("ran %d examples", len(scripts)))
}

func (d *Dispatcher) installDev(ctx context.Context) runner.Outcome {
	return d.run(ctx, "installed the project in editable mode", runner.Exec("uv", "pip", "install", "-e", "."))
}

func (d *Dispatcher) deleteVenv() runner.Outcome {
	desc := d.Session.Descriptor()
	if err := d.RemoveAll(desc.VenvDir()); err != nil {
		return runner.Fatal(fmt.Errorf("failed to remove %s: %w", desc.VenvDisplay(), err), types.ExitFailure)
	}
	d.Session.Deactivate()
	return runner.Succeeded("deleted " + desc.VenvDisplay())
}

// commandLine splits a configured command line into argv. $DOCS_DIR,
// $DOCS_OUTPUT and $EXAMPLES_DIR expand to the project settings; other
// variables come from the session environment.
func (d *Dispatcher) commandLine(line string) ([]string, error) {
	project := d.Config.Project
	env := d.Session.Environ()
	argv, err := shell.Fields(line, func(name string) string {
		switch name {
		case "DOCS_DIR":
			return project.DocsDir
		case "DOCS_OUTPUT":
			return project.DocsOutput
		case "EXAMPLES_DIR":
			return project.ExamplesDir
		}
		return env.Get(name)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid command line %q: %w", line, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("invalid command line %q: empty", line)
	}
	return argv, nil
}

// projectPath resolves p against the project directory.
func (d *Dispatcher) projectPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.Session.Descriptor().BaseDir(), p)
}

func (d *Dispatcher) isDir(p string) bool {
	info, err := os.Stat(d.projectPath(p))
	return err == nil && info.IsDir()
}
