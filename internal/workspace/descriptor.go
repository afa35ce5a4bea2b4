// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fusion-energy/devsetup/internal/runner"
	"github.com/fusion-energy/devsetup/pkg/platform"
	"github.com/fusion-energy/devsetup/pkg/types"
)

// ErrInvalidDescriptor is returned when descriptor options are incomplete.
var ErrInvalidDescriptor = errors.New("invalid environment descriptor")

type (
	// DescriptorOptions are the raw inputs of NewDescriptor.
	DescriptorOptions struct {
		PythonVersion    string
		VenvDir          types.FilesystemPath
		ToolkitSourceDir types.FilesystemPath
		// BaseDir is the directory devsetup was started from. Empty means
		// the current working directory.
		BaseDir string
		// HomeDir expands "~". Empty means os.UserHomeDir.
		HomeDir string
		// GOOS selects the venv layout. Empty means runtime.GOOS.
		GOOS string
	}

	// Descriptor is the environment of one devsetup session. All paths are
	// absolute. It is immutable after construction.
	Descriptor struct {
		pythonVersion    string
		venvDir          string
		venvDisplay      string
		toolkitSourceDir string
		baseDir          string
		homeDir          string
		goos             string
	}
)

// NewDescriptor resolves opts into a Descriptor.
func NewDescriptor(opts DescriptorOptions) (*Descriptor, error) {
	if strings.TrimSpace(opts.PythonVersion) == "" {
		return nil, fmt.Errorf("%w: python version is empty", ErrInvalidDescriptor)
	}

	base := opts.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}

	home := opts.HomeDir
	if home == "" {
		// a missing home only matters when a path starts with "~"
		home, _ = os.UserHomeDir()
	}

	venv, err := opts.VenvDir.Resolve(base, home)
	if err != nil {
		return nil, fmt.Errorf("%w: venv dir: %w", ErrInvalidDescriptor, err)
	}
	src, err := opts.ToolkitSourceDir.Resolve(base, home)
	if err != nil {
		return nil, fmt.Errorf("%w: toolkit source dir: %w", ErrInvalidDescriptor, err)
	}
	if venv == base {
		return nil, fmt.Errorf("%w: venv dir must not be the project directory", ErrInvalidDescriptor)
	}

	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	if goos == platform.Windows && platform.IsWindowsReservedName(filepath.Base(venv)) {
		return nil, fmt.Errorf("%w: venv dir %q is a reserved name on Windows", ErrInvalidDescriptor, filepath.Base(venv))
	}

	return &Descriptor{
		pythonVersion:    strings.TrimSpace(opts.PythonVersion),
		venvDir:          venv,
		venvDisplay:      string(opts.VenvDir),
		toolkitSourceDir: src,
		baseDir:          base,
		homeDir:          home,
		goos:             goos,
	}, nil
}

// PythonVersion is the pinned interpreter version, e.g. "3.12".
func (d *Descriptor) PythonVersion() string { return d.pythonVersion }

// VenvDir is the absolute environment directory.
func (d *Descriptor) VenvDir() string { return d.venvDir }

// VenvDisplay is the environment directory as configured (e.g. ".venv").
func (d *Descriptor) VenvDisplay() string { return d.venvDisplay }

// ToolkitSourceDir is the absolute OpenMC checkout directory.
func (d *Descriptor) ToolkitSourceDir() string { return d.toolkitSourceDir }

// BaseDir is the absolute project directory devsetup started in.
func (d *Descriptor) BaseDir() string { return d.baseDir }

// HomeDir is the user's home directory, or "" when unknown.
func (d *Descriptor) HomeDir() string { return d.homeDir }

// BinDir is the environment's executable directory.
func (d *Descriptor) BinDir() string {
	if d.goos == platform.Windows {
		return filepath.Join(d.venvDir, "Scripts")
	}
	return filepath.Join(d.venvDir, "bin")
}

// ActivationScript is the environment's activation entry point.
func (d *Descriptor) ActivationScript() string {
	return filepath.Join(d.BinDir(), "activate")
}

// Python is the environment's interpreter.
func (d *Descriptor) Python() string {
	if d.goos == platform.Windows {
		return filepath.Join(d.BinDir(), "python.exe")
	}
	return filepath.Join(d.BinDir(), "python")
}

// HasEnvironment reports whether the environment directory exists.
func (d *Descriptor) HasEnvironment() bool {
	info, err := os.Stat(d.venvDir)
	return err == nil && info.IsDir()
}

// HasActivationScript reports whether the activation entry point exists.
func (d *Descriptor) HasActivationScript() bool {
	info, err := os.Stat(d.ActivationScript())
	return err == nil && !info.IsDir()
}

// Activate returns base as it looks after sourcing the activation script:
// VIRTUAL_ENV set, the environment's bin directory first on PATH and
// PYTHONHOME removed.
func (d *Descriptor) Activate(base runner.Environ) runner.Environ {
	return base.
		Without("PYTHONHOME").
		With("VIRTUAL_ENV", d.venvDir).
		PrependPath(d.BinDir())
}

// ReactivateHint is the shell command a user runs to activate the
// environment by hand.
func (d *Descriptor) ReactivateHint() string {
	display := d.venvDisplay
	if display == "" {
		display = d.venvDir
	}
	if d.goos == platform.Windows {
		return filepath.Join(display, "Scripts", "activate")
	}
	return "source " + filepath.ToSlash(filepath.Join(display, "bin", "activate"))
}
