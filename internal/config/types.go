// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/fusion-energy/devsetup/pkg/types"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidPythonVersion is returned when a PythonVersion is not MAJOR.MINOR[.PATCH].
	ErrInvalidPythonVersion = errors.New("invalid python version")
	// ErrInvalidJobs is returned when Jobs is negative.
	ErrInvalidJobs = errors.New("invalid job count")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig wraps every validation failure of a Config.
	ErrInvalidConfig = errors.New("invalid config")

	pythonVersionPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+(\.[0-9]+)?$`)
)

type (
	// PythonVersion is a uv-style version request such as "3.12" or "3.12.4".
	PythonVersion string

	// Jobs is a parallel build job count. Zero means one per CPU.
	Jobs int

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// Config is the complete devsetup configuration.
	Config struct {
		PythonVersion PythonVersion        `json:"python_version" yaml:"python_version" mapstructure:"python_version"`
		VenvDir       types.FilesystemPath `json:"venv_dir" yaml:"venv_dir" mapstructure:"venv_dir"`
		OpenMC        OpenMCConfig         `json:"openmc" yaml:"openmc" mapstructure:"openmc"`
		Project       ProjectConfig        `json:"project" yaml:"project" mapstructure:"project"`
		Commands      CommandsConfig       `json:"commands" yaml:"commands" mapstructure:"commands"`
		UI            UIConfig             `json:"ui" yaml:"ui" mapstructure:"ui"`
	}

	// OpenMCConfig locates and builds the OpenMC source checkout.
	OpenMCConfig struct {
		RepoURL string `json:"repo_url" yaml:"repo_url" mapstructure:"repo_url"`
		// Ref is a branch or tag to clone. Empty clones the default branch.
		Ref       string               `json:"ref" yaml:"ref" mapstructure:"ref"`
		SourceDir types.FilesystemPath `json:"source_dir" yaml:"source_dir" mapstructure:"source_dir"`
		// BuildDir is relative to SourceDir.
		BuildDir string `json:"build_dir" yaml:"build_dir" mapstructure:"build_dir"`
		Jobs     Jobs   `json:"jobs" yaml:"jobs" mapstructure:"jobs"`
	}

	// ProjectConfig describes the Python project layout.
	ProjectConfig struct {
		Manifest     string   `json:"manifest" yaml:"manifest" mapstructure:"manifest"`
		DocsDir      string   `json:"docs_dir" yaml:"docs_dir" mapstructure:"docs_dir"`
		DocsOutput   string   `json:"docs_output" yaml:"docs_output" mapstructure:"docs_output"`
		ExamplesDir  string   `json:"examples_dir" yaml:"examples_dir" mapstructure:"examples_dir"`
		ExternalDeps []string `json:"external_deps" yaml:"external_deps" mapstructure:"external_deps"`
	}

	// CommandsConfig holds shell-style command lines for the delegated tools.
	// Docs may reference $DOCS_DIR and $DOCS_OUTPUT.
	CommandsConfig struct {
		Test string `json:"test" yaml:"test" mapstructure:"test"`
		Docs string `json:"docs" yaml:"docs" mapstructure:"docs"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		Verbose     bool        `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
		Picker      bool        `json:"picker" yaml:"picker" mapstructure:"picker"`
		ColorScheme ColorScheme `json:"color_scheme" yaml:"color_scheme" mapstructure:"color_scheme"`
	}
)

// String returns the version string.
func (v PythonVersion) String() string { return string(v) }

// IsValid reports whether v is MAJOR.MINOR[.PATCH].
func (v PythonVersion) IsValid() (bool, []error) {
	if !pythonVersionPattern.MatchString(string(v)) {
		return false, []error{fmt.Errorf("%w: %q (want MAJOR.MINOR[.PATCH])", ErrInvalidPythonVersion, string(v))}
	}
	return true, nil
}

// IsValid reports whether j is non-negative.
func (j Jobs) IsValid() (bool, []error) {
	if j < 0 {
		return false, []error{fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidJobs, int(j))}
	}
	return true, nil
}

// Resolve returns j, or cpus when j is zero.
func (j Jobs) Resolve(cpus int) int {
	if j == 0 {
		return max(cpus, 1)
	}
	return int(j)
}

// IsValid reports whether c is a known color scheme.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	}
	return false, []error{fmt.Errorf("%w: %q (valid: auto, dark, light)", ErrInvalidColorScheme, string(c))}
}

// Validate checks every typed field and returns all failures joined and
// wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	collect := func(ok bool, fieldErrs []error) {
		if !ok {
			errs = append(errs, fieldErrs...)
		}
	}

	collect(c.PythonVersion.IsValid())
	collect(c.VenvDir.IsValid())
	collect(c.OpenMC.SourceDir.IsValid())
	collect(c.OpenMC.Jobs.IsValid())
	collect(c.UI.ColorScheme.IsValid())

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
