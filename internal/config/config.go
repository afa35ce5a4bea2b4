// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fusion-energy/devsetup/internal/issue"
	"github.com/fusion-energy/devsetup/pkg/cueutil"
	"github.com/fusion-energy/devsetup/pkg/platform"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "devsetup"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFileName is the project-local config file.
	LocalConfigFileName = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment overrides (DEVSETUP_PYTHON_VERSION).
	EnvPrefix = "DEVSETUP"
)

//go:embed config_schema.cue
var configSchema string

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		PythonVersion: "3.12",
		VenvDir:       ".venv",
		OpenMC: OpenMCConfig{
			RepoURL:   "https://github.com/openmc-dev/openmc.git",
			SourceDir: "~/openmc",
			BuildDir:  "build",
		},
		Project: ProjectConfig{
			Manifest:     "pyproject.toml",
			DocsDir:      "docs",
			DocsOutput:   "docs/_build/html",
			ExamplesDir:  "examples",
			ExternalDeps: []string{"openmc"},
		},
		Commands: CommandsConfig{
			Test: "pytest",
			Docs: "sphinx-build -b html $DOCS_DIR $DOCS_OUTPUT",
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// ConfigDir returns the devsetup configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions performs option-driven config loading and reports which
// file, if any, was merged over the defaults.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := findConfigFile(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Check DEVSETUP_* environment variables as well as the config file").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// setDefaults registers every key with Viper. AutomaticEnv only binds keys
// Viper already knows about, so each leaf needs a default.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("python_version", string(d.PythonVersion))
	v.SetDefault("venv_dir", string(d.VenvDir))
	v.SetDefault("openmc.repo_url", d.OpenMC.RepoURL)
	v.SetDefault("openmc.ref", d.OpenMC.Ref)
	v.SetDefault("openmc.source_dir", string(d.OpenMC.SourceDir))
	v.SetDefault("openmc.build_dir", d.OpenMC.BuildDir)
	v.SetDefault("openmc.jobs", int(d.OpenMC.Jobs))
	v.SetDefault("project.manifest", d.Project.Manifest)
	v.SetDefault("project.docs_dir", d.Project.DocsDir)
	v.SetDefault("project.docs_output", d.Project.DocsOutput)
	v.SetDefault("project.examples_dir", d.Project.ExamplesDir)
	v.SetDefault("project.external_deps", d.Project.ExternalDeps)
	v.SetDefault("commands.test", d.Commands.Test)
	v.SetDefault("commands.docs", d.Commands.Docs)
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("ui.picker", d.UI.Picker)
	v.SetDefault("ui.color_scheme", string(d.UI.ColorScheme))
}

// findConfigFile returns the config file to load, or "" for defaults only.
func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		path := string(opts.ConfigFilePath)
		if !fileExists(path) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'devsetup config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", path)).
				BuildError()
		}
		return path, nil
	}

	cfgDir, err := configDirWithOverride(string(opts.ConfigDirPath))
	if err != nil {
		return "", err
	}
	if p := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt); fileExists(p) {
		return p, nil
	}

	if p := filepath.Join(string(opts.ProjectDir), LocalConfigFileName); fileExists(p) {
		return p, nil
	}
	return "", nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, "#Config", data, path)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file into dir unless one
// already exists. It returns the file path and whether it was written.
func CreateDefaultConfig(dir string) (string, bool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// devsetup configuration file\n\n")

	fmt.Fprintf(&sb, "python_version: %q\n", cfg.PythonVersion)
	fmt.Fprintf(&sb, "venv_dir: %q\n", cfg.VenvDir)

	sb.WriteString("\nopenmc: {\n")
	fmt.Fprintf(&sb, "\trepo_url: %q\n", cfg.OpenMC.RepoURL)
	if cfg.OpenMC.Ref != "" {
		fmt.Fprintf(&sb, "\tref: %q\n", cfg.OpenMC.Ref)
	}
	fmt.Fprintf(&sb, "\tsource_dir: %q\n", cfg.OpenMC.SourceDir)
	fmt.Fprintf(&sb, "\tbuild_dir: %q\n", cfg.OpenMC.BuildDir)
	fmt.Fprintf(&sb, "\tjobs: %d\n", cfg.OpenMC.Jobs)
	sb.WriteString("}\n")

	sb.WriteString("\nproject: {\n")
	fmt.Fprintf(&sb, "\tmanifest: %q\n", cfg.Project.Manifest)
	fmt.Fprintf(&sb, "\tdocs_dir: %q\n", cfg.Project.DocsDir)
	fmt.Fprintf(&sb, "\tdocs_output: %q\n", cfg.Project.DocsOutput)
	fmt.Fprintf(&sb, "\texamples_dir: %q\n", cfg.Project.ExamplesDir)
	sb.WriteString("\texternal_deps: [")
	for i, dep := range cfg.Project.ExternalDeps {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", dep)
	}
	sb.WriteString("]\n")
	sb.WriteString("}\n")

	sb.WriteString("\ncommands: {\n")
	fmt.Fprintf(&sb, "\ttest: %q\n", cfg.Commands.Test)
	fmt.Fprintf(&sb, "\tdocs: %q\n", cfg.Commands.Docs)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tpicker: %v\n", cfg.UI.Picker)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	return sb.String()
}
