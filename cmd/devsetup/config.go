// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fusion-energy/devsetup/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatCUE  = "cue"
	formatYAML = "yaml"
	formatJSON = "json"
)

// ErrUnknownFormat is returned by `config show` for an unsupported --format.
var ErrUnknownFormat = errors.New("unknown output format")

// newConfigCommand creates the `devsetup config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage devsetup configuration",
		Long: `Manage devsetup configuration.

Configuration is read from the first of:
  - the file given with --config
  - the user config file:
      Linux:   ~/.config/devsetup/config.cue
      macOS:   ~/Library/Application Support/devsetup/config.cue
      Windows: %APPDATA%\devsetup\config.cue
  - devsetup.cue in the project directory

DEVSETUP_* environment variables override file values
(DEVSETUP_PYTHON_VERSION, DEVSETUP_OPENMC_JOBS, ...).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := app.configure(cmd.Context())
			if err != nil {
				return err
			}
			return writeConfig(app.stdout, cfg, format)
		},
	}
	showCmd.Flags().StringVar(&format, "format", formatCUE, "output format: cue, yaml or json")
	cfgCmd.AddCommand(showCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default user configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(app.stdout)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, active, err := app.configure(cmd.Context())
			if err != nil {
				return err
			}
			return showConfigPath(app.stdout, app.flags.projectDir, active)
		},
	})

	return cfgCmd
}

func writeConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case formatCUE:
		_, err := io.WriteString(w, config.GenerateCUE(cfg))
		return err
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config as YAML: %w", err)
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config as JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w %q (want %s, %s or %s)", ErrUnknownFormat, format, formatCUE, formatYAML, formatJSON)
	}
}

func initConfig(w io.Writer) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	path, created, err := config.CreateDefaultConfig(cfgDir)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(w, "%s Configuration already exists at %s\n", SubtitleStyle.Render("-"), path)
		return nil
	}
	fmt.Fprintf(w, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(w io.Writer, projectDir, active string) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	if projectDir == "" {
		projectDir = "."
	}
	if active == "" {
		active = "(using defaults)"
	}

	fmt.Fprintf(w, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(w, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	fmt.Fprintf(w, "Project config: %s\n", filepath.Join(projectDir, config.LocalConfigFileName))
	fmt.Fprintf(w, "Active: %s\n", active)
	return nil
}
