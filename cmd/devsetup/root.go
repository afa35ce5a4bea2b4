// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fusion-energy/devsetup/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the devsetup command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "devsetup",
		Short: "Bootstrap and work in the project's Python development environment",
		Long: TitleStyle.Render("devsetup") + SubtitleStyle.Render(" - Python development environment setup") + `

devsetup installs uv and the pinned Python version when they are missing,
creates the project's virtual environment and then offers a menu of
development tasks: building OpenMC from source, syncing dependencies,
running tests and examples, building the documentation, installing the
project in development mode and deleting the environment.

` + SubtitleStyle.Render("Examples:") + `
  devsetup                  Bootstrap and open the menu
  devsetup bootstrap        Only prepare the environment
  devsetup run sync tests   Sync dependencies, then run the tests
  devsetup actions          List the menu actions
  devsetup config show      Show the effective configuration`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runSession(cmd, interactive)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/devsetup/config.cue, then ./devsetup.cue)")
	flags.StringVarP(&app.flags.projectDir, "project-dir", "C", "", "project directory (default is the working directory)")
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVar(&app.flags.python, "python", "", "Python version to pin, overriding the config")
	flags.StringVar(&app.flags.venvDir, "venv-dir", "", "environment directory, overriding the config")
	flags.BoolVar(&app.flags.picker, "picker", false, "choose menu actions with the arrow keys")
	flags.BoolVar(&app.flags.dryRun, "dry-run", false, "print commands instead of running them")

	rootCmd.AddCommand(newBootstrapCommand(app))
	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newActionsCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the status of the last fatal outcome.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// errorHandler prints errors that reach fang. Fatal session outcomes were
// already rendered and are skipped; catalog issues get their help page.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	if issue.IDOf(err) != 0 {
		renderError(w, err, false, "dark", nil)
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
