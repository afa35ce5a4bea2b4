// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fusion-energy/devsetup/internal/actions"
	"github.com/fusion-energy/devsetup/internal/app/setup"
	"github.com/fusion-energy/devsetup/internal/config"
	"github.com/fusion-energy/devsetup/internal/menu"
	"github.com/fusion-energy/devsetup/internal/runner"
	"github.com/fusion-energy/devsetup/pkg/types"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

type (
	// ConfigLoader resolves the configuration and reports the file it was
	// read from ("" for defaults).
	ConfigLoader func(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)

	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every Cobra handler works through it.
	App struct {
		loadConfig ConfigLoader
		runner     runner.Runner
		stdin      io.Reader
		stdout     io.Writer
		stderr     io.Writer
		flags      rootFlags
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		LoadConfig ConfigLoader
		// Runner executes delegated commands. Nil means the host runner, or
		// a printing runner under --dry-run.
		Runner runner.Runner
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// rootFlags are the persistent flags shared by every subcommand.
	rootFlags struct {
		configPath string
		projectDir string
		python     string
		venvDir    string
		verbose    bool
		picker     bool
		dryRun     bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.LoadConfig == nil {
		deps.LoadConfig = config.Resolve
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{
		loadConfig: deps.LoadConfig,
		runner:     deps.Runner,
		stdin:      deps.Stdin,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
}

// configure loads the configuration and applies flag overrides on top.
func (a *App) configure(ctx context.Context) (*config.Config, string, error) {
	cfg, path, err := a.loadConfig(ctx, config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(a.flags.configPath),
		ProjectDir:     types.FilesystemPath(a.flags.projectDir),
	})
	if err != nil {
		return nil, "", err
	}
	if err := a.flags.apply(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// apply overrides cfg with the flags the user set and revalidates it.
func (f rootFlags) apply(cfg *config.Config) error {
	if f.python != "" {
		cfg.PythonVersion = config.PythonVersion(f.python)
	}
	if f.venvDir != "" {
		cfg.VenvDir = types.FilesystemPath(f.venvDir)
	}
	if f.verbose {
		cfg.UI.Verbose = true
	}
	if f.picker {
		cfg.UI.Picker = true
	}
	return cfg.Validate()
}

func (a *App) newLogger(cfg *config.Config) *log.Logger {
	level := log.InfoLevel
	if cfg.UI.Verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

// newOrchestrator assembles a session for cfg. Delegated commands get no
// standard input: the menu owns it.
func (a *App) newOrchestrator(cfg *config.Config, logger *log.Logger) (*setup.Orchestrator, error) {
	theme := menuTheme()
	opts := setup.Options{
		Config:  cfg,
		BaseDir: a.flags.projectDir,
		Out:     a.stdout,
		Theme:   theme,
		Logger:  logger,
		DryRun:  a.flags.dryRun,
	}

	switch {
	case a.runner != nil:
		opts.Runner = a.runner
	case a.flags.dryRun:
		opts.Runner = runner.NewDryRunner(a.stdout)
		opts.Source = &actions.DrySource{Out: a.stdout}
		opts.RemoveAll = func(path string) error {
			fmt.Fprintf(a.stdout, "would remove: %s\n", path)
			return nil
		}
	default:
		hr := runner.NewHostRunner(logger)
		hr.Stdin = nil
		hr.Stdout = a.stdout
		hr.Stderr = a.stderr
		opts.Runner = hr
	}

	opts.Prompter = a.newPrompter(cfg, theme, logger)
	return setup.New(opts)
}

// newPrompter returns the arrow-key picker when it was requested and stdin
// is a terminal, otherwise line input.
func (a *App) newPrompter(cfg *config.Config, theme menu.Theme, logger *log.Logger) menu.Prompter {
	if cfg.UI.Picker {
		if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return &menu.SurveyPrompter{}
		}
		logger.Warn("the picker needs an interactive terminal, using line input")
	}
	return menu.NewLinePrompter(a.stdin, a.stdout, theme)
}
