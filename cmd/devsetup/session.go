// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fusion-energy/devsetup/internal/actions"
	"github.com/fusion-energy/devsetup/internal/app/setup"
	"github.com/fusion-energy/devsetup/internal/menu"
	"github.com/fusion-energy/devsetup/internal/runner"

	"github.com/spf13/cobra"
)

// driveFunc runs one phase sequence on a freshly built orchestrator.
type driveFunc func(ctx context.Context, app *App, o *setup.Orchestrator) runner.Outcome

func newBootstrapCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Install uv and Python and create the environment, without the menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runSession(cmd, bootstrapOnly)
		},
	}
}

func newRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run <action>...",
		Short: "Bootstrap, then run actions by selector or name",
		Long: `Bootstrap the environment, then run the given actions in order without
showing the menu. Actions are named by menu selector ("3") or by name
("tests"); see 'devsetup actions'. The first fatal failure stops the run.`,
		Args: cobra.MinimumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
			var names []cobra.Completion
			for _, a := range actions.All() {
				names = append(names, cobra.CompletionWithDesc(a.Name, a.Label))
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]actions.ID, 0, len(args))
			for _, arg := range args {
				id, err := actions.Resolve(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return app.runSession(cmd, func(ctx context.Context, _ *App, o *setup.Orchestrator) runner.Outcome {
				return o.RunActions(ctx, ids)
			})
		},
	}
}

func interactive(ctx context.Context, _ *App, o *setup.Orchestrator) runner.Outcome {
	return o.Interactive(ctx)
}

func bootstrapOnly(ctx context.Context, app *App, o *setup.Orchestrator) runner.Outcome {
	out := o.Bootstrap(ctx)
	if out.IsFatal() {
		return out
	}
	desc := o.Session().Descriptor()
	menu.Report(app.stdout, menuTheme(), runner.Succeeded("environment ready: "+desc.VenvDisplay()))
	fmt.Fprintln(app.stdout, "To activate the environment in your shell run:")
	fmt.Fprintln(app.stdout, "  "+CmdStyle.Render(desc.ReactivateHint()))
	return out
}

// runSession loads the configuration, builds an orchestrator and drives it.
// Fatal outcomes are rendered here and surface as an ExitError.
func (a *App) runSession(cmd *cobra.Command, drive driveFunc) error {
	ctx := cmd.Context()

	cfg, _, err := a.configure(ctx)
	if err != nil {
		return err
	}
	logger := a.newLogger(cfg)

	o, err := a.newOrchestrator(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := o.Close(); err != nil {
			logger.Warn("failed to release environment lock", "err", err)
		}
	}()

	out := drive(ctx, a, o)
	logger.Debug("session ended", "phase", o.Phase(), "status", out.Status)
	if !out.IsFatal() {
		return nil
	}

	cmd.SilenceErrors = true
	renderError(a.stderr, out.Err, cfg.UI.Verbose, glamourStyle(cfg.UI.ColorScheme), logger)
	return &ExitError{Code: out.ExitCode.OrFailure(), Err: out.Err}
}

func newActionsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the menu actions",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Fprintln(app.stdout, TitleStyle.Render("Actions"))
			fmt.Fprintln(app.stdout)
			for _, a := range actions.All() {
				env := ""
				if a.NeedsEnvironment {
					env = SubtitleStyle.Render("(needs environment)")
				}
				line := fmt.Sprintf("  %s  %-9s %-26s %s", CmdStyle.Render(a.Selector), a.Name, a.Label, env)
				fmt.Fprintln(app.stdout, strings.TrimRight(line, " "))
			}
			return nil
		},
	}
}
