// SPDX-License-Identifier: MPL-2.0

package menu

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fusion-energy/devsetup/internal/actions"
	"github.com/fusion-energy/devsetup/internal/runner"
	"github.com/fusion-energy/devsetup/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// Dispatcher runs one action.
	Dispatcher interface {
		Run(ctx context.Context, id actions.ID) runner.Outcome
	}

	// Loop is the interactive menu.
	Loop struct {
		Prompter   Prompter
		Dispatcher Dispatcher
		Out        io.Writer
		Theme      Theme
		Logger     *log.Logger
	}
)

// Run prompts and dispatches until the exit selector, end of input, context
// cancellation or a fatal outcome. It returns the outcome the process should
// exit with: the exit action's on a normal exit, the fatal one otherwise.
func (l *Loop) Run(ctx context.Context) runner.Outcome {
	items := actions.All()
	for {
		input, err := l.Prompter.Prompt(ctx, items)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				fmt.Fprintln(l.Out)
				return l.exit(ctx)
			case ctx.Err() != nil, errors.Is(err, ErrInterrupted):
				return runner.Fatal(err, types.ExitInterrupted)
			default:
				return runner.Fatal(fmt.Errorf("failed to read selection: %w", err), types.ExitFailure)
			}
		}

		id, err := actions.Parse(input)
		if err != nil {
			fmt.Fprintln(l.Out, l.Theme.Error.Render(fmt.Sprintf("%s, please try again.", capitalize(err.Error()))))
			continue
		}
		if id == actions.Exit {
			return l.exit(ctx)
		}

		if l.Logger != nil {
			l.Logger.Debug("selected", "action", id)
		}
		out := l.Dispatcher.Run(ctx, id)
		if out.IsFatal() {
			return out
		}
		Report(l.Out, l.Theme, out)
	}
}

func (l *Loop) exit(ctx context.Context) runner.Outcome {
	out := l.Dispatcher.Run(context.WithoutCancel(ctx), actions.Exit)
	if out.IsFatal() {
		return out
	}
	fmt.Fprintln(l.Out, l.Theme.Muted.Render("To activate the environment in your shell run:"))
	fmt.Fprintln(l.Out, "  "+out.Summary)
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
