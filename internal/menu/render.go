// SPDX-License-Identifier: MPL-2.0

package menu

import (
	"fmt"
	"io"
	"strings"

	"github.com/fusion-energy/devsetup/internal/actions"
	"github.com/fusion-energy/devsetup/internal/runner"
)

// Title heads the menu.
const Title = "Development environment setup"

// Render writes the menu for items.
func Render(w io.Writer, t Theme, items []actions.Action) {
	lines := []string{t.Title.Render(Title), ""}
	for _, a := range items {
		lines = append(lines, fmt.Sprintf("%s %s", t.Selector.Render(a.Selector+")"), t.Label.Render(a.Label)))
	}
	fmt.Fprintln(w, t.Box.Render(strings.Join(lines, "\n")))
}

// Report writes a one-line summary of a non-fatal outcome. Fatal outcomes
// are left to the caller, which renders them as errors.
func Report(w io.Writer, t Theme, o runner.Outcome) {
	switch o.Status {
	case runner.StatusSucceeded:
		fmt.Fprintln(w, t.Success.Render("✓ "+o.Summary))
	case runner.StatusSkipped:
		fmt.Fprintln(w, t.Muted.Render("- "+o.Summary))
	case runner.StatusTolerated:
		line := "! " + o.Summary
		if o.Err != nil {
			line += ": " + o.Err.Error()
		}
		fmt.Fprintln(w, t.Warning.Render(line))
	case runner.StatusFatal:
	}
}
