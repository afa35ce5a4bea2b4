// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fusion-energy/devsetup/internal/issue"

	"github.com/charmbracelet/log"
)

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderError prints err and, when it carries a catalog issue, the issue's
// help page. Interruptions print a single line.
func renderError(w io.Writer, err error, verbose bool, style string, logger *log.Logger) {
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, WarningStyle.Render("Interrupted."))
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	id := issue.IDOf(err)
	if id == 0 {
		return
	}
	if entry := issue.Get(id); entry != nil {
		rendered, renderErr := entry.Render(style)
		if renderErr != nil {
			if logger != nil {
				logger.Warn("failed to render issue catalog entry", "issueID", id, "err", renderErr)
			}
			return
		}
		fmt.Fprint(w, rendered)
	}
}
