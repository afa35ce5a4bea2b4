// SPDX-License-Identifier: MPL-2.0

package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fusion-energy/devsetup/internal/actions"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrInterrupted is returned when the user aborts a picker with Ctrl+C.
var ErrInterrupted = errors.New("selection interrupted")

// maxLineLen bounds the part of an input line kept as the selection. The
// rest of a longer line is read and dropped.
const maxLineLen = 256

type (
	// Prompter shows the menu and returns the user's raw selection.
	// io.EOF means input ended.
	Prompter interface {
		Prompt(ctx context.Context, items []actions.Action) (string, error)
	}

	// LinePrompter prints the menu and reads one line per selection.
	LinePrompter struct {
		in    *bufio.Reader
		out   io.Writer
		theme Theme

		// lines holds at most one result; pending is set while a read
		// goroutine owns in.
		lines   chan lineResult
		pending bool
		err     error
	}

	lineResult struct {
		line string
		err  error
	}

	// SurveyPrompter lets the user pick an action with the arrow keys.
	SurveyPrompter struct {
		Stdio terminal.Stdio
	}
)

// NewLinePrompter creates a LinePrompter reading in and writing out.
func NewLinePrompter(in io.Reader, out io.Writer, theme Theme) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out, theme: theme, lines: make(chan lineResult, 1)}
}

// Prompt renders the menu and waits for a line or for ctx to end. A line
// still being read when ctx ends is returned by the next call. Once the
// input has ended every later call returns the same error.
func (p *LinePrompter) Prompt(ctx context.Context, items []actions.Action) (string, error) {
	if p.err != nil {
		return "", p.err
	}

	Render(p.out, p.theme, items)
	fmt.Fprint(p.out, p.theme.Prompt.Render("Choose an option: "))

	if !p.pending {
		p.pending = true
		go p.read()
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.lines:
		p.pending = false
		if r.err != nil {
			p.err = r.err
		}
		return r.line, r.err
	}
}

// read reads one line and hands it to Prompt.
func (p *LinePrompter) read() {
	line, err := readLine(p.in)
	p.lines <- lineResult{line: line, err: err}
}

// readLine returns the next line without its terminator, truncated to
// maxLineLen. A final line without a newline is returned before io.EOF.
func readLine(r *bufio.Reader) (string, error) {
	var buf []byte
	for {
		chunk, more, err := r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && len(buf) > 0 {
				return string(buf), nil
			}
			return "", err
		}
		if room := maxLineLen - len(buf); room > 0 {
			buf = append(buf, chunk[:min(len(chunk), room)]...)
		}
		if !more {
			return string(buf), nil
		}
	}
}

// Prompt shows a select list of the actions and returns the chosen selector.
func (p *SurveyPrompter) Prompt(ctx context.Context, items []actions.Action) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	options := make([]string, len(items))
	for i, a := range items {
		options[i] = a.Selector + ") " + a.Label
	}

	var idx int
	prompt := &survey.Select{
		Message:  Title,
		Options:  options,
		PageSize: len(options),
	}
	var opts []survey.AskOpt
	if p.Stdio.In != nil {
		opts = append(opts, survey.WithStdio(p.Stdio.In, p.Stdio.Out, p.Stdio.Err))
	}
	if err := survey.AskOne(prompt, &idx, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", ErrInterrupted
		}
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("menu picker failed: %w", err)
	}
	return items[idx].Selector, nil
}
