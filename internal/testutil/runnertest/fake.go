// SPDX-License-Identifier: MPL-2.0

package runnertest

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/fusion-energy/devsetup/internal/runner"
	"github.com/fusion-energy/devsetup/pkg/types"
)

type (
	// HandlerFunc produces the result for a matched command. It may also
	// perform side effects a real tool would have, such as creating a
	// directory.
	HandlerFunc func(cmd runner.Command) *runner.Result

	// FakeRunner records every command and answers from scripted rules.
	// Unmatched commands succeed with empty output.
	FakeRunner struct {
		mu       sync.Mutex
		commands []runner.Command
		rules    []rule
	}

	rule struct {
		prefix  []string
		handler HandlerFunc
	}
)

// New creates an empty FakeRunner.
func New() *FakeRunner {
	return &FakeRunner{}
}

// Handle registers h for commands whose match words start with prefix.
// An argv command's match words are its argv; a script command has a single
// word, the script text. Later rules take precedence.
func (f *FakeRunner) Handle(h HandlerFunc, prefix ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{prefix: prefix, handler: h})
}

// Fail makes matching commands exit with code.
func (f *FakeRunner) Fail(code types.ExitCode, prefix ...string) {
	f.Handle(func(runner.Command) *runner.Result {
		return &runner.Result{ExitCode: code}
	}, prefix...)
}

// Missing makes matching commands report a program not found on PATH.
func (f *FakeRunner) Missing(prefix ...string) {
	f.Handle(func(cmd runner.Command) *runner.Result {
		name := ""
		if len(cmd.Argv) > 0 {
			name = cmd.Argv[0]
		}
		return &runner.Result{ExitCode: 127, Error: &runner.NotFoundError{Name: name}}
	}, prefix...)
}

// Output makes matching commands succeed with stdout out.
func (f *FakeRunner) Output(out string, prefix ...string) {
	f.Handle(func(runner.Command) *runner.Result {
		return &runner.Result{Output: out}
	}, prefix...)
}

// Run records cmd and returns the result of the most recent matching rule.
func (f *FakeRunner) Run(_ context.Context, cmd runner.Command) *runner.Result {
	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	var handler HandlerFunc
	words := matchWords(cmd)
	for i := len(f.rules) - 1; i >= 0; i-- {
		if hasPrefix(words, f.rules[i].prefix) {
			handler = f.rules[i].handler
			break
		}
	}
	f.mu.Unlock()

	if handler == nil {
		return &runner.Result{}
	}
	return handler(cmd)
}

// Commands returns a copy of every recorded command.
func (f *FakeRunner) Commands() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.commands)
}

// Lines returns every recorded command rendered with Command.String.
func (f *FakeRunner) Lines() []string {
	cmds := f.Commands()
	lines := make([]string, len(cmds))
	for i, c := range cmds {
		lines[i] = c.String()
	}
	return lines
}

// Count returns how many recorded commands start with prefix.
func (f *FakeRunner) Count(prefix ...string) int {
	n := 0
	for _, c := range f.Commands() {
		if hasPrefix(matchWords(c), prefix) {
			n++
		}
	}
	return n
}

// Find returns the first recorded command starting with prefix.
func (f *FakeRunner) Find(prefix ...string) (runner.Command, bool) {
	for _, c := range f.Commands() {
		if hasPrefix(matchWords(c), prefix) {
			return c, true
		}
	}
	return runner.Command{}, false
}

// Reset forgets recorded commands but keeps rules.
func (f *FakeRunner) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = nil
}

func matchWords(cmd runner.Command) []string {
	if cmd.Script != "" {
		return []string{strings.TrimSpace(cmd.Script)}
	}
	return cmd.Argv
}

func hasPrefix(words, prefix []string) bool {
	if len(prefix) > len(words) {
		return false
	}
	return slices.Equal(words[:len(prefix)], prefix)
}
