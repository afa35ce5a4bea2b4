// SPDX-License-Identifier: MPL-2.0

package actions

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// BuildOpenMC installs build prerequisites, clones OpenMC and builds it
	// into the environment.
	BuildOpenMC ID = iota + 1
	// SyncDependencies runs uv sync.
	SyncDependencies
	// RunTests runs the test suite.
	RunTests
	// BuildDocs installs the docs extra and builds the HTML documentation.
	BuildDocs
	// RunExamples runs every example script.
	RunExamples
	// InstallDev installs the project in editable mode.
	InstallDev
	// DeleteVenv removes the environment directory.
	DeleteVenv
	// Exit leaves the menu.
	Exit
)

// ErrUnknownSelector is the sentinel error wrapped by UnknownSelectorError.
var ErrUnknownSelector = errors.New("unknown selector")

type (
	// ID identifies a menu action. The zero value is not an action.
	ID int

	// Action is one menu entry.
	Action struct {
		ID ID
		// Selector is what the user types at the menu prompt.
		Selector string
		// Name is the stable name used by `devsetup run`.
		Name  string
		Label string
		// NeedsEnvironment marks actions that run inside the activated
		// environment and therefore require it to exist.
		NeedsEnvironment bool
	}

	// UnknownSelectorError is returned for input that names no action.
	UnknownSelectorError struct {
		Input string
	}
)

// table is the menu in display order.
var table = []Action{
	{ID: BuildOpenMC, Selector: "1", Name: "openmc", Label: "Build OpenMC from source", NeedsEnvironment: true},
	{ID: SyncDependencies, Selector: "2", Name: "sync", Label: "Sync dependencies", NeedsEnvironment: true},
	{ID: RunTests, Selector: "3", Name: "tests", Label: "Run tests", NeedsEnvironment: true},
	{ID: BuildDocs, Selector: "4", Name: "docs", Label: "Build documentation", NeedsEnvironment: true},
	{ID: RunExamples, Selector: "5", Name: "examples", Label: "Run examples", NeedsEnvironment: true},
	{ID: InstallDev, Selector: "6", Name: "dev", Label: "Install in dev mode", NeedsEnvironment: true},
	{ID: DeleteVenv, Selector: "7", Name: "delete-venv", Label: "Delete venv"},
	{ID: Exit, Selector: "0", Name: "exit", Label: "Exit"},
}

// All returns every action in menu order.
func All() []Action {
	out := make([]Action, len(table))
	copy(out, table)
	return out
}

// Parse maps a selector typed at the menu to its action. Surrounding
// whitespace is ignored; anything else must match exactly.
func Parse(input string) (ID, error) {
	sel := strings.TrimSpace(input)
	for _, a := range table {
		if a.Selector == sel {
			return a.ID, nil
		}
	}
	return 0, &UnknownSelectorError{Input: sel}
}

// Resolve accepts a selector or an action name, case-insensitively for names.
func Resolve(input string) (ID, error) {
	if id, err := Parse(input); err == nil {
		return id, nil
	}
	name := strings.ToLower(strings.TrimSpace(input))
	for _, a := range table {
		if a.Name == name {
			return a.ID, nil
		}
	}
	return 0, &UnknownSelectorError{Input: strings.TrimSpace(input)}
}

// Action returns the table entry for id.
func (id ID) Action() (Action, bool) {
	for _, a := range table {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// String returns the action name.
func (id ID) String() string {
	if a, ok := id.Action(); ok {
		return a.Name
	}
	return fmt.Sprintf("ID(%d)", int(id))
}

// Error implements the error interface.
func (e *UnknownSelectorError) Error() string {
	if e.Input == "" {
		return "no selection entered"
	}
	return fmt.Sprintf("invalid option %q", e.Input)
}

// Unwrap returns ErrUnknownSelector for errors.Is.
func (e *UnknownSelectorError) Unwrap() error { return ErrUnknownSelector }
