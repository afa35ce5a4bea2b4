// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

// Catalog identifiers. Zero means "no catalog entry".
const (
	ActivationScriptMissingId Id = iota + 1
	PackageManagerInstallFailedId
	PythonInstallFailedId
	EnvironmentCreateFailedId
	CommandFailedId
	CommandNotFoundId
	EnvironmentLockedId
	ConfigLoadFailedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of a help page.
	MarkdownMsg string

	// HttpLink is an external documentation link.
	HttpLink string

	// Issue is a catalog entry describing a known failure mode.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

var (
	render = glamour.Render

	activationScriptMissingIssue = &Issue{
		id: ActivationScriptMissingId,
		mdMsg: `
# Virtual environment is incomplete!

The environment directory exists but has no activation script, so the
project's Python cannot be activated.

## Things you can try:
- Remove the broken environment and run devsetup again:
~~~
$ rm -rf .venv
$ devsetup
~~~
- Check that uv created the environment with the pinned Python:
~~~
$ uv venv --python 3.12 .venv
~~~`,
		docLinks: []HttpLink{"https://docs.astral.sh/uv/pip/environments/"},
	}

	packageManagerInstallFailedIssue = &Issue{
		id: PackageManagerInstallFailedId,
		mdMsg: `
# Could not install uv!

uv manages the Python versions and the virtual environment of this project.

## Things you can try:
- On macOS, install it with Homebrew:
~~~
$ brew install uv
~~~
- On Linux, use the official installer:
~~~
$ curl -LsSf https://astral.sh/uv/install.sh | sh
~~~
- Make sure ~/.local/bin is on your PATH, then run devsetup again`,
		docLinks: []HttpLink{"https://docs.astral.sh/uv/getting-started/installation/"},
	}

	pythonInstallFailedIssue = &Issue{
		id: PythonInstallFailedId,
		mdMsg: `
# Could not provide the pinned Python!

uv failed to install or pin the Python version this project requires.

## Things you can try:
- List the versions uv can install:
~~~
$ uv python list
~~~
- Pick a different version with --python or python_version in config.cue`,
		docLinks: []HttpLink{"https://docs.astral.sh/uv/guides/install-python/"},
	}

	environmentCreateFailedIssue = &Issue{
		id: EnvironmentCreateFailedId,
		mdMsg: `
# Could not create the virtual environment!

## Things you can try:
- Check that you can write to the project directory
- Remove a partially created environment and retry:
~~~
$ rm -rf .venv
~~~`,
	}

	commandFailedIssue = &Issue{
		id: CommandFailedId,
		mdMsg: `
# A setup step failed!

The external tool reported an error and devsetup stopped. Its output is shown
above this message.

## Things you can try:
- Fix the reported problem and run devsetup again
- Re-run with --verbose to see every command devsetup executes
- Use --dry-run to print the commands without executing them`,
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Required tool not found!

A tool needed for this step is not installed or not on your PATH.

## Things you can try:
- Install the tool with your system package manager
- Run "Sync dependencies" or "Install in dev mode" so the project tools land in .venv`,
	}

	environmentLockedIssue = &Issue{
		id: EnvironmentLockedId,
		mdMsg: `
# Environment is in use!

Another devsetup process is working on the same virtual environment.

## Things you can try:
- Wait for the other process to finish
- Close other terminals running devsetup for this project`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Show the effective configuration:
~~~
$ devsetup config show
~~~
- Recreate a default config file:
~~~
$ devsetup config init
~~~`,
	}

	issues = map[Id]*Issue{
		activationScriptMissingIssue.Id():     activationScriptMissingIssue,
		packageManagerInstallFailedIssue.Id(): packageManagerInstallFailedIssue,
		pythonInstallFailedIssue.Id():         pythonInstallFailedIssue,
		environmentCreateFailedIssue.Id():     environmentCreateFailedIssue,
		commandFailedIssue.Id():               commandFailedIssue,
		commandNotFoundIssue.Id():             commandNotFoundIssue,
		environmentLockedIssue.Id():           environmentLockedIssue,
		configLoadFailedIssue.Id():            configLoadFailedIssue,
	}
)

// Id returns the catalog identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the issue as styled terminal Markdown.
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		md += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			md += "- " + string(link) + "\n"
		}
	}
	return render(md, stylePath)
}

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
