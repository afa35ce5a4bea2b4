// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the manifest file looked up in the project directory.
const DefaultFileName = "pyproject.toml"

var (
	// ErrNoProjectTable is returned when the manifest has no [project] table.
	ErrNoProjectTable = errors.New("manifest has no [project] table")

	requirementName = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)`)
	nameSeparators  = regexp.MustCompile(`[-_.]+`)
)

type (
	// Manifest is the subset of pyproject.toml devsetup inspects.
	Manifest struct {
		Project Project `toml:"project"`
	}

	// Project is the [project] table.
	Project struct {
		Name                 string              `toml:"name"`
		RequiresPython       string              `toml:"requires-python"`
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	}
)

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes manifest content.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("parsing manifest TOML at line %d, column %d: %w", row, col, err)
		}
		return nil, fmt.Errorf("parsing manifest TOML: %w", err)
	}
	if m.Project.Name == "" && len(m.Project.Dependencies) == 0 && len(m.Project.OptionalDependencies) == 0 {
		return nil, ErrNoProjectTable
	}
	return &m, nil
}

// Extras returns the optional-dependency group names in sorted order.
func (m *Manifest) Extras() []string {
	extras := make([]string, 0, len(m.Project.OptionalDependencies))
	for name := range m.Project.OptionalDependencies {
		extras = append(extras, name)
	}
	sort.Strings(extras)
	return extras
}

// HasExtra reports whether the manifest declares the optional-dependency
// group extra. Names compare in normalized form.
func (m *Manifest) HasExtra(extra string) bool {
	want := NormalizeName(extra)
	for name := range m.Project.OptionalDependencies {
		if NormalizeName(name) == want {
			return true
		}
	}
	return false
}

// DependencyNames returns the normalized names of every dependency, required
// and optional, without duplicates and in sorted order.
func (m *Manifest) DependencyNames() []string {
	seen := make(map[string]struct{})
	add := func(reqs []string) {
		for _, req := range reqs {
			if name := RequirementName(req); name != "" {
				seen[name] = struct{}{}
			}
		}
	}
	add(m.Project.Dependencies)
	for _, reqs := range m.Project.OptionalDependencies {
		add(reqs)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExternalDependencies returns which of the candidates the manifest depends on.
// Candidates are packages that uv cannot install on its own, such as OpenMC
// built from source.
func (m *Manifest) ExternalDependencies(candidates []string) []string {
	deps := m.DependencyNames()
	var found []string
	for _, c := range candidates {
		if name := NormalizeName(c); slices.Contains(deps, name) && !slices.Contains(found, name) {
			found = append(found, name)
		}
	}
	return found
}

// RequirementName extracts the normalized distribution name from a PEP 508
// requirement string ("openmc>=0.14; python_version>'3.9'" -> "openmc").
func RequirementName(req string) string {
	m := requirementName.FindStringSubmatch(req)
	if m == nil {
		return ""
	}
	return NormalizeName(m[1])
}

// NormalizeName applies PEP 503 name normalization.
func NormalizeName(name string) string {
	return nameSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
