// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// ErrNotFound is returned by Environ.LookPath when no executable matches.
var ErrNotFound = errors.New("executable not found in PATH")

// Environ is an explicit process environment. Methods never mutate the
// receiver; they return modified copies, so an Environ can be shared freely.
type Environ struct {
	vars map[string]string
}

// NewEnviron builds an Environ from KEY=VALUE pairs. Later duplicates win.
func NewEnviron(kv []string) Environ {
	vars := make(map[string]string, len(kv))
	for _, pair := range kv {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		vars[normalizeKey(key)] = value
	}
	return Environ{vars: vars}
}

// HostEnviron snapshots the environment of the current process.
func HostEnviron() Environ {
	return NewEnviron(os.Environ())
}

// IsZero reports whether the Environ was never initialized.
func (e Environ) IsZero() bool { return e.vars == nil }

// Get returns the value of key, or "".
func (e Environ) Get(key string) string {
	return e.vars[normalizeKey(key)]
}

// Lookup returns the value of key and whether it is set.
func (e Environ) Lookup(key string) (string, bool) {
	v, ok := e.vars[normalizeKey(key)]
	return v, ok
}

// With returns a copy with key set to value.
func (e Environ) With(key, value string) Environ {
	vars := maps.Clone(e.vars)
	if vars == nil {
		vars = map[string]string{}
	}
	vars[normalizeKey(key)] = value
	return Environ{vars: vars}
}

// Without returns a copy with key removed.
func (e Environ) Without(key string) Environ {
	vars := maps.Clone(e.vars)
	delete(vars, normalizeKey(key))
	return Environ{vars: vars}
}

// PrependPath returns a copy whose PATH starts with dirs, in order.
// Directories already on PATH are moved to the front rather than repeated.
func (e Environ) PrependPath(dirs ...string) Environ {
	current := filepath.SplitList(e.Get("PATH"))
	out := make([]string, 0, len(dirs)+len(current))
	seen := make(map[string]bool, len(dirs)+len(current))
	for _, dir := range append(slices.Clone(dirs), current...) {
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		out = append(out, dir)
	}
	return e.With("PATH", strings.Join(out, string(os.PathListSeparator)))
}

// Slice returns the environment as sorted KEY=VALUE pairs.
func (e Environ) Slice() []string {
	out := make([]string, 0, len(e.vars))
	for _, key := range slices.Sorted(maps.Keys(e.vars)) {
		out = append(out, key+"="+e.vars[key])
	}
	return out
}

// Getenv adapts the Environ to the func(string) string shape used by
// os.Expand and mvdan.cc/sh/v3/shell.
func (e Environ) Getenv(key string) string { return e.Get(key) }

// LookPath resolves name against this environment's PATH rather than the
// PATH of the current process.
func (e Environ) LookPath(name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) || strings.Contains(name, "/") {
		if isExecutable(name) {
			return name, nil
		}
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	for _, dir := range filepath.SplitList(e.Get("PATH")) {
		if dir == "" {
			continue
		}
		for _, candidate := range executableNames(name) {
			full := filepath.Join(dir, candidate)
			if isExecutable(full) {
				return full, nil
			}
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

func executableNames(name string) []string {
	if runtime.GOOS != "windows" || filepath.Ext(name) != "" {
		return []string{name}
	}
	return []string{name + ".exe", name + ".cmd", name + ".bat", name}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

// normalizeKey folds keys on Windows, where the environment is case-insensitive.
func normalizeKey(key string) string {
	if runtime.GOOS == "windows" {
		return strings.ToUpper(key)
	}
	return key
}
