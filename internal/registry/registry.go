// Package registry implements the runtime-API registry (C8, spec.md
// 4.8): a static table of framework-defined exports that are excluded
// from dead-code analysis, extensible with a project-local TOML file.
// Entries merge with, never replace, the built-in table.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/loctree/loctree/internal/coretypes"
)

// Entry is one runtime-API registry record (spec.md 6 "Runtime-API
// registry entry").
type Entry struct {
	Framework    string   `toml:"framework"`
	Exports      []string `toml:"exports"`
	FilePatterns []string `toml:"file_patterns"`
	Kind         string   `toml:"kind,omitempty"`
}

// Registry holds the merged built-in + user entry set.
type Registry struct {
	entries  []Entry
	warnings []string
}

// file is the on-disk shape of .loctree/registry.toml: a flat list of
// entries under the "entry" table array, mirroring the teacher's
// TOML-based extension files elsewhere in the pack.
type file struct {
	Entry []Entry `toml:"entry"`
}

// Builtins is the static table of well-known framework export
// conventions that must never be flagged dead even with zero importers
// (spec.md 4.11 scenario 3, loader.mjs example).
func Builtins() []Entry {
	return []Entry{
		{
			Framework:    "vite",
			Exports:      []string{"default"},
			FilePatterns: []string{"**/vite.config.{js,ts,mjs,cjs}"},
		},
		{
			Framework:    "next",
			Exports:      []string{"default", "getStaticProps", "getStaticPaths", "getServerSideProps", "GET", "POST", "PUT", "DELETE", "PATCH", "middleware", "config"},
			FilePatterns: []string{"**/pages/**/*.{js,jsx,ts,tsx}", "**/app/**/*.{js,jsx,ts,tsx}", "**/middleware.{js,ts}"},
		},
		{
			Framework:    "remix",
			Exports:      []string{"default", "loader", "action", "meta", "links", "ErrorBoundary"},
			FilePatterns: []string{"**/routes/**/*.{js,jsx,ts,tsx}"},
		},
		{
			Framework:    "runtime-api-loader",
			Exports:      []string{"resolve", "load", "globalPreload", "initialize"},
			FilePatterns: []string{"**/loader.mjs"},
		},
		{
			Framework:    "service-worker",
			Exports:      []string{"default"},
			FilePatterns: []string{"**/service-worker.{js,ts}", "**/sw.{js,ts}"},
		},
		{
			Framework:    "tauri-command",
			Exports:      []string{"main"},
			FilePatterns: []string{"**/main.rs"},
		},
		{
			Framework:    "python-entrypoint",
			Exports:      []string{"main", "app", "application"},
			FilePatterns: []string{"**/__main__.py", "**/wsgi.py", "**/asgi.py"},
		},
		{
			Framework:    "pytest-fixture",
			Exports:      []string{"*"},
			FilePatterns: []string{"**/conftest.py"},
			Kind:         string(coretypes.ExportFunction),
		},
	}
}

// Load builds a Registry for projectRoot, merging Builtins() with
// <root>/.loctree/registry.toml if present (spec.md 4.8, 7 "Registry
// errors: fall back to built-ins, emit a non-fatal warning").
func Load(projectRoot string) *Registry {
	r := &Registry{entries: Builtins()}

	path := filepath.Join(projectRoot, ".loctree", "registry.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.warnings = append(r.warnings, fmt.Sprintf("registry: could not read %s: %v (using built-ins)", path, err))
		}
		return r
	}

	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		r.warnings = append(r.warnings, fmt.Sprintf("registry: could not parse %s: %v (using built-ins)", path, err))
		return r
	}

	r.entries = append(r.entries, f.Entry...)
	return r
}

// Warnings returns non-fatal registry load warnings for inclusion in a
// scan's metadata.warnings.
func (r *Registry) Warnings() []string { return r.warnings }

// Matches reports whether the export at relPath with the given name and
// kind is covered by any registry entry (spec.md I3, 4.8): the file must
// match one of the entry's file_patterns, the name must be listed (or
// the entry uses the "*" wildcard), and if the entry specifies a kind it
// must match.
func (r *Registry) Matches(relPath, name string, kind coretypes.ExportKind) bool {
	for _, e := range r.entries {
		if e.Kind != "" && e.Kind != string(kind) {
			continue
		}
		if !nameMatches(e.Exports, name) {
			continue
		}
		if patternMatches(e.FilePatterns, relPath) {
			return true
		}
	}
	return false
}

func nameMatches(exports []string, name string) bool {
	for _, e := range exports {
		if e == "*" || e == name {
			return true
		}
	}
	return false
}

func patternMatches(patterns []string, relPath string) bool {
	clean := strings.TrimPrefix(relPath, "./")
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, clean); ok {
			return true
		}
	}
	return false
}
