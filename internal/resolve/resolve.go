// Package resolve implements the path resolver (C4, spec.md 4.4):
// turning an import specifier seen in file F into a canonical target
// file, an external marker, or an unresolved record with a reason.
package resolve

import (
	"path"
	"strings"

	"github.com/hbollon/go-edlib"
)

// candidateExtensions lists the extensions tried, in priority order,
// when a specifier omits one or targets a directory (barrel search).
var candidateExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".py", ".rs"}

// barrelBaseNames are the file basenames searched inside a directory
// target, in priority order (spec.md 4.4 "search for a barrel file").
var barrelBaseNames = []string{"index", "__init__", "mod"}

// Result is the outcome of resolving one specifier.
type Result struct {
	Target      string // canonical path, or "" if unresolved
	External    bool
	Unresolved  bool
	Reason      string // set when Unresolved
	Ambiguous   bool   // extension inference matched two or more files and one was picked heuristically
	HopAmbiguous bool  // this hop itself counts toward the "low confidence" ambiguous-hop tally
}

// Resolver resolves specifiers against a known file set and a set of
// workspace path aliases (e.g. tsconfig "paths", or a Cargo workspace
// member map).
type Resolver struct {
	files   map[string]bool // canonical path -> present
	aliases map[string]string // alias prefix -> real directory prefix
}

// New builds a Resolver over the given file set and alias map.
func New(files []string, aliases map[string]string) *Resolver {
	r := &Resolver{files: make(map[string]bool, len(files)), aliases: aliases}
	for _, f := range files {
		r.files[f] = true
	}
	return r
}

// Resolve resolves specifier as seen from fromPath (spec.md 4.4 order:
// relative, alias, bare/external, directory barrel, extension
// inference).
func (r *Resolver) Resolve(fromPath, specifier string) Result {
	if specifier == "" {
		return Result{Unresolved: true, Reason: "empty_specifier"}
	}

	// (a) relative specifier
	if strings.HasPrefix(specifier, ".") {
		dir := path.Dir(fromPath)
		candidate := path.Clean(path.Join(dir, specifier))
		return r.resolveCandidate(candidate)
	}

	// (b) alias prefix
	for prefix, real := range r.aliases {
		if specifier == prefix || strings.HasPrefix(specifier, prefix+"/") {
			rewritten := real + strings.TrimPrefix(specifier, prefix)
			return r.resolveCandidate(path.Clean(rewritten))
		}
	}

	// (c) bare module: not relative, no alias match -> external.
	if !strings.Contains(specifier, "/") || isPackageLike(specifier) {
		return Result{External: true, Target: "external:" + specifier}
	}

	// Fallback: treat as a root-relative candidate (framework root import).
	return r.resolveCandidate(path.Clean(specifier))
}

func isPackageLike(specifier string) bool {
	if strings.HasPrefix(specifier, "@") {
		// scoped package "@scope/name" has exactly one slash before name.
		return strings.Count(specifier, "/") <= 1
	}
	return !strings.Contains(specifier, "/")
}

// resolveCandidate finds the file for a resolved, extension-less or
// exact candidate path, trying direct match, then directory barrel
// search, then extension inference.
func (r *Resolver) resolveCandidate(candidate string) Result {
	if r.files[candidate] {
		return Result{Target: candidate}
	}

	// (d) directory target: search for a barrel file.
	for _, base := range barrelBaseNames {
		for _, ext := range candidateExtensions {
			barrel := path.Join(candidate, base+ext)
			if r.files[barrel] {
				return Result{Target: barrel}
			}
		}
	}

	// (e) extension inference: candidate omits an extension.
	var matches []string
	for _, ext := range candidateExtensions {
		if r.files[candidate+ext] {
			matches = append(matches, candidate+ext)
		}
	}
	if len(matches) == 1 {
		return Result{Target: matches[0]}
	}
	if len(matches) > 1 {
		return Result{Target: pickBestExtensionMatch(candidate, matches), Ambiguous: true, HopAmbiguous: true}
	}

	return Result{Unresolved: true, Reason: "not_found"}
}

// pickBestExtensionMatch breaks an extension-inference tie using
// Jaro-Winkler similarity between the candidate path and each match,
// the same string-similarity primitive internal/semantic/fuzzy_matcher.go
// uses for barrel ranking, grounded on the teacher's go-edlib dependency.
func pickBestExtensionMatch(candidate string, matches []string) string {
	best := matches[0]
	bestScore := -1.0
	for _, m := range matches {
		score, err := edlib.StringsSimilarity(candidate, m, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if float64(score) > bestScore {
			bestScore = float64(score)
			best = m
		}
	}
	return best
}
