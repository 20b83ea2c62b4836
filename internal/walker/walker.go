// Package walker enumerates candidate files under a repository root,
// honoring ignore rules, language extension filters, and the size cap
// (spec.md 4.2, C2); the configured line cap is not applied. Iteration order is always sorted by canonical path
// so downstream snapshot bytes stay reproducible (spec.md 5).
package walker

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/loctree/loctree/internal/config"
	"github.com/loctree/loctree/internal/coretypes"
)

// extensionLanguage maps file extensions to the language family they
// belong to (spec.md 4.3: curly-brace web language, systems language,
// whitespace-scoped scripting language).
var extensionLanguage = map[string]coretypes.Language{
	".js":  coretypes.LangCurlyBrace,
	".jsx": coretypes.LangCurlyBrace,
	".mjs": coretypes.LangCurlyBrace,
	".cjs": coretypes.LangCurlyBrace,
	".ts":  coretypes.LangCurlyBrace,
	".tsx": coretypes.LangCurlyBrace,
	".rs":  coretypes.LangSystems,
	".py":  coretypes.LangScript,
	".pyi": coretypes.LangScript,
}

// Candidate is a walked file awaiting extraction.
type Candidate struct {
	Path       string // canonical, slash-separated, relative to root
	AbsPath    string
	Language   coretypes.Language
	Size       int64
	ModTime    int64
	Oversized  bool // exceeds MaxFileSize; caller should record but not parse
}

// Walk enumerates files under root matching the configured language
// extensions, applying the ignore set and size caps. Results are sorted
// by canonical path.
func Walk(root string, cfg *config.Config, ignores *config.IgnoreSet) ([]Candidate, error) {
	var out []Candidate

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Input error: unreadable path. Non-fatal, skip it (spec.md 7).
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if cfg.Walk.RespectGitignore && ignores.Ignored(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			if info.Mode()&os.ModeSymlink != 0 && !cfg.Walk.FollowSymlinks {
				return nil
			}
		}

		ext := strings.ToLower(filepath.Ext(path))
		lang, ok := extensionLanguage[ext]
		if !ok {
			return nil
		}

		if cfg.Walk.RespectGitignore && ignores.Ignored(rel, false) {
			return nil
		}
		if !matchesFilters(rel, cfg) {
			return nil
		}

		out = append(out, Candidate{
			Path:      rel,
			AbsPath:   path,
			Language:  lang,
			Size:      info.Size(),
			ModTime:   info.ModTime().UnixNano(),
			Oversized: info.Size() > cfg.Walk.MaxFileSize,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	if cfg.Walk.MaxFileCount > 0 && len(out) > cfg.Walk.MaxFileCount {
		out = out[:cfg.Walk.MaxFileCount]
	}

	return out, nil
}

func matchesFilters(rel string, cfg *config.Config) bool {
	if len(cfg.Include) > 0 {
		matched := false
		for _, pat := range cfg.Include {
			if ok, _ := filepath.Match(pat, filepath.Base(rel)); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// IsTestPath reports whether rel looks like a test file, by the
// language-agnostic naming conventions the teacher's default exclusion
// list encodes (spec.md 3: is_test flag).
func IsTestPath(rel string) bool {
	base := filepath.Base(rel)
	lower := strings.ToLower(base)
	switch {
	case strings.HasSuffix(lower, "_test.py"), strings.HasPrefix(lower, "test_"):
		return true
	case strings.HasSuffix(lower, ".test.ts"), strings.HasSuffix(lower, ".test.tsx"),
		strings.HasSuffix(lower, ".test.js"), strings.HasSuffix(lower, ".test.jsx"),
		strings.HasSuffix(lower, ".spec.ts"), strings.HasSuffix(lower, ".spec.tsx"),
		strings.HasSuffix(lower, ".spec.js"), strings.HasSuffix(lower, ".spec.jsx"):
		return true
	}
	for _, seg := range strings.Split(rel, "/") {
		s := strings.ToLower(seg)
		if s == "__tests__" || s == "test" || s == "tests" || s == "testdata" || s == "fixtures" {
			return true
		}
	}
	return strings.Contains(rel, "tests/") && strings.HasSuffix(rel, ".rs")
}

// IsConfigPath reports whether rel matches a common config-file pattern,
// used to exclude config files from orphan reporting (spec.md 4.6).
func IsConfigPath(rel string) bool {
	base := strings.ToLower(filepath.Base(rel))
	switch base {
	case "vite.config.ts", "vite.config.js", "webpack.config.js", "next.config.js",
		"tailwind.config.js", "tailwind.config.ts", "jest.config.js", "jest.config.ts",
		"eslint.config.js", "babel.config.js":
		return true
	}
	return false
}
