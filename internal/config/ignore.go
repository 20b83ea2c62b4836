package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreRule is one line of a gitignore-style file: a glob pattern with
// optional negation and a directory-only marker (spec.md 6).
type IgnoreRule struct {
	Pattern     string
	Negate      bool
	DirOnly     bool
	source      string // which file contributed this rule, for diagnostics
}

// IgnoreSet composes rules from repository ignore files, a project-local
// ".loctignore", and a built-in list of heavy directories (spec.md 4.1).
type IgnoreSet struct {
	rules []IgnoreRule
}

// builtinHeavyDirs mirrors the teacher's always-excluded dependency and
// build-output directories (config.go's default Exclude list), trimmed
// to directory-shaped globs since file-extension exclusions are handled
// separately by the walker's extension filter.
var builtinHeavyDirs = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/bower_components/**",
	"**/dist/**",
	"**/build/**",
	"**/out/**",
	"**/target/**",
	"**/bin/**",
	"**/obj/**",
	"**/__pycache__/**",
	"**/.venv/**",
	"**/venv/**",
	"**/.tox/**",
	"**/.mypy_cache/**",
	"**/.pytest_cache/**",
}

// NewIgnoreSet builds the composed ignore set for a repository root: the
// built-in list, then ".gitignore" (repository-level), then
// ".loctignore" (project-local), in that order so later files can negate
// earlier rules.
func NewIgnoreSet(root string) (*IgnoreSet, error) {
	set := &IgnoreSet{}
	for _, p := range builtinHeavyDirs {
		set.rules = append(set.rules, IgnoreRule{Pattern: p, DirOnly: true, source: "builtin"})
	}
	if err := set.loadFile(filepath.Join(root, ".gitignore"), ".gitignore"); err != nil {
		return nil, err
	}
	if err := set.loadFile(filepath.Join(root, ".loctignore"), ".loctignore"); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *IgnoreSet) loadFile(path, label string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.rules = append(s.rules, parseIgnoreLine(line, label))
	}
	return scanner.Err()
}

func parseIgnoreLine(line, source string) IgnoreRule {
	rule := IgnoreRule{source: source}
	if strings.HasPrefix(line, "!") {
		rule.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		rule.DirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if !strings.Contains(line, "/") {
		// A bare pattern like "*.log" matches at any depth, gitignore-style.
		line = "**/" + line
	} else if strings.HasPrefix(line, "/") {
		line = strings.TrimPrefix(line, "/")
	} else {
		line = "**/" + line
	}
	rule.Pattern = line
	return rule
}

// Ignored reports whether relPath (slash-separated, relative to the
// repository root) is excluded by the composed rule set. Later rules
// override earlier ones; a negated match un-ignores a path.
func (s *IgnoreSet) Ignored(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	ignored := false
	for _, r := range s.rules {
		if r.DirOnly && !isDir {
			// A directory-only rule can still match a file's ancestor
			// directory component; check that too.
			if !dirOnlyMatchesAncestor(r.Pattern, relPath) {
				continue
			}
		} else {
			ok, _ := doublestar.Match(r.Pattern, relPath)
			if !ok {
				continue
			}
		}
		ignored = !r.Negate
	}
	return ignored
}

func dirOnlyMatchesAncestor(pattern, relPath string) bool {
	if ok, _ := doublestar.Match(pattern, relPath); ok {
		return true
	}
	dir := filepath.Dir(relPath)
	for dir != "." && dir != "/" && dir != "" {
		if ok, _ := doublestar.Match(pattern, dir); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, dir+"/x"); ok {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return false
}
