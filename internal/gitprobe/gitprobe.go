// Package gitprobe locates a repository root from any starting path,
// handling worktrees, and derives a scan_id of the form
// "<branch>@<short-commit>" (spec.md 4.1, glossary "Scan ID"). For paths
// with no repository it returns a root equal to the given path and the
// sentinel scan_id "legacy".
//
// Root discovery is delegated to go-git's upward search
// (PlainOpenWithOptions with DetectDotGit), which natively understands a
// ".git" file pointer the way a worktree checkout uses one, rather than
// reimplementing that walk or shelling out to the git binary the way the
// teacher's internal/git/provider.go does.
package gitprobe

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// LegacyScanID is used when the probed path is not inside a git repository.
const LegacyScanID = "legacy"

// Probe describes a located repository (or the lack of one).
type Probe struct {
	Root     string
	IsGit    bool
	Branch   string
	Commit   string // short commit hash
	ScanID   string // "<branch>@<short-commit>" or LegacyScanID
}

// Locate searches upward from path for a repository marker and returns
// the working-directory root plus branch/commit tag.
func Locate(path string) (*Probe, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return &Probe{Root: abs, IsGit: false, ScanID: LegacyScanID}, nil
	}

	wt, err := repo.Worktree()
	if err != nil {
		return &Probe{Root: abs, IsGit: false, ScanID: LegacyScanID}, nil
	}
	root := wt.Filesystem.Root()

	head, err := repo.Head()
	if err != nil {
		// Empty repository (no commits yet): still a git root, but no
		// scan_id tag can be formed; fall back to legacy.
		return &Probe{Root: root, IsGit: true, ScanID: LegacyScanID}, nil
	}

	branch := head.Name().Short()
	commit := head.Hash().String()
	if len(commit) > 12 {
		commit = commit[:12]
	}

	return &Probe{
		Root:   root,
		IsGit:  true,
		Branch: branch,
		Commit: commit,
		ScanID: fmt.Sprintf("%s@%s", branch, commit),
	}, nil
}

// ResolveRef returns the short commit hash for an arbitrary ref name,
// used by callers that want to tag a scan against a non-HEAD ref.
func ResolveRef(repoRoot, ref string) (string, error) {
	repo, err := git.PlainOpen(repoRoot)
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("resolve ref %q: %w", ref, err)
	}
	s := hash.String()
	if len(s) > 12 {
		s = s[:12]
	}
	return s, nil
}
