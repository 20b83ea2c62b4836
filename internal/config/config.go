// Package config loads project configuration from ".loctree.kdl" (layered
// under an optional home-directory base config, the way the teacher
// layers ~/.lci.kdl under a project .lci.kdl), and ignore rules from
// ".gitignore"/".loctignore" (see ignore.go).
package config

import (
	"os"
	"path/filepath"
)

// Config is the scan's tunable configuration.
type Config struct {
	Version int
	Project Project
	Walk    Walk
	Perf    Performance
	Query   QueryDefaults

	Include []string
	Exclude []string
}

type Project struct {
	Root string
	Name string
}

// Walk mirrors the teacher's Index struct: size/count caps and
// gitignore/symlink handling for the file walker (C2).
type Walk struct {
	MaxFileSize      int64
	MaxLineCount     int
	MaxFileCount     int
	FollowSymlinks   bool
	RespectGitignore bool
	IncludeRuntime   bool // --include-runtime: disables the runtime-API registry exclusion
}

type Performance struct {
	ParallelFileWorkers int // read from config; internal/scan parses with a fixed pool of 8 workers and does not use it
	ScanTimeoutSec      int
}

// QueryDefaults holds the min_confidence value read from the config file.
// The query engine does not read it: the "@dead" preset returns every
// dead export whatever its confidence.
type QueryDefaults struct {
	MinConfidence string // "", "normal", or "high"
}

// Default returns the built-in default configuration rooted at root.
func Default(root string) *Config {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &Config{
		Version: 1,
		Project: Project{Root: abs},
		Walk: Walk{
			MaxFileSize:      2 * 1024 * 1024,
			MaxLineCount:     50000,
			MaxFileCount:     20000,
			FollowSymlinks:   false,
			RespectGitignore: true,
		},
		Perf: Performance{
			ParallelFileWorkers: 0,
			ScanTimeoutSec:      300,
		},
	}
}

// Load loads configuration for root, layering a home-directory base
// config (~/.loctree.kdl) under a project config (<root>/.loctree.kdl),
// project settings taking precedence (the teacher's config_merge_test.go
// covers the same precedence: project overrides base, exclusions union).
func Load(root string) (*Config, error) {
	cfg := Default(root)

	var base *Config
	if home, err := os.UserHomeDir(); err == nil {
		if b, err := LoadKDL(home); err == nil && b != nil {
			base = b
		}
	}

	var project *Config
	if p, err := LoadKDL(root); err != nil {
		return nil, err
	} else if p != nil {
		project = p
	}

	switch {
	case base != nil && project != nil:
		return mergeConfigs(base, project), nil
	case project != nil:
		project.Project.Root = cfg.Project.Root
		return project, nil
	case base != nil:
		base.Project.Root = cfg.Project.Root
		return base, nil
	default:
		return cfg, nil
	}
}

func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		seen := make(map[string]bool, len(base.Exclude)+len(project.Exclude))
		for _, p := range base.Exclude {
			seen[p] = true
		}
		for _, p := range project.Exclude {
			seen[p] = true
		}
		merged.Exclude = make([]string, 0, len(seen))
		for p := range seen {
			merged.Exclude = append(merged.Exclude, p)
		}
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}
