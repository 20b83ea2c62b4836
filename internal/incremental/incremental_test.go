package incremental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/loctree/loctree/internal/coretypes"
)

func TestBuild_ReusesUnchangedFile(t *testing.T) {
	mtime := time.Now()
	prior := map[string]coretypes.FileRecord{
		"a.ts": {Path: "a.ts", ContentHash: 42},
	}
	priorStat := map[string]FileStat{
		"a.ts": {Path: "a.ts", Size: 100, ModTime: mtime},
	}
	current := []FileStat{{Path: "a.ts", Size: 100, ModTime: mtime}}

	plan := Build(prior, current, priorStat, func(string) (uint64, error) { return 42, nil })
	assert.Contains(t, plan.Reuse, "a.ts")
	assert.Empty(t, plan.Reparse)
}

func TestBuild_ReparsesOnHashMismatch(t *testing.T) {
	mtime := time.Now()
	prior := map[string]coretypes.FileRecord{
		"a.ts": {Path: "a.ts", ContentHash: 42},
	}
	priorStat := map[string]FileStat{
		"a.ts": {Path: "a.ts", Size: 100, ModTime: mtime},
	}
	current := []FileStat{{Path: "a.ts", Size: 100, ModTime: mtime}}

	plan := Build(prior, current, priorStat, func(string) (uint64, error) { return 99, nil })
	assert.Empty(t, plan.Reuse)
	assert.Equal(t, []string{"a.ts"}, plan.Reparse)
}

func TestBuild_NewFileAlwaysReparses(t *testing.T) {
	current := []FileStat{{Path: "new.ts", Size: 10, ModTime: time.Now()}}
	plan := Build(nil, current, nil, nil)
	assert.Equal(t, []string{"new.ts"}, plan.Reparse)
}

func TestBuild_ModTimeChangeForcesReparse(t *testing.T) {
	mtime := time.Now()
	prior := map[string]coretypes.FileRecord{"a.ts": {Path: "a.ts", ContentHash: 42}}
	priorStat := map[string]FileStat{"a.ts": {Path: "a.ts", Size: 100, ModTime: mtime}}
	current := []FileStat{{Path: "a.ts", Size: 100, ModTime: mtime.Add(time.Second)}}

	plan := Build(prior, current, priorStat, nil)
	assert.Equal(t, []string{"a.ts"}, plan.Reparse)
}
