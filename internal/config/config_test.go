package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, cfg.Walk.RespectGitignore)
	assert.Equal(t, int64(2*1024*1024), cfg.Walk.MaxFileSize)
}

func TestLoadKDL_ParsesWalkAndExclude(t *testing.T) {
	dir := t.TempDir()
	contents := `
project {
	name "demo"
}
walk {
	max_file_size "5MB"
	max_file_count 500
	respect_gitignore false
}
exclude {
	"**/fixtures/**"
	"**/*.snap"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".loctree.kdl"), []byte(contents), 0o644))

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, int64(5*1024*1024), cfg.Walk.MaxFileSize)
	assert.Equal(t, 500, cfg.Walk.MaxFileCount)
	assert.False(t, cfg.Walk.RespectGitignore)
	assert.ElementsMatch(t, []string{"**/fixtures/**", "**/*.snap"}, cfg.Exclude)
}

func TestMergeConfigs_UnionsExclusionsProjectWins(t *testing.T) {
	base := &Config{Exclude: []string{"**/a/**"}, Include: []string{"**/*.ts"}}
	project := &Config{Exclude: []string{"**/b/**"}, Walk: Walk{MaxFileCount: 99}}

	merged := mergeConfigs(base, project)
	assert.ElementsMatch(t, []string{"**/a/**", "**/b/**"}, merged.Exclude)
	assert.Equal(t, []string{"**/*.ts"}, merged.Include)
	assert.Equal(t, 99, merged.Walk.MaxFileCount)
}
