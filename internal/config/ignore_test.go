package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnoreSet_BuiltinHeavyDirs(t *testing.T) {
	dir := t.TempDir()
	set, err := NewIgnoreSet(dir)
	require.NoError(t, err)

	assert.True(t, set.Ignored("node_modules/left-pad/index.js", false))
	assert.True(t, set.Ignored("vendor/github.com/pkg/errors/errors.go", false))
	assert.False(t, set.Ignored("src/main.go", false))
}

func TestIgnoreSet_LoctignoreNegation(t *testing.T) {
	dir := t.TempDir()
	contents := "dist/\n!dist/keep.js\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".loctignore"), []byte(contents), 0o644))

	set, err := NewIgnoreSet(dir)
	require.NoError(t, err)

	assert.True(t, set.Ignored("dist/bundle.js", false))
	assert.False(t, set.Ignored("dist/keep.js", false))
}
