package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loctree/loctree/internal/coretypes"
)

func TestMatches_BuiltinLoaderEntry(t *testing.T) {
	r := Load(t.TempDir())
	assert.True(t, r.Matches("src/runtime/loader.mjs", "resolve", coretypes.ExportFunction))
	assert.False(t, r.Matches("src/runtime/loader.mjs", "notAnExport", coretypes.ExportFunction))
}

func TestMatches_FileMustMatchPattern(t *testing.T) {
	r := Load(t.TempDir())
	assert.False(t, r.Matches("src/other.mjs", "resolve", coretypes.ExportFunction))
}

func TestLoad_MergesUserTomlWithBuiltins(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".loctree"), 0o755))
	toml := `[[entry]]
framework = "custom-plugin-host"
exports = ["registerPlugin"]
file_patterns = ["**/plugins/**/*.ts"]
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".loctree", "registry.toml"), []byte(toml), 0o644))

	r := Load(root)
	assert.True(t, r.Matches("src/plugins/foo.ts", "registerPlugin", coretypes.ExportFunction))
	// builtins still present
	assert.True(t, r.Matches("src/runtime/loader.mjs", "resolve", coretypes.ExportFunction))
	assert.Empty(t, r.Warnings())
}

func TestLoad_MalformedTomlFallsBackWithWarning(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".loctree"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".loctree", "registry.toml"), []byte("not valid [[ toml"), 0o644))

	r := Load(root)
	assert.NotEmpty(t, r.Warnings())
	assert.True(t, r.Matches("src/runtime/loader.mjs", "resolve", coretypes.ExportFunction))
}
