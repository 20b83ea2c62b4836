package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/loctree/loctree/internal/config"
)

// TestMain guards against goroutine leaks even though Walk itself is
// single-threaded: its caller, internal/scan's worker pool, dispatches
// into this package concurrently, so a future regression here (e.g. a
// Walk variant that spawns a watcher) would be caught here too.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWalk_FiltersByExtensionAndSorts(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.ts"), []byte("export {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.ts"), []byte("export {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# hi"), 0o644))

	cfg := &config.Config{}
	ignores := &config.IgnoreSet{}

	candidates, err := Walk(root, cfg, ignores)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "a.ts", candidates[0].Path)
	assert.Equal(t, "b.ts", candidates[1].Path)
}

func TestIsTestPath_RecognizesConventions(t *testing.T) {
	assert.True(t, IsTestPath("src/widget.test.ts"))
	assert.True(t, IsTestPath("src/__tests__/widget.ts"))
	assert.False(t, IsTestPath("src/widget.ts"))
}
