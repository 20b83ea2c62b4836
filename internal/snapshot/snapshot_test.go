package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/errs"
)

func TestHealthScore_PerfectRepo(t *testing.T) {
	assert.Equal(t, 100, HealthScore(0, 100, 0, 0, 0))
}

func TestHealthScore_ClampsEachComponent(t *testing.T) {
	// Deliberately pathological inputs; every component should clamp at
	// its cap rather than driving the score negative before the final clamp.
	score := HealthScore(1000, 10, 100, 1000, 1000)
	assert.Equal(t, 0, score)
}

func TestStore_WriteThenReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	unlock, err := s.Lock()
	require.NoError(t, err)
	defer unlock()

	snap := &Snapshot{
		Metadata: BuildMetadata([]string{root}, []string{"curly"}, 1, 10, time.Millisecond, false, "", "", nil),
		Files:    []coretypes.FileRecord{{Path: "a.ts"}},
		ExportIndex: map[string][]coretypes.FileID{},
	}
	findings := &Findings{Metadata: snap.Metadata}
	agent := &Agent{Metadata: snap.Metadata, Manifest: "manifest.json"}
	manifest := &Manifest{SchemaVersion: SchemaVersion, ScanID: "main@abc123", Snapshot: "snapshot.json", Findings: "findings.json", Agent: "agent.json"}

	require.NoError(t, s.Write("main@abc123", snap, findings, agent, manifest))

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "main@abc123", latest)

	got, err := s.ReadSnapshot("latest")
	require.NoError(t, err)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "a.ts", got.Files[0].Path)
}

func TestStore_LockRejectsSecondHolder(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	unlock, err := s.Lock()
	require.NoError(t, err)
	defer unlock()

	_, err = s.Lock()
	require.Error(t, err)
	assert.Same(t, errs.ScanLocked, err)
}
