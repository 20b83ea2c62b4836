package query

import (
	"encoding/json"

	"github.com/loctree/loctree/internal/snapshot"
)

// Run loads the snapshot named by scanID ("" or "latest" for the most
// recent) under repoRoot, decodes it to a generic JSON value, and
// evaluates filterExpr over it (spec.md 4.11 "auto-discovers the most
// recent snapshot unless a specific path is given").
func Run(repoRoot, scanID, filterExpr string, vars map[string]interface{}) (interface{}, error) {
	store := snapshot.New(repoRoot)
	snap, err := store.ReadSnapshot(scanID)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}

	return Evaluate(filterExpr, v, vars)
}

// ExitStatus maps a filter result to a process exit code (spec.md 6):
// 0 unless the result is null or false, in which case 1.
func ExitStatus(result interface{}) int {
	if result == nil {
		return 1
	}
	if b, ok := result.(bool); ok && !b {
		return 1
	}
	return 0
}
