package analyze

import (
	"sort"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/graph"
)

// FindOrphans returns files with zero importers, no entry-point marker,
// and no config-file match (spec.md 4.6).
func FindOrphans(g *graph.Graph) []string {
	var out []string
	for i := range g.Files {
		fid := coretypes.FileID(i)
		rec := &g.Files[i]
		if rec.IsEntryPoint || rec.IsConfig {
			continue
		}
		if len(g.ImporterIndex[fid]) > 0 {
			continue
		}
		out = append(out, rec.Path)
	}
	sort.Strings(out)
	return out
}
