package analyze

import (
	"sort"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/graph"
	"github.com/loctree/loctree/internal/resolve"
)

// FindCascades walks every re-export chain to its terminal owner using
// resolve.FollowReexports, clamping at coretypes.MaxCascadeLength
// (spec.md 4.6, 9).
func FindCascades(g *graph.Graph) []coretypes.Cascade {
	lookup := func(file string) []coretypes.Export {
		fid, ok := g.FileByPath(file)
		if !ok {
			return nil
		}
		return g.Record(fid).Exports
	}

	type key struct {
		file, symbol string
	}
	seen := map[key]bool{}
	var cascades []coretypes.Cascade

	for i := range g.Files {
		for _, e := range g.Files[i].Exports {
			if !e.IsReexport {
				continue
			}
			k := key{g.Files[i].Path, e.Name}
			if seen[k] {
				continue
			}
			seen[k] = true

			target := resolve.FollowReexports(g.Files[i].Path, e.Name, lookup)
			chain := target.Chain
			if len(chain) < 2 {
				continue
			}

			clamped := target.HopCount >= coretypes.MaxCascadeLength
			if clamped && len(chain) > coretypes.MaxCascadeLength+1 {
				chain = chain[:coretypes.MaxCascadeLength+1]
			}
			cascades = append(cascades, coretypes.Cascade{
				Symbol:  e.Name,
				Chain:   chain,
				Clamped: clamped,
			})
		}
	}

	sort.Slice(cascades, func(i, j int) bool {
		if cascades[i].Symbol != cascades[j].Symbol {
			return cascades[i].Symbol < cascades[j].Symbol
		}
		return cascades[i].Chain[0] < cascades[j].Chain[0]
	})
	return cascades
}
