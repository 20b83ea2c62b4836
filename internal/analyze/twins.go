package analyze

import (
	"sort"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/graph"
)

// FindTwins groups files that export the same (name, kind) pair into
// twin clusters (spec.md 3, 9). The canonical owner is the file with the
// most importers; ties break shortest-path (fewest path separators),
// then lexicographically, exactly as spec.md 9 resolves the Open
// Question on canonical selection for >=3-way ties.
func FindTwins(g *graph.Graph) []coretypes.TwinCluster {
	type key struct {
		name string
		kind coretypes.ExportKind
	}
	groups := map[key][]coretypes.FileID{}

	for i := range g.Files {
		fid := coretypes.FileID(i)
		for _, e := range g.Files[i].Exports {
			if e.IsReexport {
				continue // re-exports are cascades, not twins
			}
			k := key{e.Name, e.Kind}
			groups[k] = append(groups[k], fid)
		}
	}

	var clusters []coretypes.TwinCluster
	for k, fids := range groups {
		if len(fids) < 2 {
			continue
		}
		unique := dedupeFileIDs(fids)
		if len(unique) < 2 {
			continue
		}

		files := make([]string, len(unique))
		for i, fid := range unique {
			files[i] = g.Record(fid).Path
		}
		sort.Strings(files)

		canonical := pickCanonical(g, unique)

		clusters = append(clusters, coretypes.TwinCluster{
			Symbol:    k.name,
			Kind:      k.kind,
			Files:     files,
			Canonical: g.Record(canonical).Path,
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Symbol != clusters[j].Symbol {
			return clusters[i].Symbol < clusters[j].Symbol
		}
		return clusters[i].Kind < clusters[j].Kind
	})
	return clusters
}

func dedupeFileIDs(fids []coretypes.FileID) []coretypes.FileID {
	seen := map[coretypes.FileID]bool{}
	var out []coretypes.FileID
	for _, f := range fids {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func pickCanonical(g *graph.Graph, fids []coretypes.FileID) coretypes.FileID {
	best := fids[0]
	bestImporters := len(g.ImporterIndex[best])
	for _, fid := range fids[1:] {
		n := len(g.ImporterIndex[fid])
		switch {
		case n > bestImporters:
			best, bestImporters = fid, n
		case n == bestImporters:
			if tieBreakLess(g.Record(fid).Path, g.Record(best).Path) {
				best = fid
			}
		}
	}
	return best
}

// tieBreakLess implements "shortest-path then lexicographic": fewer path
// separators wins, then normal string ordering.
func tieBreakLess(a, b string) bool {
	depthA, depthB := pathDepth(a), pathDepth(b)
	if depthA != depthB {
		return depthA < depthB
	}
	return a < b
}

func pathDepth(p string) int {
	depth := 0
	for _, c := range p {
		if c == '/' {
			depth++
		}
	}
	return depth
}
