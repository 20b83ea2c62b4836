package analyze

import (
	"sort"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/graph"
)

// FindDiamonds reports files with a fan-in of two or more importers that
// do not import another of that file's importers. It does not look for a
// common ancestor of those importers and does not trace paths longer than
// one edge, so two unrelated files importing the same module count too.
// This is an advisory-only shape (spec.md 4.6, 9 "Diamond cycle classification"),
// never affecting the health score or cycle findings.
func FindDiamonds(g *graph.Graph) []coretypes.Finding {
	adj := buildAdjacency(g)

	var findings []coretypes.Finding
	for i := range g.Files {
		fid := coretypes.FileID(i)
		importers := g.ImporterIndex[fid]
		if len(importers) < 2 {
			continue
		}
		// A diamond requires at least two importers that do not directly
		// import another importer of this file (otherwise it is a
		// straight chain, not a fan-in).
		distinctRoots := 0
		for a := 0; a < len(importers); a++ {
			isChained := false
			for _, to := range adj[importers[a]] {
				if containsFileID(importers, to) && to != importers[a] {
					isChained = true
					break
				}
			}
			if !isChained {
				distinctRoots++
			}
		}
		if distinctRoots >= 2 {
			findings = append(findings, coretypes.Finding{
				Kind:      "diamond_dependency",
				Severity:  coretypes.SeverityLow,
				File:      g.Record(fid).Path,
				Rationale: "reached by multiple independent import paths",
			})
		}
	}

	sort.Slice(findings, func(i, j int) bool { return findings[i].File < findings[j].File })
	return findings
}

func containsFileID(fids []coretypes.FileID, target coretypes.FileID) bool {
	for _, f := range fids {
		if f == target {
			return true
		}
	}
	return false
}
