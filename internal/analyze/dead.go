package analyze

import (
	"sort"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/graph"
	"github.com/loctree/loctree/internal/registry"
	"github.com/loctree/loctree/internal/resolve"
)

// FindDeadExports implements spec.md I3 / 4.6: an export is dead iff its
// owning file is not an entry point, has_ambient_declarations is false,
// no registry entry matches it, and its importer set (after transitive
// re-export resolution) is empty. Confidence follows the three-tier
// model in spec.md 4.6.
func FindDeadExports(g *graph.Graph, reg *registry.Registry, isTestFile func(path string) bool) []coretypes.DeadExport {
	lookup := func(file string) []coretypes.Export {
		fid, ok := g.FileByPath(file)
		if !ok {
			return nil
		}
		return g.Record(fid).Exports
	}

	var out []coretypes.DeadExport
	for i := range g.Files {
		fid := coretypes.FileID(i)
		rec := &g.Files[i]
		if rec.IsEntryPoint || rec.HasAmbientDeclarations {
			continue
		}

		for ei := range rec.Exports {
			e := &rec.Exports[ei]
			if e.IsReexport {
				continue // liveness is judged at the owning definition, not the re-export site
			}
			if reg.Matches(rec.Path, e.Name, e.Kind) {
				continue
			}

			importers, ambiguousHop := importersOf(g, fid, e.Name, lookup)
			nonTest := nonTestImporters(g, importers, isTestFile)
			if len(nonTest) > 0 {
				continue // real production consumer: not dead
			}

			confidence := classifyConfidence(importers, ambiguousHop)
			out = append(out, coretypes.DeadExport{
				File:       rec.Path,
				Line:       e.Line,
				Symbol:     e.Name,
				Kind:       e.Kind,
				Confidence: confidence,
				Rationale:  deadRationale(confidence),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// importersOf collects every file that imports owner directly (whatever
// names it imports) plus every importer of a barrel whose re-export chain
// for name ends at owner, recording whether any hop in that chain was an
// ambiguous resolution.
func importersOf(g *graph.Graph, owner coretypes.FileID, name string, lookup func(string) []coretypes.Export) ([]coretypes.FileID, bool) {
	var importers []coretypes.FileID
	ambiguous := false

	direct := g.ImporterIndex[owner]
	for _, imp := range direct {
		importers = append(importers, imp)
	}

	// Transitive consumers: any file whose import names this symbol via a
	// barrel that re-exports it back to owner.
	for _, barrel := range g.Barrels {
		bid, ok := g.FileByPath(barrel.BarrelFile)
		if !ok {
			continue
		}
		target := resolve.FollowReexports(barrel.BarrelFile, name, lookup)
		if target.Unresolved || target.File != g.Record(owner).Path {
			continue
		}
		for _, imp := range g.ImporterIndex[bid] {
			importers = append(importers, imp)
			if importHopAmbiguous(g, imp, bid) {
				ambiguous = true
			}
		}
	}

	return dedupeFileIDs(importers), ambiguous
}

// importHopAmbiguous reports whether importer's own import statement
// resolving to target went through an ambiguous extension-inference or
// wildcard-barrel tie-break (spec.md 9 "at least one resolution hop was
// ambiguous"), the resolve.Result.HopAmbiguous signal graph.Build
// records on the ImportEdge.
func importHopAmbiguous(g *graph.Graph, importer, target coretypes.FileID) bool {
	for _, imp := range g.Record(importer).Imports {
		if imp.ResolvedID == target && imp.HopAmbiguous {
			return true
		}
	}
	return false
}

func nonTestImporters(g *graph.Graph, importers []coretypes.FileID, isTestFile func(string) bool) []coretypes.FileID {
	var out []coretypes.FileID
	for _, imp := range importers {
		if !isTestFile(g.Record(imp).Path) {
			out = append(out, imp)
		}
	}
	return out
}

func classifyConfidence(importers []coretypes.FileID, ambiguousHop bool) coretypes.Confidence {
	if ambiguousHop {
		return coretypes.ConfidenceLow
	}
	if len(importers) > 0 {
		// every importer is a test file at this point, since nonTest
		// importers already short-circuited the caller.
		return coretypes.ConfidenceNormal
	}
	return coretypes.ConfidenceHigh
}

func deadRationale(c coretypes.Confidence) string {
	switch c {
	case coretypes.ConfidenceNormal:
		return "only test-file importers found"
	case coretypes.ConfidenceLow:
		return "resolved through an ambiguous barrel hop"
	default:
		return "no importers found in production or test files"
	}
}
