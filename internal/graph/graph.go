// Package graph assembles per-file extraction records into the import
// graph and its derived indices (C5, spec.md 4.5): node map, import and
// export edges, the export/importer indices, the barrel index, and the
// command/event bridges built by joining call sites to handler
// definitions on name.
package graph

import (
	"path"
	"sort"
	"strings"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/resolve"
)

// Graph is the in-memory fold of every file record plus its derived
// indices. It is built once per scan and is the input to C6/C7/C9.
type Graph struct {
	Files  []coretypes.FileRecord // sorted by Path; index i has FileID(i)
	pathID map[string]coretypes.FileID

	Edges []coretypes.Edge

	ExportIndex   map[string][]coretypes.FileID // symbol -> owning files
	ImporterIndex map[coretypes.FileID][]coretypes.FileID

	Barrels        []coretypes.BarrelEntry
	CommandBridges []coretypes.CommandBridge
	EventBridges   []coretypes.EventBridge
}

// FileByPath returns a file's FileID, if present.
func (g *Graph) FileByPath(p string) (coretypes.FileID, bool) {
	id, ok := g.pathID[p]
	return id, ok
}

// Record returns the FileRecord for an ID.
func (g *Graph) Record(id coretypes.FileID) *coretypes.FileRecord {
	if int(id) >= len(g.Files) {
		return nil
	}
	return &g.Files[id]
}

// Build folds a set of already-extracted file records (keyed by
// canonical path) into a Graph. Build sorts the paths itself, so FileIDs
// follow path order whatever order the map was filled in (spec.md 5's
// byte-stability guarantee).
func Build(records map[string]coretypes.FileRecord, resolver *resolve.Resolver) *Graph {
	paths := make([]string, 0, len(records))
	for p := range records {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	g := &Graph{
		pathID:        make(map[string]coretypes.FileID, len(paths)),
		ExportIndex:   make(map[string][]coretypes.FileID),
		ImporterIndex: make(map[coretypes.FileID][]coretypes.FileID),
	}

	for i, p := range paths {
		id := coretypes.FileID(i)
		g.pathID[p] = id
		rec := records[p]
		rec.Path = p
		g.Files = append(g.Files, rec)
	}

	// Resolve imports and build edges + importer index.
	for i := range g.Files {
		fid := coretypes.FileID(i)
		rec := &g.Files[i]
		for ei := range rec.Imports {
			imp := &rec.Imports[ei]
			result := resolver.Resolve(rec.Path, imp.Specifier)
			switch {
			case result.External:
				imp.Resolved = result.Target
				imp.External = true
				g.Edges = append(g.Edges, coretypes.Edge{From: fid, To: result.Target, Kind: imp.Kind})
			case result.Unresolved:
				target := "external:" + imp.Specifier
				imp.Resolved = target
				imp.External = true
				g.Edges = append(g.Edges, coretypes.Edge{From: fid, To: target, Kind: imp.Kind})
			default:
				imp.Resolved = result.Target
				imp.HopAmbiguous = result.HopAmbiguous
				if tid, ok := g.pathID[result.Target]; ok {
					imp.ResolvedID = tid
					g.Edges = append(g.Edges, coretypes.Edge{From: fid, To: result.Target, Kind: imp.Kind})
					g.ImporterIndex[tid] = append(g.ImporterIndex[tid], fid)
				}
			}
		}
	}

	// Build export index.
	for i := range g.Files {
		fid := coretypes.FileID(i)
		for ei := range g.Files[i].Exports {
			name := g.Files[i].Exports[ei].Name
			g.ExportIndex[name] = append(g.ExportIndex[name], fid)
		}
	}
	for name := range g.ExportIndex {
		sort.Slice(g.ExportIndex[name], func(a, b int) bool { return g.ExportIndex[name][a] < g.ExportIndex[name][b] })
	}
	for fid := range g.ImporterIndex {
		sort.Slice(g.ImporterIndex[fid], func(a, b int) bool { return g.ImporterIndex[fid][a] < g.ImporterIndex[fid][b] })
	}

	g.Barrels = buildBarrels(g)
	g.CommandBridges = buildCommandBridges(g)
	g.EventBridges = buildEventBridges(g)

	return g
}

// buildBarrels finds, for each directory containing files, the resolved
// barrel file and its re-export fan-out count (spec.md 4.5).
func buildBarrels(g *Graph) []coretypes.BarrelEntry {
	byDir := map[string][]int{}
	for i, f := range g.Files {
		dir := path.Dir(f.Path)
		base := path.Base(f.Path)
		name := strings.TrimSuffix(base, path.Ext(base))
		if name == "index" || name == "__init__" || name == "mod" {
			byDir[dir] = append(byDir[dir], i)
		}
	}

	var out []coretypes.BarrelEntry
	for dir, idxs := range byDir {
		for _, i := range idxs {
			fanOut := 0
			for _, e := range g.Files[i].Exports {
				if e.IsReexport {
					fanOut++
				}
			}
			out = append(out, coretypes.BarrelEntry{
				Directory:  dir,
				BarrelFile: g.Files[i].Path,
				FanOut:     fanOut,
			})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Directory < out[b].Directory })
	return out
}

// buildCommandBridges joins IPC call sites to handler definitions by
// name, after rename normalization already applied by the extractor
// (spec.md 4.5, 6).
func buildCommandBridges(g *Graph) []coretypes.CommandBridge {
	calls := map[string][]coretypes.SiteRef{}
	handlers := map[string][]coretypes.SiteRef{}

	for i, f := range g.Files {
		for _, c := range f.IPCCalls {
			calls[c.Name] = append(calls[c.Name], coretypes.SiteRef{File: g.Files[i].Path, Line: c.Line})
		}
		for _, h := range f.IPCHandlers {
			handlers[h.Name] = append(handlers[h.Name], coretypes.SiteRef{File: g.Files[i].Path, Line: h.Line})
		}
	}

	names := map[string]bool{}
	for n := range calls {
		names[n] = true
	}
	for n := range handlers {
		names[n] = true
	}

	var out []coretypes.CommandBridge
	for name := range names {
		cb := coretypes.CommandBridge{Name: name, FrontendSites: calls[name]}
		hs := handlers[name]
		switch {
		case len(hs) == 1:
			h := hs[0]
			cb.BackendHandler = &h
			if len(calls[name]) == 0 {
				cb.Status = coretypes.BridgeUnusedHandler
			} else {
				cb.Status = coretypes.BridgeOK
			}
		case len(hs) == 0:
			cb.Status = coretypes.BridgeMissingHandler
		default:
			// Multiple handlers claim the same wire name: the first in file
			// path order is canonical; duplicate registration is a separate
			// twin-style concern, not a bridge failure.
			h := hs[0]
			cb.BackendHandler = &h
			if len(calls[name]) == 0 {
				cb.Status = coretypes.BridgeUnusedHandler
			} else {
				cb.Status = coretypes.BridgeOK
			}
		}
		out = append(out, cb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// buildEventBridges joins emit sites to listen sites by event name.
func buildEventBridges(g *Graph) []coretypes.EventBridge {
	emits := map[string][]coretypes.SiteRef{}
	listens := map[string][]coretypes.SiteRef{}

	for i, f := range g.Files {
		for _, e := range f.EventEmits {
			emits[e.Name] = append(emits[e.Name], coretypes.SiteRef{File: g.Files[i].Path, Line: e.Line})
		}
		for _, l := range f.EventListens {
			listens[l.Name] = append(listens[l.Name], coretypes.SiteRef{File: g.Files[i].Path, Line: l.Line})
		}
	}

	names := map[string]bool{}
	for n := range emits {
		names[n] = true
	}
	for n := range listens {
		names[n] = true
	}

	var out []coretypes.EventBridge
	for name := range names {
		eb := coretypes.EventBridge{Name: name, Emits: emits[name], Listens: listens[name]}
		switch {
		case len(emits[name]) > 0 && len(listens[name]) == 0:
			eb.Status = coretypes.EventOrphan
		case len(listens[name]) > 0 && len(emits[name]) == 0:
			eb.Status = coretypes.EventGhost
		default:
			eb.Status = coretypes.EventOK
		}
		out = append(out, eb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
