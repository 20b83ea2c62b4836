// Package analyze implements C6 (spec.md 4.6): dead-export detection,
// import cycle classification, twin-symbol clustering, and re-export
// cascade detection over a built graph.Graph.
package analyze

import (
	"sort"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/graph"
)

// tarjan finds strongly connected components of the internal (non-external)
// import edges of every kind, type-only included, grounded on the teacher's
// relationship_analyzer.go dependency-graph walk but specialized to
// Tarjan's algorithm for cycle detection rather than plain reachability.
type tarjan struct {
	g        *graph.Graph
	index    map[coretypes.FileID]int
	lowlink  map[coretypes.FileID]int
	onStack  map[coretypes.FileID]bool
	stack    []coretypes.FileID
	counter  int
	sccs     [][]coretypes.FileID
	adjacent map[coretypes.FileID][]coretypes.FileID
}

// FindCycles runs Tarjan's SCC algorithm over internal import edges and
// classifies each non-trivial component (spec.md 3, 4.6).
func FindCycles(g *graph.Graph) []coretypes.Cycle {
	t := &tarjan{
		g:        g,
		index:    map[coretypes.FileID]int{},
		lowlink:  map[coretypes.FileID]int{},
		onStack:  map[coretypes.FileID]bool{},
		adjacent: buildAdjacency(g),
	}

	for i := range g.Files {
		fid := coretypes.FileID(i)
		if _, seen := t.index[fid]; !seen {
			t.strongConnect(fid)
		}
	}

	var cycles []coretypes.Cycle
	for _, scc := range t.sccs {
		if len(scc) < 2 {
			// A single file with a self-edge is still a cycle; otherwise skip.
			if len(scc) == 1 && hasSelfEdge(t.adjacent, scc[0]) {
				cycles = append(cycles, classify(g, scc))
			}
			continue
		}
		cycles = append(cycles, classify(g, scc))
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Files[0] < cycles[j].Files[0]
	})
	return cycles
}

func buildAdjacency(g *graph.Graph) map[coretypes.FileID][]coretypes.FileID {
	adj := map[coretypes.FileID][]coretypes.FileID{}
	for _, e := range g.Edges {
		to, ok := g.FileByPath(e.To)
		if !ok {
			continue // external target
		}
		adj[e.From] = append(adj[e.From], to)
	}
	return adj
}

func hasSelfEdge(adj map[coretypes.FileID][]coretypes.FileID, fid coretypes.FileID) bool {
	for _, to := range adj[fid] {
		if to == fid {
			return true
		}
	}
	return false
}

func (t *tarjan) strongConnect(v coretypes.FileID) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.adjacent[v] {
		if _, seen := t.index[w]; !seen {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []coretypes.FileID
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}

// classify assigns breaking/structural/diamond per spec.md 3 and 9.
// "Breaking" is a cycle with at least one non-type-only edge between its
// members; "structural" is a cycle whose member-to-member edges are all
// type-only (compiles but signals a layering problem);
// "diamond" is an advisory overlay recorded separately, not mutually
// exclusive, for components with multiple acyclic paths between the
// same two files.
func classify(g *graph.Graph, scc []coretypes.FileID) coretypes.Cycle {
	files := make([]string, 0, len(scc))
	fset := map[coretypes.FileID]bool{}
	for _, fid := range scc {
		fset[fid] = true
	}
	for _, fid := range scc {
		files = append(files, g.Record(fid).Path)
	}
	sort.Strings(files)

	// An SCC is "structural" iff every edge connecting two of its members
	// is type-only; a single static/dynamic/reexport edge within the
	// cycle makes it "breaking" (spec.md 4.6).
	classification := coretypes.CycleStructural
	sawInternalEdge := false
	for _, e := range g.Edges {
		to, ok := g.FileByPath(e.To)
		if !ok || !fset[e.From] || !fset[to] {
			continue
		}
		sawInternalEdge = true
		if e.Kind != coretypes.ImportTypeOnly {
			classification = coretypes.CycleBreaking
			break
		}
	}
	if !sawInternalEdge {
		classification = coretypes.CycleBreaking
	}

	return coretypes.Cycle{Files: files, Classification: classification}
}
