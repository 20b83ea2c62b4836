package resolve

import "github.com/loctree/loctree/internal/coretypes"

// reexportKey is a BFS visited-set key: following the same (file, symbol)
// pair twice means we are in a resolution cycle.
type reexportKey struct {
	file   string
	symbol string
}

// ReexportTarget is the result of following a chain of pure re-exports.
type ReexportTarget struct {
	File     string
	Chain    []string // ordered file sequence visited, chain[0] is the start
	Cyclic   bool
	HopCount int

	Unresolved bool
}

// FollowReexports walks the re-export chain starting at (file, symbol)
// using an explicit queue rather than recursion, bounded at
// coretypes.MaxReexportHops hops (spec.md 4.4, 9 "Cyclic resolution
// graph"). lookup returns the exports recorded for a file.
func FollowReexports(file, symbol string, lookup func(file string) []coretypes.Export) ReexportTarget {
	visited := map[reexportKey]bool{}
	chain := []string{file}
	cur := file
	curSymbol := symbol
	hops := 0

	for hops < coretypes.MaxReexportHops {
		key := reexportKey{cur, curSymbol}
		if visited[key] {
			return ReexportTarget{File: cur, Chain: chain, Cyclic: true, HopCount: hops, Unresolved: true}
		}
		visited[key] = true

		exports := lookup(cur)
		var next *coretypes.Export
		for i := range exports {
			e := &exports[i]
			if e.Name == curSymbol && e.IsReexport {
				next = e
				break
			}
		}
		if next == nil {
			// Either a terminal (non-reexport) owner, or the symbol isn't
			// defined here at all.
			found := false
			for _, e := range exports {
				if e.Name == curSymbol {
					found = true
					break
				}
			}
			if !found {
				return ReexportTarget{File: cur, Chain: chain, HopCount: hops, Unresolved: true}
			}
			return ReexportTarget{File: cur, Chain: chain, HopCount: hops}
		}

		if next.ReexportOf == "" {
			return ReexportTarget{File: cur, Chain: chain, HopCount: hops, Unresolved: true}
		}
		cur = next.ReexportOf
		chain = append(chain, cur)
		hops++
	}

	return ReexportTarget{File: cur, Chain: chain, HopCount: hops, Unresolved: true}
}
