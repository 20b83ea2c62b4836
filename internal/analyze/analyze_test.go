package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/graph"
	"github.com/loctree/loctree/internal/registry"
	"github.com/loctree/loctree/internal/resolve"
)

func buildGraph(t *testing.T, records map[string]coretypes.FileRecord) *graph.Graph {
	t.Helper()
	files := make([]string, 0, len(records))
	for p := range records {
		files = append(files, p)
	}
	r := resolve.New(files, nil)
	return graph.Build(records, r)
}

func TestFindCycles_TwoFileBreakingCycle(t *testing.T) {
	g := buildGraph(t, map[string]coretypes.FileRecord{
		"a.ts": {Path: "a.ts", Imports: []coretypes.ImportEdge{{Specifier: "./b", Kind: coretypes.ImportStatic}}},
		"b.ts": {Path: "b.ts", Imports: []coretypes.ImportEdge{{Specifier: "./a", Kind: coretypes.ImportStatic}}},
	})
	cycles := FindCycles(g)
	require.Len(t, cycles, 1)
	assert.Equal(t, coretypes.CycleBreaking, cycles[0].Classification)
	assert.ElementsMatch(t, []string{"a.ts", "b.ts"}, cycles[0].Files)
}

func TestFindCycles_TypeOnlyCycleIsStructural(t *testing.T) {
	g := buildGraph(t, map[string]coretypes.FileRecord{
		"a.ts": {Path: "a.ts", Imports: []coretypes.ImportEdge{{Specifier: "./b", Kind: coretypes.ImportTypeOnly}}},
		"b.ts": {Path: "b.ts", Imports: []coretypes.ImportEdge{{Specifier: "./a", Kind: coretypes.ImportTypeOnly}}},
	})
	cycles := FindCycles(g)
	require.Len(t, cycles, 1)
	assert.Equal(t, coretypes.CycleStructural, cycles[0].Classification)
}

func TestFindTwins_PicksCanonicalByImporterCount(t *testing.T) {
	g := buildGraph(t, map[string]coretypes.FileRecord{
		"a.ts": {Path: "a.ts", Exports: []coretypes.Export{{Name: "Widget", Kind: coretypes.ExportClass}}},
		"b.ts": {Path: "b.ts", Exports: []coretypes.Export{{Name: "Widget", Kind: coretypes.ExportClass}}},
		"c.ts": {Path: "c.ts", Imports: []coretypes.ImportEdge{{Specifier: "./a", Kind: coretypes.ImportStatic}}},
	})
	twins := FindTwins(g)
	require.Len(t, twins, 1)
	assert.Equal(t, "a.ts", twins[0].Canonical)
	assert.ElementsMatch(t, []string{"a.ts", "b.ts"}, twins[0].Files)
}

func TestFindCascades_ReportsChainAndClamp(t *testing.T) {
	g := buildGraph(t, map[string]coretypes.FileRecord{
		"barrel.ts": {Path: "barrel.ts", Exports: []coretypes.Export{{Name: "Button", IsReexport: true, ReexportOf: "Button.tsx"}}},
		"Button.tsx": {Path: "Button.tsx", Exports: []coretypes.Export{{Name: "Button", Kind: coretypes.ExportFunction}}},
	})
	cascades := FindCascades(g)
	require.Len(t, cascades, 1)
	assert.Equal(t, "Button", cascades[0].Symbol)
	assert.Equal(t, []string{"barrel.ts", "Button.tsx"}, cascades[0].Chain)
	assert.False(t, cascades[0].Clamped)
}

func TestFindDeadExports_NoImportersIsHighConfidence(t *testing.T) {
	g := buildGraph(t, map[string]coretypes.FileRecord{
		"util.ts": {Path: "util.ts", Exports: []coretypes.Export{{Name: "unused", Kind: coretypes.ExportFunction, Line: 4}}},
	})
	reg := registry.Load(t.TempDir())
	dead := FindDeadExports(g, reg, func(string) bool { return false })
	require.Len(t, dead, 1)
	assert.Equal(t, coretypes.ConfidenceHigh, dead[0].Confidence)
}

func TestFindDeadExports_TestOnlyImporterIsNormalConfidence(t *testing.T) {
	g := buildGraph(t, map[string]coretypes.FileRecord{
		"util.ts": {Path: "util.ts", Exports: []coretypes.Export{{Name: "helper", Kind: coretypes.ExportFunction, Line: 2}}},
		"util.test.ts": {Path: "util.test.ts", Imports: []coretypes.ImportEdge{{Specifier: "./util", Kind: coretypes.ImportStatic}}},
	})
	reg := registry.Load(t.TempDir())
	dead := FindDeadExports(g, reg, func(p string) bool { return p == "util.test.ts" })
	require.Len(t, dead, 1)
	assert.Equal(t, coretypes.ConfidenceNormal, dead[0].Confidence)
}

func TestFindDeadExports_RegistryMatchSuppresses(t *testing.T) {
	g := buildGraph(t, map[string]coretypes.FileRecord{
		"src/runtime/loader.mjs": {Path: "src/runtime/loader.mjs", Exports: []coretypes.Export{{Name: "resolve", Kind: coretypes.ExportFunction, Line: 1}}},
	})
	reg := registry.Load(t.TempDir())
	dead := FindDeadExports(g, reg, func(string) bool { return false })
	assert.Empty(t, dead)
}

func TestFindDeadExports_EntryPointSuppresses(t *testing.T) {
	g := buildGraph(t, map[string]coretypes.FileRecord{
		"main.rs": {Path: "main.rs", IsEntryPoint: true, Exports: []coretypes.Export{{Name: "run", Kind: coretypes.ExportFunction}}},
	})
	reg := registry.Load(t.TempDir())
	dead := FindDeadExports(g, reg, func(string) bool { return false })
	assert.Empty(t, dead)
}

func TestFindOrphans_ExcludesEntryPointsAndConfig(t *testing.T) {
	g := buildGraph(t, map[string]coretypes.FileRecord{
		"orphan.ts": {Path: "orphan.ts"},
		"main.ts":   {Path: "main.ts", IsEntryPoint: true},
		"vite.config.ts": {Path: "vite.config.ts", IsConfig: true},
	})
	orphans := FindOrphans(g)
	assert.Equal(t, []string{"orphan.ts"}, orphans)
}
