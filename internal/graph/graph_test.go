package graph

import (
	"testing"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ResolvesImportEdgesAndImporterIndex(t *testing.T) {
	records := map[string]coretypes.FileRecord{
		"src/app.ts": {
			Path: "src/app.ts",
			Imports: []coretypes.ImportEdge{
				{Specifier: "./ui/Button", Kind: coretypes.ImportStatic, Line: 1},
				{Specifier: "react", Kind: coretypes.ImportStatic, Line: 2},
			},
		},
		"src/ui/Button.tsx": {
			Path:    "src/ui/Button.tsx",
			Exports: []coretypes.Export{{Name: "Button", Kind: coretypes.ExportFunction, Line: 3}},
		},
	}
	r := resolve.New([]string{"src/app.ts", "src/ui/Button.tsx"}, nil)

	g := Build(records, r)

	appID, ok := g.FileByPath("src/app.ts")
	require.True(t, ok)
	buttonID, ok := g.FileByPath("src/ui/Button.tsx")
	require.True(t, ok)

	assert.Contains(t, g.ImporterIndex[buttonID], appID)
	assert.Contains(t, g.ExportIndex["Button"], buttonID)

	var sawExternal bool
	for _, e := range g.Edges {
		if e.To == "external:react" {
			sawExternal = true
		}
	}
	assert.True(t, sawExternal)
}

func TestBuild_CommandBridgeStatuses(t *testing.T) {
	records := map[string]coretypes.FileRecord{
		"src/app.ts": {
			Path:     "src/app.ts",
			IPCCalls: []coretypes.IPCCall{{Name: "save_file", Line: 10}, {Name: "missing_cmd", Line: 11}},
		},
		"src-tauri/src/lib.rs": {
			Path: "src-tauri/src/lib.rs",
			IPCHandlers: []coretypes.IPCHandler{
				{Name: "save_file", RawSymbol: "save_file", Line: 5},
				{Name: "unused_cmd", RawSymbol: "unused_cmd", Line: 20},
			},
		},
	}
	r := resolve.New([]string{"src/app.ts", "src-tauri/src/lib.rs"}, nil)
	g := Build(records, r)

	statuses := map[string]coretypes.BridgeStatus{}
	for _, cb := range g.CommandBridges {
		statuses[cb.Name] = cb.Status
	}
	assert.Equal(t, coretypes.BridgeOK, statuses["save_file"])
	assert.Equal(t, coretypes.BridgeMissingHandler, statuses["missing_cmd"])
	assert.Equal(t, coretypes.BridgeUnusedHandler, statuses["unused_cmd"])
}

func TestBuild_EventBridgeOrphanAndGhost(t *testing.T) {
	records := map[string]coretypes.FileRecord{
		"src/app.ts": {
			Path:         "src/app.ts",
			EventEmits:   []coretypes.EventSite{{Name: "file-saved", Line: 1}},
			EventListens: []coretypes.EventSite{{Name: "ghost-event", Line: 2}},
		},
	}
	r := resolve.New([]string{"src/app.ts"}, nil)
	g := Build(records, r)

	statuses := map[string]coretypes.EventBridgeStatus{}
	for _, eb := range g.EventBridges {
		statuses[eb.Name] = eb.Status
	}
	assert.Equal(t, coretypes.EventOrphan, statuses["file-saved"])
	assert.Equal(t, coretypes.EventGhost, statuses["ghost-event"])
}

func TestBuild_BarrelFanOut(t *testing.T) {
	records := map[string]coretypes.FileRecord{
		"src/ui/index.ts": {
			Path: "src/ui/index.ts",
			Exports: []coretypes.Export{
				{Name: "Button", IsReexport: true, ReexportOf: "src/ui/Button.tsx"},
				{Name: "Input", IsReexport: true, ReexportOf: "src/ui/Input.tsx"},
			},
		},
		"src/ui/Button.tsx": {Path: "src/ui/Button.tsx"},
	}
	r := resolve.New([]string{"src/ui/index.ts", "src/ui/Button.tsx"}, nil)
	g := Build(records, r)

	require.Len(t, g.Barrels, 1)
	assert.Equal(t, "src/ui/index.ts", g.Barrels[0].BarrelFile)
	assert.Equal(t, 2, g.Barrels[0].FanOut)
}
