package jsx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile_NamedAndDefaultExports(t *testing.T) {
	src := []byte(`
export function add(a, b) { return a + b }
export default add
export const PI = 3.14
`)
	res, err := Extractor{}.ParseFile("src/math.ts", src)
	require.NoError(t, err)

	var names []string
	for _, e := range res.Exports {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "add")
	assert.Contains(t, names, "default")
	assert.Contains(t, names, "PI")
}

func TestParseFile_ReexportBarrel(t *testing.T) {
	src := []byte(`export { Button } from "./Button"`)
	res, err := Extractor{}.ParseFile("src/ui/index.ts", src)
	require.NoError(t, err)
	require.Len(t, res.Exports, 1)
	assert.Equal(t, "Button", res.Exports[0].Name)
	assert.True(t, res.Exports[0].IsReexport)
	assert.Equal(t, "./Button", res.Exports[0].ReexportOf)
}

func TestParseFile_AmbientDeclarationFlag(t *testing.T) {
	src := []byte(`
declare global {
  interface Window { myApp: unknown }
}
export const x = 1
`)
	res, err := Extractor{}.ParseFile("src/global.d.ts", src)
	require.NoError(t, err)
	assert.True(t, res.HasAmbientDeclarations)
}

func TestParseFile_IPCInvokeCallSite(t *testing.T) {
	src := []byte(`
async function load() {
  const data = await invoke("process_data", { inputData })
  return data
}
`)
	res, err := Extractor{}.ParseFile("src/bridge.ts", src)
	require.NoError(t, err)
	require.Len(t, res.IPCCalls, 1)
	assert.Equal(t, "process_data", res.IPCCalls[0].Name)
}

func TestFileMatches(t *testing.T) {
	x := Extractor{}
	assert.True(t, x.FileMatches("a/b.tsx"))
	assert.True(t, x.FileMatches("a/b.mjs"))
	assert.False(t, x.FileMatches("a/b.py"))
}
