package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/loctree/loctree/internal/coretypes"
)

// parseTSX mirrors internal/extract/jsx's parser setup so lint tests
// exercise the same tree shape the real pipeline feeds Lint.
func parseTSX(t *testing.T, src string) (*tree_sitter.Node, func()) {
	t.Helper()
	p := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	require.NoError(t, p.SetLanguage(lang))
	tree := p.Parse([]byte(src), nil)
	require.NotNil(t, tree)
	root := tree.RootNode()
	return root, func() {
		tree.Close()
		p.Close()
	}
}

func lintSrc(t *testing.T, path, src string, isTestFile bool) []coretypes.Finding {
	t.Helper()
	root, closeFn := parseTSX(t, src)
	defer closeFn()
	return Lint(path, root, []byte(src), isTestFile)
}

func TestLint_SubscriptionWithoutCleanupInHook(t *testing.T) {
	src := `function Widget() {
  useEffect(() => {
    const id = setInterval(tick, 1000);
  }, []);
}
`
	findings := lintSrc(t, "src/Widget.tsx", src, false)
	require.NotEmpty(t, findings)
	var kinds []string
	for _, f := range findings {
		kinds = append(kinds, f.Kind)
	}
	assert.Contains(t, kinds, "race_missing_cleanup")
}

func TestLint_CleanupSuppressesFinding(t *testing.T) {
	src := `function Widget() {
  useEffect(() => {
    const id = setInterval(tick, 1000);
    return () => clearInterval(id);
  }, []);
}
`
	findings := lintSrc(t, "src/Widget.tsx", src, false)
	for _, f := range findings {
		assert.NotEqual(t, "race_missing_cleanup", f.Kind)
	}
}

func TestLint_AnyTypeAnnotation(t *testing.T) {
	src := "function f(x: any) {\n  return x as any\n}\n"
	findings := lintSrc(t, "src/f.ts", src, false)
	require.NotEmpty(t, findings)
	assert.Equal(t, "type_safety_any", findings[0].Kind)
}

func TestLint_SeverityDowngradedForTestFiles(t *testing.T) {
	src := "// @ts-ignore\nconst x = 1;\n"
	findings := lintSrc(t, "src/f.test.ts", src, true)
	require.NotEmpty(t, findings)
	for _, f := range findings {
		assert.Equal(t, coretypes.SeverityLow, f.Severity)
	}
}

func TestLint_GlobalIntervalWithoutClear(t *testing.T) {
	src := "setInterval(poll, 5000);\n"
	findings := lintSrc(t, "src/poller.ts", src, false)
	require.NotEmpty(t, findings)
	assert.Equal(t, "memory_global_interval", findings[0].Kind)
	assert.Equal(t, coretypes.SeverityHigh, findings[0].Severity)
}

func TestLint_ModuleLevelUnboundedContainer(t *testing.T) {
	src := "const cache = new Map();\n"
	findings := lintSrc(t, "src/cache.ts", src, false)
	require.NotEmpty(t, findings)
	assert.Equal(t, "memory_unbounded_container", findings[0].Kind)
}

func TestLint_EvictionCommentSuppressesContainerFinding(t *testing.T) {
	src := "// evict on overflow, max size 100\nconst cache = new Map();\n"
	findings := lintSrc(t, "src/cache.ts", src, false)
	for _, f := range findings {
		assert.NotEqual(t, "memory_unbounded_container", f.Kind)
	}
}

func TestLint_NestedSetIntervalIsNotModuleLevel(t *testing.T) {
	src := "function start() {\n  setInterval(poll, 1000);\n}\n"
	findings := lintSrc(t, "src/f.ts", src, false)
	for _, f := range findings {
		assert.NotEqual(t, "memory_global_interval", f.Kind)
	}
}
