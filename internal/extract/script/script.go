// Package script implements the whitespace-scoped scripting language
// extractor (Python-shaped): module-level functions, classes, and
// assignments are the language's exports, gated by the __all__ list
// when present; "import x" / "from x import y" statements are the
// import edges. Structural extraction runs a tree-sitter query pass,
// the same way internal/extract/jsx does.
package script

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/extract"
)

func init() {
	extract.Register(&Extractor{})
}

// Extractor implements extract.Extractor for the scripting language.
type Extractor struct{}

func (Extractor) Language() coretypes.Language { return coretypes.LangScript }

func (Extractor) FileMatches(path string) bool {
	return strings.HasSuffix(path, ".py") || strings.HasSuffix(path, ".pyi")
}

func (Extractor) DefaultEntryPointPatterns() []string {
	return []string{
		"**/manage.py", "**/wsgi.py", "**/asgi.py",
		"**/__main__.py", "**/conftest.py", "**/setup.py",
	}
}

const structuralQuery = `
(import_statement) @import
(import_from_statement) @import_from
(function_definition name: (identifier) @function.name) @function
(class_definition name: (identifier) @class.name) @class
(expression_statement (assignment left: (identifier) @const.name)) @const
`

func newParser() (*tree_sitter.Parser, *tree_sitter.Language, error) {
	p := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := p.SetLanguage(lang); err != nil {
		return nil, nil, fmt.Errorf("set language: %w", err)
	}
	return p, lang, nil
}

// ParseFile extracts module-level exports and import statements. Only
// top-level definitions are exports; nested/indented definitions are
// skipped by checking the node's parent is the module root.
func (x Extractor) ParseFile(path string, content []byte) (*extract.Result, error) {
	res := &extract.Result{LOC: strings.Count(string(content), "\n") + 1}

	allNames := parseDunderAll(string(content))

	p, lang, err := newParser()
	if err != nil {
		return nil, err
	}
	defer p.Close()

	tree := p.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse failed for %s", path)
	}
	defer tree.Close()

	query, qerr := tree_sitter.NewQuery(lang, structuralQuery)
	if qerr != nil || query == nil {
		return nil, fmt.Errorf("compile structural query: %w", qerr)
	}
	defer query.Close()

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	names := query.CaptureNames()
	root := tree.RootNode()
	matches := qc.Matches(query, root, content)

	for {
		m := matches.Next()
		if m == nil {
			break
		}
		var mainCapture string
		var mainNode *tree_sitter.Node
		named := map[string]string{}
		for _, c := range m.Captures {
			cn := names[c.Index]
			node := c.Node
			if strings.Contains(cn, ".") {
				named[cn] = string(content[node.StartByte():node.EndByte()])
				continue
			}
			mainCapture = cn
			n := node
			mainNode = &n
		}
		if mainNode == nil {
			continue
		}
		line := int(mainNode.StartPosition().Row) + 1
		topLevel := isTopLevel(mainNode, &root)

		switch mainCapture {
		case "import":
			res.Imports = append(res.Imports, parsePlainImport(mainNode, content, line)...)
		case "import_from":
			res.Imports = append(res.Imports, parseFromImport(mainNode, content, line)...)
		case "function":
			if topLevel {
				appendExport(res, named["function.name"], coretypes.ExportFunction, line, allNames)
			}
		case "class":
			if topLevel {
				appendExport(res, named["class.name"], coretypes.ExportClass, line, allNames)
			}
		case "const":
			if topLevel {
				appendExport(res, named["const.name"], coretypes.ExportConst, line, allNames)
			}
		}
	}

	return res, nil
}

func isTopLevel(n, root *tree_sitter.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Id() == root.Id()
}

func appendExport(res *extract.Result, name string, kind coretypes.ExportKind, line int, allNames map[string]bool) {
	if name == "" || strings.HasPrefix(name, "_") {
		return
	}
	if len(allNames) > 0 && !allNames[name] {
		return
	}
	res.Exports = append(res.Exports, coretypes.Export{
		Name: name, Kind: kind, Line: line,
		Visibility: coretypes.VisibilityPublic, ExportType: "named",
	})
}

func parsePlainImport(n *tree_sitter.Node, content []byte, line int) []coretypes.ImportEdge {
	text := string(content[n.StartByte():n.EndByte()])
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "import"))
	var out []coretypes.ImportEdge
	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.Index(part, " as "); idx >= 0 {
			part = strings.TrimSpace(part[:idx])
		}
		out = append(out, coretypes.ImportEdge{Specifier: part, Kind: coretypes.ImportStatic, Line: line})
	}
	return out
}

func parseFromImport(n *tree_sitter.Node, content []byte, line int) []coretypes.ImportEdge {
	text := string(content[n.StartByte():n.EndByte()])
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "from") {
		return nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(text, "from"))
	idx := strings.Index(rest, " import ")
	if idx < 0 {
		return nil
	}
	module := strings.TrimSpace(rest[:idx])
	namesPart := strings.TrimSpace(rest[idx+len(" import "):])
	namesPart = strings.Trim(namesPart, "()")

	var names []string
	for _, p := range strings.Split(namesPart, ",") {
		p = strings.TrimSpace(p)
		if p == "" || p == "*" {
			continue
		}
		if aidx := strings.Index(p, " as "); aidx >= 0 {
			p = strings.TrimSpace(p[:aidx])
		}
		names = append(names, p)
	}

	return []coretypes.ImportEdge{{
		Specifier: module,
		Kind:      coretypes.ImportStatic,
		Line:      line,
		Names:     names,
	}}
}

// parseDunderAll scans for a top-level `__all__ = [...]` assignment and
// returns the set of names it restricts exports to. Returns an empty map
// when no __all__ is present, meaning every non-underscore top-level
// name is exported.
func parseDunderAll(src string) map[string]bool {
	idx := strings.Index(src, "__all__")
	if idx < 0 {
		return nil
	}
	rest := src[idx:]
	start := strings.Index(rest, "[")
	end := strings.Index(rest, "]")
	if start < 0 || end < 0 || end < start {
		return nil
	}
	body := rest[start+1 : end]
	out := map[string]bool{}
	for _, item := range strings.Split(body, ",") {
		item = strings.TrimSpace(item)
		item = strings.Trim(item, `"'`)
		if item != "" {
			out[item] = true
		}
	}
	return out
}
