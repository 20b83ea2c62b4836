// Package jsx implements the curly-brace web language extractor: the
// typed and untyped variants plus JSX, covering both .js/.jsx/.mjs/.cjs
// (tree-sitter-javascript grammar) and .ts/.tsx (tree-sitter-typescript,
// tsx grammar for both since it is a strict superset of ts syntax).
// Structural extraction (imports/exports/IPC sites) runs a tree-sitter
// query pass; the lint rules in internal/lint walk the same parsed tree.
package jsx

import (
	"fmt"
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/extract"
	"github.com/loctree/loctree/internal/lint"
	"github.com/loctree/loctree/internal/walker"
)

func init() {
	extract.Register(&Extractor{})
}

// Extractor implements extract.Extractor for the curly-brace language.
type Extractor struct{}

func (Extractor) Language() coretypes.Language { return coretypes.LangCurlyBrace }

var extensions = map[string]bool{
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".tsx": true,
}

func (Extractor) FileMatches(path string) bool {
	for ext := range extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (Extractor) DefaultEntryPointPatterns() []string {
	return []string{
		"**/app/**/route.ts", "**/app/**/route.tsx",
		"**/app/**/page.tsx", "**/app/**/layout.tsx",
		"**/pages/api/**/*.ts", "**/pages/api/**/*.js",
		"**/*.loader.ts", "**/*.loader.tsx",
		"**/*.worker.ts", "**/*.worker.js",
		"**/service-worker.ts", "**/service-worker.js", "**/sw.js",
		"**/vite.config.ts", "**/vite.config.js",
		"**/next.config.js", "**/next.config.ts",
		"**/*.plugin.ts", "**/*.plugin.js",
	}
}

func isTypeScript(path string) bool {
	return strings.HasSuffix(path, ".ts") || strings.HasSuffix(path, ".tsx")
}

func parserFor(path string) (*tree_sitter.Parser, *tree_sitter.Language, error) {
	p := tree_sitter.NewParser()
	var lang *tree_sitter.Language
	if isTypeScript(path) {
		lang = tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	} else {
		lang = tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	}
	if err := p.SetLanguage(lang); err != nil {
		return nil, nil, fmt.Errorf("set language: %w", err)
	}
	return p, lang, nil
}

const structuralQuery = `
(import_statement source: (string) @import.source) @import
(export_statement) @export
(function_declaration name: (identifier) @function.name) @function
(class_declaration name: (_) @class.name) @class
(interface_declaration name: (type_identifier) @interface.name) @interface
(type_alias_declaration name: (type_identifier) @type.name) @type
(enum_declaration name: (identifier) @enum.name) @enum
(call_expression function: (identifier) @call.name) @call
(call_expression function: (member_expression property: (property_identifier) @call.member)) @membercall
`

// ambientDeclRe matches "declare global", "declare module" augmentations.
var ambientDeclRe = regexp.MustCompile(`^\s*declare\s+(global|module)\b`)

// ParseFile runs the structural query pass and returns exports, imports,
// IPC call/handler sites, and the ambient/entry-point flags.
func (x Extractor) ParseFile(path string, content []byte) (*extract.Result, error) {
	res := &extract.Result{LOC: strings.Count(string(content), "\n") + 1}

	for _, line := range strings.Split(string(content), "\n") {
		if ambientDeclRe.MatchString(line) {
			res.HasAmbientDeclarations = true
			break
		}
	}

	p, lang, err := parserFor(path)
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

	captureNames := query.CaptureNames()
	matches := qc.Matches(query, tree.RootNode(), content)

	for {
		m := matches.Next()
		if m == nil {
			break
		}
		names := make(map[string]string, 4)
		var mainCapture string
		var mainNode *tree_sitter.Node
		for _, c := range m.Captures {
			name := captureNames[c.Index]
			node := c.Node
			if strings.Contains(name, ".") {
				names[name] = string(content[node.StartByte():node.EndByte()])
				continue
			}
			mainCapture = name
			n := node
			mainNode = &n
		}
		if mainNode == nil {
			continue
		}
		line := int(mainNode.StartPosition().Row) + 1

		switch mainCapture {
		case "import":
			src := strings.Trim(names["import.source"], `"'`)
			text := string(content[mainNode.StartByte():mainNode.EndByte()])
			res.Imports = append(res.Imports, coretypes.ImportEdge{
				Specifier: src,
				Kind:      classifyImportKind(text),
				Line:      line,
			})
		case "export":
			text := string(content[mainNode.StartByte():mainNode.EndByte()])
			res.Exports = append(res.Exports, exportFromText(text, line)...)
		case "call", "membercall":
			name := names["call.name"]
			if name == "" {
				name = names["call.member"]
			}
			handleIPCCall(res, name, mainNode, content, line)
		}
	}

	// Entry-point hint: the DefaultEntryPointPatterns path globs are
	// matched by the caller (internal/scan's matchesEntryPoint, with the
	// doublestar matcher); ParseFile only flags the framework
	// function-shaped exports used by Next.js/Remix-style route modules.
	for _, e := range res.Exports {
		switch e.Name {
		case "GET", "POST", "PUT", "DELETE", "PATCH", "loader", "action", "default":
			if isTypeScript(path) {
				res.EntryPoint = res.EntryPoint || isRouteLike(path)
			}
		}
	}

	res.LintFindings = lint.Lint(path, tree.RootNode(), content, walker.IsTestPath(path))

	return res, nil
}

func isRouteLike(path string) bool {
	return strings.Contains(path, "/app/") || strings.Contains(path, "/pages/api/") ||
		strings.Contains(path, "/routes/")
}

func classifyImportKind(stmtText string) coretypes.ImportKind {
	trimmed := strings.TrimSpace(stmtText)
	switch {
	case strings.HasPrefix(trimmed, "import type"):
		return coretypes.ImportTypeOnly
	default:
		return coretypes.ImportStatic
	}
}

// exportFromText classifies an `export ...` statement's text into zero
// or more Export records. A full tree-sitter sub-query would be more
// precise; this is a pragmatic text classification over the matched
// export_statement node, which is sufficient to distinguish default,
// named, re-export, and wildcard forms (spec.md 4.3).
func exportFromText(text string, line int) []coretypes.Export {
	trimmed := strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(trimmed, "export default"):
		return []coretypes.Export{{Name: "default", Kind: coretypes.ExportDefault, Line: line, Visibility: coretypes.VisibilityPublic, ExportType: "default"}}

	case strings.HasPrefix(trimmed, "export *"):
		target := reexportTarget(trimmed)
		return []coretypes.Export{{Name: "*", Kind: coretypes.ExportReexport, Line: line, IsReexport: true, ReexportOf: target, Visibility: coretypes.VisibilityPublic, ExportType: "wildcard"}}

	case strings.HasPrefix(trimmed, "export {"):
		target := reexportTarget(trimmed)
		names := namedExportList(trimmed)
		out := make([]coretypes.Export, 0, len(names))
		for _, n := range names {
			out = append(out, coretypes.Export{
				Name: n, Kind: coretypes.ExportReexport, Line: line,
				IsReexport: target != "", ReexportOf: target,
				Visibility: coretypes.VisibilityPublic, ExportType: "named",
			})
		}
		return out

	case strings.HasPrefix(trimmed, "export function"), strings.HasPrefix(trimmed, "export async function"):
		return []coretypes.Export{{Name: identAfter(trimmed, "function"), Kind: coretypes.ExportFunction, Line: line, Visibility: coretypes.VisibilityPublic, ExportType: "named"}}

	case strings.HasPrefix(trimmed, "export class"):
		return []coretypes.Export{{Name: identAfter(trimmed, "class"), Kind: coretypes.ExportClass, Line: line, Visibility: coretypes.VisibilityPublic, ExportType: "named"}}

	case strings.HasPrefix(trimmed, "export interface"):
		return []coretypes.Export{{Name: identAfter(trimmed, "interface"), Kind: coretypes.ExportInterface, Line: line, Visibility: coretypes.VisibilityPublic, ExportType: "named"}}

	case strings.HasPrefix(trimmed, "export type"):
		return []coretypes.Export{{Name: identAfter(trimmed, "type"), Kind: coretypes.ExportType, Line: line, Visibility: coretypes.VisibilityPublic, ExportType: "named"}}

	case strings.HasPrefix(trimmed, "export enum"):
		return []coretypes.Export{{Name: identAfter(trimmed, "enum"), Kind: coretypes.ExportEnum, Line: line, Visibility: coretypes.VisibilityPublic, ExportType: "named"}}

	case strings.HasPrefix(trimmed, "export const"), strings.HasPrefix(trimmed, "export let"), strings.HasPrefix(trimmed, "export var"):
		name := identAfter(trimmed, "const")
		if name == "" {
			name = identAfter(trimmed, "let")
		}
		if name == "" {
			name = identAfter(trimmed, "var")
		}
		return []coretypes.Export{{Name: name, Kind: coretypes.ExportConst, Line: line, Visibility: coretypes.VisibilityPublic, ExportType: "named"}}

	case strings.HasPrefix(trimmed, "export namespace"):
		return []coretypes.Export{{Name: identAfter(trimmed, "namespace"), Kind: coretypes.ExportNamespace, Line: line, Visibility: coretypes.VisibilityPublic, ExportType: "named"}}

	default:
		return nil
	}
}

var identRe = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

func identAfter(text, keyword string) string {
	idx := strings.Index(text, keyword)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(keyword):]
	m := identRe.FindString(rest)
	return m
}

var fromRe = regexp.MustCompile(`from\s+["']([^"']+)["']`)

func reexportTarget(text string) string {
	if m := fromRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

var namedListRe = regexp.MustCompile(`\{([^}]*)\}`)

func namedExportList(text string) []string {
	m := namedListRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if idx := strings.Index(p, " as "); idx >= 0 {
			p = strings.TrimSpace(p[idx+4:])
		}
		out = append(out, p)
	}
	return out
}

// ipcCallNames is the set of frontend bridge-call function names recognized
// as invoking a named backend command by their first string argument —
// the IPC call detection is handled at the AST-text level in
// handleIPCCall since argument extraction needs the surrounding call
// node, not just the callee name.
var ipcCallNames = map[string]bool{"invoke": true, "__TAURI_INVOKE__": true}

func handleIPCCall(res *extract.Result, calleeName string, callNode *tree_sitter.Node, content []byte, line int) {
	if !ipcCallNames[calleeName] {
		return
	}
	args := callNode.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	var commandName string
	for i := uint(0); i < args.NamedChildCount(); i++ {
		child := args.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Kind() == "string" {
			commandName = strings.Trim(string(content[child.StartByte():child.EndByte()]), `"'`)
			break
		}
	}
	if commandName == "" {
		return
	}
	res.IPCCalls = append(res.IPCCalls, coretypes.IPCCall{Name: commandName, Line: line})
}
