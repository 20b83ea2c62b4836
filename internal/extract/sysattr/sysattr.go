// Package sysattr implements the systems-language extractor: a
// regex/line-anchored scanner (not an AST parse) chosen specifically so
// that handler-defining attribute macros are recognized even when
// arbitrary line or block comments intervene between attributes and the
// function they decorate (spec.md 4.3, 6, 9 "Coroutine-shaped
// extraction"). It is implemented as a small line-oriented state machine
// — scan -> saw_attr -> maybe_more_attrs_or_comments -> await_fn -> emit
// — rather than a multi-line regex, to avoid backtracking blowups on
// adversarial input (spec.md 9).
package sysattr

import (
	"regexp"
	"strings"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/extract"
)

func init() {
	extract.Register(&Extractor{})
}

// Extractor implements extract.Extractor for the systems language
// (attribute-macro based, e.g. a Rust-shaped IPC backend).
type Extractor struct{}

func (Extractor) Language() coretypes.Language { return coretypes.LangSystems }

func (Extractor) FileMatches(path string) bool {
	return strings.HasSuffix(path, ".rs")
}

func (Extractor) DefaultEntryPointPatterns() []string {
	return []string{
		"**/main.rs",
		"**/lib.rs",
		"**/build.rs",
		"**/bin/*.rs",
	}
}

// handlerAttrNames lists the attribute macro names that mark a function
// as an IPC handler. A real IPC bridge framework typically has one
// canonical name ("command") plus its fully qualified form.
var handlerAttrNames = map[string]bool{
	"handler":        true,
	"command":        true,
	"tauri::command": true,
}

var (
	attrLineRe = regexp.MustCompile(`^#\[\s*([A-Za-z0-9_:]+)\s*(?:\((.*)\))?\s*\]\s*$`)
	fnLineRe   = regexp.MustCompile(`^(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?fn\s+([A-Za-z_][A-Za-z0-9_]*)\s*[(<]`)
	useLineRe  = regexp.MustCompile(`^use\s+([A-Za-z0-9_:{}*,\s]+?);`)
	pubItemRe  = regexp.MustCompile(`^pub(?:\([^)]*\))?\s+(fn|struct|enum|trait|const|static|type|mod)\s+([A-Za-z_][A-Za-z0-9_]*)`)
	renameRe   = regexp.MustCompile(`rename\s*=\s*"([^"]*)"`)
	renameAllR = regexp.MustCompile(`rename_all\s*=\s*"([^"]*)"`)
	modAttrRe  = regexp.MustCompile(`^#!\[`)
)

type pendingAttr struct {
	name     string
	rename   string // explicit rename target, if any
	renameAll string // "camelCase" | "PascalCase" | "snake_case"
}

// ParseFile scans content line by line, stripping comments as it goes,
// and accumulates handler records, exports, and import edges.
func (x Extractor) ParseFile(path string, content []byte) (*extract.Result, error) {
	lines := strings.Split(string(content), "\n")
	res := &extract.Result{LOC: len(lines)}

	var pending []pendingAttr
	inBlockComment := false

	for i, raw := range lines {
		lineNo := i + 1
		line, stillInBlock := stripComments(raw, inBlockComment)
		inBlockComment = stillInBlock
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			continue // blank or fully-commented line: doesn't break an attribute block
		}

		if modAttrRe.MatchString(trimmed) {
			// Inner attribute (#![...]), e.g. module-level ambient
			// declarations; not part of a handler's attribute block.
			res.HasAmbientDeclarations = true
			continue
		}

		if m := attrLineRe.FindStringSubmatch(trimmed); m != nil {
			name, args := m[1], m[2]
			pa := pendingAttr{name: name}
			if rm := renameRe.FindStringSubmatch(args); rm != nil {
				pa.rename = rm[1]
			}
			if ram := renameAllR.FindStringSubmatch(args); ram != nil {
				pa.renameAll = ram[1]
			}
			pending = append(pending, pa)
			continue
		}

		if m := fnLineRe.FindStringSubmatch(trimmed); m != nil {
			fnName := m[1]
			if h := handlerFromPending(pending, fnName); h != nil {
				h.Line = lineNo
				res.IPCHandlers = append(res.IPCHandlers, *h)
			}
			if strings.HasPrefix(trimmed, "pub ") || strings.HasPrefix(trimmed, "pub(") {
				vis := coretypes.VisibilityPublic
				if strings.HasPrefix(trimmed, "pub(") {
					vis = coretypes.VisibilityPackage
				}
				res.Exports = append(res.Exports, coretypes.Export{
					Name: fnName, Kind: coretypes.ExportFunction, Line: lineNo,
					Visibility: vis, ExportType: "named",
				})
			}
			pending = nil
			continue
		}

		if m := pubItemRe.FindStringSubmatch(trimmed); m != nil {
			pending = nil
			vis := coretypes.VisibilityPublic
			if strings.HasPrefix(trimmed, "pub(") {
				vis = coretypes.VisibilityPackage
			}
			res.Exports = append(res.Exports, coretypes.Export{
				Name: m[2], Kind: kindFromKeyword(m[1]), Line: lineNo,
				Visibility: vis, ExportType: "named",
			})
			continue
		}

		if m := useLineRe.FindStringSubmatch(trimmed); m != nil {
			res.Imports = append(res.Imports, coretypes.ImportEdge{
				Specifier: strings.TrimSpace(m[1]),
				Kind:      coretypes.ImportStatic,
				Line:      lineNo,
			})
			pending = nil
			continue
		}

		// Any other real code line breaks an in-progress attribute block:
		// attributes only tolerate intervening comments, not statements.
		pending = nil
	}

	return res, nil
}

func kindFromKeyword(kw string) coretypes.ExportKind {
	switch kw {
	case "fn":
		return coretypes.ExportFunction
	case "struct":
		return coretypes.ExportClass
	case "enum":
		return coretypes.ExportEnum
	case "trait":
		return coretypes.ExportInterface
	case "const", "static":
		return coretypes.ExportConst
	case "type":
		return coretypes.ExportType
	case "mod":
		return coretypes.ExportNamespace
	default:
		return coretypes.ExportFunction
	}
}

// handlerFromPending returns an IPCHandler if pending contains a
// handler-defining attribute, applying the rename rules in spec.md 6.
func handlerFromPending(pending []pendingAttr, fnName string) *coretypes.IPCHandler {
	var match *pendingAttr
	for i := range pending {
		if handlerAttrNames[pending[i].name] {
			match = &pending[i]
			break
		}
	}
	if match == nil {
		return nil
	}

	wireName := fnName
	applied := ""
	switch {
	case match.rename != "":
		wireName = match.rename
		applied = "rename"
	case match.renameAll != "":
		switch match.renameAll {
		case "camelCase":
			wireName = toCamelCase(fnName)
			applied = "rename_all=camelCase"
		case "PascalCase":
			wireName = toPascalCase(fnName)
			applied = "rename_all=PascalCase"
		case "snake_case":
			wireName = fnName // identity
			applied = "rename_all=snake_case"
		}
	}

	return &coretypes.IPCHandler{
		Name:          wireName,
		RawSymbol:     fnName,
		RenameApplied: applied,
	}
}

func toCamelCase(snake string) string {
	parts := strings.Split(snake, "_")
	if len(parts) == 0 {
		return snake
	}
	out := parts[0]
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		out += strings.ToUpper(p[:1]) + p[1:]
	}
	return out
}

func toPascalCase(snake string) string {
	camel := toCamelCase(snake)
	if camel == "" {
		return camel
	}
	return strings.ToUpper(camel[:1]) + camel[1:]
}

// stripComments removes // line comments and /* */ block comments from a
// single line, returning the remaining code text and whether a block
// comment is still open at end of line. It does not attempt to parse
// string literals exhaustively, but attribute/fn lines are anchored at
// line start so comment markers inside a string after the attribute
// cannot produce a false match.
func stripComments(line string, inBlock bool) (string, bool) {
	var b strings.Builder
	i := 0
	n := len(line)
	for i < n {
		if inBlock {
			end := strings.Index(line[i:], "*/")
			if end < 0 {
				return b.String(), true
			}
			i += end + 2
			inBlock = false
			continue
		}
		if i+1 < n && line[i] == '/' && line[i+1] == '/' {
			break // rest of line is a line comment
		}
		if i+1 < n && line[i] == '/' && line[i+1] == '*' {
			inBlock = true
			i += 2
			continue
		}
		b.WriteByte(line[i])
		i++
	}
	return b.String(), inBlock
}
