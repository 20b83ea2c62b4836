// Package lint implements C7 (spec.md 4.7): race/memory/type-safety
// rules over the curly-brace language's tree-sitter AST, independent of
// the structural analyzer but walking the same parsed tree internal/
// extract/jsx already built. Findings are appended to the findings
// stream, with severity downgraded to low for test files (spec.md 4.7).
package lint

import (
	"regexp"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/loctree/loctree/internal/coretypes"
)

var cancelTokenRe = regexp.MustCompile(`\b(AbortController|CancelToken|signal\s*:|cancelled|isMounted)\b`)
var containerCtorRe = regexp.MustCompile(`\bnew\s+(Map|Set|Array)\s*\(`)
var evictionMarkerRe = regexp.MustCompile(`(?i)evict|lru|max.?size`)
var anyTypeRe = regexp.MustCompile(`\bany\b`)
var suppressionRe = regexp.MustCompile(`@ts-ignore|@ts-nocheck|eslint-disable`)
var testPathRe = regexp.MustCompile(`(\.test\.|\.spec\.|__tests__|/tests?/)`)

var lifecycleHookNames = map[string]bool{"useEffect": true, "useLayoutEffect": true}
var lifecycleMethodNames = map[string]bool{"componentDidMount": true, "componentDidUpdate": true, "ngOnInit": true}
var subscriptionCallNames = map[string]bool{"setInterval": true, "setTimeout": true, "addEventListener": true}
var globalListenerObjects = map[string]bool{"window": true, "document": true, "global": true}

var functionScopeKinds = map[string]bool{
	"function_declaration": true,
	"function_expression":  true,
	"arrow_function":       true,
	"method_definition":    true,
	"class_declaration":    true,
	"class_body":           true,
}

// Lint walks a curly-brace language file's parsed tree and returns its
// findings (spec.md 4.7 rule set). root is the same tree-sitter root
// node internal/extract/jsx parsed for structural extraction. isTestFile
// lets the caller reuse the same test-path classification the walker
// already computed.
func Lint(path string, root *tree_sitter.Node, content []byte, isTestFile bool) []coretypes.Finding {
	l := &linter{path: path, content: content, isTestFile: isTestFile}

	l.walkSubtree(root, l.visitHookSite)
	l.walkSubtree(root, l.visitTypeSafety)
	l.walkModuleLevel(root)

	sort.Slice(l.findings, func(i, j int) bool { return l.findings[i].Line < l.findings[j].Line })
	return l.findings
}

type linter struct {
	path       string
	content    []byte
	isTestFile bool
	findings   []coretypes.Finding
}

func (l *linter) text(n *tree_sitter.Node) string {
	return string(l.content[n.StartByte():n.EndByte()])
}

func (l *linter) line(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

func (l *linter) finding(kind string, severity coretypes.Severity, line int, rationale, remediation string) coretypes.Finding {
	if l.isTestFile || testPathRe.MatchString(l.path) {
		severity = coretypes.SeverityLow
	}
	return coretypes.Finding{
		Kind:        kind,
		Severity:    severity,
		File:        l.path,
		Line:        line,
		Rationale:   rationale,
		Remediation: remediation,
	}
}

// walkSubtree visits every named node in the tree, depth-first.
func (l *linter) walkSubtree(n *tree_sitter.Node, visit func(*tree_sitter.Node)) {
	if n == nil {
		return
	}
	visit(n)
	for i := uint(0); i < n.NamedChildCount(); i++ {
		l.walkSubtree(n.NamedChild(i), visit)
	}
}

// visitHookSite recognizes a lifecycle hook call or class lifecycle
// method and hands its callback/body off for cleanup analysis.
func (l *linter) visitHookSite(n *tree_sitter.Node) {
	switch n.Kind() {
	case "call_expression":
		fn := n.ChildByFieldName("function")
		if fn == nil || fn.Kind() != "identifier" || !lifecycleHookNames[l.text(fn)] {
			return
		}
		args := n.ChildByFieldName("arguments")
		if args == nil {
			return
		}
		cb := hookCallback(args)
		if cb == nil {
			return
		}
		body := cb.ChildByFieldName("body")
		if body == nil {
			return
		}
		l.analyzeHook(l.line(n), cb, body)

	case "method_definition":
		name := n.ChildByFieldName("name")
		if name == nil || !lifecycleMethodNames[l.text(name)] {
			return
		}
		body := n.ChildByFieldName("body")
		if body == nil {
			return
		}
		l.analyzeHook(l.line(n), nil, body)
	}
}

// hookCallback returns the first function-like argument in a call's
// argument list.
func hookCallback(args *tree_sitter.Node) *tree_sitter.Node {
	for i := uint(0); i < args.NamedChildCount(); i++ {
		c := args.NamedChild(i)
		if c == nil {
			continue
		}
		if c.Kind() == "arrow_function" || c.Kind() == "function_expression" {
			return c
		}
	}
	return nil
}

// analyzeHook inspects a lifecycle hook's body for subscriptions without
// cleanup and async effects without a cancellation guard. asyncNode is
// the arrow/function node carrying an async keyword, or nil for a class
// method (which can't itself be prefixed async and is judged solely on
// its body).
func (l *linter) analyzeHook(hookLine int, asyncNode, body *tree_sitter.Node) {
	isAsync := asyncNode != nil && strings.HasPrefix(l.text(asyncNode), "async")
	bodyText := l.text(body)
	hasCancelToken := cancelTokenRe.MatchString(bodyText)
	hasAwaitOrThen := strings.Contains(bodyText, "await ") || strings.Contains(bodyText, ".then(")

	var subscriptionLines []int
	l.walkSubtree(body, func(n *tree_sitter.Node) {
		if n.Kind() != "call_expression" {
			return
		}
		if name, ok := l.calleeName(n); ok && subscriptionCallNames[name] {
			subscriptionLines = append(subscriptionLines, l.line(n))
		}
	})

	hasCleanup := false
	l.walkSubtree(body, func(n *tree_sitter.Node) {
		if hasCleanup || n.Kind() != "return_statement" {
			return
		}
		if n.NamedChildCount() == 0 {
			return
		}
		ret := n.NamedChild(0)
		if ret != nil && (ret.Kind() == "arrow_function" || ret.Kind() == "function_expression") {
			hasCleanup = true
		}
	})

	if hasCleanup || hasCancelToken {
		return
	}

	for _, line := range subscriptionLines {
		l.findings = append(l.findings, l.finding("race_missing_cleanup", coretypes.SeverityMedium, line,
			"subscription/timer started inside a lifecycle hook with no observed cleanup or cancellation token",
			"return a cleanup function that clears the timer/listener, or guard with a cancellation token"))
	}

	hasAsyncEffect := isAsync || hasAwaitOrThen || len(subscriptionLines) > 0
	if hasAsyncEffect {
		l.findings = append(l.findings, l.finding("race_async_without_cleanup", coretypes.SeverityHigh, hookLine,
			"async side-effectful callback inside a lifecycle hook without a cancellation token or cleanup",
			"add a cleanup return or an AbortController/cancellation flag checked before committing state"))
	}
}

// calleeName returns a call's plain identifier name, or its member
// property name for a `.foo(...)` call (e.g. "subscribe" out of
// `obs.subscribe(...)`).
func (l *linter) calleeName(call *tree_sitter.Node) (string, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return "", false
	}
	switch fn.Kind() {
	case "identifier":
		return l.text(fn), true
	case "member_expression":
		prop := fn.ChildByFieldName("property")
		if prop == nil {
			return "", false
		}
		return "." + l.text(prop), true
	}
	return "", false
}

// walkModuleLevel inspects only true top-level (Program) statements for
// memory-risk patterns, bounded to avoid descending into function or
// class bodies (spec.md 4.7 "module-level").
func (l *linter) walkModuleLevel(root *tree_sitter.Node) {
	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		if stmt == nil {
			continue
		}
		l.checkModuleContainer(root, i, stmt)
		l.checkModuleInterval(root, stmt)
		l.checkModuleListener(root, stmt)
	}
}

func (l *linter) checkModuleContainer(root *tree_sitter.Node, idx uint, stmt *tree_sitter.Node) {
	if stmt.Kind() != "lexical_declaration" && stmt.Kind() != "variable_declaration" {
		return
	}
	for i := uint(0); i < stmt.NamedChildCount(); i++ {
		decl := stmt.NamedChild(i)
		if decl == nil || decl.Kind() != "variable_declarator" {
			continue
		}
		value := decl.ChildByFieldName("value")
		if value == nil {
			continue
		}
		isContainer := (value.Kind() == "new_expression" && containerCtorRe.MatchString(l.text(value))) ||
			value.Kind() == "array" || value.Kind() == "object"
		if !isContainer {
			continue
		}
		if l.hasNearbyEvictionComment(root, idx) {
			continue
		}
		l.findings = append(l.findings, l.finding("memory_unbounded_container", coretypes.SeverityMedium, l.line(stmt),
			"module-level container with no observed eviction",
			"bound its size or document/implement an eviction policy"))
	}
}

func (l *linter) checkModuleInterval(root, stmt *tree_sitter.Node) {
	call := l.findTopLevelCall(stmt, "setInterval")
	if call == nil {
		return
	}
	if l.containsClear(root) {
		return
	}
	l.findings = append(l.findings, l.finding("memory_global_interval", coretypes.SeverityHigh, l.line(call),
		"module-level interval with no corresponding clearInterval",
		"clear the interval on module teardown or move it inside a disposable scope"))
}

func (l *linter) checkModuleListener(root, stmt *tree_sitter.Node) {
	call := l.findTopLevelMemberCall(stmt, globalListenerObjects, "addEventListener")
	if call == nil {
		return
	}
	if l.containsClear(root) {
		return
	}
	l.findings = append(l.findings, l.finding("memory_global_listener", coretypes.SeverityMedium, l.line(call),
		"module-level event listener with no observed removal",
		"remove the listener on teardown or scope it to a component lifecycle"))
}

// containsClear reports whether any clearInterval/clearTimeout/
// removeEventListener/.unsubscribe call exists anywhere in the file,
// mirroring the whole-file "any clear anywhere counts" heuristic.
func (l *linter) containsClear(root *tree_sitter.Node) bool {
	found := false
	l.walkSubtree(root, func(n *tree_sitter.Node) {
		if found || n.Kind() != "call_expression" {
			return
		}
		name, ok := l.calleeName(n)
		if !ok {
			return
		}
		switch name {
		case "clearInterval", "clearTimeout", ".unsubscribe", ".removeEventListener":
			found = true
		}
	})
	return found
}

// findTopLevelCall searches stmt for a call to name, not descending into
// nested function/class scopes.
func (l *linter) findTopLevelCall(n *tree_sitter.Node, name string) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	if n.Kind() == "call_expression" {
		if fn := n.ChildByFieldName("function"); fn != nil && fn.Kind() == "identifier" && l.text(fn) == name {
			return n
		}
	}
	if functionScopeKinds[n.Kind()] {
		return nil
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if found := l.findTopLevelCall(n.NamedChild(i), name); found != nil {
			return found
		}
	}
	return nil
}

// findTopLevelMemberCall searches stmt for a call `obj.property(...)`
// where obj is one of objects, not descending into nested function/class
// scopes.
func (l *linter) findTopLevelMemberCall(n *tree_sitter.Node, objects map[string]bool, property string) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	if n.Kind() == "call_expression" {
		if fn := n.ChildByFieldName("function"); fn != nil && fn.Kind() == "member_expression" {
			obj := fn.ChildByFieldName("object")
			prop := fn.ChildByFieldName("property")
			if obj != nil && prop != nil && objects[l.text(obj)] && l.text(prop) == property {
				return n
			}
		}
	}
	if functionScopeKinds[n.Kind()] {
		return nil
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if found := l.findTopLevelMemberCall(n.NamedChild(i), objects, property); found != nil {
			return found
		}
	}
	return nil
}

// hasNearbyEvictionComment checks the named children of root immediately
// preceding index idx for an eviction-policy marker comment.
func (l *linter) hasNearbyEvictionComment(root *tree_sitter.Node, idx uint) bool {
	for j := int(idx) - 1; j >= 0 && j >= int(idx)-2; j-- {
		sib := root.NamedChild(uint(j))
		if sib == nil || sib.Kind() != "comment" {
			break
		}
		if evictionMarkerRe.MatchString(l.text(sib)) {
			return true
		}
	}
	return false
}

// visitTypeSafety flags explicit any-equivalent type annotations and
// type-check/lint suppression directives.
func (l *linter) visitTypeSafety(n *tree_sitter.Node) {
	switch n.Kind() {
	case "predefined_type":
		if anyTypeRe.MatchString(l.text(n)) {
			l.findings = append(l.findings, l.finding("type_safety_any", coretypes.SeverityLow, l.line(n),
				"explicit any-equivalent annotation",
				"replace with a precise type or a generic parameter"))
		}
	case "comment":
		if suppressionRe.MatchString(l.text(n)) {
			l.findings = append(l.findings, l.finding("type_safety_suppression", coretypes.SeverityMedium, l.line(n),
				"type-check or lint suppression directive",
				"resolve the underlying issue instead of suppressing it"))
		}
	}
}
