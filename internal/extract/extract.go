// Package extract defines the uniform extraction contract every language
// implementation satisfies (spec.md 4.3, 9 "Inheritance and dynamic
// dispatch in extractors"): a value implementing Language, ParseFile,
// FileMatches, and DefaultEntryPointPatterns, registered once at a well-known
// registry and dispatched by language tag rather than by subclassing.
package extract

import (
	"fmt"
	"sort"
	"sync"

	"github.com/loctree/loctree/internal/coretypes"
)

// Result is everything a single-file parse produces: exports, imports,
// IPC call/handler sites, ambient-declaration flag, lint findings, and
// an entry-point hint (spec.md 4.3).
type Result struct {
	Exports                []coretypes.Export
	Imports                []coretypes.ImportEdge
	IPCCalls               []coretypes.IPCCall
	IPCHandlers            []coretypes.IPCHandler
	EventEmits             []coretypes.EventSite
	EventListens           []coretypes.EventSite
	HasAmbientDeclarations bool
	EntryPoint             bool
	LintFindings           []coretypes.Finding
	LOC                    int
}

// Extractor is the capability set every language implementation provides.
type Extractor interface {
	// Language returns the language tag this extractor handles.
	Language() coretypes.Language

	// ParseFile extracts structural information from a single file's
	// bytes. path is the canonical, slash-separated path relative to the
	// repository root (used for entry-point pattern matching).
	ParseFile(path string, content []byte) (*Result, error)

	// FileMatches reports whether path's extension belongs to this
	// extractor, used by the registry to dispatch by language tag.
	FileMatches(path string) bool

	// DefaultEntryPointPatterns returns the framework "runtime" file glob
	// patterns this language recognizes (route handlers, loaders,
	// workers, service workers, plugin config — spec.md 4.3).
	DefaultEntryPointPatterns() []string
}

var (
	mu       sync.RWMutex
	registry = map[coretypes.Language]Extractor{}
)

// Register adds an extractor implementation to the well-known registry.
// Adding a language means calling Register once at init time; callers
// never subclass an existing extractor (spec.md 9).
func Register(e Extractor) {
	mu.Lock()
	defer mu.Unlock()
	registry[e.Language()] = e
}

// ForPath returns the extractor whose FileMatches accepts path, or nil.
func ForPath(path string) Extractor {
	mu.RLock()
	defer mu.RUnlock()
	for _, e := range registry {
		if e.FileMatches(path) {
			return e
		}
	}
	return nil
}

// ForLanguage returns the registered extractor for a language tag.
func ForLanguage(lang coretypes.Language) (Extractor, error) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registry[lang]
	if !ok {
		return nil, fmt.Errorf("no extractor registered for language %q", lang)
	}
	return e, nil
}

// Languages returns the set of registered language tags, sorted for
// deterministic metadata.languages output.
func Languages() []coretypes.Language {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]coretypes.Language, 0, len(registry))
	for l := range registry {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
