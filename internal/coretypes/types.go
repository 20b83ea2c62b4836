// Package coretypes holds the data model shared by every analysis package:
// file records, exports, import edges, and the derived structures
// (cycles, twins, cascades, bridges, findings) that make up a snapshot.
package coretypes

import "time"

// Common system-wide limits.
const (
	// DefaultMaxFileSize is the size cap above which a file is recorded
	// but not parsed (spec.md 4.2).
	DefaultMaxFileSize = 2 * 1024 * 1024 // 2MB

	// DefaultMaxLineCount is the default line cap carried in the config.
	// The walker applies only the size cap; no scan step compares a
	// file's line count against this value.
	DefaultMaxLineCount = 50000

	// MaxReexportHops bounds re-export chain resolution (spec.md 4.4, 9).
	MaxReexportHops = 32

	// MaxCascadeLength is the length at which a cascade chain is clamped
	// and flagged rather than followed further (spec.md 4.6).
	MaxCascadeLength = 16
)

// FileID identifies a file uniquely within a single snapshot. It is
// assigned in canonical-path sort order so that it is stable across
// runs given the same file set (spec.md I4).
type FileID uint32

// Language tags the three language families the extractors cover.
type Language string

const (
	LangCurlyBrace Language = "curly" // curly-brace web language (JS/TS/JSX)
	LangSystems    Language = "systems"
	LangScript     Language = "script" // whitespace-scoped scripting language
	LangUnknown    Language = "unknown"
)

// ExportKind enumerates the export kinds spec.md 3 names.
type ExportKind string

const (
	ExportFunction  ExportKind = "function"
	ExportClass     ExportKind = "class"
	ExportType      ExportKind = "type"
	ExportConst     ExportKind = "const"
	ExportInterface ExportKind = "interface"
	ExportNamespace ExportKind = "namespace"
	ExportEnum      ExportKind = "enum"
	ExportDefault   ExportKind = "default"
	ExportReexport  ExportKind = "reexport"
)

// Visibility of an export. Most languages in scope only have "public",
// but the systems-language extractor reports restricted items such as
// pub(crate) as "package".
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPackage Visibility = "package"
)

// ImportKind distinguishes the import edge varieties spec.md 3 names.
type ImportKind string

const (
	ImportStatic   ImportKind = "static"
	ImportDynamic  ImportKind = "dynamic"
	ImportTypeOnly ImportKind = "type-only"
	ImportReexport ImportKind = "reexport"
)

// Confidence is the dead-export confidence model (spec.md 4.6).
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceNormal Confidence = "normal"
	ConfidenceLow    Confidence = "low"
)

// Severity of a finding.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// FileRecord is the per-file record described in spec.md 3.
type FileRecord struct {
	Path                   string    `json:"path"`
	Language               Language  `json:"language"`
	LOC                    int       `json:"loc"`
	Size                   int64     `json:"size"`
	ContentHash            uint64    `json:"content_hash"`
	ModifiedAt             time.Time `json:"modified_at"`
	IsTest                 bool      `json:"is_test"`
	IsEntryPoint           bool      `json:"is_entry_point"`
	IsConfig               bool      `json:"is_config"`
	HasAmbientDeclarations bool      `json:"has_ambient_declarations"`
	Oversized              bool      `json:"oversized"` // size/line cap exceeded; recorded but unparsed
	ParseError             string    `json:"parse_error,omitempty"`

	Exports      []Export     `json:"exports"`
	Imports      []ImportEdge `json:"imports"`
	IPCCalls     []IPCCall    `json:"ipc_calls"`
	IPCHandlers  []IPCHandler `json:"ipc_handlers"`
	EventEmits   []EventSite  `json:"event_emits,omitempty"`
	EventListens []EventSite  `json:"event_listens,omitempty"`
}

// Export is a single exported symbol location (spec.md 3).
type Export struct {
	File       FileID     `json:"-"`
	Name       string     `json:"name"`
	Kind       ExportKind `json:"kind"`
	Line       int        `json:"line"`
	Visibility Visibility `json:"visibility"`
	IsReexport bool       `json:"is_reexport"`
	ReexportOf string     `json:"reexport_of,omitempty"` // specifier the export re-exports
	Dead       bool       `json:"dead"`
	ExportType string     `json:"export_type,omitempty"` // "default" | "named" | "wildcard"
}

// ImportEdge is a single import statement (spec.md 3).
type ImportEdge struct {
	From       FileID     `json:"-"`
	Specifier  string     `json:"specifier"`
	Resolved   string     `json:"resolved"` // file path or "external:<specifier>"
	ResolvedID FileID     `json:"-"`
	External   bool       `json:"-"`
	Kind       ImportKind `json:"kind"`
	Line       int        `json:"line"`
	Names      []string   `json:"names,omitempty"` // imported symbol names, empty = wildcard/side-effect

	// HopAmbiguous mirrors resolve.Result.HopAmbiguous for this specifier's
	// resolution: true when extension inference matched more than one
	// candidate file and a similarity tie-break had to pick one (spec.md 9).
	HopAmbiguous bool `json:"-"`
}

// IPCCall is a frontend call site naming a backend command.
type IPCCall struct {
	Name string `json:"name"`
	File FileID `json:"-"`
	Line int    `json:"line"`
}

// IPCHandler is a backend handler definition.
type IPCHandler struct {
	Name         string `json:"name"` // wire name after rename resolution
	RawSymbol    string `json:"raw_symbol"`
	File         FileID `json:"-"`
	Line         int    `json:"line"`
	RenameApplied string `json:"rename_applied,omitempty"`
}

// EventSite is an emit or listen site for the event bridge analysis.
type EventSite struct {
	Name string `json:"name"`
	File FileID `json:"-"`
	Line int    `json:"line"`
}

// Edge is a resolved graph edge between two files.
type Edge struct {
	From FileID     `json:"from"`
	To   string     `json:"to"` // file path, or "external:<specifier>"
	Kind ImportKind `json:"kind"`
}

// CycleClassification enumerates cycle kinds (spec.md 3).
type CycleClassification string

const (
	CycleBreaking   CycleClassification = "breaking"
	CycleStructural CycleClassification = "structural"
	CycleDiamond    CycleClassification = "diamond"
)

// Cycle is one strongly connected component of the internal import graph,
// over edges of every kind. Files lists its members sorted by path, not
// in the order a closed walk would visit them.
type Cycle struct {
	Files          []string            `json:"files"`
	Classification CycleClassification `json:"classification"`
}

// TwinCluster groups files that export the same symbol name and kind.
type TwinCluster struct {
	Symbol    string     `json:"symbol"`
	Kind      ExportKind `json:"kind"`
	Files     []string   `json:"files"`
	Canonical string     `json:"canonical"`
}

// Cascade is a chain of pure re-exports of the same symbol.
type Cascade struct {
	Symbol  string   `json:"symbol"`
	Chain   []string `json:"chain"`
	Clamped bool     `json:"clamped"`
}

// BridgeStatus is the state of a command bridge pairing.
type BridgeStatus string

const (
	BridgeOK             BridgeStatus = "ok"
	BridgeMissingHandler BridgeStatus = "missing_handler"
	BridgeUnusedHandler  BridgeStatus = "unused_handler"
)

// CommandBridge pairs a frontend call name with its backend handler.
type CommandBridge struct {
	Name           string       `json:"name"`
	FrontendSites  []SiteRef    `json:"frontend_sites"`
	BackendHandler *SiteRef     `json:"backend_handler,omitempty"`
	RenameMap      string       `json:"rename_map,omitempty"`
	Status         BridgeStatus `json:"status"`
}

// EventBridgeStatus is the state of an event emit/listen pairing.
type EventBridgeStatus string

const (
	EventOK     EventBridgeStatus = "ok"
	EventOrphan EventBridgeStatus = "orphan" // emitted, no listener
	EventGhost  EventBridgeStatus = "ghost"  // listened, no emitter
)

// EventBridge pairs event emit sites with listen sites by name.
type EventBridge struct {
	Name    string            `json:"name"`
	Emits   []SiteRef         `json:"emits"`
	Listens []SiteRef         `json:"listens"`
	Status  EventBridgeStatus `json:"status"`
}

// SiteRef is a (file, line) location reference used in bridge records.
type SiteRef struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Finding is a reportable issue (spec.md 3).
type Finding struct {
	Kind        string     `json:"kind"`
	Severity    Severity   `json:"severity"`
	File        string     `json:"file"`
	Line        int        `json:"line"`
	Symbol      string     `json:"symbol,omitempty"`
	Rationale   string     `json:"rationale"`
	Remediation string     `json:"remediation"`
	Confidence  Confidence `json:"confidence,omitempty"`
}

// DeadExport is a Finding-shaped record specialized for the dead-export
// report (spec.md 6 dead_exports[]).
type DeadExport struct {
	File       string     `json:"file"`
	Line       int        `json:"line"`
	Symbol     string     `json:"symbol"`
	Kind       ExportKind `json:"kind"`
	Confidence Confidence `json:"confidence"`
	Rationale  string     `json:"rationale"`
}

// BarrelEntry records a directory's resolved barrel file and its
// re-export fan-out count.
type BarrelEntry struct {
	Directory  string `json:"directory"`
	BarrelFile string `json:"barrel_file"`
	FanOut     int    `json:"fan_out"`
}
