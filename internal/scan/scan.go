// Package scan implements the top-level scan-session state machine
// (spec.md 4 "State machines": idle -> walking -> parsing -> indexing
// -> writing -> done, with error transitions to aborted) that wires
// together C1-C11, grounded on the teacher's project_initializer.go
// root-detection flow and pipeline_integrator.go stage sequencing.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	"github.com/loctree/loctree/internal/analyze"
	"github.com/loctree/loctree/internal/config"
	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/errs"
	"github.com/loctree/loctree/internal/extract"
	_ "github.com/loctree/loctree/internal/extract/jsx"
	_ "github.com/loctree/loctree/internal/extract/script"
	_ "github.com/loctree/loctree/internal/extract/sysattr"
	"github.com/loctree/loctree/internal/gitprobe"
	"github.com/loctree/loctree/internal/graph"
	"github.com/loctree/loctree/internal/incremental"
	"github.com/loctree/loctree/internal/logx"
	"github.com/loctree/loctree/internal/registry"
	"github.com/loctree/loctree/internal/resolve"
	"github.com/loctree/loctree/internal/snapshot"
	"github.com/loctree/loctree/internal/walker"
)

// State is the scan session's state machine state.
type State string

const (
	StateIdle     State = "idle"
	StateWalking  State = "walking"
	StateParsing  State = "parsing"
	StateIndexing State = "indexing"
	StateWriting  State = "writing"
	StateDone     State = "done"
	StateAborted  State = "aborted"
)

// Options configures one scan invocation.
type Options struct {
	Root           string
	IncludeRuntime bool // spec.md 4.11 scenario 3 "--include-runtime"
	FullRescan     bool // discard incremental reuse (spec.md 4.10)
}

// Result is the outcome of a completed scan.
type Result struct {
	ScanID   string
	State    State
	Snapshot *snapshot.Snapshot
	Findings *snapshot.Findings
	Agent    *snapshot.Agent
	Manifest *snapshot.Manifest
}

// Run executes one full scan session end to end.
func Run(opts Options) (*Result, error) {
	start := time.Now()
	state := StateIdle

	probe, err := gitprobe.Locate(opts.Root)
	if err != nil {
		return nil, errs.New(errs.KindInput, "locate-root", err)
	}

	cfg, err := config.Load(probe.Root)
	if err != nil {
		return nil, errs.New(errs.KindInput, "load-config", err)
	}

	ignores, err := config.NewIgnoreSet(probe.Root)
	if err != nil {
		return nil, errs.New(errs.KindInput, "load-ignore-rules", err)
	}

	store := snapshot.New(probe.Root)
	unlock, err := store.Lock()
	if err != nil {
		return &Result{ScanID: probe.ScanID, State: StateAborted}, err
	}
	defer unlock()

	state = StateWalking
	logx.LogScan("session state -> %s", state)
	candidates, err := walker.Walk(probe.Root, cfg, ignores)
	if err != nil {
		return &Result{State: StateAborted}, errs.New(errs.KindInput, "walk", err)
	}

	state = StateParsing
	logx.LogScan("session state -> %s", state)

	var plan *incremental.Plan
	if !opts.FullRescan {
		plan = buildIncrementalPlan(store, probe.Root, candidates)
	}
	records, extractorFindings, warnings := parseAll(candidates, probe.Root, plan)

	state = StateIndexing
	logx.LogScan("session state -> %s", state)
	aliases := map[string]string{} // workspace alias manifests are not modeled yet; empty map is a no-op
	resolver := resolve.New(pathsOf(records), aliases)
	g := graph.Build(records, resolver)

	reg := registry.Load(probe.Root)
	warnings = append(warnings, reg.Warnings()...)
	isTestFile := func(path string) bool { return walker.IsTestPath(path) }

	dead := analyze.FindDeadExports(g, reg, isTestFile)
	if opts.IncludeRuntime || cfg.Walk.IncludeRuntime {
		dead = analyze.FindDeadExports(g, &registry.Registry{}, isTestFile)
	}
	cycles := analyze.FindCycles(g)
	twins := analyze.FindTwins(g)
	cascades := analyze.FindCascades(g)
	orphans := analyze.FindOrphans(g)
	diamonds := analyze.FindDiamonds(g)

	// Lint findings are produced by the extractor during its tree-sitter
	// parse pass (internal/lint walks the same AST internal/extract/jsx
	// builds) and forwarded here as extractorFindings.
	lintFindings := extractorFindings

	breakingCycles := 0
	for _, c := range cycles {
		if c.Classification == coretypes.CycleBreaking {
			breakingCycles++
		}
	}
	lintHigh := 0
	for _, f := range lintFindings {
		if f.Severity == coretypes.SeverityHigh {
			lintHigh++
		}
	}
	deadHigh := 0
	for _, d := range dead {
		if d.Confidence == coretypes.ConfidenceHigh {
			deadHigh++
		}
	}

	totalLOC := 0
	languages := map[string]bool{}
	for _, f := range g.Files {
		totalLOC += f.LOC
		languages[string(f.Language)] = true
	}
	var langList []string
	for l := range languages {
		langList = append(langList, l)
	}
	sort.Strings(langList)

	meta := snapshot.BuildMetadata([]string{probe.Root}, langList, len(g.Files), totalLOC, time.Since(start), probe.IsGit, probe.Branch, probe.Commit, warnings)

	snap := &snapshot.Snapshot{
		Metadata:        meta,
		Files:           g.Files,
		Edges:           g.Edges,
		ExportIndex:     g.ExportIndex,
		Cycles:          cycles,
		Twins:           twins,
		DuplicateGroups: twins,
		Cascades:        cascades,
		Barrels:         g.Barrels,
		CommandBridges:  g.CommandBridges,
		EventBridges:    g.EventBridges,
		LintFindings:    lintFindings,
		DeadExports:     dead,
		Orphans:         orphans,
		Diamonds:        diamonds,
	}

	findingsOut := &snapshot.Findings{Metadata: meta, Findings: append(append([]coretypes.Finding{}, lintFindings...), diamonds...)}

	health := snapshot.HealthScore(deadHigh, len(g.Files), breakingCycles, len(twins), lintHigh)
	agent := &snapshot.Agent{Metadata: meta, Manifest: "manifest.json"}
	agent.Summary.HealthScore = health
	agent.Summary.Counts.DeadHigh = deadHigh
	agent.Summary.Counts.CyclesBreaking = breakingCycles
	agent.Summary.Counts.Twins = len(twins)
	agent.Summary.Counts.LintHigh = lintHigh
	agent.TopFindings = topFindings(findingsOut.Findings, 50)

	manifest := &snapshot.Manifest{
		SchemaVersion: snapshot.SchemaVersion,
		ScanID:        probe.ScanID,
		Snapshot:      "snapshot.json",
		Findings:      "findings.json",
		Agent:         "agent.json",
	}

	state = StateWriting
	logx.LogScan("session state -> %s", state)
	if err := store.Write(probe.ScanID, snap, findingsOut, agent, manifest); err != nil {
		return &Result{ScanID: probe.ScanID, State: StateAborted}, err
	}

	state = StateDone
	logx.LogScan("session state -> %s", state)
	return &Result{ScanID: probe.ScanID, State: state, Snapshot: snap, Findings: findingsOut, Agent: agent, Manifest: manifest}, nil
}

// buildIncrementalPlan loads the prior snapshot (if any) and diffs it
// against the freshly-walked candidate list (spec.md 4.10 C10). A missing
// or unreadable prior snapshot means every file reparses, which is
// equivalent to a full scan.
func buildIncrementalPlan(store *snapshot.Store, root string, candidates []walker.Candidate) *incremental.Plan {
	prevID, err := store.Latest()
	if err != nil {
		return nil
	}
	prevSnap, err := store.ReadSnapshot(prevID)
	if err != nil {
		return nil
	}

	prior := make(map[string]coretypes.FileRecord, len(prevSnap.Files))
	priorStat := make(map[string]incremental.FileStat, len(prevSnap.Files))
	for _, f := range prevSnap.Files {
		prior[f.Path] = f
		priorStat[f.Path] = incremental.FileStat{Path: f.Path, Size: f.Size, ModTime: f.ModifiedAt}
	}

	current := make([]incremental.FileStat, 0, len(candidates))
	for _, c := range candidates {
		current = append(current, incremental.FileStat{
			Path:    c.Path,
			Size:    c.Size,
			ModTime: time.Unix(0, c.ModTime),
		})
	}

	readHash := func(path string) (uint64, error) {
		return incremental.HashFile(filepath.Join(root, path))
	}

	return incremental.Build(prior, current, priorStat, readHash)
}

func pathsOf(records map[string]coretypes.FileRecord) []string {
	paths := make([]string, 0, len(records))
	for p := range records {
		paths = append(paths, p)
	}
	return paths
}

func topFindings(findings []coretypes.Finding, n int) []coretypes.Finding {
	sorted := append([]coretypes.Finding{}, findings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return severityRank(sorted[i].Severity) > severityRank(sorted[j].Severity)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func severityRank(s coretypes.Severity) int {
	switch s {
	case coretypes.SeverityHigh:
		return 3
	case coretypes.SeverityMedium:
		return 2
	default:
		return 1
	}
}

// parseAll fans out file parsing across a bounded worker pool (spec.md 5
// "work-stealing parallel threads for file parsing"), then folds
// per-file results into a map keyed by canonical path so downstream
// consumers can sort deterministically.
type parseOutcome struct {
	record   coretypes.FileRecord
	findings []coretypes.Finding
}

func parseAll(candidates []walker.Candidate, root string, plan *incremental.Plan) (map[string]coretypes.FileRecord, []coretypes.Finding, []string) {
	const workers = 8
	jobs := make(chan walker.Candidate)
	results := make(chan parseOutcome)
	var warningsMu sync.Mutex
	var warnings []string

	toParse := candidates
	records := make(map[string]coretypes.FileRecord, len(candidates))
	if plan != nil {
		toParse = make([]walker.Candidate, 0, len(candidates))
		reused := 0
		for _, c := range candidates {
			if rec, ok := plan.Reuse[c.Path]; ok {
				records[c.Path] = rec
				reused++
				continue
			}
			toParse = append(toParse, c)
		}
		logx.LogScan("incremental: reusing %d/%d file records", reused, len(candidates))
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				results <- parseOne(c, root, &warningsMu, &warnings)
			}
		}()
	}

	go func() {
		for _, c := range toParse {
			jobs <- c
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var findings []coretypes.Finding
	for out := range results {
		records[out.record.Path] = out.record
		findings = append(findings, out.findings...)
	}
	return records, findings, warnings
}

func parseOne(c walker.Candidate, root string, mu *sync.Mutex, warnings *[]string) parseOutcome {
	rec := coretypes.FileRecord{
		Path:       c.Path,
		Language:   c.Language,
		IsTest:     walker.IsTestPath(c.Path),
		IsConfig:   walker.IsConfigPath(c.Path),
		Oversized:  c.Oversized,
		Size:       c.Size,
		ModifiedAt: time.Unix(0, c.ModTime).UTC(),
	}

	if c.Oversized {
		return parseOutcome{record: rec}
	}

	ex := extract.ForPath(c.Path)
	if ex == nil {
		return parseOutcome{record: rec}
	}

	content, err := os.ReadFile(c.AbsPath)
	if err != nil {
		rec.ParseError = err.Error()
		mu.Lock()
		*warnings = append(*warnings, fmt.Sprintf("%s: %v", c.Path, err))
		mu.Unlock()
		return parseOutcome{record: rec}
	}

	rec.ContentHash = xxhash.Sum64(content)

	res, err := ex.ParseFile(c.Path, content)
	if err != nil {
		rec.ParseError = err.Error()
		return parseOutcome{record: rec}
	}

	rec.LOC = res.LOC
	rec.HasAmbientDeclarations = res.HasAmbientDeclarations
	rec.IsEntryPoint = res.EntryPoint || matchesEntryPoint(c.Path, ex.DefaultEntryPointPatterns())
	rec.Exports = res.Exports
	rec.Imports = res.Imports
	rec.IPCCalls = res.IPCCalls
	rec.IPCHandlers = res.IPCHandlers
	rec.EventEmits = res.EventEmits
	rec.EventListens = res.EventListens
	return parseOutcome{record: rec, findings: res.LintFindings}
}

func matchesEntryPoint(path string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}
