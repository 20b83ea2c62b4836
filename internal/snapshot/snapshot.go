// Package snapshot implements the C9 artifact store (spec.md 4.9, 6):
// writing snapshot.json, findings.json, agent.json, and manifest.json
// under <repo>/.loctree/<scan_id>/, with staged-then-renamed atomic
// writes, an advisory directory lock, and a "latest" pointer.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/loctree/loctree/internal/coretypes"
	"github.com/loctree/loctree/internal/errs"
)

const SchemaVersion = "1.0.0"

// Metadata is the shared header every artifact begins with.
type Metadata struct {
	SchemaVersion  string   `json:"schema_version"`
	GeneratedAt    string   `json:"generated_at"`
	Roots          []string `json:"roots"`
	Languages      []string `json:"languages"`
	FileCount      int      `json:"file_count"`
	TotalLOC       int      `json:"total_loc"`
	ScanDurationMs int64    `json:"scan_duration_ms"`
	GitRepo        bool     `json:"git_repo,omitempty"`
	GitBranch      string   `json:"git_branch,omitempty"`
	GitCommit      string   `json:"git_commit,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}

// Snapshot is snapshot.json (spec.md 6 "Snapshot fields").
type Snapshot struct {
	Metadata      Metadata                     `json:"metadata"`
	Files         []coretypes.FileRecord       `json:"files"`
	Edges         []coretypes.Edge             `json:"edges"`
	ExportIndex   map[string][]coretypes.FileID `json:"export_index"`
	Cycles        []coretypes.Cycle            `json:"cycles"`
	Twins         []coretypes.TwinCluster      `json:"twins"`
	DuplicateGroups []coretypes.TwinCluster    `json:"duplicate_groups"` // deprecated alias of Twins (spec.md 9)
	Cascades      []coretypes.Cascade          `json:"cascades"`
	Barrels       []coretypes.BarrelEntry      `json:"barrels"`
	CommandBridges []coretypes.CommandBridge   `json:"command_bridges"`
	EventBridges  []coretypes.EventBridge      `json:"event_bridges"`
	LintFindings  []coretypes.Finding          `json:"lint_findings"`
	DeadExports   []coretypes.DeadExport       `json:"dead_exports"`
	Orphans       []string                     `json:"orphans"`
	Diamonds      []coretypes.Finding          `json:"diamonds,omitempty"`
}

// Findings is findings.json: the union of lint findings and derived
// structural issues in a single reportable stream.
type Findings struct {
	Metadata Metadata            `json:"metadata"`
	Findings []coretypes.Finding `json:"findings"`
}

// Agent is agent.json: a compact bundle for AI consumption.
type Agent struct {
	Metadata Metadata `json:"metadata"`
	Summary  struct {
		HealthScore int `json:"health_score"`
		Counts      struct {
			DeadHigh       int `json:"dead_high"`
			CyclesBreaking int `json:"cycles_breaking"`
			Twins          int `json:"twins"`
			LintHigh       int `json:"lint_high"`
		} `json:"counts"`
	} `json:"summary"`
	TopFindings []coretypes.Finding `json:"top_findings"`
	Manifest    string              `json:"manifest"`
}

// Manifest is manifest.json: points at the other three artifacts and
// declares the schema version.
type Manifest struct {
	SchemaVersion string `json:"schema_version"`
	ScanID        string `json:"scan_id"`
	Snapshot      string `json:"snapshot"`
	Findings      string `json:"findings"`
	Agent         string `json:"agent"`
}

// HealthScore implements spec.md 6's exact formula.
func HealthScore(deadHigh, fileCount, cyclesBreaking, twins, lintHigh int) int {
	if fileCount == 0 {
		fileCount = 1
	}
	score := 100.0
	score -= clamp(5*float64(deadHigh)/float64(fileCount)*1000, 0, 40)
	score -= clamp(10*float64(cyclesBreaking), 0, 25)
	score -= clamp(0.5*float64(twins), 0, 15)
	score -= clamp(float64(lintHigh), 0, 20)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score + 0.5)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Store manages the on-disk artifact directory for one repository.
type Store struct {
	Root string // <repo>/.loctree
}

func New(repoRoot string) *Store {
	return &Store{Root: filepath.Join(repoRoot, ".loctree")}
}

func (s *Store) scanDir(scanID string) string {
	return filepath.Join(s.Root, scanID)
}

// Lock acquires the advisory per-directory scan lock (spec.md 5): a
// single lock file created with O_EXCL so only one scan writes at a
// time. Returns errs.ScanLocked if another scan holds it.
func (s *Store) Lock() (func(), error) {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return nil, errs.New(errs.KindLock, "mkdir", err).WithPath(s.Root)
	}
	lockPath := filepath.Join(s.Root, ".scan.lock")
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, errs.ScanLocked
		}
		return nil, errs.New(errs.KindLock, "acquire-lock", err).WithPath(lockPath)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()
	return func() { os.Remove(lockPath) }, nil
}

// Write stages every artifact into a temp directory under Root, then
// atomically renames it into place as <scan_id>/, and finally rewrites
// the "latest" pointer (spec.md 4.9, 5).
func (s *Store) Write(scanID string, snap *Snapshot, findings *Findings, agent *Agent, manifest *Manifest) error {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return errs.New(errs.KindWrite, "mkdir", err).WithPath(s.Root)
	}

	staging, err := os.MkdirTemp(s.Root, ".staging-*")
	if err != nil {
		return errs.New(errs.KindWrite, "mkdir-staging", err).WithPath(s.Root)
	}
	defer os.RemoveAll(staging)

	if err := writeJSON(filepath.Join(staging, "snapshot.json"), snap); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(staging, "findings.json"), findings); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(staging, "agent.json"), agent); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(staging, "manifest.json"), manifest); err != nil {
		return err
	}

	dest := s.scanDir(scanID)
	if err := os.RemoveAll(dest); err != nil {
		return errs.New(errs.KindWrite, "clear-destination", err).WithPath(dest)
	}
	if err := os.Rename(staging, dest); err != nil {
		return errs.New(errs.KindWrite, "rename", err).WithPath(dest)
	}

	latestPath := filepath.Join(s.Root, "latest")
	if err := os.WriteFile(latestPath, []byte(scanID), 0o644); err != nil {
		return errs.New(errs.KindWrite, "write-latest", err).WithPath(latestPath)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errs.New(errs.KindWrite, "marshal", err).WithPath(path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.New(errs.KindWrite, "write", err).WithPath(path)
	}
	return nil
}

// Latest resolves the scan_id the "latest" pointer names.
func (s *Store) Latest() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Root, "latest"))
	if err != nil {
		return "", errs.New(errs.KindInput, "read-latest", err)
	}
	return string(data), nil
}

// ReadSnapshot loads snapshot.json for a given scan_id (or "latest").
func (s *Store) ReadSnapshot(scanID string) (*Snapshot, error) {
	if scanID == "" || scanID == "latest" {
		var err error
		scanID, err = s.Latest()
		if err != nil {
			return nil, err
		}
	}
	path := filepath.Join(s.scanDir(scanID), "snapshot.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.New(errs.KindInput, "read-snapshot", err).WithPath(path)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errs.New(errs.KindInput, "parse-snapshot", err).WithPath(path)
	}
	return &snap, nil
}

// BuildMetadata stamps a Metadata header; the generation time is taken
// from time.Now() in UTC at the moment of the call.
func BuildMetadata(roots, languages []string, fileCount, totalLOC int, duration time.Duration, gitRepo bool, branch, commit string, warnings []string) Metadata {
	langs := append([]string(nil), languages...)
	sort.Strings(langs)
	return Metadata{
		SchemaVersion:  SchemaVersion,
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		Roots:          roots,
		Languages:      langs,
		FileCount:      fileCount,
		TotalLOC:       totalLOC,
		ScanDurationMs: duration.Milliseconds(),
		GitRepo:        gitRepo,
		GitBranch:      branch,
		GitCommit:      commit,
		Warnings:       warnings,
	}
}
