// Package incremental implements C10 (spec.md 4.10): reusing a prior
// snapshot's per-file records when a file's (path, length, mtime, content
// hash) are unchanged, and a debounced fsnotify-based watch mode that
// triggers rescans.
package incremental

import (
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/loctree/loctree/internal/coretypes"
)

// Plan is the outcome of diffing a fresh file listing against a prior
// snapshot: which files can be reused verbatim and which must reparse.
type Plan struct {
	Reuse    map[string]coretypes.FileRecord
	Reparse  []string
}

// FileStat is the (length, mtime) pair cheaply available from a
// directory walk, before reading file content.
type FileStat struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Build compares a fresh candidate list against the prior snapshot's file
// records and returns a Plan. A file is reused only if path, size, and mtime
// all match the prior record, and (if readHash is supplied) its content hash also
// matches — cheap metadata first, hash as the final confirmation
// (spec.md 4.10).
func Build(prior map[string]coretypes.FileRecord, current []FileStat, priorStat map[string]FileStat, readHash func(path string) (uint64, error)) *Plan {
	plan := &Plan{Reuse: map[string]coretypes.FileRecord{}}

	for _, cur := range current {
		priorRec, hasPrior := prior[cur.Path]
		priorMeta, hasMeta := priorStat[cur.Path]
		if !hasPrior || !hasMeta {
			plan.Reparse = append(plan.Reparse, cur.Path)
			continue
		}
		if priorMeta.Size != cur.Size || !priorMeta.ModTime.Equal(cur.ModTime) {
			plan.Reparse = append(plan.Reparse, cur.Path)
			continue
		}

		if readHash != nil {
			hash, err := readHash(cur.Path)
			if err != nil || hash != priorRec.ContentHash {
				plan.Reparse = append(plan.Reparse, cur.Path)
				continue
			}
		}

		plan.Reuse[cur.Path] = priorRec
	}

	return plan
}

// HashFile computes the xxHash64 content hash stored in FileRecord.ContentHash.
func HashFile(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}

// Watcher debounces fsnotify events across a root tree and signals
// Rescan when the debounce window elapses with no further events.
type Watcher struct {
	fsw      *fsnotify.Watcher
	Debounce time.Duration
	Rescan   chan struct{}
	done     chan struct{}
}

// NewWatcher starts watching each directory in dirs (non-recursive
// per-directory add, since fsnotify does not watch subtrees natively).
func NewWatcher(dirs []string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fsw:      fsw,
		Debounce: debounce,
		Rescan:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.Debounce)
			timerC = timer.C
		case <-timerC:
			select {
			case w.Rescan <- struct{}{}:
			default:
			}
			timerC = nil
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
