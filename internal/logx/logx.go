// Package logx is a minimal debug-trace logger in the teacher's style: a
// package-level enable switch, a mutex-guarded writer, and scoped
// Log<Area> helpers. It is deliberately not a structured logging
// framework — the scan's user-visible failure surface is the exit code
// and metadata.warnings (spec.md 7), and this package exists only for
// developer tracing.
package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug can be set at build time via -ldflags.
var EnableDebug = "false"

var (
	mu     sync.Mutex
	writer io.Writer
	file   *os.File
)

// SetOutput sets the writer for trace output; pass nil to disable.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	writer = w
}

// InitLogFile opens a timestamped log file under os.TempDir() and
// directs trace output to it. Returns the path written to.
func InitLogFile() (string, error) {
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Join(os.TempDir(), "loctree-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("scan-%s.log", time.Now().Format("2006-01-02T150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("open log file: %w", err)
	}
	file = f
	writer = f
	return path, nil
}

// Close closes the log file, if one was opened.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		err := file.Close()
		file, writer = nil, nil
		return err
	}
	return nil
}

// Enabled reports whether trace output is currently active.
func Enabled() bool {
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("LOCTREE_DEBUG")
	return v == "1" || v == "true"
}

func output() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return writer
}

// Log writes a scoped trace line when tracing is enabled and a writer is
// configured; it is a no-op otherwise.
func Log(area, format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	w := output()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[%s] "+format+"\n", append([]interface{}{area}, args...)...)
}

func LogScan(format string, args ...interface{})   { Log("SCAN", format, args...) }
func LogParse(format string, args ...interface{})  { Log("PARSE", format, args...) }
func LogGraph(format string, args ...interface{})  { Log("GRAPH", format, args...) }
func LogQuery(format string, args ...interface{})  { Log("QUERY", format, args...) }
func LogCache(format string, args ...interface{})  { Log("CACHE", format, args...) }
