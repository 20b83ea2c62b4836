// Package errs defines the typed error taxonomy used across the scanner
// (spec.md 7): input, parse, resolution, invariant, lock, write, and
// registry errors, each carrying enough context for the caller to decide
// whether the scan continues or aborts.
package errs

import (
	"fmt"
	"time"
)

// Kind classifies a scan-time error.
type Kind string

const (
	KindInput     Kind = "input"
	KindParse     Kind = "parse"
	KindResolve   Kind = "resolve"
	KindInvariant Kind = "invariant"
	KindLock      Kind = "lock"
	KindWrite     Kind = "write"
	KindRegistry  Kind = "registry"
)

// ScanError is the common error shape. Recoverable errors let the scan
// continue past the offending file or edge; non-recoverable errors
// abort the scan (spec.md 7: invariant violations and write errors).
type ScanError struct {
	Kind        Kind
	Path        string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// New creates a ScanError for the given kind and operation.
func New(kind Kind, op string, err error) *ScanError {
	return &ScanError{
		Kind:        kind,
		Operation:   op,
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: kind != KindInvariant && kind != KindWrite && kind != KindLock,
	}
}

// WithPath attaches a file path for context.
func (e *ScanError) WithPath(path string) *ScanError {
	e.Path = path
	return e
}

// WithRecoverable overrides the default recoverability for this kind.
func (e *ScanError) WithRecoverable(r bool) *ScanError {
	e.Recoverable = r
	return e
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Kind, e.Operation, e.Path, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Kind, e.Operation, e.Underlying)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *ScanError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable reports whether the scan may continue past this error.
func (e *ScanError) IsRecoverable() bool {
	return e.Recoverable
}

// ScanLocked is returned when a concurrent scan already holds the
// snapshot directory lock (spec.md 5, 7).
var ScanLocked = New(KindLock, "acquire-lock", fmt.Errorf("scan_locked")).WithRecoverable(false)
