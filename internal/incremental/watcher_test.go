package incremental

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

// TestMain ensures no goroutine started by a Watcher in this package's
// tests survives past the test that started it.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcher_CloseStopsGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher([]string{t.TempDir()}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
