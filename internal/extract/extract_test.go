package extract

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/loctree/loctree/internal/coretypes"
)

// TestMain guards the RWMutex-guarded registry (Register/ForPath/
// ForLanguage/Languages), which internal/scan's parseAll worker pool
// dispatches into concurrently, against goroutine leaks.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeExtractor struct {
	lang coretypes.Language
	ext  string
}

func (f fakeExtractor) Language() coretypes.Language { return f.lang }
func (f fakeExtractor) ParseFile(path string, content []byte) (*Result, error) {
	return &Result{}, nil
}
func (f fakeExtractor) FileMatches(path string) bool {
	return len(path) >= len(f.ext) && path[len(path)-len(f.ext):] == f.ext
}
func (f fakeExtractor) DefaultEntryPointPatterns() []string { return nil }

func TestForPath_ConcurrentDispatch(t *testing.T) {
	Register(fakeExtractor{lang: "fake-a", ext: ".fakea"})
	Register(fakeExtractor{lang: "fake-b", ext: ".fakeb"})

	paths := make([]string, 0, 200)
	for i := 0; i < 100; i++ {
		paths = append(paths, "x.fakea", "x.fakeb")
	}

	var wg sync.WaitGroup
	results := make([]coretypes.Language, len(paths))
	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			e := ForPath(p)
			if e != nil {
				results[i] = e.Language()
			}
		}(i, p)
	}
	wg.Wait()

	for i, p := range paths {
		if p == "x.fakea" {
			assert.Equal(t, coretypes.Language("fake-a"), results[i])
		} else {
			assert.Equal(t, coretypes.Language("fake-b"), results[i])
		}
	}
}

func TestLanguages_IncludesRegistered(t *testing.T) {
	Register(fakeExtractor{lang: "fake-c", ext: ".fakec"})
	langs := Languages()
	found := false
	for _, l := range langs {
		if l == coretypes.Language("fake-c") {
			found = true
		}
	}
	assert.True(t, found)
}
