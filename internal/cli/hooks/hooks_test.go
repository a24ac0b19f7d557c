package hooks_test

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odexlab/deodexer/internal/cli/hooks"
	"github.com/odexlab/deodexer/pkg/deodex"
)

// recordingBar captures progress bar interactions for assertions.
type recordingBar struct {
	mu        sync.Mutex
	max       int
	added     int
	described []string
	closed    bool
}

func (r *recordingBar) ChangeMax(max int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.max = max
}

func (r *recordingBar) Add(num int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.added += num
	return nil
}

func (r *recordingBar) Describe(description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.described = append(r.described, description)
}

func (r *recordingBar) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestCLIHooks_ProgressFlow verifies the discovery/completion/close
// lifecycle against the bar.
func TestCLIHooks_ProgressFlow(t *testing.T) {
	bar := &recordingBar{}
	h := hooks.NewCLIHooks(quietLogger(), bar, false)

	assert.NoError(t, h.OnFileDiscovered("/in/a.odex"))
	assert.NoError(t, h.OnFileDiscovered("/in/b.odex"))
	assert.Equal(t, 2, bar.max, "the denominator grows with discovery")

	p := deodex.Progress{
		Completed:   1,
		Total:       2,
		CurrentFile: "/in/a.odex",
		Result:      deodex.ConversionResult{SourcePath: "/in/a.odex", Status: deodex.StatusSucceeded},
	}
	assert.NoError(t, h.OnFileCompleted(p))
	assert.Equal(t, 1, bar.added)
	assert.Equal(t, []string{"/in/a.odex"}, bar.described)

	assert.NoError(t, h.OnBatchComplete(deodex.BatchReport{}))
	assert.True(t, bar.closed)
}

// TestCLIHooks_FailureLogging verifies failed conversions produce a warning
// even when not verbose.
func TestCLIHooks_FailureLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	h := hooks.NewCLIHooks(logger, nil, false)

	p := deodex.Progress{
		Completed:   1,
		Total:       1,
		CurrentFile: "/in/bad.odex",
		Result: deodex.ConversionResult{
			SourcePath:  "/in/bad.odex",
			Status:      deodex.StatusFailed,
			ErrorDetail: "bad input",
		},
	}
	assert.NoError(t, h.OnFileCompleted(p))
	assert.Contains(t, buf.String(), "Conversion failed")
	assert.Contains(t, buf.String(), "bad input")
}

// TestCLIHooks_NilBar verifies the no-op default keeps all hooks safe.
func TestCLIHooks_NilBar(t *testing.T) {
	h := hooks.NewCLIHooks(quietLogger(), nil, true)
	assert.NoError(t, h.OnFileDiscovered("/in/a.odex"))
	assert.NoError(t, h.OnFileCompleted(deodex.Progress{Result: deodex.ConversionResult{Status: deodex.StatusSucceeded}}))
	assert.NoError(t, h.OnBatchComplete(deodex.BatchReport{}))
}

// TestCLIHooks_ConcurrentDiscovery exercises the mutex under parallel
// discovery callbacks.
func TestCLIHooks_ConcurrentDiscovery(t *testing.T) {
	bar := &recordingBar{}
	h := hooks.NewCLIHooks(quietLogger(), bar, false)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.OnFileDiscovered("/in/x.odex")
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, bar.max)
}
