// Package hooks bridges engine progress events to the CLI's presentation
// layer: a progress bar on interactive terminals, structured logs otherwise.
package hooks

import (
	"log/slog"
	"sync"

	"github.com/odexlab/deodexer/pkg/deodex"
)

// ProgressBar is the minimal surface needed from the progress bar
// implementation, decoupled so tests can substitute a recorder.
type ProgressBar interface {
	ChangeMax(max int)
	Add(num int) error
	Describe(description string)
	Close() error
}

// NoOpProgressBar provides a default null implementation.
type NoOpProgressBar struct{}

// ChangeMax implements ProgressBar.
func (n *NoOpProgressBar) ChangeMax(max int) {}

// Add implements ProgressBar.
func (n *NoOpProgressBar) Add(num int) error { return nil }

// Describe implements ProgressBar.
func (n *NoOpProgressBar) Describe(description string) {}

// Close implements ProgressBar.
func (n *NoOpProgressBar) Close() error { return nil }

// CLIHooks implements deodex.Hooks. The engine delivers all completion
// events from a single goroutine, but discovery events may interleave, so
// bar access stays behind a mutex.
type CLIHooks struct {
	logger     *slog.Logger
	bar        ProgressBar
	verbose    bool
	mu         sync.Mutex
	discovered int
}

// NewCLIHooks creates the bridge. Pass nil for bar to disable progress
// display entirely.
func NewCLIHooks(logger *slog.Logger, bar ProgressBar, verbose bool) *CLIHooks {
	if bar == nil {
		bar = &NoOpProgressBar{}
	}
	return &CLIHooks{logger: logger, bar: bar, verbose: verbose}
}

// OnFileDiscovered implements deodex.Hooks: it grows the progress bar's
// denominator as discovery proceeds.
func (h *CLIHooks) OnFileDiscovered(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.discovered++
	h.bar.ChangeMax(h.discovered)
	if h.verbose {
		h.logger.Debug("Discovered", slog.String("path", path))
	}
	return nil
}

// OnFileCompleted implements deodex.Hooks: one tick per finished unit,
// success or failure alike.
func (h *CLIHooks) OnFileCompleted(p deodex.Progress) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bar.Describe(p.CurrentFile)
	if err := h.bar.Add(1); err != nil {
		h.logger.Debug("Progress bar update failed", slog.String("error", err.Error()))
	}
	if p.Result.Status == deodex.StatusFailed {
		h.logger.Warn("Conversion failed",
			slog.String("file", p.Result.SourcePath),
			slog.String("error", p.Result.ErrorDetail),
		)
	} else if h.verbose {
		h.logger.Debug("Conversion succeeded",
			slog.String("file", p.Result.SourcePath),
			slog.Float64("seconds", p.Result.DurationSeconds),
		)
	}
	return nil
}

// OnBatchComplete implements deodex.Hooks: it closes the bar so the final
// summary prints on a clean line.
func (h *CLIHooks) OnBatchComplete(report deodex.BatchReport) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.bar.Close(); err != nil {
		h.logger.Debug("Progress bar close failed", slog.String("error", err.Error()))
	}
	return nil
}
