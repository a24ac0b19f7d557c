// Package cli orchestrates the main application flow after configuration
// loading: engine setup, progress display, report export, history, and the
// final terminal summary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/odexlab/deodexer/internal/cli/config"
	"github.com/odexlab/deodexer/internal/cli/hooks"
	"github.com/odexlab/deodexer/internal/history"
	"github.com/odexlab/deodexer/pkg/deodex"
)

// ErrPartialFailure indicates the batch ran to completion but one or more
// conversions failed. main uses it to select the exit code without
// re-printing the summary.
var ErrPartialFailure = errors.New("some conversions failed")

// Run executes a full deodexing batch according to the validated settings.
// It wires the presentation hooks into the engine, exports the report, and
// records the batch in history.
func Run(ctx context.Context, settings config.Settings, logger *slog.Logger) error {
	opts := settings.Options

	monitor := deodex.NewPerformanceMonitor(0, nil)
	opts.Monitor = monitor

	var bar hooks.ProgressBar
	if !settings.NoProgress && term.IsTerminal(int(os.Stderr.Fd())) {
		bar = progressbar.NewOptions(0,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("deodexing"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
	}
	opts.EventHooks = hooks.NewCLIHooks(logger, bar, opts.Verbose)

	engine, err := deodex.NewEngine(opts)
	if err != nil {
		return fmt.Errorf("engine setup failed: %w", err)
	}

	startedAt := time.Now()
	results, runErr := engine.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("Batch execution failed", slog.Any("error", runErr))
		return runErr
	}

	report := deodex.GenerateReport(results)

	if len(results) == 0 {
		logger.Info("No files found to process", slog.String("inputDir", opts.InputDir))
		printSummary(report, startedAt, runErr != nil)
		return runErr
	}

	reportPath, expErr := deodex.ExportReport(report, deodex.ExportFormat(settings.ReportFormat), settings.ReportDir)
	if expErr != nil {
		logger.Error("Report export failed", slog.Any("error", expErr))
	} else {
		logger.Info("Report written", slog.String("path", reportPath))
	}

	if !settings.NoHistory {
		saveHistory(ctx, settings.HistoryPath, logger, startedAt, report, results)
	}

	printSummary(report, startedAt, runErr != nil)
	if expErr != nil {
		return expErr
	}
	if runErr != nil {
		return runErr
	}
	if report.Summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrPartialFailure, report.Summary.Failed, report.Summary.TotalFiles)
	}
	return nil
}

// saveHistory persists the batch outcome. History is best effort: a storage
// fault is logged, never fatal to the batch.
func saveHistory(ctx context.Context, path string, logger *slog.Logger, startedAt time.Time, report deodex.BatchReport, results []deodex.ConversionResult) {
	if path == "" {
		return
	}
	store, err := history.Open(path, logger.Handler())
	if err != nil {
		logger.Warn("History store unavailable", slog.String("path", path), slog.Any("error", err))
		return
	}
	defer store.Close()

	// The run context may already be cancelled; the write still proceeds.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	batchID, err := store.SaveBatch(saveCtx, startedAt, report, results)
	if err != nil {
		logger.Warn("Failed to record batch history", slog.Any("error", err))
		return
	}
	logger.Debug("Batch recorded", slog.String("batchId", batchID))
}

// printSummary writes the human-facing batch summary to stdout.
func printSummary(report deodex.BatchReport, startedAt time.Time, cancelled bool) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Println()
	bold.Println("Deodexing Summary")
	fmt.Printf("  Total files:   %d\n", report.Summary.TotalFiles)
	green.Printf("  Succeeded:     %d\n", report.Summary.Succeeded)
	if report.Summary.Failed > 0 {
		red.Printf("  Failed:        %d\n", report.Summary.Failed)
	} else {
		fmt.Printf("  Failed:        %d\n", report.Summary.Failed)
	}
	fmt.Printf("  Success rate:  %.1f%%\n", report.Summary.SuccessRate)
	fmt.Printf("  Elapsed:       %s\n", time.Since(startedAt).Round(time.Millisecond))
	if cancelled {
		red.Println("  Batch was cancelled before all files were processed.")
	}
	for _, f := range report.Errors {
		red.Printf("  ✗ %s: %s\n", f.File, f.Error)
	}
}
