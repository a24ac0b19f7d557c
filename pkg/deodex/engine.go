package deodex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"
)

// indexedResult pairs a ConversionResult with the discovery index of its
// originating task, so the aggregator can normalize completion order back
// to discovery order.
type indexedResult struct {
	index  int
	result ConversionResult
}

// Engine coordinates one batch: discovery, a bounded worker pool, progress
// reporting, and result collection. Workers share nothing mutable; progress
// flows as messages into a single aggregator goroutine that owns the
// completed counter and invokes the caller's hooks.
type Engine struct {
	opts    *Options
	logger  *slog.Logger
	invoker Invoker
	checker EnvChecker
	advisor Advisor
	sampler LoadSampler
	hooks   Hooks
}

// NewEngine validates opts, fills in defaults, and builds an Engine. The
// Logger handler is mandatory; every other dependency has a host-backed
// default.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("%w: Logger implementation (slog.Handler) cannot be nil", ErrConfigValidation)
	}
	if opts.InputDir == "" || opts.OutputDir == "" {
		return nil, fmt.Errorf("%w: input and output directories are required", ErrConfigValidation)
	}
	if opts.ToolPath == "" {
		return nil, fmt.Errorf("%w: tool JAR path is required", ErrConfigValidation)
	}
	if opts.FrameworkDir == "" {
		return nil, fmt.Errorf("%w: framework directory is required", ErrConfigValidation)
	}
	if opts.APILevel <= 0 {
		opts.APILevel = DefaultAPILevel
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = DefaultMaxWorkers
	}
	if opts.MaxWorkers > MaxWorkersLimit {
		return nil, fmt.Errorf("%w: maxWorkers %d exceeds limit %d", ErrConfigValidation, opts.MaxWorkers, MaxWorkersLimit)
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.JavaPath == "" {
		opts.JavaPath = DefaultJavaBinary
	}
	if opts.BaseTimeout <= 0 {
		opts.BaseTimeout = DefaultBaseTimeout
	}
	if opts.EventHooks == nil {
		opts.EventHooks = &NoOpHooks{}
	}

	logger := slog.New(opts.Logger).With(slog.String("component", "engine"))

	invoker := opts.Invoker
	if invoker == nil {
		invoker = NewExecInvoker(opts.JavaPath, opts.ToolPath, opts.FrameworkDir, opts.BaseTimeout, opts.Logger)
		logger.Debug("Invoker not provided, using ExecInvoker")
	}
	checker := opts.EnvChecker
	if checker == nil {
		checker = NewHostEnvChecker(opts.JavaPath, opts.ToolPath, opts.Logger)
		logger.Debug("EnvChecker not provided, using HostEnvChecker")
	}
	sampler := opts.Sampler
	if sampler == nil {
		sampler = NewHostLoadSampler()
	}
	advisor := opts.Advisor
	if advisor == nil {
		advisor = NewOptimizer(opts.Logger)
	}

	return &Engine{
		opts:    &opts,
		logger:  logger,
		invoker: invoker,
		checker: checker,
		advisor: advisor,
		sampler: sampler,
		hooks:   opts.EventHooks,
	}, nil
}

// Run executes the batch and returns one ConversionResult per discovered
// file, in discovery order regardless of completion order.
//
// Environment faults abort before any file is touched and are the only
// fatal condition besides cancellation; per-file faults are folded into
// Failed results. A missing input directory and an empty discovery both
// yield an empty slice with a nil error.
func (e *Engine) Run(ctx context.Context) ([]ConversionResult, error) {
	start := time.Now()
	e.logger.Info("Starting batch",
		slog.String("input", e.opts.InputDir),
		slog.String("output", e.opts.OutputDir),
		slog.Int("workers", e.opts.MaxWorkers),
		slog.Int("apiLevel", e.opts.APILevel),
	)

	if !e.opts.DryRun {
		if err := e.checker.Check(ctx); err != nil {
			e.logger.Error("Environment check failed", slog.String("error", err.Error()))
			return nil, err
		}
	}

	files, err := Discover(e.opts.InputDir, e.opts.Extension, e.opts.ExcludePatterns, e.opts.Logger)
	if err != nil {
		if errors.Is(err, ErrInputPathMissing) {
			e.logger.Warn("Nothing to do", slog.String("input", e.opts.InputDir))
			return []ConversionResult{}, nil
		}
		return nil, err
	}
	if len(files) == 0 {
		e.logger.Warn("No matching files found", slog.String("input", e.opts.InputDir), slog.String("extension", e.opts.Extension))
		return []ConversionResult{}, nil
	}

	// Discovery yields absolute paths; mirror against the absolute root so
	// relative-path math never silently flattens the tree.
	absInput, err := filepath.Abs(e.opts.InputDir)
	if err != nil {
		absInput = e.opts.InputDir
	}

	tasks := make([]ConversionTask, 0, len(files))
	for i, f := range files {
		if hookErr := e.hooks.OnFileDiscovered(f); hookErr != nil {
			e.logger.Warn("OnFileDiscovered hook failed", slog.String("path", f), slog.String("error", hookErr.Error()))
		}
		tasks = append(tasks, ConversionTask{
			Index:      i,
			SourcePath: f,
			OutputDir:  e.mirrorOutputDir(absInput, f),
			APILevel:   e.opts.APILevel,
		})
	}

	results := e.runPool(ctx, tasks)

	report := GenerateReport(results)
	if hookErr := e.hooks.OnBatchComplete(report); hookErr != nil {
		e.logger.Warn("OnBatchComplete hook returned an error", slog.String("error", hookErr.Error()))
	}

	e.logger.Info("Batch finished",
		slog.Duration("duration", time.Since(start)),
		slog.Int("total", report.Summary.TotalFiles),
		slog.Int("succeeded", report.Summary.Succeeded),
		slog.Int("failed", report.Summary.Failed),
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		e.logger.Info("Batch cancelled", slog.String("reason", ctxErr.Error()))
		return results, ctxErr
	}
	return results, nil
}

// runPool fans tasks out across MaxWorkers goroutines and collects exactly
// one result per task. Completion order is unconstrained; the returned
// slice is indexed back to discovery order.
func (e *Engine) runPool(ctx context.Context, tasks []ConversionTask) []ConversionResult {
	taskChan := make(chan ConversionTask)
	resultChan := make(chan indexedResult, e.opts.MaxWorkers)

	var wg sync.WaitGroup
	for i := 0; i < e.opts.MaxWorkers; i++ {
		wg.Add(1)
		go e.worker(ctx, i, &wg, taskChan, resultChan)
	}

	// Single consumer: owns the completed counter and forwards normalized
	// progress events to the caller. No shared mutation anywhere else.
	results := make([]ConversionResult, len(tasks))
	aggregatorDone := make(chan struct{})
	go func() {
		defer close(aggregatorDone)
		completed := 0
		for ir := range resultChan {
			results[ir.index] = ir.result
			completed++
			p := Progress{
				Completed:   completed,
				Total:       len(tasks),
				CurrentFile: ir.result.SourcePath,
				Result:      ir.result,
			}
			if hookErr := e.hooks.OnFileCompleted(p); hookErr != nil {
				e.logger.Warn("OnFileCompleted hook returned an error", slog.String("error", hookErr.Error()))
			}
			if e.opts.Monitor != nil && ir.result.Status == StatusSucceeded {
				e.opts.Monitor.Record("deodex_file",
					time.Duration(ir.result.DurationSeconds*float64(time.Second)),
					ir.result.SizeBytes)
			}
		}
	}()

	// Dispatch in discovery order. On cancellation submission stops and the
	// tail of the task list is reported as Failed so the result sequence
	// still has exactly one entry per discovered file.
dispatch:
	for i, task := range tasks {
		select {
		case taskChan <- task:
		case <-ctx.Done():
			for _, remaining := range tasks[i:] {
				resultChan <- indexedResult{
					index: remaining.Index,
					result: ConversionResult{
						SourcePath:  remaining.SourcePath,
						Status:      StatusFailed,
						ErrorDetail: "batch cancelled before invocation",
					},
				}
			}
			break dispatch
		}
	}
	close(taskChan)

	wg.Wait()
	close(resultChan)
	<-aggregatorDone

	return results
}

// worker consumes tasks until the channel closes, producing exactly one
// result per task. A panic escaping a unit of work is converted to a
// Failed result at this boundary instead of aborting the batch.
func (e *Engine) worker(ctx context.Context, id int, wg *sync.WaitGroup, taskChan <-chan ConversionTask, resultChan chan<- indexedResult) {
	defer wg.Done()
	logger := e.logger.With(slog.Int("workerID", id))
	logger.Debug("Worker started")

	for task := range taskChan {
		resultChan <- indexedResult{index: task.Index, result: e.processTask(ctx, logger, task)}
	}
	logger.Debug("Worker shutting down")
}

// processTask runs one unit of work: analyze, advise, invoke. Recovery at
// this boundary guarantees the one-task-one-result invariant even when
// something deep inside panics.
func (e *Engine) processTask(ctx context.Context, logger *slog.Logger, task ConversionTask) (result ConversionResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered in worker", slog.String("path", task.SourcePath), slog.Any("panicValue", r))
			result = ConversionResult{
				SourcePath:  task.SourcePath,
				Status:      StatusFailed,
				ErrorDetail: fmt.Sprintf("internal fault: %v", r),
			}
		}
	}()

	if e.opts.ValidateInputs {
		if err := ValidateOdexFile(task.SourcePath); err != nil {
			return ConversionResult{
				SourcePath:  task.SourcePath,
				Status:      StatusFailed,
				ErrorDetail: fmt.Sprintf("invalid odex file: %v", err),
			}
		}
	}

	advice := DefaultAdvice()
	if meta, err := AnalyzeFile(task.SourcePath); err == nil {
		advice = e.advisor.Advise(meta, e.sampler.Sample())
	} else {
		logger.Debug("File analysis failed, using default advice", slog.String("path", task.SourcePath), slog.String("error", err.Error()))
	}

	if e.opts.DryRun {
		return ConversionResult{
			SourcePath: task.SourcePath,
			Status:     StatusSucceeded,
			OutputPath: filepath.Join(task.OutputDir, outputStem(task.SourcePath)),
			Metadata:   map[string]string{"dryRun": "true"},
		}
	}

	return e.invoker.Invoke(ctx, task, advice)
}

// mirrorOutputDir maps a discovered file's directory onto the output root,
// preserving the relative subdirectory structure instead of flattening.
func (e *Engine) mirrorOutputDir(absInput, sourcePath string) string {
	rel, err := filepath.Rel(absInput, filepath.Dir(sourcePath))
	if err != nil || rel == "." || rel == "" {
		return e.opts.OutputDir
	}
	return filepath.Join(e.opts.OutputDir, rel)
}
