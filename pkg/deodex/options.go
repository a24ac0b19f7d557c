package deodex

import (
	"context"
	"log/slog"
	"time"
)

// Hooks defines callbacks for status updates during a batch run.
// Implementations MUST be thread-safe in principle, although the engine
// only ever invokes them from its single aggregator goroutine; callers that
// need to touch single-threaded state (a UI event loop, for example) are
// responsible for redirecting onto the right execution context.
type Hooks interface {
	OnFileDiscovered(path string) error
	OnFileCompleted(p Progress) error
	OnBatchComplete(report BatchReport) error
}

// NoOpHooks provides a default, do-nothing implementation of Hooks.
type NoOpHooks struct{}

// OnFileDiscovered implements Hooks. It performs no action.
func (h *NoOpHooks) OnFileDiscovered(path string) error { return nil }

// OnFileCompleted implements Hooks. It performs no action.
func (h *NoOpHooks) OnFileCompleted(p Progress) error { return nil }

// OnBatchComplete implements Hooks. It performs no action.
func (h *NoOpHooks) OnBatchComplete(report BatchReport) error { return nil }

// Invoker executes one conversion task. Invoke never returns an error:
// every failure mode is folded into the returned ConversionResult so the
// pool boundary has a single union type to deal with.
type Invoker interface {
	Invoke(ctx context.Context, task ConversionTask, advice OptimizationAdvice) ConversionResult
}

// EnvChecker verifies the external prerequisites of a batch (Java runtime,
// tool JAR) before any task is submitted.
type EnvChecker interface {
	Check(ctx context.Context) error
}

// LoadSampler produces a point-in-time host utilization snapshot. A sampler
// must not fail: if the host cannot be read it reports a neutral 0.5/0.5.
type LoadSampler interface {
	Sample() SystemLoad
}

// Advisor derives per-task subprocess tuning. A wrong answer perturbs
// flags and timeouts but never correctness.
type Advisor interface {
	Advise(meta FileMetadata, load SystemLoad) OptimizationAdvice
}

// Options holds all configuration for an engine run.
type Options struct {
	// --- Core paths ---
	InputDir     string `mapstructure:"inputDir"`     // Required: directory scanned for odex files
	OutputDir    string `mapstructure:"outputDir"`    // Required: root of the mirrored output tree
	FrameworkDir string `mapstructure:"frameworkDir"` // Required: platform framework directory passed to the tool
	ToolPath     string `mapstructure:"toolPath"`     // Required: path to the baksmali JAR

	// --- Invocation ---
	JavaPath    string        `mapstructure:"javaPath"`   // Java binary (default "java")
	APILevel    int           `mapstructure:"apiLevel"`   // Target Android API level
	BaseTimeout time.Duration `mapstructure:"-"`          // Per-invocation timeout before advice scaling
	Extension   string        `mapstructure:"extension"`  // Discovery extension (default ".odex")
	MaxWorkers  int           `mapstructure:"maxWorkers"` // Pool size (0 = DefaultMaxWorkers)

	// ExcludePatterns are glob patterns pruning discovery. Bare names match
	// any path segment, patterns with separators match the relative path.
	ExcludePatterns []string `mapstructure:"exclude"`

	// --- Behavior ---
	DryRun         bool `mapstructure:"dryRun"`   // Discover and report only, skip invocation
	ValidateInputs bool `mapstructure:"validate"` // Reject inputs failing odex validation before invoking
	Verbose        bool `mapstructure:"verbose"`

	// --- Injected dependencies ---
	Logger     slog.Handler        `mapstructure:"-"` // Required: logging backend
	EventHooks Hooks               `mapstructure:"-"` // Optional: progress callbacks
	Invoker    Invoker             `mapstructure:"-"` // Optional: conversion implementation (testing)
	EnvChecker EnvChecker          `mapstructure:"-"` // Optional: prerequisite checks (testing)
	Advisor    Advisor             `mapstructure:"-"` // Optional: parameter optimizer
	Sampler    LoadSampler         `mapstructure:"-"` // Optional: host load source
	Monitor    *PerformanceMonitor `mapstructure:"-"` // Optional: operation metrics sink
}
