package deodex

import "time"

// Constants defining default values for engine options. These back the
// viper defaults registered during configuration loading.
const (
	// DefaultAPILevel is the Android API level passed to baksmali when the
	// caller does not override it.
	DefaultAPILevel = 29
	// DefaultMaxWorkers bounds the worker pool when unset.
	DefaultMaxWorkers = 4
	// MaxWorkersLimit is the hard upper bound on the pool size.
	MaxWorkersLimit = 16
	// DefaultExtension selects the files discovery dispatches. Matching is
	// case-sensitive, following baksmali's own convention.
	DefaultExtension = ".odex"
	// DefaultJavaBinary is the runtime used to launch the tool JAR.
	DefaultJavaBinary = "java"
	// DefaultBaseTimeout is the per-invocation timeout before the advice
	// multiplier is applied.
	DefaultBaseTimeout = 5 * time.Minute
)

// Optimizer baselines and safety clamps, mirrored from the original
// parameter tuning policy.
const (
	// DefaultAdviceMemoryMB is the baseline subprocess memory hint.
	DefaultAdviceMemoryMB = 1024
	// DefaultAdviceConcurrency is the baseline concurrency hint.
	DefaultAdviceConcurrency = 4
	// MaxAdviceConcurrency caps the concurrency hint.
	MaxAdviceConcurrency = 8
	// MaxAdviceMemoryMB caps the memory hint at 4 GB-equivalent.
	MaxAdviceMemoryMB = 4096
	// MinTimeoutMultiplier and MaxTimeoutMultiplier bound the timeout scale.
	MinTimeoutMultiplier = 0.5
	MaxTimeoutMultiplier = 5.0
)

// File analysis thresholds used by AnalyzeFile to bucket complexity.
const (
	// HighComplexityMB and MediumComplexityMB split the size buckets.
	HighComplexityMB   = 50.0
	MediumComplexityMB = 10.0
	// MinOdexSizeBytes is the smallest plausible odex payload; anything
	// smaller fails validation.
	MinOdexSizeBytes = 1024
)

// ReportFilePrefix is the stem of exported report artifacts; the export
// timestamp and format extension are appended.
const ReportFilePrefix = "deodex_report_"

// reportTimestampLayout embeds the generation time in exported filenames.
const reportTimestampLayout = "20060102_150405"
