package deodex

import "time"

// Status defines the terminal states of a single conversion unit.
type Status string

// Constants representing the defined conversion statuses.
const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Complexity is the tri-level heuristic bucket assigned to an input file
// by AnalyzeFile. It only influences optimizer advice, never correctness.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Priority is the advisory thread/process priority hint carried by
// OptimizationAdvice.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ExportFormat defines the serialization formats accepted by ExportReport.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ConversionTask describes one unit of work handed to the worker pool.
// Tasks are immutable once built and are consumed exactly once by an
// Invoker. Index records the discovery position so the final result
// sequence can be normalized back to discovery order.
type ConversionTask struct {
	Index      int    `json:"index"`
	SourcePath string `json:"sourcePath"`
	OutputDir  string `json:"outputDir"`
	APILevel   int    `json:"apiLevel"`
}

// ConversionResult is the outcome of exactly one ConversionTask. It is
// produced once by the invoking worker and owned by the engine afterwards;
// nothing mutates it after creation.
type ConversionResult struct {
	SourcePath      string            `json:"sourcePath"`
	Status          Status            `json:"status"`
	OutputPath      string            `json:"outputPath,omitempty"`
	ErrorDetail     string            `json:"errorDetail,omitempty"`
	DurationSeconds float64           `json:"durationSeconds"`
	SizeBytes       int64             `json:"sizeBytes"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// FileMetadata is the lightweight per-file analysis fed to the optimizer.
type FileMetadata struct {
	Path          string     `json:"path"`
	Name          string     `json:"name"`
	SizeBytes     int64      `json:"sizeBytes"`
	SizeMB        float64    `json:"sizeMB"`
	Complexity    Complexity `json:"complexity"`
	EstimatedTime float64    `json:"estimatedTimeSeconds"`
	SHA256        string     `json:"sha256,omitempty"`
}

// SystemLoad is a point-in-time snapshot of host utilization, both values
// normalized to [0,1].
type SystemLoad struct {
	CPU    float64 `json:"cpu"`
	Memory float64 `json:"memory"`
}

// OptimizationAdvice carries advisory subprocess tuning for a single task.
// Advice is constructed fresh per call and never mutated afterwards, so
// concurrent workers can never observe each other's flags.
type OptimizationAdvice struct {
	MemoryMB          int      `json:"memoryMB"`
	ConcurrencyHint   int      `json:"concurrencyHint"`
	Priority          Priority `json:"priority"`
	ExtraFlags        []string `json:"extraFlags,omitempty"`
	TimeoutMultiplier float64  `json:"timeoutMultiplier"`
}

// Progress is delivered to Hooks.OnFileCompleted once per finished unit of
// work. Completed counts both successes and failures.
type Progress struct {
	Completed   int
	Total       int
	CurrentFile string
	Result      ConversionResult
}

// BatchReport aggregates a completed batch. It is derived read-only data,
// built once from the full result sequence.
type BatchReport struct {
	Summary     ReportSummary   `json:"summary"`
	Results     []ResultRecord  `json:"results"`
	Errors      []FailureRecord `json:"errors"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// ReportSummary contains the aggregated statistics for a batch.
type ReportSummary struct {
	TotalFiles      int     `json:"totalFiles"`
	Succeeded       int     `json:"succeeded"`
	Failed          int     `json:"failed"`
	SuccessRate     float64 `json:"successRate"`
	TotalDuration   float64 `json:"totalDurationSeconds"`
	TotalSizeBytes  int64   `json:"totalSizeBytes"`
	AverageDuration float64 `json:"averageDurationSeconds"`
}

// ResultRecord is the per-file line item inside a BatchReport, ordered by
// discovery order.
type ResultRecord struct {
	File            string  `json:"file"`
	Status          Status  `json:"status"`
	OutputPath      string  `json:"outputPath,omitempty"`
	DurationSeconds float64 `json:"durationSeconds"`
	Error           string  `json:"error,omitempty"`
}

// FailureRecord summarizes one failed file for the report's error list.
type FailureRecord struct {
	File  string `json:"file"`
	Error string `json:"error"`
}
