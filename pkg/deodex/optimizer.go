package deodex

import (
	"io"
	"log/slog"
)

// complexityWeights buckets the tri-level complexity estimate into the
// numeric feature the tuning rules compare against.
var complexityWeights = map[Complexity]float64{
	ComplexityLow:    0.2,
	ComplexityMedium: 0.5,
	ComplexityHigh:   0.8,
}

// DefaultAdvice returns the "no optimization" baseline: empty flags,
// multiplier 1.0, fixed concurrency hint. Every internal optimizer failure
// falls back to exactly this value.
func DefaultAdvice() OptimizationAdvice {
	return OptimizationAdvice{
		MemoryMB:          DefaultAdviceMemoryMB,
		ConcurrencyHint:   DefaultAdviceConcurrency,
		Priority:          PriorityNormal,
		ExtraFlags:        nil,
		TimeoutMultiplier: 1.0,
	}
}

// Optimizer derives per-task subprocess tuning from file metadata and a
// host load snapshot. It is stateless and safe for concurrent use; each
// call constructs a fresh OptimizationAdvice value.
type Optimizer struct {
	logger *slog.Logger
}

// NewOptimizer creates an Optimizer logging through loggerHandler.
func NewOptimizer(loggerHandler slog.Handler) *Optimizer {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	return &Optimizer{
		logger: slog.New(loggerHandler).With(slog.String("component", "optimizer")),
	}
}

// Advise implements Advisor. It never fails: the rules below only perturb
// flags and timeouts, and invocation proceeds regardless of the outcome.
func (o *Optimizer) Advise(meta FileMetadata, load SystemLoad) OptimizationAdvice {
	advice := DefaultAdvice()

	sizeNorm := clamp(meta.SizeMB/100.0, 0, 1)
	complexity, ok := complexityWeights[meta.Complexity]
	if !ok {
		complexity = complexityWeights[ComplexityMedium]
	}

	if sizeNorm > 0.7 {
		advice.MemoryMB = 2048
		advice.Priority = PriorityHigh
		advice.ExtraFlags = append(advice.ExtraFlags, "-j", "2")
	} else if sizeNorm < 0.2 {
		advice.MemoryMB = 512
		advice.Priority = PriorityNormal
	}

	// Load safety takes precedence over the size-based hints above.
	if load.CPU > 0.8 || load.Memory > 0.8 {
		advice.ConcurrencyHint = 1
		advice.Priority = PriorityLow
		advice.MemoryMB = 256
	} else if load.CPU < 0.3 && load.Memory < 0.3 {
		advice.ConcurrencyHint = 4
		advice.Priority = PriorityHigh
	}

	if complexity > 0.7 {
		advice.TimeoutMultiplier *= 2.0
		advice.ExtraFlags = append(advice.ExtraFlags, "--verify-none")
	}

	// Safety clamp pass, applied last and unconditionally.
	if advice.ConcurrencyHint > MaxAdviceConcurrency {
		advice.ConcurrencyHint = MaxAdviceConcurrency
	}
	if advice.MemoryMB > MaxAdviceMemoryMB {
		advice.MemoryMB = MaxAdviceMemoryMB
	}
	advice.TimeoutMultiplier = clamp(advice.TimeoutMultiplier, MinTimeoutMultiplier, MaxTimeoutMultiplier)

	o.logger.Debug("Advice computed",
		slog.String("file", meta.Name),
		slog.Int("memoryMB", advice.MemoryMB),
		slog.Int("concurrency", advice.ConcurrencyHint),
		slog.Float64("timeoutMultiplier", advice.TimeoutMultiplier),
	)
	return advice
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
