package deodex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odexlab/deodexer/pkg/deodex"
)

func neutral() deodex.SystemLoad {
	return deodex.SystemLoad{CPU: 0.5, Memory: 0.5}
}

// TestDefaultAdvice verifies the no-optimization baseline values.
func TestDefaultAdvice(t *testing.T) {
	advice := deodex.DefaultAdvice()
	assert.Equal(t, deodex.DefaultAdviceMemoryMB, advice.MemoryMB)
	assert.Equal(t, deodex.DefaultAdviceConcurrency, advice.ConcurrencyHint)
	assert.Equal(t, deodex.PriorityNormal, advice.Priority)
	assert.Empty(t, advice.ExtraFlags)
	assert.Equal(t, 1.0, advice.TimeoutMultiplier)
}

// TestAdvise_LargeFile verifies the large-file rule: more memory, high
// priority, tool-level parallelism flags.
func TestAdvise_LargeFile(t *testing.T) {
	opt := deodex.NewOptimizer(nil)
	meta := deodex.FileMetadata{Name: "large.odex", SizeMB: 80, Complexity: deodex.ComplexityMedium}

	advice := opt.Advise(meta, neutral())

	assert.Equal(t, 2048, advice.MemoryMB, "files above the 70MB threshold get the large-file memory budget")
	assert.Equal(t, deodex.PriorityHigh, advice.Priority)
	assert.Equal(t, []string{"-j", "2"}, advice.ExtraFlags)
	assert.Equal(t, 1.0, advice.TimeoutMultiplier)
}

// TestAdvise_SmallFile verifies the small-file memory reduction.
func TestAdvise_SmallFile(t *testing.T) {
	opt := deodex.NewOptimizer(nil)
	meta := deodex.FileMetadata{Name: "small.odex", SizeMB: 5, Complexity: deodex.ComplexityLow}

	advice := opt.Advise(meta, neutral())

	assert.Equal(t, 512, advice.MemoryMB)
	assert.Equal(t, deodex.PriorityNormal, advice.Priority)
	assert.Empty(t, advice.ExtraFlags)
}

// TestAdvise_LoadSafetyOverridesSize verifies that high host load wins over
// the large-file rule: a busy host throttles even huge inputs.
func TestAdvise_LoadSafetyOverridesSize(t *testing.T) {
	opt := deodex.NewOptimizer(nil)
	meta := deodex.FileMetadata{Name: "huge.odex", SizeMB: 200, Complexity: deodex.ComplexityMedium}
	load := deodex.SystemLoad{CPU: 0.9, Memory: 0.5}

	advice := opt.Advise(meta, load)

	assert.Equal(t, 1, advice.ConcurrencyHint, "overloaded host forces serial conversion")
	assert.Equal(t, deodex.PriorityLow, advice.Priority)
	assert.Equal(t, 256, advice.MemoryMB, "load safety replaces the size-based memory budget")
	assert.Equal(t, []string{"-j", "2"}, advice.ExtraFlags, "size-based flags survive the load override")
}

// TestAdvise_IdleHost verifies the idle-host boost.
func TestAdvise_IdleHost(t *testing.T) {
	opt := deodex.NewOptimizer(nil)
	meta := deodex.FileMetadata{Name: "mid.odex", SizeMB: 40, Complexity: deodex.ComplexityMedium}
	load := deodex.SystemLoad{CPU: 0.1, Memory: 0.2}

	advice := opt.Advise(meta, load)

	assert.Equal(t, 4, advice.ConcurrencyHint)
	assert.Equal(t, deodex.PriorityHigh, advice.Priority)
}

// TestAdvise_HighComplexity verifies the timeout doubling and verification
// skip for complex inputs.
func TestAdvise_HighComplexity(t *testing.T) {
	opt := deodex.NewOptimizer(nil)
	meta := deodex.FileMetadata{Name: "complex.odex", SizeMB: 40, Complexity: deodex.ComplexityHigh}

	advice := opt.Advise(meta, neutral())

	assert.Equal(t, 2.0, advice.TimeoutMultiplier)
	assert.Contains(t, advice.ExtraFlags, "--verify-none")
}

// TestAdvise_UnknownComplexityDefaultsToMedium verifies the fallback bucket.
func TestAdvise_UnknownComplexityDefaultsToMedium(t *testing.T) {
	opt := deodex.NewOptimizer(nil)
	meta := deodex.FileMetadata{Name: "odd.odex", SizeMB: 40, Complexity: deodex.Complexity("weird")}

	advice := opt.Advise(meta, neutral())

	assert.Equal(t, 1.0, advice.TimeoutMultiplier, "unknown complexity behaves like medium and leaves the timeout alone")
	assert.NotContains(t, advice.ExtraFlags, "--verify-none")
}

// TestAdvise_ClampsAreUnconditional verifies the final safety clamp pass.
func TestAdvise_ClampsAreUnconditional(t *testing.T) {
	opt := deodex.NewOptimizer(nil)

	for _, meta := range []deodex.FileMetadata{
		{Name: "a.odex", SizeMB: 500, Complexity: deodex.ComplexityHigh},
		{Name: "b.odex", SizeMB: 0.1, Complexity: deodex.ComplexityLow},
	} {
		for _, load := range []deodex.SystemLoad{
			{CPU: 0.0, Memory: 0.0},
			{CPU: 1.0, Memory: 1.0},
		} {
			advice := opt.Advise(meta, load)
			assert.LessOrEqual(t, advice.ConcurrencyHint, deodex.MaxAdviceConcurrency)
			assert.LessOrEqual(t, advice.MemoryMB, deodex.MaxAdviceMemoryMB)
			assert.GreaterOrEqual(t, advice.TimeoutMultiplier, deodex.MinTimeoutMultiplier)
			assert.LessOrEqual(t, advice.TimeoutMultiplier, deodex.MaxTimeoutMultiplier)
		}
	}
}

// TestAdvise_DoesNotMutateSharedState verifies each call builds fresh
// advice, including independent flag slices.
func TestAdvise_DoesNotMutateSharedState(t *testing.T) {
	opt := deodex.NewOptimizer(nil)
	meta := deodex.FileMetadata{Name: "x.odex", SizeMB: 80, Complexity: deodex.ComplexityHigh}

	first := opt.Advise(meta, neutral())
	first.ExtraFlags[0] = "mutated"
	second := opt.Advise(meta, neutral())

	assert.Equal(t, "-j", second.ExtraFlags[0], "advice values must not share backing arrays")
}
