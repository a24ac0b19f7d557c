package deodex

import (
	"sync"
	"time"
)

// defaultMetricHistory bounds the per-operation sample ring.
const defaultMetricHistory = 1000

// metricSample is one recorded operation.
type metricSample struct {
	when       time.Time
	duration   time.Duration
	sizeBytes  int64
	throughput float64 // MB/s, 0 when size or duration is unknown
}

// OperationStats summarizes all retained samples of one operation.
type OperationStats struct {
	Operation     string  `json:"operation"`
	Count         int     `json:"count"`
	AvgDuration   float64 `json:"avgDurationSeconds"`
	MinDuration   float64 `json:"minDurationSeconds"`
	MaxDuration   float64 `json:"maxDurationSeconds"`
	TotalDuration float64 `json:"totalDurationSeconds"`
	AvgThroughput float64 `json:"avgThroughputMBps,omitempty"`
	MaxThroughput float64 `json:"maxThroughputMBps,omitempty"`
}

// PerformanceMonitor collects bounded operation metrics and exposes host
// load snapshots. All methods are safe for concurrent use.
type PerformanceMonitor struct {
	mu      sync.Mutex
	history int
	samples map[string][]metricSample
	sampler LoadSampler
}

// NewPerformanceMonitor creates a monitor retaining up to history samples
// per operation (defaultMetricHistory when <= 0). sampler may be nil, in
// which case Snapshot reports the neutral load.
func NewPerformanceMonitor(history int, sampler LoadSampler) *PerformanceMonitor {
	if history <= 0 {
		history = defaultMetricHistory
	}
	return &PerformanceMonitor{
		history: history,
		samples: make(map[string][]metricSample),
		sampler: sampler,
	}
}

// Record logs one completed operation. sizeBytes may be zero when the
// operation has no meaningful payload.
func (m *PerformanceMonitor) Record(operation string, duration time.Duration, sizeBytes int64) {
	s := metricSample{when: time.Now(), duration: duration, sizeBytes: sizeBytes}
	if sizeBytes > 0 && duration > 0 {
		s.throughput = (float64(sizeBytes) / (1024 * 1024)) / duration.Seconds()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	ring := append(m.samples[operation], s)
	if len(ring) > m.history {
		ring = ring[len(ring)-m.history:]
	}
	m.samples[operation] = ring
}

// OperationStats aggregates the retained samples for one operation. A
// never-recorded operation yields a zero Count and no other fields.
func (m *PerformanceMonitor) OperationStats(operation string) OperationStats {
	m.mu.Lock()
	ring := m.samples[operation]
	samples := make([]metricSample, len(ring))
	copy(samples, ring)
	m.mu.Unlock()

	stats := OperationStats{Operation: operation, Count: len(samples)}
	if len(samples) == 0 {
		return stats
	}

	stats.MinDuration = samples[0].duration.Seconds()
	var throughputs []float64
	for _, s := range samples {
		d := s.duration.Seconds()
		stats.TotalDuration += d
		if d < stats.MinDuration {
			stats.MinDuration = d
		}
		if d > stats.MaxDuration {
			stats.MaxDuration = d
		}
		if s.throughput > 0 {
			throughputs = append(throughputs, s.throughput)
		}
	}
	stats.AvgDuration = stats.TotalDuration / float64(len(samples))

	for _, t := range throughputs {
		stats.AvgThroughput += t
		if t > stats.MaxThroughput {
			stats.MaxThroughput = t
		}
	}
	if len(throughputs) > 0 {
		stats.AvgThroughput /= float64(len(throughputs))
	}
	return stats
}

// Snapshot returns the current host load via the configured sampler.
func (m *PerformanceMonitor) Snapshot() SystemLoad {
	if m.sampler == nil {
		return neutralLoad
	}
	return m.sampler.Sample()
}

// Reset discards all retained samples.
func (m *PerformanceMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = make(map[string][]metricSample)
}
