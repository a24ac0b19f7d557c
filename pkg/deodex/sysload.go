package deodex

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// neutralLoad is reported whenever the host cannot be sampled, so the
// optimizer's load rules degrade to their middle ground instead of failing.
var neutralLoad = SystemLoad{CPU: 0.5, Memory: 0.5}

// HostLoadSampler reads CPU and memory utilization from the running host.
type HostLoadSampler struct{}

// NewHostLoadSampler returns a sampler backed by gopsutil.
func NewHostLoadSampler() *HostLoadSampler {
	return &HostLoadSampler{}
}

// Sample implements LoadSampler. Sampling errors are swallowed: advice is
// advisory, so a neutral snapshot is always preferable to a fault.
func (s *HostLoadSampler) Sample() SystemLoad {
	load := neutralLoad

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		load.CPU = percents[0] / 100.0
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		load.Memory = vm.UsedPercent / 100.0
	}
	return load
}

// StaticLoadSampler always reports a fixed snapshot. Used in tests and for
// dry runs where touching host counters is pointless.
type StaticLoadSampler struct {
	Load SystemLoad
}

// Sample implements LoadSampler.
func (s *StaticLoadSampler) Sample() SystemLoad { return s.Load }
