package sampler

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

const bytesPerMB = 1024 * 1024

// System is the production Sampler backed by gopsutil.
type System struct {
	proc *process.Process
}

// NewSystem creates a System sampler bound to the current process.
func NewSystem() (*System, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSampling, err)
	}
	return &System{proc: proc}, nil
}

// Process returns a non-blocking snapshot of the current process.
func (s *System) Process() (ProcessStats, error) {
	cpuPct, err := s.proc.Percent(0)
	if err != nil {
		return ProcessStats{}, fmt.Errorf("%w: process cpu: %v", ErrSampling, err)
	}
	memPct, err := s.proc.MemoryPercent()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("%w: process memory percent: %v", ErrSampling, err)
	}
	memInfo, err := s.proc.MemoryInfo()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("%w: process memory: %v", ErrSampling, err)
	}
	return ProcessStats{
		CPUPercent:    cpuPct,
		MemoryPercent: float64(memPct),
		ResidentMB:    float64(memInfo.RSS) / bytesPerMB,
	}, nil
}

// Memory returns a snapshot of process and system memory.
func (s *System) Memory() (MemoryStats, error) {
	memInfo, err := s.proc.MemoryInfo()
	if err != nil {
		return MemoryStats{}, fmt.Errorf("%w: process memory: %v", ErrSampling, err)
	}
	memPct, err := s.proc.MemoryPercent()
	if err != nil {
		return MemoryStats{}, fmt.Errorf("%w: process memory percent: %v", ErrSampling, err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return MemoryStats{}, fmt.Errorf("%w: system memory: %v", ErrSampling, err)
	}
	return MemoryStats{
		ResidentMB:        float64(memInfo.RSS) / bytesPerMB,
		VirtualMB:         float64(memInfo.VMS) / bytesPerMB,
		Percent:           float64(memPct),
		SystemAvailableMB: float64(vm.Available) / bytesPerMB,
	}, nil
}

// CPU samples host CPU utilisation over interval. A single per-core
// sample is taken; the total is the mean across cores.
func (s *System) CPU(interval time.Duration) (CPUStats, error) {
	perCore, err := cpu.Percent(interval, true)
	if err != nil {
		return CPUStats{}, fmt.Errorf("%w: host cpu: %v", ErrSampling, err)
	}
	var total float64
	for _, pct := range perCore {
		total += pct
	}
	if len(perCore) > 0 {
		total /= float64(len(perCore))
	}
	stats := CPUStats{Percent: total, PerCore: perCore}
	if avg, err := load.Avg(); err == nil {
		stats.LoadAvg = [3]float64{avg.Load1, avg.Load5, avg.Load15}
	}
	return stats, nil
}
