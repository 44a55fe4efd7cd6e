// Package sampler queries process and host CPU/memory counters.
//
// Sampler is the interface consumed by the metrics registry and the
// threshold guard; System is the gopsutil-backed production
// implementation and Static is a controllable test double.
package sampler

import (
	"errors"
	"time"
)

// ErrSampling indicates that an OS or process introspection query failed.
var ErrSampling = errors.New("pulse: resource sampling failed")

// ProcessStats is a non-blocking snapshot of the current process.
type ProcessStats struct {
	// CPUPercent is the process CPU utilisation since the previous
	// Process call (0 on the first call).
	CPUPercent float64
	// MemoryPercent is resident memory as a percentage of system memory.
	MemoryPercent float64
	// ResidentMB is the resident set size in megabytes.
	ResidentMB float64
}

// MemoryStats is a snapshot of process and system memory.
type MemoryStats struct {
	ResidentMB        float64
	VirtualMB         float64
	Percent           float64
	SystemAvailableMB float64
}

// CPUStats is a snapshot of host CPU utilisation.
type CPUStats struct {
	// Percent is total utilisation across all cores.
	Percent float64
	// PerCore holds one utilisation value per logical core.
	PerCore []float64
	// LoadAvg is the 1/5/15-minute load average, zero-filled on
	// platforms without the concept.
	LoadAvg [3]float64
}

// Sampler reads process and host resource counters. Implementations
// must be safe for concurrent use.
type Sampler interface {
	// Process returns a non-blocking snapshot of the current process.
	Process() (ProcessStats, error)
	// Memory returns a snapshot of process and system memory.
	Memory() (MemoryStats, error)
	// CPU samples host CPU utilisation, blocking for approximately
	// interval while doing so.
	CPU(interval time.Duration) (CPUStats, error)
}
