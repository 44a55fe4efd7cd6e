// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// optimize.go — memory reclamation and worker sizing helpers for callers
// managing bulk workloads around the wrappers.

package pulse

import (
	"runtime"
	"runtime/debug"

	"github.com/shirou/gopsutil/v4/cpu"
)

// FreeMemory forces a garbage collection, returns freed heap to the
// OS, and reports the resident-memory delta in megabytes. The delta
// can be negative when the process grew during collection.
func FreeMemory() (freedMB float64, err error) {
	s := defaultSampler()
	before, err := s.Memory()
	if err != nil {
		return 0, err
	}
	runtime.GC()
	debug.FreeOSMemory()
	after, err := s.Memory()
	if err != nil {
		return 0, err
	}
	return before.ResidentMB - after.ResidentMB, nil
}

// OptimalWorkers suggests a worker count for mixed I/O and CPU-bound
// batch work: twice the physical cores, capped at the logical count.
func OptimalWorkers() int {
	physical, err := cpu.Counts(false)
	if err != nil || physical <= 0 {
		return runtime.NumCPU()
	}
	logical, err := cpu.Counts(true)
	if err != nil || logical <= 0 {
		logical = runtime.NumCPU()
	}
	if doubled := physical * 2; doubled < logical {
		return doubled
	}
	return logical
}
