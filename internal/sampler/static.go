package sampler

import (
	"sync"
	"time"
)

// Static is a controllable Sampler for tests. Zero value returns zero
// snapshots; set Err to make every query fail.
type Static struct {
	mu sync.Mutex

	Proc    ProcessStats
	Mem     MemoryStats
	CPUStat CPUStats
	Err     error

	// MemorySeq, when non-empty, supplies successive Memory results
	// before falling back to Mem.
	MemorySeq []MemoryStats
}

// Process returns the configured process snapshot.
func (s *Static) Process() (ProcessStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return ProcessStats{}, s.Err
	}
	return s.Proc, nil
}

// Memory returns the next queued snapshot, or Mem once the queue is drained.
func (s *Static) Memory() (MemoryStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return MemoryStats{}, s.Err
	}
	if len(s.MemorySeq) > 0 {
		next := s.MemorySeq[0]
		s.MemorySeq = s.MemorySeq[1:]
		return next, nil
	}
	return s.Mem, nil
}

// CPU returns the configured host snapshot without blocking.
func (s *Static) CPU(time.Duration) (CPUStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return CPUStats{}, s.Err
	}
	return s.CPUStat, nil
}
