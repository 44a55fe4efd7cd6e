// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// registry.go — thread-safe per-operation store of timing/resource samples
// and cache hit/miss counters, with aggregated reporting.

package pulse

import (
	"math"
	"sync"
	"time"

	"github.com/AndrewDonelson/pulse/internal/sampler"
)

// maxSamplesPerOperation bounds the sample history kept per operation;
// the oldest samples are dropped on overflow.
const maxSamplesPerOperation = 100

// Sample is one recorded measurement for a wrapped operation.
// Immutable once created.
type Sample struct {
	CPUPercent    float64
	MemoryPercent float64
	MemoryMB      float64
	ExecutionTime time.Duration
	CallIndex     int64
	CacheHits     int64
	CacheMisses   int64
}

// OperationReport is the derived per-operation statistics block
// returned by Registry.Report.
type OperationReport struct {
	AvgCPUPercent       float64 `json:"avg_cpu_percent"`
	AvgMemoryMB         float64 `json:"avg_memory_mb"`
	AvgExecutionTimeMs  float64 `json:"avg_execution_time_ms"`
	TotalCalls          int64   `json:"total_calls"`
	CacheHitRatePercent float64 `json:"cache_hit_rate_percent"`
	TotalCacheHits      int64   `json:"total_cache_hits"`
	TotalCacheMisses    int64   `json:"total_cache_misses"`
}

// operationStats is the per-operation record owned by the registry.
type operationStats struct {
	samples []Sample
	calls   int64
	hits    int64
	misses  int64
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Sampler supplies the process snapshot taken on every Record.
	// Defaults to the shared gopsutil-backed sampler.
	Sampler sampler.Sampler
	// Logger receives sampling-failure warnings. Defaults to noop.
	Logger Logger
}

func (o *RegistryOptions) defaults() {
	if o.Sampler == nil {
		o.Sampler = defaultSampler()
	}
	if o.Logger == nil {
		o.Logger = noopLogger{}
	}
}

// Registry is a thread-safe store of per-operation metric samples and
// cache hit/miss counters. Construct with NewRegistry and inject one
// instance into every wrapper that should share its view, or use the
// process-wide Default().
type Registry struct {
	sampler sampler.Sampler
	logger  Logger

	mu  sync.Mutex
	ops map[string]*operationStats
}

// NewRegistry creates a Registry from the provided options.
func NewRegistry(opts RegistryOptions) *Registry {
	opts.defaults()
	return &Registry{
		sampler: opts.Sampler,
		logger:  opts.Logger,
		ops:     make(map[string]*operationStats),
	}
}

// stats returns the record for operation, creating it if needed.
// Callers must hold r.mu.
func (r *Registry) stats(operation string) *operationStats {
	st, ok := r.ops[operation]
	if !ok {
		st = &operationStats{}
		r.ops[operation] = st
	}
	return st
}

// Record takes a process resource snapshot and appends a Sample for
// operation with the given elapsed execution time. Sampling failures
// are logged and swallowed; Record never fails the calling operation.
func (r *Registry) Record(operation string, elapsed time.Duration) {
	snap, err := r.sampler.Process()
	if err != nil {
		r.logger.Warn("failed to record metrics", "operation", operation, "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.stats(operation)
	st.calls++
	st.samples = append(st.samples, Sample{
		CPUPercent:    snap.CPUPercent,
		MemoryPercent: snap.MemoryPercent,
		MemoryMB:      snap.ResidentMB,
		ExecutionTime: elapsed,
		CallIndex:     st.calls,
		CacheHits:     st.hits,
		CacheMisses:   st.misses,
	})
	if len(st.samples) > maxSamplesPerOperation {
		st.samples = st.samples[len(st.samples)-maxSamplesPerOperation:]
	}
}

// RecordCacheHit increments the cache hit counter for operation.
func (r *Registry) RecordCacheHit(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats(operation).hits++
}

// RecordCacheMiss increments the cache miss counter for operation.
func (r *Registry) RecordCacheMiss(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats(operation).misses++
}

// Average returns the arithmetic mean of the stored samples for
// operation, paired with the latest call/hit/miss counters.
// Returns ErrNoSamples when nothing has been recorded.
func (r *Registry) Average(operation string) (Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.averageLocked(operation)
}

func (r *Registry) averageLocked(operation string) (Sample, error) {
	st, ok := r.ops[operation]
	if !ok || len(st.samples) == 0 {
		return Sample{}, ErrNoSamples
	}

	var cpu, memPct, memMB float64
	var elapsed time.Duration
	for _, s := range st.samples {
		cpu += s.CPUPercent
		memPct += s.MemoryPercent
		memMB += s.MemoryMB
		elapsed += s.ExecutionTime
	}
	n := float64(len(st.samples))

	return Sample{
		CPUPercent:    cpu / n,
		MemoryPercent: memPct / n,
		MemoryMB:      memMB / n,
		ExecutionTime: time.Duration(float64(elapsed) / n),
		CallIndex:     st.calls,
		CacheHits:     st.hits,
		CacheMisses:   st.misses,
	}, nil
}

// Report returns aggregated statistics for every operation with at
// least one recorded sample.
func (r *Registry) Report() map[string]OperationReport {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := make(map[string]OperationReport, len(r.ops))
	for operation, st := range r.ops {
		avg, err := r.averageLocked(operation)
		if err != nil {
			continue
		}

		var hitRate float64
		if total := st.hits + st.misses; total > 0 {
			hitRate = float64(st.hits) / float64(total) * 100
		}

		report[operation] = OperationReport{
			AvgCPUPercent:       round2(avg.CPUPercent),
			AvgMemoryMB:         round2(avg.MemoryMB),
			AvgExecutionTimeMs:  round2(float64(avg.ExecutionTime) / float64(time.Millisecond)),
			TotalCalls:          st.calls,
			CacheHitRatePercent: round2(hitRate),
			TotalCacheHits:      st.hits,
			TotalCacheMisses:    st.misses,
		}
	}
	return report
}

// counters returns the current hit/miss counters for operation.
func (r *Registry) counters(operation string) (hits, misses int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.ops[operation]
	if !ok {
		return 0, 0
	}
	return st.hits, st.misses
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
