// Package pulse wraps arbitrary expensive operations with memoizing
// caches, resource-threshold observation, and chunked batch execution,
// recording latency and resource metrics per operation into a shared
// registry.
//
// Compose wrappers explicitly around an Operation:
//
//	cache, _ := pulse.NewCache("analyze", pulse.CacheOptions{Capacity: 128})
//	guard := pulse.NewGuard("analyze", pulse.GuardOptions{})
//	wrapped := cache.Wrap(guard.Wrap(analyze))
//
// or use the WrapWith* helpers, which report into the process-wide
// Default() registry.
package pulse

import (
	"context"
	"sync"
	"time"

	"github.com/AndrewDonelson/pulse/internal/clock"
	"github.com/AndrewDonelson/pulse/internal/codec"
	"github.com/AndrewDonelson/pulse/internal/sampler"
)

// Operation is the callable contract every wrapper accepts and returns.
// Arguments are positional; a map[string]any argument is treated as a
// set of named arguments for cache-key purposes.
type Operation func(ctx context.Context, args ...any) (any, error)

// Re-export types so callers only import this package.
type Codec = codec.Codec
type Clock = clock.Clock
type Sampler = sampler.Sampler
type ProcessStats = sampler.ProcessStats
type MemoryStats = sampler.MemoryStats
type CPUStats = sampler.CPUStats

// Codec implementations selectable via CacheOptions.Codec.
var (
	// CodecJSON is the default key codec. It encodes map keys in
	// sorted order at every depth.
	CodecJSON Codec = codec.JSON{}
	// CodecMsgPack is a compact alternative for key material whose
	// only maps are top-level named arguments.
	CodecMsgPack Codec = codec.MsgPack{}
)

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
)

// Default returns the process-wide Registry, constructed lazily
// exactly once and safe under concurrent first access. Prefer
// injecting an explicit NewRegistry instance where ownership matters.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry(RegistryOptions{})
	})
	return defaultRegistry
}

var (
	defaultSamplerOnce sync.Once
	sharedSampler      sampler.Sampler
)

// defaultSampler returns the shared process sampler. If binding to the
// current process fails, a sampler that reports the failure is used so
// metric recording degrades to warnings instead of panicking.
func defaultSampler() sampler.Sampler {
	defaultSamplerOnce.Do(func() {
		sys, err := sampler.NewSystem()
		if err != nil {
			sharedSampler = &sampler.Static{Err: err}
			return
		}
		sharedSampler = sys
	})
	return sharedSampler
}

// WrapWithCache memoizes op under name, bounded by capacity and ttl
// (zero ttl = entries never expire), reporting into Default().
func WrapWithCache(op Operation, name string, capacity int, ttl time.Duration) (Operation, error) {
	c, err := NewCache(name, CacheOptions{Capacity: capacity, TTL: ttl})
	if err != nil {
		return nil, err
	}
	return c.Wrap(op), nil
}

// WrapWithGuard observes memory and CPU thresholds around op under
// name; breaches warn but never alter execution.
func WrapWithGuard(op Operation, name string, memoryThresholdMB, cpuThresholdPercent float64) Operation {
	g := NewGuard(name, GuardOptions{
		MemoryThresholdMB:   memoryThresholdMB,
		CPUThresholdPercent: cpuThresholdPercent,
	})
	return g.Wrap(op)
}

// WrapWithBatching partitions slice inputs to op into chunks of at
// most batchSize elements.
func WrapWithBatching(op Operation, batchSize int) (Operation, error) {
	b, err := NewBatcher(batchSize)
	if err != nil {
		return nil, err
	}
	return b.Wrap(op), nil
}
