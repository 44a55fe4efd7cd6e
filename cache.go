// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// cache.go — capacity- and TTL-bounded memoizing wrapper reporting
// hit/miss counts and miss latencies into a metrics Registry.

package pulse

import (
	"context"
	"sync"
	"time"

	"github.com/AndrewDonelson/pulse/internal/clock"
	"github.com/AndrewDonelson/pulse/internal/codec"
)

// CacheOptions configures a Cache.
type CacheOptions struct {
	// Capacity is the maximum number of entries; must be positive.
	Capacity int
	// TTL is the shared lifetime of every entry; zero means entries
	// never expire by time.
	TTL time.Duration
	// Registry receives hit/miss counts and miss latencies.
	// Defaults to the process-wide Default() registry.
	Registry *Registry
	// Clock drives TTL checks and latency measurement. Defaults to
	// the system clock.
	Clock clock.Clock
	// Codec encodes call arguments into key material. Defaults to
	// the JSON codec.
	Codec Codec
}

func (o *CacheOptions) defaults() {
	if o.Registry == nil {
		o.Registry = Default()
	}
	if o.Clock == nil {
		o.Clock = clock.Real{}
	}
	if o.Codec == nil {
		o.Codec = codec.Default
	}
}

// cacheEntry holds one memoized result and its insertion time.
type cacheEntry struct {
	value      any
	insertedAt time.Time
}

// inflightCall marks a key whose result is being computed. Waiters
// block on done, then re-check the table.
type inflightCall struct {
	done chan struct{}
}

// CacheInfo is the snapshot returned by Cache.Info.
type CacheInfo struct {
	Name     string
	Size     int
	Capacity int
	TTL      time.Duration
	Hits     int64
	Misses   int64
}

// Cache memoizes results of a wrapped operation, bounded by capacity
// and an optional TTL. When the table is full the entry with the
// oldest insertion time is evicted; access order is never consulted.
type Cache struct {
	name     string
	capacity int
	ttl      time.Duration
	registry *Registry
	clock    clock.Clock
	codec    codec.Codec

	mu       sync.Mutex
	entries  map[string]*cacheEntry
	inflight map[string]*inflightCall
}

// NewCache creates a Cache recording under the given operation name.
func NewCache(name string, opts CacheOptions) (*Cache, error) {
	if opts.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	opts.defaults()
	return &Cache{
		name:     name,
		capacity: opts.Capacity,
		ttl:      opts.TTL,
		registry: opts.Registry,
		clock:    opts.Clock,
		codec:    opts.Codec,
		entries:  make(map[string]*cacheEntry),
		inflight: make(map[string]*inflightCall),
	}, nil
}

// Wrap returns an Operation that consults the cache before invoking op.
// The lock covers table metadata only; op runs outside it, so calls
// with different keys proceed in parallel while each key executes at
// most once concurrently. Operation failures and panics propagate
// unchanged and are never cached; the attempt latency is still
// recorded and the key stays usable.
func (c *Cache) Wrap(op Operation) Operation {
	return func(ctx context.Context, args ...any) (any, error) {
		key, err := deriveKey(c.codec, args)
		if err != nil {
			return nil, err
		}

		for {
			c.mu.Lock()
			if e, ok := c.entries[key]; ok {
				if c.ttl == 0 || clock.Since(c.clock, e.insertedAt) < c.ttl {
					value := e.value
					c.mu.Unlock()
					c.registry.RecordCacheHit(c.name)
					return value, nil
				}
				// Expired entries are removed on access.
				delete(c.entries, key)
			}
			if fl, ok := c.inflight[key]; ok {
				c.mu.Unlock()
				<-fl.done
				// The computation finished: a fresh entry means a
				// hit on re-check, a failure means our own miss.
				continue
			}
			fl := &inflightCall{done: make(chan struct{})}
			c.inflight[key] = fl
			c.mu.Unlock()

			c.registry.RecordCacheMiss(c.name)
			start := c.clock.Now()

			var value any
			completed := false
			// Cleanup must run even when op panics, or every later
			// call for this key would block on fl.done forever.
			defer func() {
				c.registry.Record(c.name, clock.Since(c.clock, start))
				c.mu.Lock()
				if completed && err == nil {
					c.insertLocked(key, value)
				}
				delete(c.inflight, key)
				c.mu.Unlock()
				close(fl.done)
			}()

			value, err = op(ctx, args...)
			completed = true
			return value, err
		}
	}
}

// insertLocked stores value under key, evicting the oldest-inserted
// entry first when the table is at capacity. Callers must hold c.mu.
func (c *Cache) insertLocked(key string, value any) {
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[key] = &cacheEntry{value: value, insertedAt: c.clock.Now()}
}

// evictOldestLocked removes the entry with the smallest insertion
// timestamp. Callers must hold c.mu.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.insertedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.insertedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Info returns the table size, bounds, and hit/miss counters for the
// wrapped operation.
func (c *Cache) Info() CacheInfo {
	hits, misses := c.registry.counters(c.name)
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheInfo{
		Name:     c.name,
		Size:     len(c.entries),
		Capacity: c.capacity,
		TTL:      c.ttl,
		Hits:     hits,
		Misses:   misses,
	}
}
