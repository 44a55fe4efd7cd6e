// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// guard.go — purely observational resource-threshold wrapper: warns when
// memory or CPU exceed configured limits, never blocks or aborts the call.

package pulse

import (
	"context"
	"time"

	"github.com/AndrewDonelson/pulse/internal/sampler"
)

// memoryGrowthThresholdMB is the resident-memory growth during one
// wrapped call that triggers a post-call warning.
const memoryGrowthThresholdMB = 50.0

// GuardOptions configures a Guard.
type GuardOptions struct {
	// MemoryThresholdMB triggers a pre-call warning when resident
	// memory exceeds it. Defaults to 500.
	MemoryThresholdMB float64
	// CPUThresholdPercent triggers a pre-call warning when host CPU
	// utilisation exceeds it. Defaults to 80.
	CPUThresholdPercent float64
	// CPUInterval is how long the pre-call CPU sample blocks.
	// Defaults to one second.
	CPUInterval time.Duration
	// Sampler supplies the snapshots. Defaults to the shared
	// gopsutil-backed sampler.
	Sampler sampler.Sampler
	// Logger receives the warning observations. Defaults to noop.
	Logger Logger
}

func (o *GuardOptions) defaults() {
	if o.MemoryThresholdMB == 0 {
		o.MemoryThresholdMB = 500
	}
	if o.CPUThresholdPercent == 0 {
		o.CPUThresholdPercent = 80
	}
	if o.CPUInterval == 0 {
		o.CPUInterval = time.Second
	}
	if o.Sampler == nil {
		o.Sampler = defaultSampler()
	}
	if o.Logger == nil {
		o.Logger = noopLogger{}
	}
}

// Guard observes resource usage around a wrapped operation. It never
// throws on a threshold breach and never cancels the wrapped call;
// sampling failures downgrade to warnings.
type Guard struct {
	name    string
	memMB   float64
	cpuPct  float64
	cpuIvl  time.Duration
	sampler sampler.Sampler
	logger  Logger
}

// NewGuard creates a Guard observing under the given operation name.
func NewGuard(name string, opts GuardOptions) *Guard {
	opts.defaults()
	return &Guard{
		name:    name,
		memMB:   opts.MemoryThresholdMB,
		cpuPct:  opts.CPUThresholdPercent,
		cpuIvl:  opts.CPUInterval,
		sampler: opts.Sampler,
		logger:  opts.Logger,
	}
}

// Wrap returns an Operation that snapshots memory and CPU before op,
// warns on threshold breaches, runs op, and warns again when resident
// memory grew by more than memoryGrowthThresholdMB during the call.
// The result and error of op propagate unchanged.
func (g *Guard) Wrap(op Operation) Operation {
	return func(ctx context.Context, args ...any) (any, error) {
		before, haveBefore := g.checkBefore()

		result, err := op(ctx, args...)

		// No growth check for calls that failed.
		if err == nil && haveBefore {
			g.checkGrowth(before)
		}
		return result, err
	}
}

func (g *Guard) checkBefore() (sampler.MemoryStats, bool) {
	var before sampler.MemoryStats
	haveBefore := false

	if m, err := g.sampler.Memory(); err != nil {
		g.logger.Warn("memory check failed", "operation", g.name, "error", err)
	} else {
		before = m
		haveBefore = true
		if m.ResidentMB > g.memMB {
			g.logger.Warn("high memory usage before operation",
				"operation", g.name,
				"resident_mb", round2(m.ResidentMB),
				"threshold_mb", g.memMB)
		}
	}

	if c, err := g.sampler.CPU(g.cpuIvl); err != nil {
		g.logger.Warn("cpu check failed", "operation", g.name, "error", err)
	} else if c.Percent > g.cpuPct {
		g.logger.Warn("high cpu usage before operation",
			"operation", g.name,
			"cpu_percent", round2(c.Percent),
			"threshold_percent", g.cpuPct)
	}

	return before, haveBefore
}

func (g *Guard) checkGrowth(before sampler.MemoryStats) {
	after, err := g.sampler.Memory()
	if err != nil {
		g.logger.Warn("memory check failed", "operation", g.name, "error", err)
		return
	}
	if growth := after.ResidentMB - before.ResidentMB; growth > memoryGrowthThresholdMB {
		g.logger.Warn("operation increased memory",
			"operation", g.name,
			"growth_mb", round2(growth))
	}
}
