package pulse_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AndrewDonelson/pulse"
	"github.com/AndrewDonelson/pulse/internal/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardWith(s sampler.Sampler, logger pulse.Logger) *pulse.Guard {
	return pulse.NewGuard("analyze", pulse.GuardOptions{
		MemoryThresholdMB:   500,
		CPUThresholdPercent: 80,
		Sampler:             s,
		Logger:              logger,
	})
}

func warnsContaining(warns []string, substr string) int {
	n := 0
	for _, w := range warns {
		if strings.Contains(w, substr) {
			n++
		}
	}
	return n
}

func TestGuard_NoWarningsUnderThresholds(t *testing.T) {
	logger := &recordingLogger{}
	g := guardWith(staticSampler(), logger)

	result, err := g.Wrap(func(_ context.Context, _ ...any) (any, error) {
		return "done", nil
	})(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Empty(t, logger.warnings())
}

func TestGuard_WarnsOnHighMemory_ResultUnchanged(t *testing.T) {
	s := staticSampler()
	s.Mem.ResidentMB = 600
	logger := &recordingLogger{}
	g := guardWith(s, logger)

	result, err := g.Wrap(func(_ context.Context, _ ...any) (any, error) {
		return []string{"lead-1", "lead-2"}, nil
	})(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"lead-1", "lead-2"}, result, "guard must not alter the result")
	assert.Equal(t, 1, warnsContaining(logger.warnings(), "high memory usage"))
}

func TestGuard_WarnsOnHighCPU(t *testing.T) {
	s := staticSampler()
	s.CPUStat.Percent = 95
	logger := &recordingLogger{}
	g := guardWith(s, logger)

	_, err := g.Wrap(func(_ context.Context, _ ...any) (any, error) {
		return nil, nil
	})(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, warnsContaining(logger.warnings(), "high cpu usage"))
}

func TestGuard_WarnsOnBothBreaches(t *testing.T) {
	s := staticSampler()
	s.Mem.ResidentMB = 900
	s.CPUStat.Percent = 99
	logger := &recordingLogger{}
	g := guardWith(s, logger)

	_, err := g.Wrap(func(_ context.Context, _ ...any) (any, error) {
		return nil, nil
	})(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, warnsContaining(logger.warnings(), "high memory usage"))
	assert.Equal(t, 1, warnsContaining(logger.warnings(), "high cpu usage"))
}

func TestGuard_MemoryGrowthWarning(t *testing.T) {
	s := staticSampler()
	s.MemorySeq = []sampler.MemoryStats{
		{ResidentMB: 100}, // before
		{ResidentMB: 180}, // after: +80MB
	}
	logger := &recordingLogger{}
	g := guardWith(s, logger)

	_, err := g.Wrap(func(_ context.Context, _ ...any) (any, error) {
		return nil, nil
	})(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, warnsContaining(logger.warnings(), "increased memory"))
}

func TestGuard_SmallGrowthNoWarning(t *testing.T) {
	s := staticSampler()
	s.MemorySeq = []sampler.MemoryStats{
		{ResidentMB: 100},
		{ResidentMB: 130}, // +30MB, under the 50MB growth threshold
	}
	logger := &recordingLogger{}
	g := guardWith(s, logger)

	_, err := g.Wrap(func(_ context.Context, _ ...any) (any, error) {
		return nil, nil
	})(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, warnsContaining(logger.warnings(), "increased memory"))
}

func TestGuard_OperationErrorPropagatesUnchanged(t *testing.T) {
	logger := &recordingLogger{}
	g := guardWith(staticSampler(), logger)

	boom := errors.New("scrape failed")
	_, err := g.Wrap(func(_ context.Context, _ ...any) (any, error) {
		return nil, boom
	})(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestGuard_SamplingFailureNeverAbortsCall(t *testing.T) {
	logger := &recordingLogger{}
	g := guardWith(&sampler.Static{Err: sampler.ErrSampling}, logger)

	invoked := false
	result, err := g.Wrap(func(_ context.Context, _ ...any) (any, error) {
		invoked = true
		return 7, nil
	})(context.Background())

	require.NoError(t, err, "sampling failure must downgrade to a warning")
	assert.True(t, invoked)
	assert.Equal(t, 7, result)
	assert.NotEmpty(t, logger.warnings())
}

func TestGuard_ArgumentsPassThrough(t *testing.T) {
	g := guardWith(staticSampler(), &recordingLogger{})

	result, err := g.Wrap(func(_ context.Context, args ...any) (any, error) {
		return args, nil
	})(context.Background(), "a", 2, true)

	require.NoError(t, err)
	assert.Equal(t, []any{"a", 2, true}, result)
}
