package pulse

import (
	"testing"
	"time"

	"github.com/AndrewDonelson/pulse/internal/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SampleHistoryCapped(t *testing.T) {
	r := NewRegistry(RegistryOptions{Sampler: &sampler.Static{}})

	const calls = 150
	for i := 0; i < calls; i++ {
		r.Record("bulk", time.Millisecond)
	}

	st := r.ops["bulk"]
	require.NotNil(t, st)
	assert.Len(t, st.samples, maxSamplesPerOperation)
	assert.Equal(t, int64(calls), st.calls)

	// Oldest samples dropped: the window starts where trimming left it.
	assert.Equal(t, int64(calls-maxSamplesPerOperation+1), st.samples[0].CallIndex)
	assert.Equal(t, int64(calls), st.samples[len(st.samples)-1].CallIndex)
}

func TestRegistry_SampleHistoryBelowCap(t *testing.T) {
	r := NewRegistry(RegistryOptions{Sampler: &sampler.Static{}})

	for i := 0; i < 7; i++ {
		r.Record("small", time.Millisecond)
	}
	assert.Len(t, r.ops["small"].samples, 7)
}

func TestRegistry_CallIndexesStrictlyIncreasing(t *testing.T) {
	r := NewRegistry(RegistryOptions{Sampler: &sampler.Static{}})

	for i := 0; i < 20; i++ {
		r.Record("ordered", time.Millisecond)
	}

	samples := r.ops["ordered"].samples
	for i := 1; i < len(samples); i++ {
		assert.Equal(t, samples[i-1].CallIndex+1, samples[i].CallIndex)
	}
}
