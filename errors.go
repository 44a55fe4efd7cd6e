// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// errors.go — sentinel error variables returned by the public Pulse API,
// covering construction validation, key derivation, and resource sampling.

package pulse

import (
	"errors"

	"github.com/AndrewDonelson/pulse/internal/sampler"
)

// Construction errors
var (
	ErrInvalidCapacity  = errors.New("pulse: cache capacity must be positive")
	ErrInvalidBatchSize = errors.New("pulse: batch size must be positive")
)

// Key errors
var (
	ErrKeyDerivation = errors.New("pulse: cannot derive deterministic cache key")
)

// Metrics errors
var (
	ErrNoSamples = errors.New("pulse: no samples recorded for operation")
)

// Sampling errors. ErrSampling is surfaced by direct Sampler callers;
// the registry and the guard swallow it and log a warning instead.
var ErrSampling = sampler.ErrSampling
