// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// key.go — deterministic cache-key derivation from call arguments.
// Positional arguments are order-dependent; map[string]any arguments are
// encoded with sorted keys so their iteration order never matters.

package pulse

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/AndrewDonelson/pulse/internal/codec"
)

// deriveKey fingerprints args into a stable cache key. Arguments that
// cannot be deterministically encoded (functions, channels, NaN keys)
// fail with ErrKeyDerivation before the wrapped operation runs.
func deriveKey(c codec.Codec, args []any) (string, error) {
	h := fnv.New64a()
	for i, arg := range args {
		if named, ok := arg.(map[string]any); ok {
			keys := make([]string, 0, len(named))
			for k := range named {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				b, err := c.Marshal(named[k])
				if err != nil {
					return "", fmt.Errorf("%w: argument %d key %q: %v", ErrKeyDerivation, i, k, err)
				}
				fmt.Fprintf(h, "%d:%d:%s=", len(k), len(b), k)
				_, _ = h.Write(b)
			}
			continue
		}
		b, err := c.Marshal(arg)
		if err != nil {
			return "", fmt.Errorf("%w: argument %d: %v", ErrKeyDerivation, i, err)
		}
		fmt.Fprintf(h, "%d:", len(b))
		_, _ = h.Write(b)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
