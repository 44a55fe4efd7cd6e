// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// batch.go — chunked execution of bulk inputs with periodic memory
// reclamation hints; strictly order-equivalent to the unbatched call.

package pulse

import (
	"context"
	"reflect"
	"runtime"
)

// gcEveryChunks is how many chunks are processed between explicit
// garbage collection hints.
const gcEveryChunks = 10

// Batcher partitions a bulk input into bounded chunks and invokes a
// wrapped operation once per chunk.
type Batcher struct {
	size int
}

// NewBatcher creates a Batcher with the given chunk size.
func NewBatcher(size int) (*Batcher, error) {
	if size <= 0 {
		return nil, ErrInvalidBatchSize
	}
	return &Batcher{size: size}, nil
}

// Size returns the configured chunk size.
func (b *Batcher) Size() int { return b.size }

// Wrap returns an Operation that, when its first argument is a slice,
// invokes op per consecutive chunk of at most Size elements (trailing
// arguments pass through to every chunk call) and concatenates the
// chunk results in order. Non-slice inputs are passed to op directly.
// Slice chunk results concatenate into one slice of the same type;
// anything else is appended to a []any.
func (b *Batcher) Wrap(op Operation) Operation {
	return func(ctx context.Context, args ...any) (any, error) {
		if len(args) == 0 {
			return op(ctx)
		}
		input := reflect.ValueOf(args[0])
		if !input.IsValid() || input.Kind() != reflect.Slice {
			return op(ctx, args...)
		}
		// An empty input is one (empty) chunk, so the wrapped call
		// stays equivalent to the unbatched one.
		if input.Len() <= b.size {
			return op(ctx, args...)
		}

		rest := args[1:]
		total := input.Len()

		var flat []any
		var typed reflect.Value
		allSlices := true
		chunks := 0

		for start := 0; start < total; start += b.size {
			end := min(start+b.size, total)
			callArgs := append([]any{input.Slice(start, end).Interface()}, rest...)

			result, err := op(ctx, callArgs...)
			if err != nil {
				return nil, err
			}

			if rv := reflect.ValueOf(result); rv.IsValid() && rv.Kind() == reflect.Slice {
				if allSlices {
					if !typed.IsValid() {
						typed = reflect.MakeSlice(rv.Type(), 0, total)
					}
					if rv.Type() == typed.Type() {
						typed = reflect.AppendSlice(typed, rv)
					} else {
						allSlices = false
					}
				}
				for i := 0; i < rv.Len(); i++ {
					flat = append(flat, rv.Index(i).Interface())
				}
			} else {
				allSlices = false
				flat = append(flat, result)
			}

			chunks++
			if chunks%gcEveryChunks == 0 {
				runtime.GC()
			}
		}

		if allSlices && typed.IsValid() {
			return typed.Interface(), nil
		}
		return flat, nil
	}
}

// WrapSlice returns a typed batched version of fn, preserving order.
func WrapSlice[T, R any](b *Batcher, fn func(ctx context.Context, items []T) ([]R, error)) func(ctx context.Context, items []T) ([]R, error) {
	return func(ctx context.Context, items []T) ([]R, error) {
		if len(items) <= b.size {
			return fn(ctx, items)
		}
		out := make([]R, 0, len(items))
		chunks := 0
		for _, chunk := range Chunk(items, b.size) {
			res, err := fn(ctx, chunk)
			if err != nil {
				return nil, err
			}
			out = append(out, res...)
			chunks++
			if chunks%gcEveryChunks == 0 {
				runtime.GC()
			}
		}
		return out, nil
	}
}

// Chunk splits items into consecutive chunks of at most size elements,
// preserving order. A non-positive size yields items as a single chunk.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return [][]T{items}
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		chunks = append(chunks, items[start:min(start+size, len(items))])
	}
	return chunks
}
