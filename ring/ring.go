// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ring provides the single-producer single-consumer lock-free
// ring buffer used as the GUI↔DSP telemetry channel (spec §4.J).
//
// SPSC is adapted directly from the teacher module's Lamport ring
// buffer (code.hybscloud.com/lfq's SPSC[T]): same cached-index
// optimization, same acquire/release discipline through
// code.hybscloud.com/atomix. The MPSC/SPMC/MPMC variants, the builder,
// and the arch-specific indirect-queue assembly the teacher ships are
// not carried forward — the spec names exactly one producer/consumer
// pattern (one audio-thread producer, one UI-thread consumer), so those
// variants would sit in the tree unexercised (see DESIGN.md, "Adapted,
// not carried").
package ring

import (
	"errors"

	"code.hybscloud.com/atomix"
)

// ErrFull is returned by Push when the ring has no free slot.
var ErrFull = errors.New("ring: full")

// ErrEmpty is returned by Pop when the ring has no pending item.
var ErrEmpty = errors.New("ring: empty")

// pad is cache line padding to prevent false sharing between the
// producer-owned and consumer-owned fields.
type pad [64]byte

// SPSC is a single-producer single-consumer bounded ring buffer with a
// power-of-two capacity.
//
// The producer caches the consumer's read index, and vice versa,
// so that the common case (ring neither full nor empty) touches no
// cache line owned by the other side.
type SPSC[T any] struct {
	_          pad
	head       atomix.Uint64 // next slot the consumer will read
	_          pad
	cachedTail uint64 // consumer's cached view of tail
	_          pad
	tail       atomix.Uint64 // next slot the producer will write
	_          pad
	cachedHead uint64 // producer's cached view of head
	_          pad
	buffer     []T
	mask       uint64
}

// NewSPSC creates a ring with the given capacity, rounded up to the
// next power of two. Panics if capacity < 2.
func NewSPSC[T any](capacity int) *SPSC[T] {
	if capacity < 2 {
		panic("ring: capacity must be >= 2")
	}
	n := uint64(roundToPow2(capacity))
	return &SPSC[T]{
		buffer: make([]T, n),
		mask:   n - 1,
	}
}

// Cap returns the actual (power-of-two) capacity.
func (r *SPSC[T]) Cap() int { return int(r.mask + 1) }

// Push adds one item to the ring (producer only, non-blocking).
// Returns ErrFull if the ring has no free slot; the caller already
// owns item and may retry.
func (r *SPSC[T]) Push(item T) error {
	tail := r.tail.LoadRelaxed()
	if tail-r.cachedHead > r.mask {
		r.cachedHead = r.head.LoadAcquire()
		if tail-r.cachedHead > r.mask {
			return ErrFull
		}
	}
	r.buffer[tail&r.mask] = item
	r.tail.StoreRelease(tail + 1)
	return nil
}

// Pop removes and returns one item (consumer only, non-blocking).
// Returns (zero-value, ErrEmpty) if the ring has no pending item.
func (r *SPSC[T]) Pop() (T, error) {
	head := r.head.LoadRelaxed()
	if head >= r.cachedTail {
		r.cachedTail = r.tail.LoadAcquire()
		if head >= r.cachedTail {
			var zero T
			return zero, ErrEmpty
		}
	}
	item := r.buffer[head&r.mask]
	var zero T
	r.buffer[head&r.mask] = zero
	r.head.StoreRelease(head + 1)
	return item, nil
}

// PushSlice copies as many leading items of src as fit, respecting
// wraparound, and returns how many were copied.
func (r *SPSC[T]) PushSlice(src []T) int {
	tail := r.tail.LoadRelaxed()
	free := r.mask + 1 - (tail - r.cachedHead)
	if uint64(len(src)) > free {
		r.cachedHead = r.head.LoadAcquire()
		free = r.mask + 1 - (tail - r.cachedHead)
	}
	n := uint64(len(src))
	if n > free {
		n = free
	}
	for i := uint64(0); i < n; i++ {
		r.buffer[(tail+i)&r.mask] = src[i]
	}
	r.tail.StoreRelease(tail + n)
	return int(n)
}

// PopSlice copies as many pending items as fit into dst, respecting
// wraparound, and returns how many were copied.
func (r *SPSC[T]) PopSlice(dst []T) int {
	head := r.head.LoadRelaxed()
	avail := r.cachedTail - head
	if uint64(len(dst)) > avail {
		r.cachedTail = r.tail.LoadAcquire()
		avail = r.cachedTail - head
	}
	n := uint64(len(dst))
	if n > avail {
		n = avail
	}
	var zero T
	for i := uint64(0); i < n; i++ {
		idx := (head + i) & r.mask
		dst[i] = r.buffer[idx]
		r.buffer[idx] = zero
	}
	r.head.StoreRelease(head + n)
	return int(n)
}

// Drain discards all pending items without copying them out, e.g. on
// teardown where residual telemetry samples are uninteresting.
func (r *SPSC[T]) Drain() {
	head := r.head.LoadRelaxed()
	tail := r.cachedTail
	if newTail := r.tail.LoadAcquire(); newTail != tail {
		r.cachedTail = newTail
		tail = newTail
	}
	var zero T
	for i := head; i != tail; i++ {
		r.buffer[i&r.mask] = zero
	}
	r.head.StoreRelease(tail)
}

func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
