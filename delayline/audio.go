// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package delayline implements the two fixed delay primitives the
// graph compiler inserts to align paths of unequal latency (spec
// §4.F): AudioDelay, a fractional-sample audio ring with linear
// interpolation, and EventDelay, a timestamp-shifting scratch queue
// for parameter/note events.
//
// Grounded on
// original_source/crates/clogbox-core/src/modules/delay.rs
// (FixedAudioDelay: a VecDeque ring read before push, interpolated with
// Linear.interpolate_single). The Go version writes each input sample
// before reading its two taps, so the output lags the input by exactly
// the configured delay, and inlines the ring as a
// plain slice with a head index rather than reusing container/ring or
// package ring's SPSC (that type is for cross-thread handoff; this is
// single-threaded per-sample shifting, so a plain indexed slice is the
// idiomatic fit, matching the original's non-atomic VecDeque).
package delayline

import (
	"errors"

	"code.hybscloud.com/iox"
	"golang.org/x/exp/constraints"
)

// ErrOverflow is returned when an emitted event would not fit in the
// destination buffer (spec §4.F: "both fail loudly... the runtime logs
// and continues").
var ErrOverflow = errors.New("delayline: output buffer overflow")

// IsNonFailure reports whether err is nil or ErrOverflow, the one
// soft-failure condition the runtime logs and continues past rather
// than treating as fatal. Falls back to [iox.IsNonFailure] for any
// other error so callers can classify errors uniformly across
// packages.
func IsNonFailure(err error) bool {
	if err == nil || errors.Is(err, ErrOverflow) {
		return true
	}
	return iox.IsNonFailure(err)
}

// AudioDelay is a fixed-length, fractional-sample delay line. T is the
// host's audio sample type (float32 or float64), matching
// storage.Pool[T]'s type parameter so the runtime never needs to
// convert between the pool's sample type and the delay line's.
//
// Capacity is ceil(delaySamples)+1 so the integer and fractional
// positions straddling the requested delay are always both present.
type AudioDelay[T constraints.Float] struct {
	ring  []T
	head  int // index of the oldest sample
	whole int
	frac  T
}

// NewAudioDelay creates a delay line for delaySamples (may be
// fractional, must be >= 0), zero-filled.
func NewAudioDelay[T constraints.Float](delaySamples float64) *AudioDelay[T] {
	if delaySamples < 0 {
		panic("delayline: negative delay")
	}
	whole := int(delaySamples)
	frac := delaySamples - float64(whole)
	n := whole + 1
	if frac > 0 {
		n++
	}
	if n < 2 {
		n = 2
	}
	return &AudioDelay[T]{ring: make([]T, n), whole: whole, frac: T(frac)}
}

// Len returns the ring's capacity (ceil(delaySamples)+1).
func (d *AudioDelay[T]) Len() int { return len(d.ring) }

// Process delays in by the configured amount into out, sample by
// sample. len(in) must equal len(out); both may alias the same
// underlying storage from different pool cells (they never alias the
// same slice in practice since storage never maps two ports to one
// index, but Process itself has no aliasing assumption beyond that).
func (d *AudioDelay[T]) Process(in, out []T) {
	n := len(d.ring)
	for i := range in {
		d.ring[d.head] = in[i]
		a := d.ring[(d.head-d.whole+n)%n]
		b := d.ring[(d.head-d.whole-1+n)%n]
		out[i] = a + (b-a)*d.frac
		d.head = (d.head + 1) % n
	}
}

// Reset zero-fills the ring, e.g. on stream reconfiguration.
func (d *AudioDelay[T]) Reset() {
	var zero T
	for i := range d.ring {
		d.ring[i] = zero
	}
	d.head = 0
}
