// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package param

import (
	"math"

	"code.hybscloud.com/atomix"
)

// AtomicValue is a lock-free, cross-thread scalar: one parameter's
// current normalized value plus a "changed since last read" flag, as
// named in spec §5 ("Parameter storage that may be read by UI and
// written by audio (or vice versa) is a fixed-map of atomic 32-bit
// scalars plus a per-parameter changed flag. Writes are Relaxed;
// consumers spin-read.").
//
// Writes use Relaxed ordering; there is no producer/consumer handoff
// beyond "the latest write wins", matching the spec's non-blocking,
// no-synchronization requirement.
type AtomicValue struct {
	bits    atomix.Int32 // float32 bit pattern of the Normalized value
	changed atomix.Bool
}

// NewAtomicValue creates an AtomicValue initialized to v, not marked changed.
func NewAtomicValue(v Normalized) *AtomicValue {
	a := &AtomicValue{}
	a.bits.StoreRelaxed(float32Bits(v))
	return a
}

// Store writes v and raises the changed flag.
func (a *AtomicValue) Store(v Normalized) {
	a.bits.StoreRelaxed(float32Bits(v))
	a.changed.StoreRelaxed(true)
}

// Load reads the current value without touching the changed flag.
func (a *AtomicValue) Load() Normalized {
	return Normalized(math.Float32frombits(uint32(a.bits.LoadRelaxed())))
}

func float32Bits(v Normalized) int32 {
	return int32(math.Float32bits(float32(v)))
}

// TakeChanged reads the current value and atomically clears the
// changed flag, reporting whether it had been set. A UI-side consumer
// spin-reads this in a poll loop (code.hybscloud.com/spin provides the
// backoff for that loop; see package telemetry for the pattern).
func (a *AtomicValue) TakeChanged() (v Normalized, changed bool) {
	v = a.Load()
	changed = a.changed.LoadRelaxed()
	if changed {
		a.changed.StoreRelaxed(false)
	}
	return v, changed
}
