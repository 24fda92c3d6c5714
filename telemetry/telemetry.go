// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package telemetry publishes meter and scope readings from the audio
// thread to the UI thread over a lock-free ring (spec §4.J: "Power-of-
// two ring used for GUI<->DSP telemetry (meters, scope traces)"), the
// one cross-thread channel spec §7 permits outside the atomic
// parameter fixed-map.
//
// Grounded on ring.SPSC (component J, itself adapted from the teacher
// module's SPSC[T]) for the channel and code.hybscloud.com/spin for
// the consumer's busy-wait backoff, the same spin.Wait{} the teacher
// uses around its own CAS retry loops.
package telemetry

import (
	"math"

	"code.hybscloud.com/spin"
	"golang.org/x/exp/constraints"

	"code.aurasignal.dev/dataflow/ring"
)

// MeterKind selects how Meter reduces a block to one scalar reading.
type MeterKind int

const (
	MeterPeak MeterKind = iota
	MeterRMS
)

// Meter computes one scalar level reading per published block and
// pushes it onto a telemetry ring. Readings are produced from the
// audio thread and are lossy by design: if the UI thread has fallen
// behind and the ring is full, the reading is dropped rather than
// blocking the caller.
type Meter[T constraints.Float] struct {
	kind MeterKind
	ring *ring.SPSC[float32]
}

// NewMeter wraps r, an existing telemetry ring (callers may share one
// ring between a Meter and a Scope only if they agree on framing;
// ordinarily each gets its own ring).
func NewMeter[T constraints.Float](kind MeterKind, r *ring.SPSC[float32]) *Meter[T] {
	return &Meter[T]{kind: kind, ring: r}
}

// Publish computes block's level and pushes it. It reports whether the
// reading was accepted; a false return means the ring was full and the
// reading was dropped.
func (m *Meter[T]) Publish(block []T) bool {
	return m.ring.Push(float32(m.level(block))) == nil
}

func (m *Meter[T]) level(block []T) float64 {
	if len(block) == 0 {
		return 0
	}
	switch m.kind {
	case MeterRMS:
		var sumSq float64
		for _, s := range block {
			v := float64(s)
			sumSq += v * v
		}
		return math.Sqrt(sumSq / float64(len(block)))
	default:
		var peak float64
		for _, s := range block {
			v := float64(s)
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
		return peak
	}
}

// Scope publishes a (possibly decimated) copy of a block's raw samples
// for a UI oscilloscope trace. Stride selects every Nth sample; stride
// 1 publishes the block verbatim.
type Scope[T constraints.Float] struct {
	ring   *ring.SPSC[float32]
	stride int
}

// NewScope wraps r with the given decimation stride (clamped to >= 1).
func NewScope[T constraints.Float](r *ring.SPSC[float32], stride int) *Scope[T] {
	if stride < 1 {
		stride = 1
	}
	return &Scope[T]{ring: r, stride: stride}
}

// Publish pushes block's decimated samples and returns how many were
// accepted; fewer than expected means the ring filled up partway and
// the remainder was dropped.
func (s *Scope[T]) Publish(block []T) int {
	buf := make([]float32, 0, len(block)/s.stride+1)
	for i := 0; i < len(block); i += s.stride {
		buf = append(buf, float32(block[i]))
	}
	return s.ring.PushSlice(buf)
}

// Consumer drains a telemetry ring from the UI thread.
type Consumer struct {
	ring *ring.SPSC[float32]
}

// NewConsumer wraps r for draining.
func NewConsumer(r *ring.SPSC[float32]) *Consumer {
	return &Consumer{ring: r}
}

// Poll returns the next pending reading without waiting.
func (c *Consumer) Poll() (float32, bool) {
	v, err := c.ring.Pop()
	return v, err == nil
}

// Wait blocks until a reading is available or stop reports true,
// backing off between empty polls with spin.Wait rather than parking
// on a condition variable, keeping the consumer side lock-free too.
func (c *Consumer) Wait(stop func() bool) (float32, bool) {
	var sw spin.Wait
	for {
		if v, ok := c.Poll(); ok {
			return v, true
		}
		if stop != nil && stop() {
			return 0, false
		}
		sw.Once()
	}
}

// Drain copies every currently pending reading into dst, following
// ring.SPSC.PopSlice's fill semantics, and returns the count copied.
func (c *Consumer) Drain(dst []float32) int {
	return c.ring.PopSlice(dst)
}
