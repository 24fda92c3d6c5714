// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package delayline

import "code.aurasignal.dev/dataflow/eventbuf"

// EventDelay shifts every event's timestamp forward by a fixed number
// of samples. Events that would land past the current block's end are
// held in a small scratch queue and re-emitted at the start of the
// next block with their timestamp rebased to the new block (spec
// §4.F: "events whose new timestamp would exceed the block boundary
// held back for the next block").
type EventDelay[V any] struct {
	delaySamples int
	carry        []carriedEvent[V]
}

type carriedEvent[V any] struct {
	timestamp int // already shifted, relative to the block it belongs in
	value     V
}

// NewEventDelay creates a delay of delaySamples samples (must be >= 0).
func NewEventDelay[V any](delaySamples int) *EventDelay[V] {
	if delaySamples < 0 {
		panic("delayline: negative delay")
	}
	return &EventDelay[V]{delaySamples: delaySamples}
}

// Process shifts every event in in by the configured delay into out,
// which must cover [0, blockSize). Events landing beyond blockSize are
// held for the next call instead of being dropped. Returns ErrOverflow
// if out cannot fit an event that belongs in this block (the runtime
// logs and continues per spec §4.F); already-emitted events in out
// remain valid even when an overflow is reported partway through.
func (d *EventDelay[V]) Process(in *eventbuf.Buffer[V], out *eventbuf.Buffer[V], blockSize int) error {
	out.Clear()

	carryOver := d.carry[:0]
	for _, c := range d.carry {
		if c.timestamp < blockSize {
			if err := out.Push(c.timestamp, c.value); err != nil {
				return ErrOverflow
			}
		} else {
			carryOver = append(carryOver, carriedEvent[V]{timestamp: c.timestamp - blockSize, value: c.value})
		}
	}
	d.carry = carryOver

	for ts, v := range in.IterEvents() {
		shifted := ts + d.delaySamples
		if shifted < blockSize {
			if err := out.Push(shifted, v); err != nil {
				return ErrOverflow
			}
		} else {
			d.carry = append(d.carry, carriedEvent[V]{timestamp: shifted - blockSize, value: v})
		}
	}
	return nil
}

// Reset discards any held-over events, e.g. on stream reconfiguration.
func (d *EventDelay[V]) Reset() { d.carry = nil }
