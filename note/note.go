// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package note defines the note-event shape shared by the graph's note
// slots (spec §6): a (channel, note number) key plus a small closed set
// of event kinds. Grounded on
// original_source/crates/clogbox-core/src/graph/mod.rs (NoteKey,
// NoteEvent).
package note

// Key identifies a single playing note.
type Key struct {
	Channel uint8
	Number  uint8
}

// Kind enumerates the shape of Event without its payload, for callers
// that need to dispatch without extracting velocity/value.
type Kind int

const (
	KindOn Kind = iota
	KindOff
	KindPressure
	KindTimbre
	KindPan
	KindGain
	KindChoke
)

// Event is a note-rate event. Exactly one field is meaningful, selected
// by Kind; the zero Event is a KindOn with zero velocity.
//
// A struct-with-Kind-tag is used instead of an interface (the natural
// translation of the original's enum-with-payload) because Event lives
// inside eventbuf.Buffer[Event] and fixedmap slices, both of which want
// a comparable, allocation-free value type.
type Event struct {
	Kind  Kind
	Value float32 // velocity for On/Off, amount for Pressure/Timbre/Pan/Gain, unused for Choke
}

// On builds a note-on event, clamping velocity to [0, 1].
func On(velocity float32) Event { return Event{Kind: KindOn, Value: clamp01(velocity)} }

// Off builds a note-off event, clamping velocity to [0, 1].
func Off(velocity float32) Event { return Event{Kind: KindOff, Value: clamp01(velocity)} }

// Choke builds a choke event; it carries no payload.
func Choke() Event { return Event{Kind: KindChoke} }

// Pressure builds a channel/poly-pressure event.
func Pressure(amount float32) Event { return Event{Kind: KindPressure, Value: amount} }

// Timbre builds an MPE-style timbre (slide/CC74) event.
func Timbre(amount float32) Event { return Event{Kind: KindTimbre, Value: amount} }

// Pan builds a per-note pan event, in [-1, 1].
func Pan(amount float32) Event { return Event{Kind: KindPan, Value: amount} }

// Gain builds a per-note gain event.
func Gain(amount float32) Event { return Event{Kind: KindGain, Value: amount} }

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
