// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dspmodule defines the module contract every graph node
// implements (spec §4.E): six enum-indexed port sets, a prepare/process
// lifecycle, and a "dyn" projection the runtime can hold without
// knowing a module's concrete port enums.
//
// Grounded on
// original_source/crates/clogbox-core/src/module/mod.rs (StreamData,
// the Module trait, ProcessStatus, and the Module->RawModule blanket
// impl that is the model for Dyn here) and graph/context.rs
// (GraphContextImpl, the model for storage.Mapped already built in
// package storage).
package dspmodule

import (
	"code.aurasignal.dev/dataflow/enumidx"
	"code.aurasignal.dev/dataflow/storage"
)

// StreamContext describes the stream configuration a module prepares
// for and the stream data available during Process.
//
// BeatSeconds/BeatSamples are §6 supplements over the original's plain
// StreamData.beat_length/beat_sample_length methods: the original
// derives them from a public BPM field every call site recomputes, so
// they are exposed here as methods on the same struct rather than a
// separate helper type.
type StreamContext struct {
	SampleRate   float64
	BlockSize    int
	BPM          float64
	BlockStart   int64 // running sample position of this block's first sample
}

// Dt returns the sample period in seconds.
func (s StreamContext) Dt() float64 { return 1 / s.SampleRate }

// BeatSeconds converts a duration in beats (quarter notes) to seconds
// at the context's BPM.
func (s StreamContext) BeatSeconds(beats float64) float64 {
	return beats / (s.BPM / 60)
}

// BeatSamples converts a duration in beats to samples at the context's
// sample rate and BPM.
func (s StreamContext) BeatSamples(beats float64) float64 {
	return s.SampleRate * s.BeatSeconds(beats)
}

// PrepareResult is returned by Prepare.
type PrepareResult struct {
	// LatencySeconds is the module's processing latency in seconds,
	// used by the graph compiler's latency-solving pass (§4.G) to align
	// paths of unequal length.
	LatencySeconds float64
}

// ProcessResult is returned by Process.
//
// Tail semantics: nil means an infinite tail (the module must keep
// running while any input is non-silent, e.g. a feedback delay);
// non-nil means that after the last non-silent input, that many more
// samples must still be produced (e.g. a reverb or envelope release).
type ProcessResult struct {
	Tail *uint32
}

// NoTail is the ProcessResult for a module with zero tail: it may stop
// being scheduled as soon as its inputs go silent.
var NoTail = ProcessResult{Tail: zeroTail()}

func zeroTail() *uint32 {
	var z uint32
	return &z
}

// InfiniteTail is the ProcessResult for a module that must always keep
// running (e.g. an oscillator, a feedback path).
var InfiniteTail = ProcessResult{Tail: nil}

// Context is the strongly-typed view a Module[T, In, Out] receives
// during Process: borrowed audio/param/note slots on both sides,
// reindexed from the node's local port indices via storage.Mapped, plus
// the stream context for this block.
type Context[T any, In, Out enumidx.Enum] struct {
	Stream  StreamContext
	mapped  *storage.Mapped[T]
}

// NewContext builds a Context over mapped for the given stream.
func NewContext[T any, In, Out enumidx.Enum](stream StreamContext, mapped *storage.Mapped[T]) Context[T, In, Out] {
	return Context[T, In, Out]{Stream: stream, mapped: mapped}
}

// AudioIn borrows the audio slot for local input port p.
func (c Context[T, In, Out]) AudioIn(p In) (*storage.Borrow[[]T], bool) {
	return c.mapped.AudioInput(enumidx.IndexOf(p))
}

// AudioOut borrows the audio slot for local output port p.
func (c Context[T, In, Out]) AudioOut(p Out) (*storage.Borrow[[]T], bool) {
	return c.mapped.AudioOutput(enumidx.IndexOf(p))
}

// ParamIn borrows the parameter-event slot for local input port p.
func (c Context[T, In, Out]) ParamIn(p In) (*storage.Borrow[*storage.ParamBuffer], bool) {
	return c.mapped.ParamInput(enumidx.IndexOf(p))
}

// ParamOut borrows the parameter-event slot for local output port p.
func (c Context[T, In, Out]) ParamOut(p Out) (*storage.Borrow[*storage.ParamBuffer], bool) {
	return c.mapped.ParamOutput(enumidx.IndexOf(p))
}

// NoteIn borrows the note-event slot for local input port p.
func (c Context[T, In, Out]) NoteIn(p In) (*storage.Borrow[*storage.NoteBuffer], bool) {
	return c.mapped.NoteInput(enumidx.IndexOf(p))
}

// NoteOut borrows the note-event slot for local output port p.
func (c Context[T, In, Out]) NoteOut(p Out) (*storage.Borrow[*storage.NoteBuffer], bool) {
	return c.mapped.NoteOutput(enumidx.IndexOf(p))
}

// Module is the strongly-typed contract a graph node implements. Six
// port sets are expressed as three pairs of enum type parameters
// collapsed to two (In, Out) via enumidx.Sum, the way a module
// declaring e.g. "two audio inputs and one param input" composes
// enumidx.Sum[AudioPorts, ParamPorts] as its In type (sampleadapter.In
// is one such composition).
type Module[T any, In, Out enumidx.Enum] interface {
	Prepare(sampleRate float64, maxBlockSize int) PrepareResult
	Process(ctx Context[T, In, Out]) ProcessResult

	// InputKinds and OutputKinds report the socket kind of each local
	// port index, in enum-index order. Static metadata, queried once at
	// compile time so the dyn projection can answer SocketType-keyed
	// fan-in/fan-out counts without depending on the enum types.
	InputKinds() []storage.Kind
	OutputKinds() []storage.Kind
}
