// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package storage provides the runtime's shared buffer storage pool
// (spec §4.D): an indexed pool of audio, parameter-event, and
// note-event cells with runtime-checked borrow aliasing.
//
// Grounded on
// original_source/crates/clogbox-core/src/graph/storage.rs
// (AtomicBitset, GraphStorage, StorageBorrow's drop-clears-bit) and
// graph/context.rs (GraphContextImpl's input_index/output_index
// reindexing, the model for MappedStorage). The per-word atomic
// operations use code.hybscloud.com/atomix, the teacher dependency
// also used by the SPSC ring's cached indices.
package storage

import (
	"fmt"

	"code.aurasignal.dev/dataflow/eventbuf"
	"code.aurasignal.dev/dataflow/internal/bitset"
	"code.aurasignal.dev/dataflow/note"
)

// Kind identifies which of a Pool's three sub-pools a slot index refers
// to. It also types graph ports and buffer assignments, and an aliasing
// panic names it alongside the index.
type Kind int

const (
	KindAudio Kind = iota
	KindParam
	KindNote
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindParam:
		return "param"
	case KindNote:
		return "note"
	default:
		return "unknown"
	}
}

// ParamBuffer is the per-block container for a parameter's automation
// events: timestamp plus new value, mirroring the original's
// ControlBuffer = EventBuffer<f32>.
type ParamBuffer = eventbuf.Buffer[float64]

// NoteBuffer is the per-block container for note events.
type NoteBuffer = eventbuf.Buffer[note.Event]

// Pool is an indexed pool of audio buffers, parameter-event buffers,
// and note-event buffers, with atomic shared/exclusive borrow tracking
// per spec invariant (a)-(c) in §4.D: at most one exclusive borrow per
// index, exclusive and shared borrows are mutually exclusive, and the
// borrow bit clears when the handle is released.
//
// T is the audio sample type (float32 or float64 depending on host
// precision).
type Pool[T any] struct {
	audio []audioCell[T]
	param []paramCell
	note  []noteCell

	sharedAudio, exclAudio *bitset.Set
	sharedParam, exclParam *bitset.Set
	sharedNote, exclNote   *bitset.Set
}

type audioCell[T any] struct{ data []T }
type paramCell struct{ buf *ParamBuffer }
type noteCell struct{ buf *NoteBuffer }

// New allocates a Pool with the given block size and sub-pool lengths.
// Every audio cell is zero-filled to maxBlockSize samples; every event
// cell is allocated with capacity eventCapacity.
func New[T any](maxBlockSize, numAudio, numParam, numNote, eventCapacity int) *Pool[T] {
	p := &Pool[T]{
		audio:       make([]audioCell[T], numAudio),
		param:       make([]paramCell, numParam),
		note:        make([]noteCell, numNote),
		sharedAudio: bitset.New(numAudio),
		exclAudio:   bitset.New(numAudio),
		sharedParam: bitset.New(numParam),
		exclParam:   bitset.New(numParam),
		sharedNote:  bitset.New(numNote),
		exclNote:    bitset.New(numNote),
	}
	for i := range p.audio {
		p.audio[i].data = make([]T, maxBlockSize)
	}
	for i := range p.param {
		p.param[i].buf = eventbuf.New[float64](eventCapacity)
	}
	for i := range p.note {
		p.note[i].buf = eventbuf.New[note.Event](eventCapacity)
	}
	return p
}

// NumAudio, NumParam, NumNote report sub-pool lengths.
func (p *Pool[T]) NumAudio() int { return len(p.audio) }
func (p *Pool[T]) NumParam() int { return len(p.param) }
func (p *Pool[T]) NumNote() int  { return len(p.note) }

func aliasPanic(kind Kind, index int, exclusive bool) {
	verb := "shared"
	if exclusive {
		verb = "exclusive"
	}
	panic(fmt.Sprintf("storage: %s borrow of %s buffer %d would alias an existing borrow", verb, kind, index))
}

// GetAudio acquires a shared (read-only) borrow of audio cell index.
// Panics if an exclusive borrow on the same index is outstanding.
func (p *Pool[T]) GetAudio(index int) *Borrow[[]T] {
	if p.exclAudio.Get(index) {
		aliasPanic(KindAudio, index, false)
	}
	p.sharedAudio.Set(index)
	return &Borrow[[]T]{data: p.audio[index].data, release: func() { p.sharedAudio.Clear(index) }}
}

// GetAudioMut acquires an exclusive (read-write) borrow of audio cell
// index. Panics if any shared or exclusive borrow on the same index is
// outstanding.
func (p *Pool[T]) GetAudioMut(index int) *Borrow[[]T] {
	if p.sharedAudio.Get(index) {
		aliasPanic(KindAudio, index, true)
	}
	if p.exclAudio.Get(index) {
		aliasPanic(KindAudio, index, true)
	}
	p.exclAudio.Set(index)
	return &Borrow[[]T]{data: p.audio[index].data, release: func() { p.exclAudio.Clear(index) }}
}

// GetParam acquires a shared borrow of parameter-event cell index.
func (p *Pool[T]) GetParam(index int) *Borrow[*ParamBuffer] {
	if p.exclParam.Get(index) {
		aliasPanic(KindParam, index, false)
	}
	p.sharedParam.Set(index)
	return &Borrow[*ParamBuffer]{data: p.param[index].buf, release: func() { p.sharedParam.Clear(index) }}
}

// GetParamMut acquires an exclusive borrow of parameter-event cell index.
func (p *Pool[T]) GetParamMut(index int) *Borrow[*ParamBuffer] {
	if p.sharedParam.Get(index) || p.exclParam.Get(index) {
		aliasPanic(KindParam, index, true)
	}
	p.exclParam.Set(index)
	return &Borrow[*ParamBuffer]{data: p.param[index].buf, release: func() { p.exclParam.Clear(index) }}
}

// GetNote acquires a shared borrow of note-event cell index.
func (p *Pool[T]) GetNote(index int) *Borrow[*NoteBuffer] {
	if p.exclNote.Get(index) {
		aliasPanic(KindNote, index, false)
	}
	p.sharedNote.Set(index)
	return &Borrow[*NoteBuffer]{data: p.note[index].buf, release: func() { p.sharedNote.Clear(index) }}
}

// GetNoteMut acquires an exclusive borrow of note-event cell index.
func (p *Pool[T]) GetNoteMut(index int) *Borrow[*NoteBuffer] {
	if p.sharedNote.Get(index) || p.exclNote.Get(index) {
		aliasPanic(KindNote, index, true)
	}
	p.exclNote.Set(index)
	return &Borrow[*NoteBuffer]{data: p.note[index].buf, release: func() { p.exclNote.Clear(index) }}
}

// ClearAudio zeroes audio cell index without going through the borrow
// machinery, for the runtime's per-block should_clear pass (spec
// §4.H item (a)) which runs before any module touches the cell.
func (p *Pool[T]) ClearAudio(index int) {
	var zero T
	data := p.audio[index].data
	for i := range data {
		data[i] = zero
	}
}

// ClearParam empties parameter-event cell index.
func (p *Pool[T]) ClearParam(index int) { p.param[index].buf.Clear() }

// ClearNote empties note-event cell index.
func (p *Pool[T]) ClearNote(index int) { p.note[index].buf.Clear() }

// Borrow is a released-on-Release handle produced by Pool's Get*
// methods. Go has no destructors, so callers must call Release
// explicitly (typically via defer) when done; unlike the teacher's
// Rust original, a leaked Borrow silently pins the bit until the
// caller eventually releases it rather than at scope exit.
type Borrow[D any] struct {
	data     D
	release  func()
	released bool
}

// Data returns the borrowed value.
func (b *Borrow[D]) Data() D { return b.data }

// Release clears the associated borrow bit. Calling Release twice is a
// no-op.
func (b *Borrow[D]) Release() {
	if b.released {
		return
	}
	b.released = true
	b.release()
}
