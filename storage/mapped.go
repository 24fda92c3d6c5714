// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storage

// Slot names which sub-pool and pool index a node's local port maps to.
type Slot struct {
	Kind  Kind
	Index int
}

// Mapped reindexes a node's local, contiguous port indices {0,...,k-1}
// into absolute Pool indices, so a module written against "my input 0"
// never needs to know which pool slot the compiler assigned it.
//
// Grounded on GraphContextImpl's input_index/output_index closures in
// original_source/crates/clogbox-core/src/graph/context.rs: the Rust
// original passes `&dyn Fn(In) -> Option<(SlotType, usize)>` closures
// per call; Mapped precomputes the equivalent table once per process
// call instead, since Go's lack of ad-hoc closures-as-fields makes a
// table the more idiomatic fit here.
type Mapped[T any] struct {
	pool    *Pool[T]
	inputs  []Slot
	outputs []Slot
}

// NewMapped builds a view over pool where local input index i resolves
// to inputs[i], and local output index i resolves to outputs[i].
func NewMapped[T any](pool *Pool[T], inputs, outputs []Slot) *Mapped[T] {
	return &Mapped[T]{pool: pool, inputs: inputs, outputs: outputs}
}

// NumInputs and NumOutputs report the node-local port counts.
func (m *Mapped[T]) NumInputs() int  { return len(m.inputs) }
func (m *Mapped[T]) NumOutputs() int { return len(m.outputs) }

// AudioInput acquires a shared borrow on the pool cell mapped to local
// input index i. ok is false if i has no input connected (a dangling
// input port left unconnected by the graph).
func (m *Mapped[T]) AudioInput(i int) (b *Borrow[[]T], ok bool) {
	s, ok := m.slot(m.inputs, i, KindAudio)
	if !ok {
		return nil, false
	}
	return m.pool.GetAudio(s.Index), true
}

// AudioOutput acquires an exclusive borrow on the pool cell mapped to
// local output index i.
func (m *Mapped[T]) AudioOutput(i int) (b *Borrow[[]T], ok bool) {
	s, ok := m.slot(m.outputs, i, KindAudio)
	if !ok {
		return nil, false
	}
	return m.pool.GetAudioMut(s.Index), true
}

// ParamInput acquires a shared borrow on the parameter-event cell
// mapped to local input index i.
func (m *Mapped[T]) ParamInput(i int) (b *Borrow[*ParamBuffer], ok bool) {
	s, ok := m.slot(m.inputs, i, KindParam)
	if !ok {
		return nil, false
	}
	return m.pool.GetParam(s.Index), true
}

// ParamOutput acquires an exclusive borrow on the parameter-event cell
// mapped to local output index i.
func (m *Mapped[T]) ParamOutput(i int) (b *Borrow[*ParamBuffer], ok bool) {
	s, ok := m.slot(m.outputs, i, KindParam)
	if !ok {
		return nil, false
	}
	return m.pool.GetParamMut(s.Index), true
}

// NoteInput acquires a shared borrow on the note-event cell mapped to
// local input index i.
func (m *Mapped[T]) NoteInput(i int) (b *Borrow[*NoteBuffer], ok bool) {
	s, ok := m.slot(m.inputs, i, KindNote)
	if !ok {
		return nil, false
	}
	return m.pool.GetNote(s.Index), true
}

// NoteOutput acquires an exclusive borrow on the note-event cell mapped
// to local output index i.
func (m *Mapped[T]) NoteOutput(i int) (b *Borrow[*NoteBuffer], ok bool) {
	s, ok := m.slot(m.outputs, i, KindNote)
	if !ok {
		return nil, false
	}
	return m.pool.GetNoteMut(s.Index), true
}

func (m *Mapped[T]) slot(table []Slot, i int, want Kind) (Slot, bool) {
	if i < 0 || i >= len(table) {
		panic("storage: local port index out of range")
	}
	s := table[i]
	if s.Kind != want {
		panic("storage: port kind mismatch in mapped view")
	}
	if s.Index < 0 {
		return Slot{}, false
	}
	return s, true
}
