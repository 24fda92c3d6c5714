// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dspmodule

import (
	"code.aurasignal.dev/dataflow/enumidx"
	"code.aurasignal.dev/dataflow/storage"
)

// SocketType is the port kind the runtime's dyn projection keys
// fan-in/fan-out counts by. Equal to storage.Kind so Dyn modules and
// the storage pool agree on one taxonomy.
type SocketType = storage.Kind

// Dyn is the usize-indexed projection of a Module the runtime holds as
// a trait object, without depending on the module's concrete In/Out
// enum types. Grounded on the Module -> RawModule blanket impl in
// original_source/crates/clogbox-core/src/module/mod.rs: the original
// type-erases Sample via `()` and derives inputs()/outputs() from the
// enum's Count; Dyn additionally exposes per-SocketType counts since
// storage.Mapped keeps ports in one flat per-node table rather than
// per-kind enums, and the graph compiler needs to reason about "how
// many audio inputs" a node has without touching its enum type.
type Dyn[T any] interface {
	Prepare(sampleRate float64, maxBlockSize int) PrepareResult
	ProcessDyn(stream StreamContext, mapped *storage.Mapped[T]) ProcessResult

	NumInputs() int
	NumOutputs() int
	CountInputs(kind SocketType) int
	CountOutputs(kind SocketType) int
}

// dynAdapter wraps a strongly-typed Module so it satisfies Dyn[T].
type dynAdapter[T any, In, Out enumidx.Enum] struct {
	m        Module[T, In, Out]
	inKinds  []storage.Kind
	outKinds []storage.Kind
}

// NewDyn builds the dyn projection of a fully concrete Module, taking
// its port kinds from m.InputKinds() and m.OutputKinds(), which must
// have length enumidx.Count[In]() / enumidx.Count[Out]() respectively,
// ordered by enum index.
func NewDyn[T any, In, Out enumidx.Enum](m Module[T, In, Out]) Dyn[T] {
	return &dynAdapter[T, In, Out]{
		m:        m,
		inKinds:  m.InputKinds(),
		outKinds: m.OutputKinds(),
	}
}

func (d *dynAdapter[T, In, Out]) Prepare(sampleRate float64, maxBlockSize int) PrepareResult {
	return d.m.Prepare(sampleRate, maxBlockSize)
}

func (d *dynAdapter[T, In, Out]) ProcessDyn(stream StreamContext, mapped *storage.Mapped[T]) ProcessResult {
	return d.m.Process(NewContext[T, In, Out](stream, mapped))
}

func (d *dynAdapter[T, In, Out]) NumInputs() int  { return len(d.inKinds) }
func (d *dynAdapter[T, In, Out]) NumOutputs() int { return len(d.outKinds) }

func (d *dynAdapter[T, In, Out]) CountInputs(kind SocketType) int {
	return countKind(d.inKinds, kind)
}

func (d *dynAdapter[T, In, Out]) CountOutputs(kind SocketType) int {
	return countKind(d.outKinds, kind)
}

func countKind(kinds []storage.Kind, want storage.Kind) int {
	n := 0
	for _, k := range kinds {
		if k == want {
			n++
		}
	}
	return n
}
