// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fixedmap provides dense containers keyed by an enumidx.Enum.
//
// A Map[E, V] holds exactly Count[E]() values, indexed in O(1) by E.
// Out-of-range indexing is impossible by construction: the only way to
// get an E value is through the bijection enumidx guarantees, so every
// index a caller can produce is already in range.
package fixedmap

import (
	"fmt"
	"iter"

	"code.aurasignal.dev/dataflow/enumidx"
)

// Keyed is the constraint satisfied by enum types usable as a Map key:
// an Enum that also knows how to reconstruct itself from an index.
type Keyed[E any] interface {
	enumidx.Enum
	enumidx.FromIndexer[E]
}

// Map is an owned, dense, enum-keyed container of exactly Count[E]() values.
type Map[E Keyed[E], V any] struct {
	data []V
}

// New constructs a Map by calling gen for every element of E in index order.
func New[E Keyed[E], V any](gen func(E) V) Map[E, V] {
	var zero E
	n := zero.Count()
	data := make([]V, n)
	for i := range n {
		data[i] = gen(zero.FromIndex(i))
	}
	return Map[E, V]{data: data}
}

// FromSlice converts a variable-length slice into a Map, asserting
// len(s) == Count[E](). It fails loudly (returns an error, never
// silently truncates or zero-pads) on a length mismatch.
func FromSlice[E Keyed[E], V any](s []V) (Map[E, V], error) {
	var zero E
	n := zero.Count()
	if len(s) != n {
		return Map[E, V]{}, fmt.Errorf("fixedmap: slice has length %d, want %d", len(s), n)
	}
	data := make([]V, n)
	copy(data, s)
	return Map[E, V]{data: data}, nil
}

// Get returns the value stored at e.
func (m Map[E, V]) Get(e E) V {
	return m.data[e.Index()]
}

// Set stores v at e.
func (m Map[E, V]) Set(e E, v V) {
	m.data[e.Index()] = v
}

// Len returns Count[E](), the fixed number of elements.
func (m Map[E, V]) Len() int {
	return len(m.data)
}

// Slice borrows the underlying storage as a plain slice, indexed by
// enum position. Mutations through the returned slice are visible to
// the Map.
func (m Map[E, V]) Slice() []V {
	return m.data
}

// All iterates every (key, value) pair in index order.
func (m Map[E, V]) All() iter.Seq2[E, V] {
	var zero E
	return func(yield func(E, V) bool) {
		for i, v := range m.data {
			if !yield(zero.FromIndex(i), v) {
				return
			}
		}
	}
}

// Transform builds a new Map by applying f pointwise.
func Transform[E Keyed[E], V, W any](m Map[E, V], f func(E, V) W) Map[E, W] {
	var zero E
	out := make([]W, len(m.data))
	for i, v := range m.data {
		out[i] = f(zero.FromIndex(i), v)
	}
	return Map[E, W]{data: out}
}

// Ref is a borrowed, read-only view over an enum-keyed slice, for
// callers that only have a plain slice (e.g. a storage.SlotRef) and
// want the same bounds-safe Get/All surface as an owned Map.
type Ref[E Keyed[E], V any] struct {
	data []V
}

// NewRef wraps s as a borrowed fixed-map view, asserting len(s) == Count[E]().
func NewRef[E Keyed[E], V any](s []V) (Ref[E, V], error) {
	var zero E
	n := zero.Count()
	if len(s) != n {
		return Ref[E, V]{}, fmt.Errorf("fixedmap: ref slice has length %d, want %d", len(s), n)
	}
	return Ref[E, V]{data: s}, nil
}

func (r Ref[E, V]) Get(e E) V { return r.data[e.Index()] }
func (r Ref[E, V]) Len() int  { return len(r.data) }

// Mut is a borrowed, mutable view over an enum-keyed slice.
type Mut[E Keyed[E], V any] struct {
	data []V
}

// NewMut wraps s as a borrowed mutable fixed-map view, asserting
// len(s) == Count[E]().
func NewMut[E Keyed[E], V any](s []V) (Mut[E, V], error) {
	var zero E
	n := zero.Count()
	if len(s) != n {
		return Mut[E, V]{}, fmt.Errorf("fixedmap: mut slice has length %d, want %d", len(s), n)
	}
	return Mut[E, V]{data: s}, nil
}

func (m Mut[E, V]) Get(e E) V      { return m.data[e.Index()] }
func (m Mut[E, V]) Set(e E, v V)   { m.data[e.Index()] = v }
func (m Mut[E, V]) Len() int       { return len(m.data) }
func (m Mut[E, V]) Slice() []V     { return m.data }
