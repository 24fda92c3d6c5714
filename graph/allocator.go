// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package graph

import "code.aurasignal.dev/dataflow/storage"

// numPortTypes is the fixed number of storage.Kind values (audio,
// param, note); the allocator keeps one free list and one counter per
// kind, indexed directly by int(kind).
const numPortTypes = 3

// bufferRef is a pooled buffer index checked out from a
// bufferAllocator. refs counts the number of schedule entries still
// expecting to read or write through this handle; the buffer returns
// to its kind's free list only once refs reaches zero, mirroring the
// original's Rc<BufferRef> strong-count-to-zero release.
type bufferRef struct {
	idx        int
	kind       storage.Kind
	generation int
	refs       int
}

type freeListEntry struct {
	idx        int
	generation int
}

// bufferAllocator hands out pooled buffer indices per storage.Kind,
// reusing a released index before minting a new one, and tracks the
// high-water mark of concurrently live buffers per kind.
type bufferAllocator struct {
	freeList [numPortTypes][]freeListEntry
	counts   [numPortTypes]int
}

func newBufferAllocator() *bufferAllocator {
	return &bufferAllocator{}
}

// acquire checks out a buffer of the given kind: the most recently
// released index of that kind if one is free, otherwise a fresh index.
func (a *bufferAllocator) acquire(kind storage.Kind) *bufferRef {
	k := int(kind)
	if n := len(a.freeList[k]); n > 0 {
		e := a.freeList[k][n-1]
		a.freeList[k] = a.freeList[k][:n-1]
		return &bufferRef{idx: e.idx, kind: kind, generation: e.generation, refs: 1}
	}
	idx := a.counts[k]
	a.counts[k]++
	return &bufferRef{idx: idx, kind: kind, generation: 0, refs: 1}
}

// release drops one outstanding reference to buf. Once no references
// remain, the index is returned to its kind's free list with its
// generation counter bumped, so a future acquire of the same index
// always sees a fresh generation.
func (a *bufferAllocator) release(buf *bufferRef) {
	buf.refs--
	if buf.refs <= 0 {
		k := int(buf.kind)
		a.freeList[k] = append(a.freeList[k], freeListEntry{idx: buf.idx, generation: buf.generation + 1})
	}
}

func (a *bufferAllocator) numBuffersPerKind() map[storage.Kind]int {
	return map[storage.Kind]int{
		storage.KindAudio: a.counts[int(storage.KindAudio)],
		storage.KindParam: a.counts[int(storage.KindParam)],
		storage.KindNote:  a.counts[int(storage.KindNote)],
	}
}
