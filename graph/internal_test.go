// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package graph

import (
	"testing"

	"code.aurasignal.dev/dataflow/storage"
)

// TestHasCycleDetectsTwoNodeCycle exercises Pass 2 directly on a
// two-node mutual cycle that Builder.AddEdge's own precheck would
// never let a caller construct, to confirm the compiler's
// independent cycle detection also catches it (a schedule loaded from
// storage, bypassing the builder, must be validated just as strictly).
func TestHasCycleDetectsTwoNodeCycle(t *testing.T) {
	a := &Node{ID: 0, Outputs: []Port{{ID: 0, Kind: storage.KindAudio}}, Inputs: []Port{{ID: 0, Kind: storage.KindAudio}}}
	b := &Node{ID: 1, Outputs: []Port{{ID: 0, Kind: storage.KindAudio}}, Inputs: []Port{{ID: 0, Kind: storage.KindAudio}}}
	edges := []*Edge{
		{ID: 0, SrcNode: 0, SrcPort: 0, DstNode: 1, DstPort: 0},
		{ID: 1, SrcNode: 1, SrcPort: 0, DstNode: 0, DstPort: 0},
	}
	state, err := preprocess([]*Node{a, b}, edges)
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	if !hasCycle(state) {
		t.Fatalf("hasCycle = false, want true for a two-node mutual cycle")
	}
}

// TestHasCycleDetectsSelfLoop exercises the explicit self-loop check:
// a singleton SCC is not itself a size > 1 component, so Tarjan's
// size test alone would miss a node wired to itself.
func TestHasCycleDetectsSelfLoop(t *testing.T) {
	a := &Node{ID: 0, Outputs: []Port{{ID: 0, Kind: storage.KindAudio}}, Inputs: []Port{{ID: 0, Kind: storage.KindAudio}}}
	edges := []*Edge{{ID: 0, SrcNode: 0, SrcPort: 0, DstNode: 0, DstPort: 0}}
	state, err := preprocess([]*Node{a}, edges)
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	if !hasCycle(state) {
		t.Fatalf("hasCycle = false, want true for a self-loop")
	}
}

func TestPreprocessRejectsDuplicateNodeID(t *testing.T) {
	a := &Node{ID: 0}
	dup := &Node{ID: 0}
	_, err := preprocess([]*Node{a, dup}, nil)
	ce, ok := err.(*CompileError)
	if !ok || ce.Kind != ErrNodeIDNotUnique {
		t.Fatalf("preprocess: got %v, want NodeIDNotUnique", err)
	}
}

func TestPreprocessRejectsDuplicateEdgeID(t *testing.T) {
	a := &Node{ID: 0, Outputs: []Port{{ID: 0, Kind: storage.KindAudio}}}
	b := &Node{ID: 1, Inputs: []Port{{ID: 0, Kind: storage.KindAudio}}}
	edges := []*Edge{
		{ID: 0, SrcNode: 0, SrcPort: 0, DstNode: 1, DstPort: 0},
		{ID: 0, SrcNode: 0, SrcPort: 0, DstNode: 1, DstPort: 0},
	}
	_, err := preprocess([]*Node{a, b}, edges)
	ce, ok := err.(*CompileError)
	if !ok || ce.Kind != ErrEdgeIDNotUnique {
		t.Fatalf("preprocess: got %v, want EdgeIDNotUnique", err)
	}
}

func TestPreprocessRejectsEdgeToUnknownNode(t *testing.T) {
	a := &Node{ID: 0, Outputs: []Port{{ID: 0, Kind: storage.KindAudio}}}
	edges := []*Edge{{ID: 0, SrcNode: 0, SrcPort: 0, DstNode: 99, DstPort: 0}}
	_, err := preprocess([]*Node{a}, edges)
	ce, ok := err.(*CompileError)
	if !ok || ce.Kind != ErrNodeOnEdgeNotFound {
		t.Fatalf("preprocess: got %v, want NodeOnEdgeNotFound", err)
	}
}

func TestBufferAllocatorReusesReleasedIndex(t *testing.T) {
	a := newBufferAllocator()
	first := a.acquire(storage.KindAudio)
	a.release(first)
	second := a.acquire(storage.KindAudio)
	if second.idx != first.idx {
		t.Fatalf("acquire after release: idx = %d, want reused idx %d", second.idx, first.idx)
	}
	if second.generation != first.generation+1 {
		t.Fatalf("generation = %d, want %d", second.generation, first.generation+1)
	}
	if got := a.numBuffersPerKind()[storage.KindAudio]; got != 1 {
		t.Fatalf("numBuffersPerKind[Audio] = %d, want 1 (the index was reused, not grown)", got)
	}
}

func TestBufferAllocatorRefcountHoldsUntilLastRelease(t *testing.T) {
	a := newBufferAllocator()
	buf := a.acquire(storage.KindAudio)
	buf.refs = 2
	a.release(buf)
	if got := len(a.freeList[int(storage.KindAudio)]); got != 0 {
		t.Fatalf("freeList has %d entries after first release of a refs=2 buffer, want 0", got)
	}
	a.release(buf)
	if got := len(a.freeList[int(storage.KindAudio)]); got != 1 {
		t.Fatalf("freeList has %d entries after second release, want 1", got)
	}
}
