// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package graph_test

import (
	"testing"

	"code.aurasignal.dev/dataflow/graph"
	"code.aurasignal.dev/dataflow/storage"
)

func mustAddPort(t *testing.T, b *graph.Builder, node graph.NodeID, kind storage.Kind, dir graph.Direction) graph.PortID {
	t.Helper()
	id, err := b.AddPort(node, kind, dir)
	if err != nil {
		t.Fatalf("AddPort: %v", err)
	}
	return id
}

func TestAddEdgeRejectsTypeMismatch(t *testing.T) {
	b := graph.NewBuilder()
	a := b.AddNode(0)
	out := mustAddPort(t, b, a, storage.KindParam, graph.DirectionOutput)
	c := b.AddNode(0)
	in := mustAddPort(t, b, c, storage.KindAudio, graph.DirectionInput)

	_, err := b.AddEdge(a, out, c, in)
	ce, ok := err.(*graph.CompileError)
	if !ok || ce.Kind != graph.ErrTypeMismatch {
		t.Fatalf("AddEdge: got %v, want TypeMismatch", err)
	}
	if b.NeedsCompile() {
		t.Fatalf("a rejected edge must not mark the builder dirty")
	}
}

func TestAddEdgeRejectsSelfLoop(t *testing.T) {
	b := graph.NewBuilder()
	a := b.AddNode(0)
	out := mustAddPort(t, b, a, storage.KindAudio, graph.DirectionOutput)
	in := mustAddPort(t, b, a, storage.KindAudio, graph.DirectionInput)

	_, err := b.AddEdge(a, out, a, in)
	ce, ok := err.(*graph.CompileError)
	if !ok || ce.Kind != graph.ErrCycleDetected {
		t.Fatalf("AddEdge: got %v, want CycleDetected", err)
	}
}

func TestAddEdgeRejectsIndirectCycle(t *testing.T) {
	b := graph.NewBuilder()
	a := b.AddNode(0)
	aOut := mustAddPort(t, b, a, storage.KindAudio, graph.DirectionOutput)
	aIn := mustAddPort(t, b, a, storage.KindAudio, graph.DirectionInput)
	c := b.AddNode(0)
	cOut := mustAddPort(t, b, c, storage.KindAudio, graph.DirectionOutput)
	cIn := mustAddPort(t, b, c, storage.KindAudio, graph.DirectionInput)

	if _, err := b.AddEdge(a, aOut, c, cIn); err != nil {
		t.Fatalf("AddEdge a->c: %v", err)
	}
	_, err := b.AddEdge(c, cOut, a, aIn)
	ce, ok := err.(*graph.CompileError)
	if !ok || ce.Kind != graph.ErrCycleDetected {
		t.Fatalf("AddEdge c->a: got %v, want CycleDetected", err)
	}
}

func TestAddPortOnUnknownNodeFails(t *testing.T) {
	b := graph.NewBuilder()
	_, err := b.AddPort(99, storage.KindAudio, graph.DirectionInput)
	ce, ok := err.(*graph.CompileError)
	if !ok || ce.Kind != graph.ErrNodeNotFound {
		t.Fatalf("AddPort: got %v, want NodeNotFound", err)
	}
}

func TestRemoveNodeCascadesEdges(t *testing.T) {
	b := graph.NewBuilder()
	a := b.AddNode(0)
	aOut := mustAddPort(t, b, a, storage.KindAudio, graph.DirectionOutput)
	c := b.AddNode(0)
	cIn := mustAddPort(t, b, c, storage.KindAudio, graph.DirectionInput)
	edge, err := b.AddEdge(a, aOut, c, cIn)
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	if err := b.RemoveNode(a); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if err := b.RemoveEdge(edge); err == nil {
		t.Fatalf("RemoveEdge on a node-cascaded edge should already be gone")
	}

	// c alone, with no incoming edge, must still compile cleanly.
	sched, err := b.Compile()
	if err != nil {
		t.Fatalf("Compile after RemoveNode: %v", err)
	}
	if len(sched.Entries) != 1 {
		t.Fatalf("Entries = %d, want 1 (only node c remains)", len(sched.Entries))
	}
}
