// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"code.aurasignal.dev/dataflow/graph"
	"code.aurasignal.dev/dataflow/storage"
)

// nodeEntryIndex returns the index of id's *ScheduledNode within
// sched.Entries, failing the test if id never appears.
func nodeEntryIndex(t *testing.T, sched *graph.CompiledSchedule, id graph.NodeID) int {
	t.Helper()
	for i, e := range sched.Entries {
		if n, ok := e.(*graph.ScheduledNode); ok && n.ID == id {
			return i
		}
	}
	t.Fatalf("node %d has no ScheduledNode entry", id)
	return -1
}

// TestCompileOrdersEveryEdgeSourceBeforeDestination checks spec §8's
// universal scheduling property directly: for every edge (u, v), u's
// entry precedes v's entry in the compiled schedule, on a graph with
// both a pure chain and a fan-in sum.
func TestCompileOrdersEveryEdgeSourceBeforeDestination(t *testing.T) {
	b := graph.NewBuilder()

	src1 := b.AddNode(0)
	src1Out := mustAddPort(t, b, src1, storage.KindAudio, graph.DirectionOutput)
	src2 := b.AddNode(0)
	src2Out := mustAddPort(t, b, src2, storage.KindAudio, graph.DirectionOutput)

	mid := b.AddNode(0)
	midIn := mustAddPort(t, b, mid, storage.KindAudio, graph.DirectionInput)
	midOut := mustAddPort(t, b, mid, storage.KindAudio, graph.DirectionOutput)

	sink := b.AddNode(0)
	sinkIn := mustAddPort(t, b, sink, storage.KindAudio, graph.DirectionInput)

	_, err := b.AddEdge(src1, src1Out, mid, midIn)
	require.NoError(t, err)
	_, err = b.AddEdge(src2, src2Out, sink, sinkIn)
	require.NoError(t, err)
	_, err = b.AddEdge(mid, midOut, sink, sinkIn)
	require.NoError(t, err)

	sched, err := b.Compile()
	require.NoError(t, err)

	require.Less(t, nodeEntryIndex(t, sched, src1), nodeEntryIndex(t, sched, mid))
	require.Less(t, nodeEntryIndex(t, sched, mid), nodeEntryIndex(t, sched, sink))
	require.Less(t, nodeEntryIndex(t, sched, src2), nodeEntryIndex(t, sched, sink))
}
