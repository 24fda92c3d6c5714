// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package graph is the offline compiler that turns a user-declared
// dataflow graph of nodes, typed ports, and edges into a linear,
// deterministic CompiledSchedule: a topologically sorted node order
// with fixed delays inserted to equalize latency on converging paths,
// summing points inserted where multiple edges target one input port,
// and pooled buffer indices assigned to every edge (spec §4.G).
//
// Grounded on
// original_source/crates/clogbox-graph/src/graph/graph_ir.rs (pass
// structure: preprocess, sort_topologically, solve_latency_requirements,
// solve_buffer_requirements, merge; the four-case assign_node_buffers
// buffer logic; Tarjan's SCC for cycle detection) and
// clogbox-core/src/graph/impl/buffer_allocator.rs (free-list allocator
// with reference-counted release, resolving the buffer-reuse Open
// Question: a buffer is returned to its type's free list only once its
// last outstanding reference is released).
package graph

import "code.aurasignal.dev/dataflow/storage"

// NodeID identifies a node within a Builder. IDs are assigned in
// insertion order starting at 0 and are never reused within one
// Builder's lifetime, even across removals.
type NodeID uint32

// EdgeID identifies an edge within a Builder.
type EdgeID uint32

// PortID identifies a port within the node that owns it. Port IDs are
// scoped per node: two different nodes may both have a PortID 0.
type PortID uint32

// Direction distinguishes a node's input ports from its output ports.
type Direction int

const (
	DirectionInput Direction = iota
	DirectionOutput
)

func (d Direction) String() string {
	if d == DirectionOutput {
		return "output"
	}
	return "input"
}

// Port is one typed connection point on a node.
type Port struct {
	ID   PortID
	Kind storage.Kind
	Dir  Direction
}

// Node owns a latency figure, in seconds, and the typed ports other
// nodes connect to via edges. Latency is the node's own processing
// delay (e.g. a lookahead limiter's block size converted to seconds);
// it does not include delay inserted by the compiler.
type Node struct {
	ID      NodeID
	Latency float64
	Inputs  []Port
	Outputs []Port
}

func (n *Node) port(table []Port, id PortID) (Port, bool) {
	for _, p := range table {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// Edge connects an output port on one node to an input port on
// another. Multiple edges may target the same input port (the
// compiler inserts a summing point); an output port may fan out to
// any number of edges.
type Edge struct {
	ID      EdgeID
	SrcNode NodeID
	SrcPort PortID
	DstNode NodeID
	DstPort PortID
}

// latencyEpsilon is the slack, in seconds, below which the compiler
// treats two converging paths as already time-aligned and skips
// inserting a delay (spec §4.G Pass 4).
const latencyEpsilon = 1e-9
