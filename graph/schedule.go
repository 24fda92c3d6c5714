// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package graph

import "code.aurasignal.dev/dataflow/storage"

// BufferAssignment names a pooled buffer a ScheduledNode, InsertedDelay,
// or InsertedSum reads from or writes to. ShouldClear is set only on
// inputs that come from no edge: the runtime must zero the buffer
// before the consumer runs. Generation counts how many times this
// buffer index has been reused by a different edge, for debugging and
// schedule visualization only.
type BufferAssignment struct {
	BufferIndex int
	PortType    storage.Kind
	ShouldClear bool
	PortID      PortID
	Generation  int
}

// ScheduledNode is one node's turn in the executor's run order,
// together with the buffers bound to every one of its ports.
type ScheduledNode struct {
	ID            NodeID
	Latency       float64
	InputBuffers  []BufferAssignment
	OutputBuffers []BufferAssignment
}

// InsertedDelay compensates a converging path whose upstream latency
// is ahead of the node it feeds; it reads InputBuffer and writes the
// delayed signal to OutputBuffer. Edge is kept for debugging and
// Graphviz visualization.
type InsertedDelay struct {
	Edge         Edge
	DelaySeconds float64
	InputBuffer  BufferAssignment
	OutputBuffer BufferAssignment
}

// InsertedSum combines every edge converging on one input port into a
// single buffer before the consuming node runs. All InputBuffers and
// the OutputBuffer share one PortType.
type InsertedSum struct {
	InputBuffers []BufferAssignment
	OutputBuffer BufferAssignment
}

// ScheduleEntry is one of *ScheduledNode, *InsertedDelay, or *InsertedSum.
type ScheduleEntry interface {
	isScheduleEntry()
}

func (*ScheduledNode) isScheduleEntry() {}
func (*InsertedDelay) isScheduleEntry() {}
func (*InsertedSum) isScheduleEntry()   {}

// CompiledSchedule is the compiler's output: a linear, deterministic
// run order plus the per-type pool sizes the runtime must allocate
// before executing it. Given identical nodes and edges, Compile always
// produces a byte-for-byte identical CompiledSchedule.
type CompiledSchedule struct {
	Entries []ScheduleEntry
	// Delays lists every InsertedDelay also present in Entries, for
	// callers that only care about the delays (e.g. a latency report).
	Delays     []InsertedDelay
	NumBuffers map[storage.Kind]int
}
