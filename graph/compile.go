// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package graph

import (
	"math"

	"code.aurasignal.dev/dataflow/storage"
)

// adjacentEdges is the adjacency-table entry for one node, built fresh
// on every Compile from the current snapshot of nodes and edges.
type adjacentEdges struct {
	incoming []*Edge
	outgoing []*Edge
}

// compileState is the working state threaded through the compiler's
// passes; it is discarded once Compile returns.
type compileState struct {
	nodes     map[NodeID]*Node
	order     []NodeID // insertion order, for deterministic iteration
	adjacency map[NodeID]*adjacentEdges
}

func (s *compileState) adj(id NodeID) *adjacentEdges {
	a, ok := s.adjacency[id]
	if !ok {
		return &adjacentEdges{}
	}
	return a
}

// Compile runs the six-pass algorithm over the Builder's current
// snapshot of nodes and edges: preprocess & validate, cycle detection,
// deterministic topological sort, latency solving with delay
// insertion, buffer assignment with summing-point insertion, and
// schedule emission. Given an unchanged snapshot, Compile always
// produces a byte-for-byte identical CompiledSchedule.
func (b *Builder) Compile() (*CompiledSchedule, error) {
	state, err := preprocess(b.nodes, b.edges)
	if err != nil {
		return nil, err
	}
	if hasCycle(state) {
		return nil, errCycleDetected()
	}
	order := topologicalSort(state)
	temp := solveLatencyRequirements(state, order)
	temp, bufCounts, err := solveBufferRequirements(state, temp)
	if err != nil {
		return nil, err
	}
	sched := merge(temp, bufCounts)
	b.dirty = false
	return sched, nil
}

// ---- Pass 1: preprocess & validate ----

func preprocess(nodes []*Node, edges []*Edge) (*compileState, error) {
	nodesMap := make(map[NodeID]*Node, len(nodes))
	order := make([]NodeID, 0, len(nodes))
	for _, n := range nodes {
		if _, exists := nodesMap[n.ID]; exists {
			return nil, errNodeIDNotUnique(n.ID)
		}
		nodesMap[n.ID] = n
		order = append(order, n.ID)
	}

	adjacency := make(map[NodeID]*adjacentEdges)
	edgeIDs := make(map[EdgeID]bool, len(edges))
	for _, e := range edges {
		src, ok := nodesMap[e.SrcNode]
		if !ok {
			return nil, errNodeOnEdgeNotFound(e.ID, e.SrcNode)
		}
		dst, ok := nodesMap[e.DstNode]
		if !ok {
			return nil, errNodeOnEdgeNotFound(e.ID, e.DstNode)
		}
		if edgeIDs[e.ID] {
			return nil, errEdgeIDNotUnique(e.ID)
		}
		edgeIDs[e.ID] = true

		srcPort, ok := src.port(src.Outputs, e.SrcPort)
		if !ok {
			return nil, errPortNotFound(e.SrcNode, e.SrcPort)
		}
		dstPort, ok := dst.port(dst.Inputs, e.DstPort)
		if !ok {
			return nil, errPortNotFound(e.DstNode, e.DstPort)
		}
		if srcPort.Kind != dstPort.Kind {
			return nil, errTypeMismatch(*e)
		}

		if adjacency[e.SrcNode] == nil {
			adjacency[e.SrcNode] = &adjacentEdges{}
		}
		adjacency[e.SrcNode].outgoing = append(adjacency[e.SrcNode].outgoing, e)

		if adjacency[e.DstNode] == nil {
			adjacency[e.DstNode] = &adjacentEdges{}
		}
		adjacency[e.DstNode].incoming = append(adjacency[e.DstNode].incoming, e)
	}

	return &compileState{nodes: nodesMap, order: order, adjacency: adjacency}, nil
}

// ---- Pass 2: cycle detection (Tarjan's SCC) ----

type tarjanData struct {
	index   int
	hasIdx  bool
	lowLink int
	onStack bool
}

// hasCycle reports whether the graph contains any strongly connected
// component of size greater than one, or any self-loop — both are
// cycles the topological sort cannot order. A self-loop is its own
// singleton SCC, which Tarjan's size-based test alone would miss, so
// it is checked for directly alongside the SCC walk.
func hasCycle(s *compileState) bool {
	for _, id := range s.order {
		for _, e := range s.adj(id).outgoing {
			if e.SrcNode == e.DstNode {
				return true
			}
		}
	}

	aux := make(map[NodeID]*tarjanData, len(s.order))
	for _, id := range s.order {
		aux[id] = &tarjanData{}
	}
	var index int
	var stack []NodeID
	found := false

	var strongConnect func(id NodeID)
	strongConnect = func(id NodeID) {
		d := aux[id]
		d.index = index
		d.hasIdx = true
		d.lowLink = index
		d.onStack = true
		stack = append(stack, id)
		index++

		for _, e := range s.adj(id).outgoing {
			next := e.DstNode
			nd := aux[next]
			if !nd.hasIdx {
				strongConnect(next)
				if nd.lowLink < d.lowLink {
					d.lowLink = nd.lowLink
				}
			} else if nd.onStack {
				if nd.index < d.lowLink {
					d.lowLink = nd.index
				}
			}
		}

		if d.index == d.lowLink {
			sccSize := 0
			for {
				n := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				aux[n].onStack = false
				if n == id {
					break
				}
				sccSize++
			}
			if sccSize != 0 {
				found = true
			}
		}
	}

	for _, id := range s.order {
		if !aux[id].hasIdx {
			strongConnect(id)
		}
	}
	return found
}

// ---- Pass 3: deterministic topological sort ----

// topologicalSort is Kahn's algorithm: nodes become ready once every
// incoming edge's source has already been scheduled, and ready nodes
// are drained in the order they became ready (indegree-0 roots first,
// in insertion order; newly-ready nodes appended as their last
// incoming edge clears). This is a deliberate departure from a plain
// stack-based DFS preorder walk — a DFS that pushes a node to the
// schedule on first visit can schedule a fan-in node (indegree > 1)
// before all of its sources have run, which later passes require never
// to happen. Kahn's algorithm cannot produce that ordering and is
// exactly as deterministic given a fixed insertion order.
func topologicalSort(s *compileState) []NodeID {
	indegree := make(map[NodeID]int, len(s.order))
	for _, id := range s.order {
		indegree[id] = len(s.adj(id).incoming)
	}

	ready := make([]NodeID, 0, len(s.order))
	for _, id := range s.order {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	schedule := make([]NodeID, 0, len(s.order))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		schedule = append(schedule, id)
		for _, e := range s.adj(id).outgoing {
			indegree[e.DstNode]--
			if indegree[e.DstNode] == 0 {
				ready = append(ready, e.DstNode)
			}
		}
	}
	return schedule
}

// ---- Pass 4: latency solving ----

type tempEntryKind int

const (
	tempKindNode tempEntryKind = iota
	tempKindScheduled
	tempKindDelay
	tempKindSum
)

type tempDelay struct {
	edge         Edge
	delaySeconds float64
	inputBuffer  *BufferAssignment
	outputBuffer *BufferAssignment
}

type tempEntry struct {
	kind      tempEntryKind
	node      *Node
	scheduled *ScheduledNode
	delay     *tempDelay
	sum       *InsertedSum
}

// solveLatencyRequirements computes each node's time of arrival —
// the latest time any signal reaching it could have originated,
// including its own latency — and inserts a TempDelay ahead of every
// incoming edge whose source finishes earlier than the slowest
// sibling, so every input arrives synchronized.
func solveLatencyRequirements(s *compileState, order []NodeID) []tempEntry {
	timeOfArrival := make(map[NodeID]float64, len(order))
	schedule := make([]tempEntry, 0, len(order))

	for _, id := range order {
		n := s.nodes[id]
		incoming := s.adj(id).incoming

		var maxInputLatency float64
		for _, e := range incoming {
			if toa := timeOfArrival[e.SrcNode]; toa > maxInputLatency {
				maxInputLatency = toa
			}
		}
		timeOfArrival[id] = maxInputLatency + n.Latency

		for _, e := range incoming {
			toa := timeOfArrival[e.SrcNode]
			slack := maxInputLatency - toa
			if math.Abs(slack) > latencyEpsilon {
				schedule = append(schedule, tempEntry{kind: tempKindDelay, delay: &tempDelay{edge: *e, delaySeconds: slack}})
			}
		}
		schedule = append(schedule, tempEntry{kind: tempKindNode, node: n})
	}
	return schedule
}

// ---- Pass 5: buffer assignment ----

func solveBufferRequirements(s *compileState, schedule []tempEntry) ([]tempEntry, map[storage.Kind]int, error) {
	allocator := newBufferAllocator()
	assignmentTable := make(map[EdgeID]*bufferRef)
	out := make([]tempEntry, 0, len(schedule))

	for _, entry := range schedule {
		switch entry.kind {
		case tempKindNode:
			scheduled, sums, err := assignNodeBuffers(s, entry.node, allocator, assignmentTable)
			if err != nil {
				return nil, nil, err
			}
			for _, sum := range sums {
				out = append(out, tempEntry{kind: tempKindSum, sum: sum})
			}
			out = append(out, tempEntry{kind: tempKindScheduled, scheduled: scheduled})
		case tempKindDelay:
			assignDelayBuffers(entry.delay, allocator, assignmentTable)
			out = append(out, entry)
		default:
			panic("graph: unexpected temp entry kind before buffer assignment")
		}
	}
	return out, allocator.numBuffersPerKind(), nil
}

// assignNodeBuffers assigns every input and output port of node a
// pooled buffer, inserting a summing point for any input with more
// than one incoming edge. Mirrors the four cases of the original's
// assign_node_buffers: unconnected input (acquire + clear), single-edge
// input (claim the producer's buffer), multi-edge input (insert Sum,
// claim its output), and output (unconnected: acquire + release now;
// connected: acquire and hand to every outgoing edge).
func assignNodeBuffers(s *compileState, node *Node, allocator *bufferAllocator, table map[EdgeID]*bufferRef) (*ScheduledNode, []*InsertedSum, error) {
	adj := s.adj(node.ID)
	var sums []*InsertedSum
	var inputBuffers, outputBuffers []BufferAssignment
	var toRelease []*bufferRef

	for _, port := range node.Inputs {
		var edges []*Edge
		for _, e := range adj.incoming {
			if e.DstPort == port.ID {
				edges = append(edges, e)
			}
		}

		switch len(edges) {
		case 0:
			buf := allocator.acquire(port.Kind)
			inputBuffers = append(inputBuffers, bufferAssignment(buf, port.ID, true))
			toRelease = append(toRelease, buf)
		case 1:
			buf, ok := table[edges[0].ID]
			if !ok {
				panic("graph: no buffer assigned to edge")
			}
			delete(table, edges[0].ID)
			inputBuffers = append(inputBuffers, bufferAssignment(buf, port.ID, false))
			toRelease = append(toRelease, buf)
		default:
			sumBuf := allocator.acquire(port.Kind)
			sumOutput := bufferAssignment(sumBuf, port.ID, false)
			inputs := make([]BufferAssignment, 0, len(edges))
			for _, e := range edges {
				buf, ok := table[e.ID]
				if !ok {
					panic("graph: no buffer assigned to edge")
				}
				delete(table, e.ID)
				inputs = append(inputs, bufferAssignment(buf, e.SrcPort, false))
				allocator.release(buf)
			}
			sums = append(sums, &InsertedSum{InputBuffers: inputs, OutputBuffer: sumOutput})
			inputBuffers = append(inputBuffers, sumOutput)
			toRelease = append(toRelease, sumBuf)
		}
	}

	for _, port := range node.Outputs {
		var edges []*Edge
		for _, e := range adj.outgoing {
			if e.SrcPort == port.ID {
				edges = append(edges, e)
			}
		}

		if len(edges) == 0 {
			buf := allocator.acquire(port.Kind)
			outputBuffers = append(outputBuffers, bufferAssignment(buf, port.ID, false))
			toRelease = append(toRelease, buf)
			continue
		}

		buf := allocator.acquire(port.Kind)
		buf.refs = len(edges)
		for _, e := range edges {
			table[e.ID] = buf
		}
		outputBuffers = append(outputBuffers, bufferAssignment(buf, port.ID, false))
	}

	for _, buf := range toRelease {
		allocator.release(buf)
	}

	return &ScheduledNode{
		ID:            node.ID,
		Latency:       node.Latency,
		InputBuffers:  inputBuffers,
		OutputBuffers: outputBuffers,
	}, sums, nil
}

func assignDelayBuffers(delay *tempDelay, allocator *bufferAllocator, table map[EdgeID]*bufferRef) {
	inputBuf, ok := table[delay.edge.ID]
	if !ok {
		panic("graph: no buffer assigned to edge")
	}
	delete(table, delay.edge.ID)
	outputBuf := allocator.acquire(inputBuf.kind)

	in := bufferAssignment(inputBuf, delay.edge.SrcPort, false)
	out := bufferAssignment(outputBuf, delay.edge.DstPort, false)
	delay.inputBuffer = &in
	delay.outputBuffer = &out

	table[delay.edge.ID] = outputBuf
	allocator.release(inputBuf)
}

func bufferAssignment(buf *bufferRef, port PortID, shouldClear bool) BufferAssignment {
	return BufferAssignment{
		BufferIndex: buf.idx,
		PortType:    buf.kind,
		ShouldClear: shouldClear,
		PortID:      port,
		Generation:  buf.generation,
	}
}

// ---- Pass 6: emit ----

// merge flattens the fully buffer-assigned temp schedule into the
// public CompiledSchedule. Every TempEntry must by this point be a
// ScheduledNode, Delay with both buffers assigned, or Sum; an
// unscheduled Node reaching here is an algorithm bug in an earlier
// pass, not a user error, so it panics rather than returning a
// CompileError.
func merge(schedule []tempEntry, bufCounts map[storage.Kind]int) *CompiledSchedule {
	entries := make([]ScheduleEntry, 0, len(schedule))
	var delays []InsertedDelay

	for _, entry := range schedule {
		switch entry.kind {
		case tempKindNode:
			panic("graph: unscheduled node in compiler output")
		case tempKindDelay:
			if entry.delay.inputBuffer == nil || entry.delay.outputBuffer == nil {
				panic("graph: unallocated buffer in scheduled delay")
			}
			d := InsertedDelay{
				Edge:         entry.delay.edge,
				DelaySeconds: entry.delay.delaySeconds,
				InputBuffer:  *entry.delay.inputBuffer,
				OutputBuffer: *entry.delay.outputBuffer,
			}
			delays = append(delays, d)
			entries = append(entries, &d)
		case tempKindScheduled:
			entries = append(entries, entry.scheduled)
		case tempKindSum:
			entries = append(entries, entry.sum)
		}
	}

	return &CompiledSchedule{Entries: entries, Delays: delays, NumBuffers: bufCounts}
}
