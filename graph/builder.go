// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package graph

import (
	"errors"

	"code.aurasignal.dev/dataflow/storage"
)

// ErrEdgeNotFound is returned by RemoveEdge for an EdgeID the Builder
// does not hold (already removed, or never added).
var ErrEdgeNotFound = errors.New("graph: edge not found")

// Builder accumulates nodes, ports, and edges, assigning each a
// stable ID in insertion order, and compiles a snapshot into a
// CompiledSchedule on demand. IDs are never reused within one
// Builder's lifetime, even across Remove* calls, so a removed and
// re-added node never collides with a stale reference held elsewhere.
type Builder struct {
	nodes     []*Node
	nodeIndex map[NodeID]int
	edges     []*Edge
	edgeIndex map[EdgeID]int
	nextNode  NodeID
	nextEdge  EdgeID
	nextPort  map[NodeID]PortID
	dirty     bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		nodeIndex: make(map[NodeID]int),
		edgeIndex: make(map[EdgeID]int),
		nextPort:  make(map[NodeID]PortID),
	}
}

// AddNode registers a node with the given processing latency, in
// seconds, and returns its ID.
func (b *Builder) AddNode(latency float64) NodeID {
	id := b.nextNode
	b.nextNode++
	n := &Node{ID: id, Latency: latency}
	b.nodeIndex[id] = len(b.nodes)
	b.nodes = append(b.nodes, n)
	b.dirty = true
	return id
}

// AddPort adds a port of the given kind and direction to node and
// returns its ID, scoped to that node.
func (b *Builder) AddPort(node NodeID, kind storage.Kind, dir Direction) (PortID, error) {
	n, err := b.nodeByID(node)
	if err != nil {
		return 0, err
	}
	id := b.nextPort[node]
	b.nextPort[node] = id + 1
	port := Port{ID: id, Kind: kind, Dir: dir}
	if dir == DirectionOutput {
		n.Outputs = append(n.Outputs, port)
	} else {
		n.Inputs = append(n.Inputs, port)
	}
	b.dirty = true
	return id, nil
}

// AddEdge connects an output port to an input port. It fails fast,
// before the edge is ever recorded, if either port does not exist,
// the ports' types do not match, or the edge would close a cycle —
// the same CycleDetected the compiler's Pass 2 would report, caught
// here so a graph editor can reject the gesture immediately rather
// than waiting for the next Compile.
func (b *Builder) AddEdge(srcNode NodeID, srcPort PortID, dstNode NodeID, dstPort PortID) (EdgeID, error) {
	src, err := b.nodeByID(srcNode)
	if err != nil {
		return 0, err
	}
	dst, err := b.nodeByID(dstNode)
	if err != nil {
		return 0, err
	}
	srcP, ok := src.port(src.Outputs, srcPort)
	if !ok {
		return 0, errPortNotFound(srcNode, srcPort)
	}
	dstP, ok := dst.port(dst.Inputs, dstPort)
	if !ok {
		return 0, errPortNotFound(dstNode, dstPort)
	}
	id := b.nextEdge
	e := Edge{ID: id, SrcNode: srcNode, SrcPort: srcPort, DstNode: dstNode, DstPort: dstPort}
	if srcP.Kind != dstP.Kind {
		return 0, errTypeMismatch(e)
	}
	if b.reaches(dstNode, srcNode) {
		return 0, errCycleDetected()
	}
	b.nextEdge++
	b.edgeIndex[id] = len(b.edges)
	b.edges = append(b.edges, &e)
	b.dirty = true
	return id, nil
}

// reaches reports whether to is reachable from from by following
// existing outgoing edges, used to reject an edge that would
// introduce a cycle before it is ever added.
func (b *Builder) reaches(from, to NodeID) bool {
	if from == to {
		return true
	}
	visited := map[NodeID]bool{from: true}
	stack := []NodeID{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range b.edges {
			if e.SrcNode != n {
				continue
			}
			if e.DstNode == to {
				return true
			}
			if !visited[e.DstNode] {
				visited[e.DstNode] = true
				stack = append(stack, e.DstNode)
			}
		}
	}
	return false
}

// RemoveNode removes a node and every edge incident to it.
func (b *Builder) RemoveNode(id NodeID) error {
	i, ok := b.nodeIndex[id]
	if !ok {
		return errNodeNotFound(id)
	}
	keep := b.edges[:0:0]
	for _, e := range b.edges {
		if e.SrcNode == id || e.DstNode == id {
			delete(b.edgeIndex, e.ID)
			continue
		}
		keep = append(keep, e)
	}
	b.edges = keep
	b.reindexEdges()

	b.nodes = append(b.nodes[:i], b.nodes[i+1:]...)
	delete(b.nodeIndex, id)
	delete(b.nextPort, id)
	b.reindexNodes()
	b.dirty = true
	return nil
}

// RemovePort removes a port from node and every edge attached to it.
func (b *Builder) RemovePort(node NodeID, id PortID) error {
	n, err := b.nodeByID(node)
	if err != nil {
		return err
	}
	n.Inputs = removePort(n.Inputs, id)
	n.Outputs = removePort(n.Outputs, id)

	keep := b.edges[:0:0]
	for _, e := range b.edges {
		if (e.SrcNode == node && e.SrcPort == id) || (e.DstNode == node && e.DstPort == id) {
			delete(b.edgeIndex, e.ID)
			continue
		}
		keep = append(keep, e)
	}
	b.edges = keep
	b.reindexEdges()
	b.dirty = true
	return nil
}

func removePort(ports []Port, id PortID) []Port {
	out := ports[:0:0]
	for _, p := range ports {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// RemoveEdge removes a single edge.
func (b *Builder) RemoveEdge(id EdgeID) error {
	i, ok := b.edgeIndex[id]
	if !ok {
		return ErrEdgeNotFound
	}
	b.edges = append(b.edges[:i], b.edges[i+1:]...)
	delete(b.edgeIndex, id)
	b.reindexEdges()
	b.dirty = true
	return nil
}

func (b *Builder) reindexNodes() {
	for i, n := range b.nodes {
		b.nodeIndex[n.ID] = i
	}
}

func (b *Builder) reindexEdges() {
	for i, e := range b.edges {
		b.edgeIndex[e.ID] = i
	}
}

// nodeByID is the shared lookup helper for builder mutations.
func (b *Builder) nodeByID(id NodeID) (*Node, error) {
	i, ok := b.nodeIndex[id]
	if !ok {
		return nil, errNodeNotFound(id)
	}
	return b.nodes[i], nil
}

// NeedsCompile reports whether the graph has changed since the last
// successful Compile.
func (b *Builder) NeedsCompile() bool {
	return b.dirty
}
