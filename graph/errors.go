// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package graph

import (
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrorKind classifies a CompileError. Grounded on
// clogbox-graph's CompileGraphError variants (NodeIDNotUnique,
// EdgeIDNotUnique, NodeOnEdgeNotFound, CycleDetected), with
// PortNotFound, PortAlreadyExists, TypeMismatch, EdgeAlreadyExists,
// and PortTypeIndexOutOfBounds added for the port/edge-level
// validation spec §4.G Pass 1 names explicitly.
type ErrorKind int

const (
	ErrNodeNotFound ErrorKind = iota
	ErrPortNotFound
	ErrPortAlreadyExists
	ErrTypeMismatch
	ErrEdgeAlreadyExists
	ErrCycleDetected
	ErrNodeOnEdgeNotFound
	ErrNodeIDNotUnique
	ErrEdgeIDNotUnique
	ErrPortTypeIndexOutOfBounds
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNodeNotFound:
		return "node not found"
	case ErrPortNotFound:
		return "port not found"
	case ErrPortAlreadyExists:
		return "port already exists"
	case ErrTypeMismatch:
		return "port type mismatch"
	case ErrEdgeAlreadyExists:
		return "edge already exists"
	case ErrCycleDetected:
		return "cycle detected"
	case ErrNodeOnEdgeNotFound:
		return "edge references unknown node"
	case ErrNodeIDNotUnique:
		return "node id not unique"
	case ErrEdgeIDNotUnique:
		return "edge id not unique"
	case ErrPortTypeIndexOutOfBounds:
		return "port type index out of bounds"
	default:
		return "unknown compile error"
	}
}

// CompileError is returned by Builder.AddEdge and Builder.Compile.
// The Node/Port/Edge fields are populated according to Kind; fields
// that do not apply to a given Kind are left at their zero value.
type CompileError struct {
	Kind ErrorKind
	Node NodeID
	Port PortID
	Edge EdgeID
	msg  string
}

func (e *CompileError) Error() string { return e.msg }

func errNodeNotFound(n NodeID) *CompileError {
	return &CompileError{Kind: ErrNodeNotFound, Node: n, msg: fmt.Sprintf("graph: node %d not found", n)}
}

func errPortNotFound(n NodeID, p PortID) *CompileError {
	return &CompileError{Kind: ErrPortNotFound, Node: n, Port: p, msg: fmt.Sprintf("graph: port %d not found on node %d", p, n)}
}

func errPortAlreadyExists(n NodeID, p PortID) *CompileError {
	return &CompileError{Kind: ErrPortAlreadyExists, Node: n, Port: p, msg: fmt.Sprintf("graph: port %d already exists on node %d", p, n)}
}

func errTypeMismatch(e Edge) *CompileError {
	return &CompileError{Kind: ErrTypeMismatch, Edge: e.ID, msg: fmt.Sprintf("graph: edge %d connects ports of different types", e.ID)}
}

func errEdgeAlreadyExists(id EdgeID) *CompileError {
	return &CompileError{Kind: ErrEdgeAlreadyExists, Edge: id, msg: fmt.Sprintf("graph: edge %d already exists", id)}
}

func errCycleDetected() *CompileError {
	return &CompileError{Kind: ErrCycleDetected, msg: "graph: cycle detected"}
}

func errNodeOnEdgeNotFound(e EdgeID, n NodeID) *CompileError {
	return &CompileError{Kind: ErrNodeOnEdgeNotFound, Edge: e, Node: n, msg: fmt.Sprintf("graph: edge %d references unknown node %d", e, n)}
}

func errNodeIDNotUnique(n NodeID) *CompileError {
	return &CompileError{Kind: ErrNodeIDNotUnique, Node: n, msg: fmt.Sprintf("graph: node id %d not unique", n)}
}

func errEdgeIDNotUnique(e EdgeID) *CompileError {
	return &CompileError{Kind: ErrEdgeIDNotUnique, Edge: e, msg: fmt.Sprintf("graph: edge id %d not unique", e)}
}

func errPortTypeIndexOutOfBounds(n NodeID, p PortID) *CompileError {
	return &CompileError{Kind: ErrPortTypeIndexOutOfBounds, Node: n, Port: p, msg: fmt.Sprintf("graph: port type index out of bounds for port %d on node %d", p, n)}
}

// IsSemantic reports whether err is a control-flow signal rather than a
// genuine failure. A *CompileError is always a real compile failure,
// never one of these, so this exists purely to let callers classify
// errors uniformly across packages (graph, eventbuf, delayline)
// without a type switch; it delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition
// (nil or a semantic signal). Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
